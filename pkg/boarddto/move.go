package boarddto

// Move types on the wire.
const (
	MoveTypeAdvance = "move"
	MoveTypeCapture = "take"
)

// Move is one candidate or requested move. Target is set only for captures.
type Move struct {
	Type   string `json:"type"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Target string `json:"target,omitempty"`
	// Square is the destination in algebraic form ("e4"); informational only.
	Square string `json:"square,omitempty"`
}

type Piece struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Color     string `json:"color"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	FirstMove bool   `json:"firstMoveEligible"`
}
