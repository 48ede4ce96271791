package boarddto

type CapturedPieces struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

// StateResponse is the board as seen by clients.
type StateResponse struct {
	GameID   string         `json:"gameId"`
	Ply      int            `json:"ply"`
	Turn     string         `json:"turn"`
	Pieces   []Piece        `json:"pieces"`
	Captures []string       `json:"captures"`
	Captured CapturedPieces `json:"captured"`
	FEN      string         `json:"fen"`
}

type MovesResponse struct {
	Piece string `json:"piece"`
	Moves []Move `json:"moves"`
}

type ApplyRequest struct {
	Piece string `json:"piece"`
	Move  Move   `json:"move"`
}

// ApplyResponse is returned by POST /moves. Warning is set when the move was
// played but could not be saved.
type ApplyResponse struct {
	State   StateResponse `json:"state"`
	Warning string        `json:"warning,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	GameID string `json:"gameId,omitempty"`
}
