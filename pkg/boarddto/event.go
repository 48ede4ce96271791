package boarddto

// Feed event types.
const (
	EventTurnChanged = "turn_changed"
	EventReset       = "reset"
)

// Event is pushed to feed subscribers whenever the board changes.
type Event struct {
	Type   string `json:"type"`
	Turn   string `json:"turn"`
	GameID string `json:"gameId"`
	Move   string `json:"move,omitempty"`
}
