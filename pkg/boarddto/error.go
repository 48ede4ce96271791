package boarddto

// Error codes returned by the board API.
const (
	CodeBadRequest    = "bad_request"
	CodeUnknownPiece  = "unknown_piece"
	CodeNotYourTurn   = "not_your_turn"
	CodeMoveRejected  = "move_rejected"
	CodePersistFailed = "persist_failed"
	CodeInternal      = "internal"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// DomainError carries an ErrorResponse back to Go callers.
type DomainError struct {
	Status int
	ErrorResponse
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "board service error"
}
