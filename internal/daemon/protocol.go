// Package daemon implements the persistent inference service: a loopback TCP
// protocol in front of a resident model, with one conversation context for
// multi-turn state advancement.
package daemon

// MaxFrame bounds both the request and the response on a connection. The
// protocol is a single JSON object each way, no chunking.
const MaxFrame = 8192

// Request kinds accepted on the wire.
const (
	TypePing     = "ping"
	TypeValidate = "validate"
	TypeCreate   = "create_game"
	TypeAdvance  = "player_action"
	TypeReset    = "reset_conversation"
)

// Request is the single JSON object read from a connection.
type Request struct {
	Type string `json:"type"`

	// validate
	Statement string `json:"statement,omitempty"`

	// create_game
	Prompt string `json:"prompt,omitempty"`

	// player_action
	Action               string `json:"action,omitempty"`
	GameState            string `json:"game_state,omitempty"`
	GameWorld            string `json:"game_world,omitempty"`
	ContinueConversation bool   `json:"continue_conversation,omitempty"`
}

// PingResponse reports session readiness.
type PingResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelLoading bool   `json:"model_loading"`
	Error        string `json:"error,omitempty"`
}

// ValidateResponse carries the binary judgment for a statement.
type ValidateResponse struct {
	Valid       bool    `json:"valid"`
	Confidence  float64 `json:"confidence"`
	RawResponse string  `json:"raw_response"`
}

// CreateResponse carries generated long-form world text.
type CreateResponse struct {
	Text string `json:"text"`
}

// AdvanceResponse carries the updated state block.
type AdvanceResponse struct {
	State string `json:"state"`

	// Mode is "initial" or "continuation", after any fallback.
	Mode string `json:"mode"`

	// Degraded is set when the state markers were absent and State holds the
	// raw model output.
	Degraded bool `json:"degraded,omitempty"`
}

// ResetResponse acknowledges a conversation reset.
type ResetResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is returned for any failure; the service never fails a
// connection with a raw fault.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Advance modes reported in AdvanceResponse.
const (
	ModeInitial      = "initial"
	ModeContinuation = "continuation"
)
