// Package inference provides the resident-model engine used by the jurybox
// daemon, backed by a local ollama instance.
package inference

import "context"

// Request describes one bounded generation against the resident model.
type Request struct {
	Prompt    string
	MaxTokens int // 0 = model default

	// Stop keywords halt generation as soon as one appears, case-insensitively,
	// anywhere in the accumulated output.
	Stop []string

	// MaxBytes caps the accumulated output length. 0 = no byte cap.
	MaxBytes int

	// Sampling knobs. Zero values mean "engine default".
	Temperature float64
	TopK        int
	TopP        float64
	Seed        int

	// Context carries continuation tokens from a prior Result. Empty means a
	// fresh, independent generation context.
	Context []int
}

// HaltReason records why a generation stopped.
type HaltReason string

const (
	// HaltDone means the model finished on its own (end-of-sequence).
	HaltDone HaltReason = "done"
	// HaltStop means a configured stop keyword appeared in the output.
	HaltStop HaltReason = "stop"
	// HaltCap means the byte cap was reached.
	HaltCap HaltReason = "cap"
	// HaltAborted means the stream failed mid-generation; Text holds whatever
	// was produced before the failure.
	HaltAborted HaltReason = "aborted"
)

// Result holds the output of one generation.
type Result struct {
	Text string
	Halt HaltReason

	// Context is the updated continuation-token state, present only when the
	// model finished or stopped server-side. Callers that need continuation
	// must treat an empty Context as "conversation state lost".
	Context []int

	// Tokens counts generated tokens as reported by the engine.
	Tokens int
}

// Engine is the resident model: loaded once per process, then queried many
// times. Implementations must be safe for concurrent Generate calls with
// independent contexts; callers serialize continuation-context use.
type Engine interface {
	// Load makes the model resident. It is called at most once per process;
	// failure is terminal.
	Load(ctx context.Context) error

	// Loaded reports whether Load has completed successfully.
	Loaded() bool

	// Generate runs one bounded generation. On a mid-stream failure it returns
	// the partial Result alongside the error.
	Generate(ctx context.Context, req Request) (*Result, error)
}
