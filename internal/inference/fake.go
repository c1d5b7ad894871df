package inference

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory Engine test double. Responses are served in script
// order; when the script is exhausted the Default response is returned.
// Stop-keyword and byte-cap bounding are applied to scripted text the same
// way the real engine applies them to streamed text.
type Fake struct {
	mu     sync.Mutex
	script []FakeResponse

	// Default is returned when the script is exhausted.
	Default FakeResponse

	// LoadErr makes Load fail, modelling a terminal load failure.
	LoadErr error

	// GenerateErr fails every Generate call after returning any partial text
	// configured on the matched response.
	GenerateErr error

	// Calls records every Generate request in order.
	Calls []Request

	loaded bool
}

// FakeResponse is one scripted generation outcome.
type FakeResponse struct {
	Text    string
	Context []int
	Err     error
}

// NewFake creates a Fake whose Default response is the given text.
func NewFake(text string) *Fake {
	return &Fake{Default: FakeResponse{Text: text}}
}

// Script appends scripted responses, served before Default.
func (f *Fake) Script(responses ...FakeResponse) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, responses...)
	return f
}

// Load marks the fake loaded unless LoadErr is set.
func (f *Fake) Load(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoadErr != nil {
		return f.LoadErr
	}
	f.loaded = true
	return nil
}

// Loaded reports whether Load has succeeded.
func (f *Fake) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

// Generate serves the next scripted response with the request's bounds
// applied.
func (f *Fake) Generate(_ context.Context, req Request) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loaded {
		return nil, fmt.Errorf("model not loaded")
	}

	f.Calls = append(f.Calls, req)

	resp := f.Default
	if len(f.script) > 0 {
		resp = f.script[0]
		f.script = f.script[1:]
	}
	if resp.Err != nil {
		return &Result{Text: resp.Text, Halt: HaltAborted}, resp.Err
	}
	if f.GenerateErr != nil {
		return &Result{Text: resp.Text, Halt: HaltAborted}, f.GenerateErr
	}

	result := &Result{Text: resp.Text, Context: resp.Context, Halt: HaltDone, Tokens: len(resp.Text)}

	// Apply the same bounds the streaming engine enforces, one rune at a time
	// so stop keywords trigger at their first appearance.
	var acc []rune
	for _, r := range resp.Text {
		acc = append(acc, r)
		if matchStop(string(acc), req.Stop) {
			result.Text = string(acc)
			result.Halt = HaltStop
			result.Context = nil
			return result, nil
		}
		if req.MaxBytes > 0 && len(string(acc)) >= req.MaxBytes {
			result.Text = truncateBytes(string(acc), req.MaxBytes)
			result.Halt = HaltCap
			result.Context = nil
			return result, nil
		}
	}
	return result, nil
}
