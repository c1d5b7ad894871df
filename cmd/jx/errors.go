package main

import (
	"fmt"
)

// HintedError wraps an error with a user-facing recovery hint.
type HintedError struct {
	Err  error
	Hint string
}

func (h *HintedError) Error() string { return h.Err.Error() }
func (h *HintedError) Unwrap() error { return h.Err }

// hintDaemon wraps a daemon-call error with the standard recovery hint.
func hintDaemon(err error) error {
	if err == nil {
		return nil
	}
	return &HintedError{
		Err:  err,
		Hint: "Run 'jx start' to launch the inference daemon, or 'jx status' to check it.",
	}
}

// hintNotReady explains a daemon that answered but cannot judge yet.
func hintNotReady(status string) error {
	return &HintedError{
		Err:  fmt.Errorf("daemon is %s, not ready", status),
		Hint: "The model is still loading. Try 'jx status --wait'.",
	}
}
