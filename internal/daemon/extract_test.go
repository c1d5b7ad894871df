package daemon

import (
	"strings"
	"testing"
)

func TestExtractState_WellFormed(t *testing.T) {
	t.Parallel()
	raw := "noise before\n" + BeginMarker + "\nPlayer_Location: Cave\n" + EndMarker + "\nnoise after"
	state, ok := ExtractState(raw)
	if !ok {
		t.Fatal("ok = false for well-formed markers")
	}
	if state != "Player_Location: Cave" {
		t.Errorf("state = %q", state)
	}
}

func TestExtractState_RoundTrip(t *testing.T) {
	t.Parallel()
	// extract(wrap(x)) == trim(x) for any x without marker text.
	for _, x := range []string{
		"Player_Location: Tower",
		"  padded  ",
		"multi\nline\nstate",
		"",
	} {
		state, ok := ExtractState(WrapState(x))
		if !ok {
			t.Errorf("ExtractState(WrapState(%q)): ok = false", x)
		}
		want := strings.TrimSpace(x)
		if state != want {
			t.Errorf("ExtractState(WrapState(%q)) = %q, want %q", x, state, want)
		}
	}
}

func TestExtractState_LastBeginFirstEnd(t *testing.T) {
	t.Parallel()
	// A model echoing the template produces an earlier begin/end pair; the
	// real answer is between the LAST begin and the FIRST end after it.
	raw := BeginMarker + "\ntemplate echo\n" + EndMarker + "\n" +
		BeginMarker + "\nreal state\n" + EndMarker + "\ntrailing"
	state, ok := ExtractState(raw)
	if !ok {
		t.Fatal("ok = false")
	}
	if state != "real state" {
		t.Errorf("state = %q, want the last-begin/first-end block", state)
	}
}

func TestExtractState_MissingMarkersReturnsRaw(t *testing.T) {
	t.Parallel()
	tests := []string{
		"no markers at all",
		BeginMarker + " opened but never closed",
		"closed " + EndMarker + " before any begin",
	}
	for _, raw := range tests {
		state, ok := ExtractState(raw)
		if ok {
			t.Errorf("ExtractState(%q): ok = true, want degraded", raw)
		}
		if state != raw {
			t.Errorf("ExtractState(%q) = %q, want raw text back", raw, state)
		}
	}
}
