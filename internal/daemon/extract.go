package daemon

import "strings"

// State markers the model is instructed to wrap updated state in.
const (
	BeginMarker = "<<BEGIN_PLAYER_STATE>>"
	EndMarker   = "<<END_PLAYER_STATE>>"
)

// ExtractState returns the trimmed text between the last BeginMarker and the
// first EndMarker after it. Models sometimes echo the marker-bearing template
// before answering, so the last begin wins. When either marker is missing the
// raw text is returned with ok=false: degraded, not fatal.
func ExtractState(raw string) (state string, ok bool) {
	begin := strings.LastIndex(raw, BeginMarker)
	if begin < 0 {
		return raw, false
	}
	rest := raw[begin+len(BeginMarker):]
	end := strings.Index(rest, EndMarker)
	if end < 0 {
		return raw, false
	}
	return strings.TrimSpace(rest[:end]), true
}

// WrapState surrounds a state block with the markers, the inverse of
// ExtractState for well-formed content.
func WrapState(state string) string {
	return BeginMarker + "\n" + state + "\n" + EndMarker
}
