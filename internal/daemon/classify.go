package daemon

import (
	"strings"
	"unicode"
)

// Classify maps raw validator output to a (decision, confidence) pair.
//
// Precedence, highest confidence first: exact yes/no (and y/n) at 1.0, exact
// true/false at 0.95, a yes without a no at 0.8, a true without a false at
// 0.75, a valid without an invalid at 0.7. Anything ambiguous is invalid at
// 0.3, the safe default. Matching is case-insensitive with whitespace
// stripped, so it is independent of model formatting quirks.
func Classify(raw string) (valid bool, confidence float64) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, raw)

	containsYes := strings.Contains(cleaned, "yes")
	containsNo := strings.Contains(cleaned, "no")
	containsTrue := strings.Contains(cleaned, "true")
	containsFalse := strings.Contains(cleaned, "false")
	containsInvalid := strings.Contains(cleaned, "invalid")
	// "invalid" contains "valid"; only a bare "valid" counts as affirmative.
	containsValid := strings.Contains(strings.ReplaceAll(cleaned, "invalid", ""), "valid")

	switch {
	case cleaned == "yes" || cleaned == "y":
		return true, 1.0
	case cleaned == "no" || cleaned == "n":
		return false, 1.0
	case cleaned == "true":
		return true, 0.95
	case cleaned == "false":
		return false, 0.95
	case containsYes && !containsNo:
		return true, 0.8
	case containsNo && !containsYes:
		return false, 0.8
	case containsTrue && !containsFalse:
		return true, 0.75
	case containsFalse && !containsTrue:
		return false, 0.75
	case containsValid && !containsInvalid:
		return true, 0.7
	case containsInvalid && !containsValid:
		return false, 0.7
	default:
		return false, 0.3
	}
}
