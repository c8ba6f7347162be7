package workout

import "strings"

// TargetReps returns the rep target for a zero-based set index. Reps may list
// per-set targets separated by ',', '/' or 'x'; indexes past the list fall back
// to the first token.
func TargetReps(reps string, setIdx int) string {
	tokens := splitReps(reps)
	if setIdx >= 0 && setIdx < len(tokens) && tokens[setIdx] != "" {
		return strings.TrimSpace(tokens[setIdx])
	}
	if tokens[0] != "" {
		return strings.TrimSpace(tokens[0])
	}
	return strings.TrimSpace(reps)
}

// splitReps splits on every delimiter keeping empty tokens so positions line
// up with set indexes. It always returns at least one token.
func splitReps(reps string) []string {
	tokens := []string{}
	start := 0
	for i, r := range reps {
		if r == ',' || r == '/' || r == 'x' {
			tokens = append(tokens, reps[start:i])
			start = i + 1
		}
	}
	return append(tokens, reps[start:])
}
