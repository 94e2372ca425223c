// Package fills turns free-form operator input into fill numbers.
package fills

import (
	"strconv"
	"strings"
)

// Parse extracts fill numbers from loosely formatted text. Lines may mix
// comma and whitespace separation, carry trailing data columns, and
// contain '#' comments (whole-line or inline). Only the first token of
// each comma-separated segment is considered; tokens that do not parse as
// integers are dropped silently. Order and duplicates are preserved.
// Parse never fails — the worst case is an empty result.
func Parse(text string) []int {
	var fills []int

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		// Inline comment: keep everything before the first '#'.
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}

		for _, segment := range strings.Split(line, ",") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			// A segment like "11316 1032" carries extra columns from
			// pasted tables; only the first token is the fill number.
			tokens := strings.Fields(segment)
			if len(tokens) == 0 {
				continue
			}
			n, err := strconv.Atoi(tokens[0])
			if err != nil {
				continue
			}
			fills = append(fills, n)
		}
	}

	return fills
}
