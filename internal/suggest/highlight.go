package suggest

import (
	"strings"
)

// highlightDifferences wraps the characters of correction that differ from
// the wrong username in strong markup, aligning for a single insertion as it
// walks. Two deletions cannot be highlighted, so the correction is returned
// bare in that case.
func highlightDifferences(username, correction string) string {
	if len(username) == len(correction)+2 {
		return correction
	}

	parts := make([]string, len(correction))
	for i := range parts {
		parts[i] = string(correction[i])
	}

	u := username
	for i := 0; i < len(correction); i++ {
		var uc byte
		if i < len(u) {
			uc = u[i]
		}
		if correction[i] == uc {
			continue
		}
		if len(correction) > len(u) {
			// The correction inserted a character here: duplicate
			// the current one to realign the remainder.
			u = substr(u, 0, i+1) + substr(u, i, len(u))
		}
		if len(correction) >= len(u) {
			parts[i] = "<strong>" + string(correction[i]) + "</strong>"
		}
	}
	return strings.Join(parts, "")
}

func substr(s string, from, to int) string {
	from = min(max(from, 0), len(s))
	to = min(max(to, from), len(s))
	return s[from:to]
}
