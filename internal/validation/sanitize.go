package validation

import "strings"

// deniedSubstrings are removed case-insensitively, in this order. Removing
// "javascript" before "script" keeps the result deterministic regardless of
// how the two overlap in the input.
var deniedSubstrings = []string{
	"onload", "onerror", "onclick", "onmouseover", "onfocus", "onblur",
	"onchange", "onsubmit", "onreset", "onselect", "onkeydown", "onkeyup",
	"onkeypress",
	"javascript",
	"script",
}

const deniedChars = `<>"';(){}[]`

// SanitizeInput strips a fixed denylist of characters and substrings from s:
// angle brackets, quotes, semicolons, parentheses, braces, brackets, and
// case-insensitive occurrences of "script", "javascript" and common inline
// event-handler attribute names.
//
// This is a denylist filter, not contextual output encoding, and it is
// weaker: encoded payloads pass through untouched. The behavior is kept for
// compatibility with the stored-data validators; any rendering layer must
// still escape output on its own.
func SanitizeInput(s string) string {
	for _, sub := range deniedSubstrings {
		s = removeFold(s, sub)
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(deniedChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// removeFold removes every case-insensitive occurrence of sub from s.
func removeFold(s, sub string) string {
	if sub == "" {
		return s
	}
	lower := strings.ToLower(s)
	lowerSub := strings.ToLower(sub)

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		j := strings.Index(lower[i:], lowerSub)
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		b.WriteString(s[i : i+j])
		i += j + len(sub)
	}
	return b.String()
}
