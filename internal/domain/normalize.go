package domain

import (
	"strings"
	"unicode"
)

// NormalizeText prepares a catalog name or a user query for matching:
//   - converts to lowercase
//   - drops apostrophes and trademark signs ("Assassin's" -> "assassins")
//   - turns every other non-letter, non-digit rune into a space
//   - compresses runs of spaces and trims the result
//
// Letters with diacritics are preserved.
func NormalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r == '\'' || r == '’' || r == '™' || r == '®' || r == '©':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		default:
			pendingSpace = true
		}
	}
	return b.String()
}

// Tokens splits normalized text into its space-separated words.
// Duplicate tokens are kept once, in first-seen order.
func Tokens(normalized string) []string {
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
