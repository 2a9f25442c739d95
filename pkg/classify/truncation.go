package classify

import (
	"strings"
	"unicode/utf8"
)

// nearLimitRunes is just under the platform's 280-character hard limit;
// posts this long with no closing punctuation usually continue in a note.
const nearLimitRunes = 275

var truncationMarkers = []string{
	"Show this thread",
	"Show more",
	"Read more",
}

// IsTruncated reports whether the visible text looks like a prefix of a
// longer body and an extended-content fetch is worth attempting.
func IsTruncated(text string) bool {
	trimmed := strings.TrimRight(text, "\n ")
	if strings.HasSuffix(trimmed, "…") || strings.HasSuffix(trimmed, "...") {
		return true
	}
	for _, marker := range truncationMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	if utf8.RuneCountInString(trimmed) >= nearLimitRunes {
		last, _ := utf8.DecodeLastRuneInString(trimmed)
		switch last {
		case '.', '!', '?', ')', '"', '\'':
			return false
		}
		return true
	}
	return false
}
