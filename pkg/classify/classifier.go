package classify

import (
	"regexp"
	"strings"
	"unicode"
)

// Reason explains why a post was skipped.
type Reason string

const (
	ReasonNone          Reason = "normal"
	ReasonEmptyText     Reason = "empty_text"
	ReasonBlockedPhrase Reason = "blocked_phrase"
	ReasonBlockedDomain Reason = "blocked_domain"
	ReasonBlockedMedia  Reason = "blocked_media"
	ReasonEmojiOnly     Reason = "emoji_only"
	ReasonLinkOnly      Reason = "link_only"
	ReasonTooShort      Reason = "too_short"
	ReasonErrorBlocked  Reason = "error_blocked"
	// ReasonOtherInteraction is produced by the pipeline when the
	// interaction check rejects a post; it shares the Reason namespace so
	// skip records carry one uniform tag.
	ReasonOtherInteraction Reason = "other_interaction"
	ReasonTooOld           Reason = "too_old"
)

// Result is the outcome of content classification. The error path is a
// variant (ReasonErrorBlocked), never a returned error: classification is
// total and fails closed.
type Result struct {
	Skip   bool
	Reason Reason
}

// DefaultMinContentChars is the minimum number of letter/digit characters,
// URLs excluded, a post needs to qualify for relay.
const DefaultMinContentChars = 10

// urlPattern matches the URL shapes seen in post bodies, including bare
// domains and the usual shortener hosts.
var urlPattern = regexp.MustCompile(`(?i)(https?://\S+)|(www\.\S+)|(t\.co/\S+)|(bit\.ly/\S+)|(tinyurl\.com/\S+)|(youtu\.be/\S+)|([a-zA-Z0-9.-]+\.[a-zA-Z]{2,}/?\S*)`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Config holds the tunable classification rules. The phrase and domain
// lists are configuration data; matching is case-insensitive substring.
type Config struct {
	BlockedPhrases  []string
	BlockedDomains  []string
	MinContentChars int
}

// Classifier applies the relay qualification rules to post content.
type Classifier struct {
	blockedPhrases  []string
	blockedDomains  []string
	minContentChars int
}

// New builds a Classifier. Denylist entries are lowercased once here so
// every Classify call is a plain substring scan.
func New(cfg Config) *Classifier {
	min := cfg.MinContentChars
	if min <= 0 {
		min = DefaultMinContentChars
	}
	return &Classifier{
		blockedPhrases:  lowerAll(cfg.BlockedPhrases),
		blockedDomains:  lowerAll(cfg.BlockedDomains),
		minContentChars: min,
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}

// Classify decides whether a post qualifies for relay. Rules run in fixed
// priority order, first match wins. Any internal failure resolves to a skip
// with ReasonErrorBlocked: an unfiltered post reaching delivery is the
// costlier mistake.
func (c *Classifier) Classify(text string, mediaURLs []string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Skip: true, Reason: ReasonErrorBlocked}
		}
	}()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Skip: true, Reason: ReasonEmptyText}
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range c.blockedPhrases {
		if strings.Contains(lower, phrase) {
			return Result{Skip: true, Reason: ReasonBlockedPhrase}
		}
	}
	for _, domain := range c.blockedDomains {
		if strings.Contains(lower, domain) {
			return Result{Skip: true, Reason: ReasonBlockedDomain}
		}
	}
	for _, u := range mediaURLs {
		mediaLower := strings.ToLower(u)
		for _, domain := range c.blockedDomains {
			if strings.Contains(mediaLower, domain) {
				return Result{Skip: true, Reason: ReasonBlockedMedia}
			}
		}
	}

	if isEmojiOnly(trimmed) {
		return Result{Skip: true, Reason: ReasonEmojiOnly}
	}

	hasURL := urlPattern.MatchString(trimmed)
	content := contentChars(trimmed)
	if hasURL && content < c.minContentChars {
		return Result{Skip: true, Reason: ReasonLinkOnly}
	}
	if content < c.minContentChars {
		return Result{Skip: true, Reason: ReasonTooShort}
	}

	return Result{Skip: false, Reason: ReasonNone}
}

// contentChars counts the letters and digits left after URLs are removed.
func contentChars(text string) int {
	stripped := urlPattern.ReplaceAllString(text, "")
	n := 0
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// isEmojiOnly reports whether the text consists solely of emoji and symbol
// code points once whitespace is stripped.
func isEmojiOnly(text string) bool {
	clean := whitespacePattern.ReplaceAllString(text, "")
	if clean == "" {
		return false
	}
	for _, r := range clean {
		if !isEmojiRune(r) {
			return false
		}
	}
	return true
}

// isEmojiRune covers the Unicode emoji and pictograph blocks plus the
// variation selectors and joiners that accompany them.
func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F, // emoticons
		r >= 0x1F300 && r <= 0x1F5FF, // symbols & pictographs
		r >= 0x1F680 && r <= 0x1F6FF, // transport & map
		r >= 0x1F1E0 && r <= 0x1F1FF, // regional indicators
		r >= 0x1F700 && r <= 0x1F77F, // alchemical symbols
		r >= 0x1F780 && r <= 0x1F7FF, // geometric shapes extended
		r >= 0x1F800 && r <= 0x1F8FF, // supplemental arrows-C
		r >= 0x1F900 && r <= 0x1F9FF, // supplemental symbols
		r >= 0x1FA00 && r <= 0x1FA6F, // chess symbols
		r >= 0x1FA70 && r <= 0x1FAFF, // symbols extended-A
		r >= 0x2600 && r <= 0x26FF, // miscellaneous symbols
		r >= 0x2700 && r <= 0x27BF, // dingbats
		r >= 0xFE00 && r <= 0xFE0F, // variation selectors
		r == 0x1F004, r == 0x1F0CF,
		r == 0x200D: // zero-width joiner
		return true
	}
	return false
}
