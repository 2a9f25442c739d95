package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/tanadol/relay-go/pkg/classify"
	"github.com/tanadol/relay-go/pkg/posts"
	"github.com/tanadol/relay-go/pkg/relay"
)

// DefaultTimezone is where the relay audience reads timestamps.
const DefaultTimezone = "Asia/Bangkok"

const timestampLayout = "02/01 15:04"

// Formatter renders accepted posts into channel messages.
type Formatter struct {
	Username string
	Location *time.Location
}

// NewFormatter builds a Formatter for the monitored username. An
// unloadable timezone name falls back to UTC.
func NewFormatter(username, timezone string) *Formatter {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Formatter{Username: username, Location: loc}
}

// Build renders one delivery-ready message. The header names the
// interaction when there is one, the body carries the translated text,
// and the footer links back to the source with a local timestamp.
func (f *Formatter) Build(post posts.CandidatePost, translated string, inter classify.InteractionResult, truncated bool) relay.Message {
	var b strings.Builder

	if header := f.header(inter); header != "" {
		b.WriteString(header)
		b.WriteString("\n")
	}

	b.WriteString(translated)
	if truncated {
		b.WriteString("\n📖 Read more: ")
		b.WriteString(f.SourceURL(post.ID))
	}

	b.WriteString("\n\n🔗 ")
	b.WriteString(f.SourceURL(post.ID))
	b.WriteString("\n🕒 ")
	b.WriteString(post.CreatedAt.In(f.Location).Format(timestampLayout))

	return relay.Message{
		PostID:    post.ID,
		Text:      b.String(),
		MediaURLs: post.MediaURLs(),
	}
}

func (f *Formatter) header(inter classify.InteractionResult) string {
	if !inter.Self {
		return ""
	}
	switch inter.Kind {
	case classify.KindRepost:
		return fmt.Sprintf("🔁 @%s reposted @%s", f.Username, inter.TargetLabel)
	case classify.KindReply:
		return fmt.Sprintf("💬 @%s replied to @%s", f.Username, inter.TargetLabel)
	case classify.KindMentionPure, classify.KindMentionMixed:
		return fmt.Sprintf("📣 @%s mentioned %s", f.Username, inter.TargetLabel)
	default:
		return ""
	}
}

// SourceURL is the canonical link to the post.
func (f *Formatter) SourceURL(postID string) string {
	return fmt.Sprintf("https://x.com/%s/status/%s", f.Username, postID)
}

// SkipNote prefixes the raw text with the skip reason so a skipped record
// is self-describing when read back from the database.
func SkipNote(reason classify.Reason, text string) string {
	return fmt.Sprintf("[SKIPPED-%s] %s", strings.ToUpper(string(reason)), text)
}
