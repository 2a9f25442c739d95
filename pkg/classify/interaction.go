package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tanadol/relay-go/pkg/posts"
)

// Kind labels how a post interacts with other accounts.
type Kind string

const (
	KindMentionPure  Kind = "mention_pure"
	KindMentionMixed Kind = "mention_mixed"
	KindRepost       Kind = "repost"
	KindReply        Kind = "reply"
	KindNone         Kind = "none"
)

// InteractionResult describes whether a post is the tracked account
// interacting with itself, with a third party, or not interacting at all.
type InteractionResult struct {
	Self        bool
	Kind        Kind
	TargetLabel string
}

// Accept reports whether a post with this interaction shape qualifies for
// relay: every self-interaction does, a plain post with no interaction
// does, and anything aimed only at a third party (or too ambiguous to
// resolve) does not.
func (r InteractionResult) Accept() bool {
	return r.Self || r.Kind == KindNone
}

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// Interaction classifies a post's relationship to the target account.
// Priority: a self-mention anywhere in the text wins over repost and reply
// shapes, then repost references (including the legacy "RT @" text form),
// then reply references, else no interaction. References with an
// unresolved author are treated as third-party for safety.
func Interaction(post posts.CandidatePost, target string) InteractionResult {
	targetLower := strings.ToLower(target)

	var selfMention bool
	var others []string
	for _, m := range mentionPattern.FindAllStringSubmatch(strings.ToLower(post.Text), -1) {
		if m[1] == targetLower {
			selfMention = true
		} else {
			others = append(others, m[1])
		}
	}

	if selfMention {
		if len(others) > 0 {
			return InteractionResult{
				Self:        true,
				Kind:        KindMentionMixed,
				TargetLabel: fmt.Sprintf("%s+%dothers", target, len(others)),
			}
		}
		return InteractionResult{Self: true, Kind: KindMentionPure, TargetLabel: target}
	}

	for _, ref := range post.References {
		if ref.Type != posts.ReferenceRepost {
			continue
		}
		if strings.EqualFold(ref.TargetAuthor, target) {
			return InteractionResult{Self: true, Kind: KindRepost, TargetLabel: ref.TargetAuthor}
		}
		return InteractionResult{Self: false, Kind: KindRepost, TargetLabel: ref.TargetAuthor}
	}

	if author, ok := legacyRepostAuthor(post.Text); ok {
		if strings.EqualFold(author, target) {
			return InteractionResult{Self: true, Kind: KindRepost, TargetLabel: author}
		}
		return InteractionResult{Self: false, Kind: KindRepost, TargetLabel: author}
	}

	for _, ref := range post.References {
		if ref.Type != posts.ReferenceReply {
			continue
		}
		if strings.EqualFold(ref.TargetAuthor, target) {
			return InteractionResult{Self: true, Kind: KindReply, TargetLabel: ref.TargetAuthor}
		}
		return InteractionResult{Self: false, Kind: KindReply, TargetLabel: ref.TargetAuthor}
	}

	// A post that opens with a mention of someone else is an interaction
	// with that account even without a reply reference.
	if strings.HasPrefix(strings.TrimSpace(post.Text), "@") && len(others) > 0 {
		return InteractionResult{Self: false, Kind: KindMentionPure, TargetLabel: others[0]}
	}

	return InteractionResult{Self: false, Kind: KindNone}
}

// legacyRepostAuthor extracts the author from the pre-API "RT @user:" text
// form still seen on some reposts.
func legacyRepostAuthor(text string) (string, bool) {
	if !strings.HasPrefix(text, "RT @") {
		return "", false
	}
	rest := strings.TrimPrefix(text, "RT @")
	end := strings.IndexAny(rest, ": ")
	if end == -1 {
		end = len(rest)
	}
	author := rest[:end]
	if author == "" {
		return "", false
	}
	return author, true
}
