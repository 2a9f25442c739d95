package posts

import (
	"strconv"
	"time"
)

// MediaType identifies the kind of media attached to a post.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

// MediaRef points at one media object attached to a post.
type MediaRef struct {
	Type MediaType
	URL  string
}

// ReferenceType identifies how a post relates to another post.
type ReferenceType string

const (
	ReferenceReply  ReferenceType = "reply"
	ReferenceRepost ReferenceType = "repost"
)

// Reference describes a relation from a post to another post, with the
// referenced post's author resolved at fetch time so downstream checks
// never need a second API call.
type Reference struct {
	Type         ReferenceType
	ID           string
	TargetAuthor string
}

// CandidatePost is an immutable snapshot of one post as fetched from the
// source platform. Optional fields are explicit: an empty FullText means no
// expanded body was attached, an empty References slice means the post
// stands alone.
type CandidatePost struct {
	ID             string
	AuthorID       string
	Text           string
	FullText       string
	CreatedAt      time.Time
	ConversationID string
	Media          []MediaRef
	References     []Reference
}

// Body returns the richest text known for the post: the pre-attached full
// text when the platform supplied one, the visible text otherwise.
func (p CandidatePost) Body() string {
	if p.FullText != "" {
		return p.FullText
	}
	return p.Text
}

// MediaURLs returns the URLs of all attached media, in attachment order.
func (p CandidatePost) MediaURLs() []string {
	if len(p.Media) == 0 {
		return nil
	}
	urls := make([]string, 0, len(p.Media))
	for _, m := range p.Media {
		urls = append(urls, m.URL)
	}
	return urls
}

// NumericID parses the post ID as an unsigned integer. Platform IDs are
// numeric strings; a non-numeric ID sorts as zero.
func (p CandidatePost) NumericID() uint64 {
	n, err := strconv.ParseUint(p.ID, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Less orders posts by (creation time, numeric ID), the relay order
// guaranteed within one fetch cycle.
func Less(a, b CandidatePost) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.NumericID() < b.NumericID()
}
