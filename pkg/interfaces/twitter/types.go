package twitter

import (
	"sort"
	"time"

	"github.com/tanadol/relay-go/pkg/posts"
)

// Tweet carries the v2 API fields this system consumes.
type Tweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`

	AuthorID       string `json:"author_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`

	Attachments struct {
		MediaKeys []string `json:"media_keys,omitempty"`
	} `json:"attachments,omitempty"`

	InReplyToUserID string `json:"in_reply_to_user_id,omitempty"`

	NoteTweet struct {
		Text string `json:"text,omitempty"`
	} `json:"note_tweet,omitempty"`

	ReferencedTweets []struct {
		Type string `json:"type"` // "retweeted", "quoted" or "replied_to"
		ID   string `json:"id"`
	} `json:"referenced_tweets,omitempty"`
}

// User is the v2 user object subset used to resolve interaction targets.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username"`
}

// Media is the v2 media object subset used to build media references.
type Media struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url,omitempty"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
}

// TweetIncludes contains the expanded objects in a response.
type TweetIncludes struct {
	Users  []User  `json:"users,omitempty"`
	Tweets []Tweet `json:"tweets,omitempty"`
	Media  []Media `json:"media,omitempty"`
}

// Meta carries result-set metadata.
type Meta struct {
	ResultCount int    `json:"result_count,omitempty"`
	NewestID    string `json:"newest_id,omitempty"`
	OldestID    string `json:"oldest_id,omitempty"`
	NextToken   string `json:"next_token,omitempty"`
}

// TweetResponse is the API response envelope for list endpoints.
type TweetResponse struct {
	Data     []Tweet        `json:"data"`
	Includes *TweetIncludes `json:"includes,omitempty"`
	Errors   []ErrorDetail  `json:"errors,omitempty"`
	Meta     *Meta          `json:"meta,omitempty"`
}

// singleTweetResponse is the envelope for single-tweet lookups.
type singleTweetResponse struct {
	Data     Tweet          `json:"data"`
	Includes *TweetIncludes `json:"includes,omitempty"`
	Errors   []ErrorDetail  `json:"errors,omitempty"`
}

// userResponse is the envelope for user lookups.
type userResponse struct {
	Data   User          `json:"data"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail is one error entry in a response body.
type ErrorDetail struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Title   string `json:"title,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// toCandidates maps a response onto the explicit CandidatePost model:
// media keys are resolved against includes, referenced-tweet authors and
// reply targets are resolved to usernames, and posts come back sorted in
// (creation time, numeric ID) order.
func toCandidates(resp *TweetResponse) []posts.CandidatePost {
	if resp == nil || len(resp.Data) == 0 {
		return nil
	}

	mediaByKey := make(map[string]Media)
	usersByID := make(map[string]User)
	tweetsByID := make(map[string]Tweet)
	if resp.Includes != nil {
		for _, m := range resp.Includes.Media {
			mediaByKey[m.MediaKey] = m
		}
		for _, u := range resp.Includes.Users {
			usersByID[u.ID] = u
		}
		for _, t := range resp.Includes.Tweets {
			tweetsByID[t.ID] = t
		}
	}

	out := make([]posts.CandidatePost, 0, len(resp.Data))
	for _, t := range resp.Data {
		out = append(out, toCandidate(t, mediaByKey, usersByID, tweetsByID))
	}
	sort.Slice(out, func(i, j int) bool { return posts.Less(out[i], out[j]) })
	return out
}

func toCandidate(t Tweet, mediaByKey map[string]Media, usersByID map[string]User, tweetsByID map[string]Tweet) posts.CandidatePost {
	p := posts.CandidatePost{
		ID:             t.ID,
		AuthorID:       t.AuthorID,
		Text:           t.Text,
		FullText:       t.NoteTweet.Text,
		ConversationID: t.ConversationID,
	}
	if ts, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
		p.CreatedAt = ts.UTC()
	}

	for _, key := range t.Attachments.MediaKeys {
		m, ok := mediaByKey[key]
		if !ok {
			continue
		}
		switch m.Type {
		case "photo":
			if m.URL != "" {
				p.Media = append(p.Media, posts.MediaRef{Type: posts.MediaPhoto, URL: m.URL})
			}
		case "video", "animated_gif":
			// Videos expose only a preview image through this endpoint.
			if m.PreviewImageURL != "" {
				p.Media = append(p.Media, posts.MediaRef{Type: posts.MediaVideo, URL: m.PreviewImageURL})
			}
		}
	}

	for _, ref := range t.ReferencedTweets {
		var refType posts.ReferenceType
		switch ref.Type {
		case "retweeted":
			refType = posts.ReferenceRepost
		case "replied_to":
			refType = posts.ReferenceReply
		default:
			continue
		}

		var author string
		if refTweet, ok := tweetsByID[ref.ID]; ok {
			if u, ok := usersByID[refTweet.AuthorID]; ok {
				author = u.Username
			}
		}
		p.References = append(p.References, posts.Reference{
			Type:         refType,
			ID:           ref.ID,
			TargetAuthor: author,
		})
	}

	// A reply target can arrive without a referenced_tweets entry.
	if t.InReplyToUserID != "" && !hasReference(p.References, posts.ReferenceReply) {
		var author string
		if u, ok := usersByID[t.InReplyToUserID]; ok {
			author = u.Username
		}
		p.References = append(p.References, posts.Reference{
			Type:         posts.ReferenceReply,
			TargetAuthor: author,
		})
	}

	return p
}

func hasReference(refs []posts.Reference, t posts.ReferenceType) bool {
	for _, r := range refs {
		if r.Type == t {
			return true
		}
	}
	return false
}
