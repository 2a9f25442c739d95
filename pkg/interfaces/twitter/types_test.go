package twitter

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tanadol/relay-go/pkg/posts"
)

var _ = Describe("toCandidates", func() {
	It("returns nothing for an empty response", func() {
		Expect(toCandidates(nil)).To(BeEmpty())
		Expect(toCandidates(&TweetResponse{})).To(BeEmpty())
	})

	It("maps API fields onto the candidate model", func() {
		raw := `{
			"data": [{
				"id": "100",
				"text": "visible text",
				"author_id": "u1",
				"conversation_id": "c1",
				"created_at": "2024-05-01T10:00:00.000Z",
				"note_tweet": {"text": "the much longer full body"},
				"attachments": {"media_keys": ["m1", "m2"]},
				"referenced_tweets": [{"type": "retweeted", "id": "90"}]
			}],
			"includes": {
				"media": [
					{"media_key": "m1", "type": "photo", "url": "https://img.example/a.jpg"},
					{"media_key": "m2", "type": "video", "preview_image_url": "https://img.example/b.jpg"}
				],
				"tweets": [{"id": "90", "text": "original", "author_id": "u2"}],
				"users": [{"id": "u2", "username": "someoneElse"}]
			}
		}`

		var resp TweetResponse
		Expect(json.Unmarshal([]byte(raw), &resp)).To(Succeed())

		candidates := toCandidates(&resp)
		Expect(candidates).To(HaveLen(1))

		p := candidates[0]
		Expect(p.ID).To(Equal("100"))
		Expect(p.Text).To(Equal("visible text"))
		Expect(p.FullText).To(Equal("the much longer full body"))
		Expect(p.ConversationID).To(Equal("c1"))
		Expect(p.CreatedAt.IsZero()).To(BeFalse())
		Expect(p.Media).To(ConsistOf(
			posts.MediaRef{Type: posts.MediaPhoto, URL: "https://img.example/a.jpg"},
			posts.MediaRef{Type: posts.MediaVideo, URL: "https://img.example/b.jpg"},
		))
		Expect(p.References).To(HaveLen(1))
		Expect(p.References[0].Type).To(Equal(posts.ReferenceRepost))
		Expect(p.References[0].TargetAuthor).To(Equal("someoneElse"))
	})

	It("synthesizes a reply reference from in_reply_to_user_id", func() {
		resp := &TweetResponse{
			Data: []Tweet{{ID: "101", Text: "reply text", InReplyToUserID: "u3"}},
			Includes: &TweetIncludes{
				Users: []User{{ID: "u3", Username: "glasswire"}},
			},
		}

		candidates := toCandidates(resp)
		Expect(candidates[0].References).To(HaveLen(1))
		Expect(candidates[0].References[0].Type).To(Equal(posts.ReferenceReply))
		Expect(candidates[0].References[0].TargetAuthor).To(Equal("glasswire"))
	})

	It("sorts posts by creation time then numeric ID", func() {
		resp := &TweetResponse{
			Data: []Tweet{
				{ID: "300", Text: "c", CreatedAt: "2024-05-01T10:02:00Z"},
				{ID: "100", Text: "a", CreatedAt: "2024-05-01T10:00:00Z"},
				{ID: "200", Text: "b", CreatedAt: "2024-05-01T10:00:00Z"},
			},
		}

		candidates := toCandidates(resp)
		Expect([]string{candidates[0].ID, candidates[1].ID, candidates[2].ID}).
			To(Equal([]string{"100", "200", "300"}))
	})
})
