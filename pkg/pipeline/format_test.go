package pipeline_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tanadol/relay-go/pkg/classify"
	"github.com/tanadol/relay-go/pkg/pipeline"
	"github.com/tanadol/relay-go/pkg/posts"
)

var _ = Describe("Formatter", func() {
	var formatter *pipeline.Formatter

	post := posts.CandidatePost{
		ID:        "123",
		Text:      "original",
		CreatedAt: time.Date(2024, 6, 1, 5, 30, 0, 0, time.UTC),
	}

	BeforeEach(func() {
		formatter = pipeline.NewFormatter("glasswire", "Asia/Bangkok")
	})

	It("renders the body with a source link and local timestamp", func() {
		msg := formatter.Build(post, "translated body", classify.InteractionResult{}, false)

		Expect(msg.PostID).To(Equal("123"))
		Expect(msg.Text).To(ContainSubstring("translated body"))
		Expect(msg.Text).To(ContainSubstring("https://x.com/glasswire/status/123"))
		// 05:30 UTC is 12:30 in Bangkok.
		Expect(msg.Text).To(ContainSubstring("01/06 12:30"))
	})

	It("labels self reposts", func() {
		inter := classify.InteractionResult{Self: true, Kind: classify.KindRepost, TargetLabel: "partnerco"}
		msg := formatter.Build(post, "translated body", inter, false)
		Expect(msg.Text).To(HavePrefix("🔁 @glasswire reposted @partnerco"))
	})

	It("labels self replies", func() {
		inter := classify.InteractionResult{Self: true, Kind: classify.KindReply, TargetLabel: "glasswire"}
		msg := formatter.Build(post, "translated body", inter, false)
		Expect(msg.Text).To(HavePrefix("💬 @glasswire replied to @glasswire"))
	})

	It("points truncated bodies at the full post", func() {
		msg := formatter.Build(post, "cut off here", classify.InteractionResult{}, true)
		Expect(msg.Text).To(ContainSubstring("cut off here\n📖 Read more: https://x.com/glasswire/status/123"))
	})

	It("falls back to UTC for an unknown timezone", func() {
		formatter = pipeline.NewFormatter("glasswire", "Not/AZone")
		msg := formatter.Build(post, "body", classify.InteractionResult{}, false)
		Expect(msg.Text).To(ContainSubstring("01/06 05:30"))
	})
})

var _ = Describe("SkipNote", func() {
	It("tags the raw text with the uppercased reason", func() {
		Expect(pipeline.SkipNote(classify.ReasonEmojiOnly, "🚀🚀🚀")).To(Equal("[SKIPPED-EMOJI_ONLY] 🚀🚀🚀"))
	})
})
