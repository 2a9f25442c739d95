package classify_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tanadol/relay-go/pkg/classify"
)

var _ = Describe("Classifier", func() {
	var classifier *classify.Classifier

	BeforeEach(func() {
		classifier = classify.New(classify.Config{
			BlockedPhrases:  []string{"giveaway", "claim your"},
			BlockedDomains:  []string{"spam.example.com"},
			MinContentChars: 10,
		})
	})

	It("skips empty text", func() {
		res := classifier.Classify("", nil)
		Expect(res.Skip).To(BeTrue())
		Expect(res.Reason).To(Equal(classify.ReasonEmptyText))
	})

	It("skips whitespace-only text", func() {
		res := classifier.Classify("  \n\t ", nil)
		Expect(res.Skip).To(BeTrue())
		Expect(res.Reason).To(Equal(classify.ReasonEmptyText))
	})

	It("skips text containing a blocked phrase regardless of case", func() {
		res := classifier.Classify("Huge GIVEAWAY starting now, followers only", nil)
		Expect(res.Skip).To(BeTrue())
		Expect(res.Reason).To(Equal(classify.ReasonBlockedPhrase))
	})

	It("skips text containing a blocked domain", func() {
		res := classifier.Classify("breaking numbers over at spam.example.com right now", nil)
		Expect(res.Skip).To(BeTrue())
		Expect(res.Reason).To(Equal(classify.ReasonBlockedDomain))
	})

	It("skips posts whose media points at a blocked domain", func() {
		res := classifier.Classify(
			"perfectly reasonable commentary about the market today",
			[]string{"https://spam.example.com/img.png"},
		)
		Expect(res.Skip).To(BeTrue())
		Expect(res.Reason).To(Equal(classify.ReasonBlockedMedia))
	})

	It("skips emoji-only posts", func() {
		res := classifier.Classify("🚀🚀🚀", nil)
		Expect(res.Skip).To(BeTrue())
		Expect(res.Reason).To(Equal(classify.ReasonEmojiOnly))
	})

	It("skips emoji-only posts split across whitespace", func() {
		res := classifier.Classify("🔥 🔥\n🔥", nil)
		Expect(res.Skip).To(BeTrue())
		Expect(res.Reason).To(Equal(classify.ReasonEmojiOnly))
	})

	It("skips link-only posts", func() {
		res := classifier.Classify("https://t.co/abc123", nil)
		Expect(res.Skip).To(BeTrue())
		Expect(res.Reason).To(Equal(classify.ReasonLinkOnly))
	})

	It("skips posts that are a link plus negligible text", func() {
		res := classifier.Classify("Check out https://t.co/abc123", nil)
		Expect(res.Skip).To(BeTrue())
		Expect(res.Reason).To(Equal(classify.ReasonLinkOnly))
	})

	It("skips posts with too few content characters", func() {
		res := classifier.Classify("gm", nil)
		Expect(res.Skip).To(BeTrue())
		Expect(res.Reason).To(Equal(classify.ReasonTooShort))
	})

	It("accepts a normal post", func() {
		res := classifier.Classify("On-chain volume reached a new monthly high across exchanges", nil)
		Expect(res.Skip).To(BeFalse())
		Expect(res.Reason).To(Equal(classify.ReasonNone))
	})

	It("accepts a substantial post that also carries a link", func() {
		res := classifier.Classify(
			"Exchange reserves just dropped to a five year low, full breakdown below https://t.co/abc123",
			nil,
		)
		Expect(res.Skip).To(BeFalse())
	})

	It("is deterministic for repeated input", func() {
		first := classifier.Classify("🚀🚀🚀", nil)
		for i := 0; i < 10; i++ {
			Expect(classifier.Classify("🚀🚀🚀", nil)).To(Equal(first))
		}
	})

	It("applies blocked phrases before the emoji and link rules", func() {
		res := classifier.Classify("giveaway 🚀", nil)
		Expect(res.Reason).To(Equal(classify.ReasonBlockedPhrase))
	})

	Context("with default thresholds", func() {
		It("falls back to the default minimum content length", func() {
			c := classify.New(classify.Config{})
			Expect(c.Classify("gm", nil).Reason).To(Equal(classify.ReasonTooShort))
		})
	})
})
