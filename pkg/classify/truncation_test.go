package classify_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tanadol/relay-go/pkg/classify"
)

var _ = Describe("IsTruncated", func() {
	It("detects an ellipsis suffix", func() {
		Expect(classify.IsTruncated("the report shows…")).To(BeTrue())
		Expect(classify.IsTruncated("the report shows...")).To(BeTrue())
		Expect(classify.IsTruncated("the report shows…\n")).To(BeTrue())
	})

	It("detects read-more style markers", func() {
		Expect(classify.IsTruncated("first part of the thread Show more")).To(BeTrue())
		Expect(classify.IsTruncated("big update today. Read more")).To(BeTrue())
	})

	It("flags near-limit text without terminal punctuation", func() {
		long := strings.Repeat("a", 276)
		Expect(classify.IsTruncated(long)).To(BeTrue())
	})

	It("does not flag near-limit text that ends cleanly", func() {
		long := strings.Repeat("a", 275) + "."
		Expect(classify.IsTruncated(long)).To(BeFalse())
	})

	It("does not flag ordinary complete text", func() {
		Expect(classify.IsTruncated("short and complete.")).To(BeFalse())
		Expect(classify.IsTruncated("no punctuation but short")).To(BeFalse())
	})
})
