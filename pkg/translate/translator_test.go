package translate_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"

	"github.com/tanadol/relay-go/pkg/translate"
)

type stubModel struct {
	response string
	err      error
	calls    int
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func newTranslator(model llms.Model) *translate.Translator {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	config := &translate.Config{
		APIKey: "test-key",
		Logger: logger,
	}
	translator, err := translate.NewWithModel(config, model)
	Expect(err).NotTo(HaveOccurred())
	return translator
}

var _ = Describe("Translator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("returns the model output", func() {
		model := &stubModel{response: "สวัสดีชาวโลก"}
		translator := newTranslator(model)

		Expect(translator.Translate(ctx, "hello world")).To(Equal("สวัสดีชาวโลก"))
	})

	It("returns empty output for empty input without calling the model", func() {
		model := &stubModel{response: "unused"}
		translator := newTranslator(model)

		Expect(translator.Translate(ctx, "")).To(BeEmpty())
		Expect(model.calls).To(BeZero())
	})

	It("falls back to the original text when the model fails", func() {
		model := &stubModel{err: fmt.Errorf("upstream unavailable")}
		translator := newTranslator(model)

		Expect(translator.Translate(ctx, "network update")).To(Equal("network update"))
	})

	It("falls back when the model returns an empty choice", func() {
		model := &stubModel{response: ""}
		translator := newTranslator(model)

		Expect(translator.Translate(ctx, "network update")).To(Equal("network update"))
	})

	It("caches translations so repeats do not call the model again", func() {
		model := &stubModel{response: "แปลแล้ว"}
		translator := newTranslator(model)

		Expect(translator.Translate(ctx, "same text")).To(Equal("แปลแล้ว"))
		Expect(translator.Translate(ctx, "same text")).To(Equal("แปลแล้ว"))
		Expect(model.calls).To(Equal(1))
	})

	It("caches the fallback so failing posts are not retried per cycle", func() {
		model := &stubModel{err: fmt.Errorf("rate limited")}
		translator := newTranslator(model)

		Expect(translator.Translate(ctx, "stuck post")).To(Equal("stuck post"))
		Expect(translator.Translate(ctx, "stuck post")).To(Equal("stuck post"))
		Expect(model.calls).To(Equal(1))
	})

	It("reports and trims the cache", func() {
		model := &stubModel{response: "ok"}
		translator := newTranslator(model)

		translator.Translate(ctx, "one")
		translator.Translate(ctx, "two")
		Expect(translator.CacheSize()).To(Equal(2))

		translator.TrimCache()
		Expect(translator.CacheSize()).To(Equal(2))
	})
})
