package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

type fakeSession struct {
	complexCalls []*discordgo.MessageSend
	plainCalls   []string
	complexErr   error
	plainErr     error
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.complexCalls = append(f.complexCalls, data)
	if f.complexErr != nil {
		return nil, f.complexErr
	}
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.plainCalls = append(f.plainCalls, content)
	if f.plainErr != nil {
		return nil, f.plainErr
	}
	return &discordgo.Message{}, nil
}

func newTestSink(session channelSender) *Sink {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	config := &Config{
		BotToken:     "test-token",
		ChannelID:    "channel-1",
		SendInterval: time.Millisecond,
		Logger:       logger,
	}
	Expect(config.Validate()).To(Succeed())
	return newWithSession(config, session)
}

var _ = Describe("Sink", func() {
	var (
		session *fakeSession
		sink    *Sink
		ctx     context.Context
	)

	BeforeEach(func() {
		session = &fakeSession{}
		sink = newTestSink(session)
		ctx = context.Background()
	})

	It("delivers a plain text message", func() {
		err := sink.Send(ctx, Message{PostID: "1", Text: "hello channel"})
		Expect(err).NotTo(HaveOccurred())
		Expect(session.plainCalls).To(ConsistOf("hello channel"))
	})

	It("suppresses a second send of identical content", func() {
		msg := Message{PostID: "1", Text: "same content"}
		Expect(sink.Send(ctx, msg)).To(Succeed())

		msg.PostID = "2"
		Expect(sink.Send(ctx, msg)).To(Succeed())
		Expect(session.plainCalls).To(HaveLen(1))
	})

	It("does not mark content delivered when the send fails", func() {
		session.plainErr = fmt.Errorf("channel gone")
		msg := Message{PostID: "1", Text: "retry me"}
		Expect(sink.Send(ctx, msg)).To(HaveOccurred())

		session.plainErr = nil
		Expect(sink.Send(ctx, msg)).To(Succeed())
		Expect(session.plainCalls).To(HaveLen(2))
	})

	It("truncates oversized messages to the channel limit", func() {
		err := sink.Send(ctx, Message{PostID: "1", Text: strings.Repeat("a", 3000)})
		Expect(err).NotTo(HaveOccurred())
		Expect(session.plainCalls).To(HaveLen(1))
		Expect([]rune(session.plainCalls[0])).To(HaveLen(MaxMessageChars))
		Expect(session.plainCalls[0]).To(HaveSuffix("…"))
	})

	Describe("with media", func() {
		var server *httptest.Server

		AfterEach(func() {
			if server != nil {
				server.Close()
			}
		})

		It("attaches downloaded media files", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				w.Write([]byte(strings.Repeat("x", 256)))
			}))

			err := sink.Send(ctx, Message{
				PostID:    "1",
				Text:      "with picture",
				MediaURLs: []string{server.URL + "/pic.jpg"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(session.complexCalls).To(HaveLen(1))
			Expect(session.complexCalls[0].Files).To(HaveLen(1))
			Expect(session.complexCalls[0].Files[0].Name).To(Equal("pic.jpg"))
			Expect(session.plainCalls).To(BeEmpty())
		})

		It("falls back to text with links when no media survives download", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			mediaURL := server.URL + "/gone.jpg"

			err := sink.Send(ctx, Message{PostID: "1", Text: "text only", MediaURLs: []string{mediaURL}})
			Expect(err).NotTo(HaveOccurred())
			Expect(session.complexCalls).To(BeEmpty())
			Expect(session.plainCalls).To(HaveLen(1))
			Expect(session.plainCalls[0]).To(ContainSubstring(mediaURL))
		})

		It("falls back to text when the upload itself fails", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(strings.Repeat("x", 256)))
			}))
			session.complexErr = fmt.Errorf("payload rejected")

			err := sink.Send(ctx, Message{PostID: "1", Text: "text", MediaURLs: []string{server.URL + "/a.jpg"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(session.complexCalls).To(HaveLen(1))
			Expect(session.plainCalls).To(HaveLen(1))
		})

		It("rejects bodies below the placeholder threshold", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("tiny"))
			}))

			err := sink.Send(ctx, Message{PostID: "1", Text: "text", MediaURLs: []string{server.URL + "/t.jpg"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(session.complexCalls).To(BeEmpty())
			Expect(session.plainCalls).To(HaveLen(1))
		})

		It("caps the number of attachments", func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(strings.Repeat("x", 256)))
			}))

			var urls []string
			for i := 0; i < MaxAttachments+3; i++ {
				urls = append(urls, fmt.Sprintf("%s/m%d.jpg", server.URL, i))
			}

			err := sink.Send(ctx, Message{PostID: "1", Text: "gallery", MediaURLs: urls})
			Expect(err).NotTo(HaveOccurred())
			Expect(session.complexCalls).To(HaveLen(1))
			Expect(session.complexCalls[0].Files).To(HaveLen(MaxAttachments))
		})
	})
})

var _ = Describe("attachmentName", func() {
	It("strips query strings", func() {
		Expect(attachmentName("https://cdn.example/media/abc.jpg?name=large", "image/jpeg")).To(Equal("abc.jpg"))
	})

	It("adds an extension from the content type", func() {
		Expect(attachmentName("https://cdn.example/media/abc", "video/mp4")).To(Equal("abc.mp4"))
	})
})
