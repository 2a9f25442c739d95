package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/bwmarrin/discordgo"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/tanadol/relay-go/pkg/dedup"
)

// Message is one formatted post ready for delivery.
type Message struct {
	PostID    string
	Text      string
	MediaURLs []string
}

// channelSender is the slice of the Discord session the sink needs.
type channelSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Sink delivers formatted messages to a Discord channel. It keeps its own
// short-lived fingerprint guard so the same content is never delivered
// twice even when upstream bookkeeping lags, and paces sends with a rate
// limiter.
type Sink struct {
	config  *Config
	session channelSender
	sent    *gocache.Cache
	limiter *rate.Limiter
	client  *http.Client
	logger  *logrus.Logger
}

// New opens a Discord session and builds a Sink around it. The session is
// REST-only; no gateway connection is opened for plain channel sends.
func New(config *Config) (*Sink, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	session, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	return newWithSession(config, session), nil
}

func newWithSession(config *Config, session channelSender) *Sink {
	return &Sink{
		config:  config,
		session: session,
		sent:    gocache.New(config.SentGuardTTL, config.SentGuardTTL/2),
		limiter: rate.NewLimiter(rate.Every(config.SendInterval), 1),
		client:  &http.Client{Timeout: config.DownloadTimeout},
		logger:  config.Logger,
	}
}

// Send delivers the message to the configured channel. Content already
// delivered inside the guard window is reported as delivered without a
// second send. Media that cannot be attached degrades to a text message
// carrying the media URLs rather than failing the whole delivery.
func (s *Sink) Send(ctx context.Context, msg Message) error {
	guard := dedup.Fingerprint(msg.Text, msg.MediaURLs)
	if _, done := s.sent.Get(guard); done {
		s.logger.WithField("post_id", msg.PostID).Debug("Skipping send, content already delivered")
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed waiting for send slot: %w", err)
	}

	content := clampContent(msg.Text)

	var err error
	if len(msg.MediaURLs) > 0 {
		err = s.sendWithMedia(ctx, content, msg)
	} else {
		_, err = s.session.ChannelMessageSend(s.config.ChannelID, content)
	}
	if err != nil {
		return fmt.Errorf("failed to deliver post %s: %w", msg.PostID, err)
	}

	s.sent.Set(guard, struct{}{}, gocache.DefaultExpiration)
	s.logger.WithFields(logrus.Fields{
		"post_id": msg.PostID,
		"media":   len(msg.MediaURLs),
	}).Info("Relayed post")
	return nil
}

// sendWithMedia attaches downloaded media files to the message. When no
// file survives download, or the upload itself fails, it falls back to a
// plain text message with the media URLs appended.
func (s *Sink) sendWithMedia(ctx context.Context, content string, msg Message) error {
	files := s.downloadMedia(ctx, msg)

	if len(files) > 0 {
		_, err := s.session.ChannelMessageSendComplex(s.config.ChannelID, &discordgo.MessageSend{
			Content: content,
			Files:   files,
		})
		if err == nil {
			return nil
		}
		s.logger.WithFields(logrus.Fields{
			"post_id": msg.PostID,
			"error":   err,
		}).Warn("Media upload failed, falling back to text")
	}

	_, err := s.session.ChannelMessageSend(s.config.ChannelID, withMediaLinks(content, msg.MediaURLs))
	return err
}

func (s *Sink) downloadMedia(ctx context.Context, msg Message) []*discordgo.File {
	urls := msg.MediaURLs
	if len(urls) > MaxAttachments {
		urls = urls[:MaxAttachments]
	}

	var files []*discordgo.File
	for _, mediaURL := range urls {
		file, err := s.downloadOne(ctx, mediaURL)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"post_id": msg.PostID,
				"url":     mediaURL,
				"error":   err,
			}).Warn("Media download failed")
			continue
		}
		files = append(files, file)
	}
	return files
}

func (s *Sink) downloadOne(ctx context.Context, mediaURL string) (*discordgo.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > MaxAttachmentBytes {
		return nil, fmt.Errorf("media too large: %d bytes", resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxAttachmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read media body: %w", err)
	}
	if len(body) > MaxAttachmentBytes {
		return nil, fmt.Errorf("media too large: over %d bytes", MaxAttachmentBytes)
	}
	if len(body) < MinAttachmentBytes {
		return nil, fmt.Errorf("media body too small: %d bytes", len(body))
	}

	return &discordgo.File{
		Name:        attachmentName(mediaURL, resp.Header.Get("Content-Type")),
		ContentType: resp.Header.Get("Content-Type"),
		Reader:      bytes.NewReader(body),
	}, nil
}

// clampContent truncates text to the channel message limit, on a rune
// boundary, with a trailing ellipsis.
func clampContent(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxMessageChars {
		return text
	}
	return string(runes[:MaxMessageChars-1]) + "…"
}

func withMediaLinks(content string, urls []string) string {
	joined := content + "\n" + strings.Join(urls, "\n")
	return clampContent(joined)
}

func attachmentName(mediaURL, contentType string) string {
	name := path.Base(mediaURL)
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}
	if name == "" || name == "." || name == "/" {
		name = "media"
	}
	if !strings.Contains(name, ".") {
		switch {
		case strings.Contains(contentType, "mp4"):
			name += ".mp4"
		case strings.Contains(contentType, "png"):
			name += ".png"
		default:
			name += ".jpg"
		}
	}
	return name
}
