package relay

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	// MaxMessageChars is the hard limit on a single channel message.
	MaxMessageChars = 2000
	// MaxAttachments caps how many media files ride on one message.
	MaxAttachments = 5
	// MaxAttachmentBytes caps the size of a single downloaded media file.
	MaxAttachmentBytes = 100 << 20
	// MinAttachmentBytes guards against relaying placeholder bodies.
	MinAttachmentBytes = 100

	DefaultDownloadTimeout = 60 * time.Second
	DefaultSendInterval    = 2 * time.Second
	DefaultSentGuardTTL    = 24 * time.Hour
)

type Config struct {
	BotToken        string
	ChannelID       string
	DownloadTimeout time.Duration
	SendInterval    time.Duration
	SentGuardTTL    time.Duration
	Logger          *logrus.Logger
}

// NewConfig creates a relay Config from environment variables
func NewConfig(logger *logrus.Logger) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist in production
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		BotToken:        os.Getenv("DISCORD_BOT_TOKEN"),
		ChannelID:       os.Getenv("DISCORD_CHANNEL_ID"),
		DownloadTimeout: DefaultDownloadTimeout,
		SendInterval:    DefaultSendInterval,
		SentGuardTTL:    DefaultSentGuardTTL,
		Logger:          logger,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("bot token is required")
	}
	if c.ChannelID == "" {
		return fmt.Errorf("channel ID is required")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	// Set default values if not provided
	if c.DownloadTimeout == 0 {
		c.DownloadTimeout = DefaultDownloadTimeout
	}
	if c.SendInterval == 0 {
		c.SendInterval = DefaultSendInterval
	}
	if c.SentGuardTTL == 0 {
		c.SentGuardTTL = DefaultSentGuardTTL
	}
	return nil
}
