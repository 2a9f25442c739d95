package twitter

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the non-credential client settings. Credentials live in
// per-set accounts.Credentials so one Config serves every rotated client.
type Config struct {
	// API Endpoints
	BaseURL    string
	TweetsPath string
	UsersPath  string

	// Timeouts per call type. Fetches are kept short so one slow cycle
	// never stalls the next tick for long.
	FetchTimeout  time.Duration
	LookupTimeout time.Duration

	// Page size for recent-post fetches (API bounds: 5..100).
	MaxPageSize int

	// API field selection (Twitter v2 data dictionary)
	TweetFields     []string
	ExpansionFields []string
	MediaFields     []string

	Logger *logrus.Logger
}

// NewConfig returns a Config with the defaults this system needs: enough
// fields and expansions to classify interactions and media without a
// second lookup per post.
func NewConfig(logger *logrus.Logger) *Config {
	if logger == nil {
		logger = logrus.New()
	}
	return &Config{
		BaseURL:       "https://api.twitter.com/2",
		TweetsPath:    "/tweets",
		UsersPath:     "/users",
		FetchTimeout:  15 * time.Second,
		LookupTimeout: 10 * time.Second,
		MaxPageSize:   10,
		TweetFields: []string{
			"id",
			"text",
			"created_at",
			"conversation_id",
			"in_reply_to_user_id",
			"referenced_tweets",
			"attachments",
			"note_tweet",
			"author_id",
		},
		ExpansionFields: []string{
			"attachments.media_keys",
			"author_id",
			"referenced_tweets.id",
			"referenced_tweets.id.author_id",
			"in_reply_to_user_id",
		},
		MediaFields: []string{"url", "type", "preview_image_url", "alt_text"},
		Logger:      logger,
	}
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.MaxPageSize < 5 || c.MaxPageSize > 100 {
		return fmt.Errorf("page size must be between 5 and 100")
	}
	if c.FetchTimeout <= 0 || c.LookupTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}
