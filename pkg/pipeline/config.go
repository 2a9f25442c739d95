package pipeline

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultFreshnessWindow bounds how old a post may be and still be
	// relayed. It doubles as the fetch lookback.
	DefaultFreshnessWindow = 60 * time.Minute
	// DefaultMaxResults is the page size for a fetch.
	DefaultMaxResults = 10
	// DefaultSuccessPacing is the pause after a delivered post.
	DefaultSuccessPacing = 5 * time.Second
	// DefaultFailurePacing is the pause after a skipped or failed post.
	DefaultFailurePacing = 2 * time.Second
)

type Config struct {
	TargetUsername  string
	FreshnessWindow time.Duration
	MaxResults      int
	SuccessPacing   time.Duration
	FailurePacing   time.Duration
	Timezone        string
	Logger          *logrus.Logger
}

func (c *Config) Validate() error {
	if c.TargetUsername == "" {
		return fmt.Errorf("target username is required")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	// Set default values if not provided
	if c.FreshnessWindow == 0 {
		c.FreshnessWindow = DefaultFreshnessWindow
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.SuccessPacing == 0 {
		c.SuccessPacing = DefaultSuccessPacing
	}
	if c.FailurePacing == 0 {
		c.FailurePacing = DefaultFailurePacing
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	return nil
}
