package translate

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTargetLanguage = "Thai"
	DefaultModel          = "gpt-4o-mini"
	DefaultTemperature    = 0.2
	DefaultMaxTokens      = 1500
	DefaultCacheTTL       = 24 * time.Hour
	DefaultCacheMaxItems  = 500
	DefaultCallTimeout    = 30 * time.Second
)

type Config struct {
	APIKey         string
	TargetLanguage string
	Model          string
	Temperature    float64
	MaxTokens      int
	CacheTTL       time.Duration
	CacheMaxItems  int
	CallTimeout    time.Duration
	Logger         *logrus.Logger
}

// NewConfig creates a translator Config from environment variables
func NewConfig(logger *logrus.Logger) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist in production
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		APIKey:         os.Getenv("OPENAI_API_KEY"),
		TargetLanguage: os.Getenv("TRANSLATE_TARGET_LANGUAGE"),
		Model:          os.Getenv("OPENAI_MODEL"),
		Temperature:    DefaultTemperature,
		MaxTokens:      DefaultMaxTokens,
		CacheTTL:       DefaultCacheTTL,
		CacheMaxItems:  DefaultCacheMaxItems,
		CallTimeout:    DefaultCallTimeout,
		Logger:         logger,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	// Set default values if not provided
	if c.TargetLanguage == "" {
		c.TargetLanguage = DefaultTargetLanguage
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.CacheMaxItems == 0 {
		c.CacheMaxItems = DefaultCacheMaxItems
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	return nil
}
