// Package config loads the relay's settings from config.yaml and the
// environment. File values are defaults; environment variables win.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultPollInterval      = 20 * time.Minute
	DefaultFreshnessWindow   = 60 * time.Minute
	DefaultRetention         = 7 * 24 * time.Hour
	DefaultMinContentChars   = 10
	DefaultTimezone          = "Asia/Bangkok"
	DefaultStatusAddr        = ":8080"
	DefaultKeepAliveInterval = 5 * time.Minute
)

// Config is the full runtime configuration of the relay.
type Config struct {
	TargetUsername string
	Timezone       string

	PollInterval    time.Duration
	FreshnessWindow time.Duration
	Retention       time.Duration

	MinContentChars int
	BlockedPhrases  []string
	BlockedDomains  []string

	TranslateTargetLanguage string

	StatusAddr        string
	KeepAliveURL      string
	KeepAliveInterval time.Duration
}

// Load reads .env, config.yaml, and the environment into a Config.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config.yaml is fine, env and defaults carry everything.
	}

	config := &Config{
		TargetUsername:          v.GetString("relay.target_username"),
		Timezone:                v.GetString("relay.timezone"),
		PollInterval:            v.GetDuration("relay.poll_interval"),
		FreshnessWindow:         v.GetDuration("relay.freshness_window"),
		Retention:               v.GetDuration("relay.retention"),
		MinContentChars:         v.GetInt("filter.min_content_chars"),
		BlockedPhrases:          v.GetStringSlice("filter.blocked_phrases"),
		BlockedDomains:          v.GetStringSlice("filter.blocked_domains"),
		TranslateTargetLanguage: v.GetString("translate.target_language"),
		StatusAddr:              v.GetString("status.addr"),
		KeepAliveURL:            v.GetString("status.keepalive_url"),
		KeepAliveInterval:       v.GetDuration("status.keepalive_interval"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("relay.timezone", DefaultTimezone)
	v.SetDefault("relay.poll_interval", DefaultPollInterval)
	v.SetDefault("relay.freshness_window", DefaultFreshnessWindow)
	v.SetDefault("relay.retention", DefaultRetention)
	v.SetDefault("filter.min_content_chars", DefaultMinContentChars)
	v.SetDefault("status.addr", DefaultStatusAddr)
	v.SetDefault("status.keepalive_interval", DefaultKeepAliveInterval)
}

func (c *Config) Validate() error {
	if c.TargetUsername == "" {
		return fmt.Errorf("relay.target_username is required")
	}
	// Set default values if not provided
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.FreshnessWindow == 0 {
		c.FreshnessWindow = DefaultFreshnessWindow
	}
	if c.Retention == 0 {
		c.Retention = DefaultRetention
	}
	if c.MinContentChars == 0 {
		c.MinContentChars = DefaultMinContentChars
	}
	if c.StatusAddr == "" {
		c.StatusAddr = DefaultStatusAddr
	}
	if c.KeepAliveInterval == 0 {
		c.KeepAliveInterval = DefaultKeepAliveInterval
	}
	return nil
}
