package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tanadol/relay-go/internal/config"
	"github.com/tanadol/relay-go/pkg/accounts"
	"github.com/tanadol/relay-go/pkg/agent"
	"github.com/tanadol/relay-go/pkg/classify"
	"github.com/tanadol/relay-go/pkg/db"
	"github.com/tanadol/relay-go/pkg/dedup"
	"github.com/tanadol/relay-go/pkg/interfaces/twitter"
	"github.com/tanadol/relay-go/pkg/logging"
	"github.com/tanadol/relay-go/pkg/pipeline"
	"github.com/tanadol/relay-go/pkg/relay"
	"github.com/tanadol/relay-go/pkg/status"
	"github.com/tanadol/relay-go/pkg/translate"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Only log warning since .env is optional
		logrus.WithError(err).Warn("Error loading .env file")
	}

	// Initialize logger
	log := logrus.New()
	if os.Getenv("LOG_FORMAT") == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(logging.NewColoredJSONFormatter())
	}

	// Get log level from environment
	logLevel := os.Getenv("LOG_LEVEL")
	if level, err := logrus.ParseLevel(logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithFields(logrus.Fields{
			"attempted_level": logLevel,
			"default_level":   "INFO",
		}).Warn("Invalid log level specified, defaulting to INFO")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checkStartupFreshness(log)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		log.WithError(err).Fatal("Failed to load API credentials")
	}
	log.WithField("accounts", len(creds)).Info("Loaded API credential sets")

	// Database and durable dedup state
	database, err := db.SetupDatabase(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up database")
	}

	store := dedup.New(database, log, dedup.WithIndexWindow(dedup.DefaultIndexWindow))
	if err := store.LoadRecent(ctx); err != nil {
		log.WithError(err).Fatal("Failed to rehydrate dedup state")
	}

	// Credential rotation and the X API client pool
	rotator, err := accounts.NewRotator(creds, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create account rotator")
	}

	twitterConfig := twitter.NewConfig(log)
	pool := twitter.NewPool(twitterConfig)
	factory := func(c accounts.Credentials) (pipeline.SourceClient, error) {
		return pool.Client(c)
	}

	classifier := classify.New(classify.Config{
		BlockedPhrases:  cfg.BlockedPhrases,
		BlockedDomains:  cfg.BlockedDomains,
		MinContentChars: cfg.MinContentChars,
	})

	translateConfig, err := translate.NewConfig(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create translator config")
	}
	if cfg.TranslateTargetLanguage != "" {
		translateConfig.TargetLanguage = cfg.TranslateTargetLanguage
	}
	translator, err := translate.New(translateConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create translator")
	}

	relayConfig, err := relay.NewConfig(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create relay config")
	}
	sink, err := relay.New(relayConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create relay sink")
	}

	pipe, err := pipeline.New(&pipeline.Config{
		TargetUsername:  cfg.TargetUsername,
		FreshnessWindow: cfg.FreshnessWindow,
		Timezone:        cfg.Timezone,
		Logger:          log,
	}, rotator, factory, classifier, translator, sink, store)
	if err != nil {
		log.WithError(err).Fatal("Failed to create pipeline")
	}

	// Status endpoint
	statusServer, err := status.New(&status.Config{
		Addr:           cfg.StatusAddr,
		TargetUsername: cfg.TargetUsername,
		PollInterval:   cfg.PollInterval,
		Logger:         log,
	}, rotator, store, pipe)
	if err != nil {
		log.WithError(err).Fatal("Failed to create status server")
	}
	go func() {
		if err := statusServer.Start(); err != nil {
			log.WithError(err).Error("Status server stopped")
		}
	}()

	// Keep-alive ping for platforms that idle out quiet services
	scheduler := cron.New()
	if cfg.KeepAliveURL != "" {
		spec := "@every " + cfg.KeepAliveInterval.String()
		if _, err := scheduler.AddFunc(spec, func() { keepAlive(log, cfg.KeepAliveURL) }); err != nil {
			log.WithError(err).Fatal("Failed to schedule keep-alive ping")
		}
		scheduler.Start()
	}

	relayAgent, err := agent.New(agent.Config{
		Pipeline:   pipe,
		Store:      store,
		Translator: translator,
		Logger:     log,
		Retention:  cfg.Retention,
		Tasks: map[agent.TaskType]agent.TaskConfig{
			agent.TaskIngest: {
				Enabled:  true,
				Interval: cfg.PollInterval,
			},
			agent.TaskPrune: {
				Enabled:  true,
				Interval: agent.DefaultPruneInterval,
			},
			agent.TaskCacheTrim: {
				Enabled:  true,
				Interval: agent.DefaultCacheTrimInterval,
			},
		},
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create agent")
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()
	}()

	log.WithField("target", cfg.TargetUsername).Info("Starting post relay")

	// Run the agent
	if err := relayAgent.Run(ctx); err != nil && err != context.Canceled {
		log.WithError(err).Fatal("Agent stopped with error")
	}

	scheduler.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := statusServer.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("Status server shutdown failed")
	}

	log.Info("Relay shutdown complete")
}

const (
	startupMarkerFile  = ".startup_marker"
	quickRestartWindow = 10 * time.Minute
)

// checkStartupFreshness distinguishes a genuine start from a crash-loop
// restart by the age of a marker file, then refreshes the marker.
func checkStartupFreshness(log *logrus.Logger) {
	if info, err := os.Stat(startupMarkerFile); err == nil {
		if since := time.Since(info.ModTime()); since < quickRestartWindow {
			log.WithField("last_start", info.ModTime().UTC().Format(time.RFC3339)).
				Warn("Quick restart detected")
		} else {
			log.WithField("down_for", since.Round(time.Second)).Info("Genuine startup")
		}
	} else {
		log.Info("First startup, no marker file")
	}

	if err := os.WriteFile(startupMarkerFile, []byte(time.Now().UTC().Format(time.RFC3339)), 0o644); err != nil {
		log.WithError(err).Warn("Failed to write startup marker")
	}
}

func keepAlive(log *logrus.Logger, url string) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		log.WithError(err).Warn("Keep-alive ping failed")
		return
	}
	resp.Body.Close()
	log.WithField("status", resp.StatusCode).Debug("Keep-alive ping sent")
}
