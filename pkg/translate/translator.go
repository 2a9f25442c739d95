package translate

import (
	"context"
	"fmt"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/tanadol/relay-go/pkg/dedup"
)

// Translator converts post text into the configured target language.
// Results are cached by content fingerprint so retries and near-duplicate
// cycles do not burn model calls. A failed call falls back to the original
// text: the relay always delivers something.
type Translator struct {
	config *Config
	model  llms.Model
	cache  *gocache.Cache
	logger *logrus.Logger
}

// New builds a Translator backed by the OpenAI-compatible endpoint named
// in the config.
func New(config *Config) (*Translator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	model, err := openai.New(
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize translation model: %w", err)
	}

	return NewWithModel(config, model)
}

// NewWithModel builds a Translator around an existing model client.
func NewWithModel(config *Config, model llms.Model) (*Translator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Translator{
		config: config,
		model:  model,
		cache:  gocache.New(config.CacheTTL, config.CacheTTL/2),
		logger: config.Logger,
	}, nil
}

// Translate returns the text rendered in the target language. Empty input
// returns empty output without a model call. Any model failure is logged
// and the original text is returned and cached, so a flaky upstream does
// not stall the pipeline or retry the same post forever.
func (t *Translator) Translate(ctx context.Context, text string) string {
	if text == "" {
		return ""
	}

	key := dedup.Fingerprint(text, nil)
	if cached, found := t.cache.Get(key); found {
		return cached.(string)
	}

	callCtx, cancel := context.WithTimeout(ctx, t.config.CallTimeout)
	defer cancel()

	translated, err := t.call(callCtx, text)
	if err != nil {
		t.logger.WithFields(logrus.Fields{
			"error": err,
			"chars": len(text),
		}).Warn("Translation failed, relaying original text")
		translated = text
	}

	if t.cache.ItemCount() < t.config.CacheMaxItems {
		t.cache.Set(key, translated, gocache.DefaultExpiration)
	}
	return translated
}

func (t *Translator) call(ctx context.Context, text string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, t.systemPrompt()),
		llms.TextParts(schema.ChatMessageTypeHuman, text),
	}

	resp, err := t.model.GenerateContent(ctx, messages,
		llms.WithTemperature(t.config.Temperature),
		llms.WithMaxTokens(t.config.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate translation: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", fmt.Errorf("empty translation response")
	}

	return resp.Choices[0].Content, nil
}

func (t *Translator) systemPrompt() string {
	return fmt.Sprintf(
		"You are a translator. Translate the user's message into %s. "+
			"Keep usernames, numbers, ticker symbols, URLs, and hashtags exactly as written. "+
			"Preserve line breaks. Reply with the translation only, no commentary.",
		t.config.TargetLanguage,
	)
}

// CacheSize reports how many translations are currently cached.
func (t *Translator) CacheSize() int {
	return t.cache.ItemCount()
}

// TrimCache drops expired entries and, when still over the configured cap,
// flushes the cache entirely. Translations are cheap to redo relative to
// unbounded growth on a long-running process.
func (t *Translator) TrimCache() {
	t.cache.DeleteExpired()
	if t.cache.ItemCount() > t.config.CacheMaxItems {
		t.cache.Flush()
	}
}
