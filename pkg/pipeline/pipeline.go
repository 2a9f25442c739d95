package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tanadol/relay-go/pkg/accounts"
	"github.com/tanadol/relay-go/pkg/classify"
	"github.com/tanadol/relay-go/pkg/db/models"
	"github.com/tanadol/relay-go/pkg/dedup"
	"github.com/tanadol/relay-go/pkg/interfaces/twitter"
	"github.com/tanadol/relay-go/pkg/posts"
	"github.com/tanadol/relay-go/pkg/relay"
)

// SourceClient is the slice of the X API client a cycle needs.
type SourceClient interface {
	FetchRecentPosts(ctx context.Context, userID, sinceID string, start time.Time, max int) ([]posts.CandidatePost, error)
	FetchFullText(ctx context.Context, postID string) (string, error)
	LookupUserID(ctx context.Context, username string) (string, error)
	CredentialID() string
}

// ClientFactory builds (or reuses) a client for the given credentials.
type ClientFactory func(creds accounts.Credentials) (SourceClient, error)

// DedupStore is the durable bookkeeping a cycle consults and writes.
type DedupStore interface {
	Exists(postID string) bool
	HasFingerprint(fp string) bool
	Watermark() string
	Save(ctx context.Context, rec *models.ProcessedPost) error
}

// Translator renders post text in the relay audience's language.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

// Sink delivers formatted messages to the chat channel.
type Sink interface {
	Send(ctx context.Context, msg relay.Message) error
}

// Stats is a snapshot of pipeline activity for the status surface.
type Stats struct {
	Cycles      int64     `json:"cycles"`
	Processed   int64     `json:"processed"`
	Relayed     int64     `json:"relayed"`
	Skipped     int64     `json:"skipped"`
	LastCycleAt time.Time `json:"last_cycle_at"`
	LastError   string    `json:"last_error,omitempty"`
}

// Pipeline runs the fetch-classify-translate-relay cycle for one
// monitored account.
type Pipeline struct {
	config     *Config
	rotator    *accounts.Rotator
	newClient  ClientFactory
	classifier *classify.Classifier
	translator Translator
	sink       Sink
	store      DedupStore
	formatter  *Formatter
	locks      *lockSet
	logger     *logrus.Logger

	inFlight atomic.Bool
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration)

	userMu sync.Mutex
	userID string

	statsMu sync.Mutex
	stats   Stats
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the pipeline's time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithSleep overrides the inter-post pacing sleep.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(p *Pipeline) { p.sleep = sleep }
}

// New wires a Pipeline from its collaborators.
func New(config *Config, rotator *accounts.Rotator, factory ClientFactory, classifier *classify.Classifier, translator Translator, sink Sink, store DedupStore, opts ...Option) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if rotator == nil || factory == nil || classifier == nil || translator == nil || sink == nil || store == nil {
		return nil, fmt.Errorf("all pipeline collaborators are required")
	}

	p := &Pipeline{
		config:     config,
		rotator:    rotator,
		newClient:  factory,
		classifier: classifier,
		translator: translator,
		sink:       sink,
		store:      store,
		formatter:  NewFormatter(config.TargetUsername, config.Timezone),
		locks:      newLockSet(),
		logger:     config.Logger,
		now:        time.Now,
		sleep:      sleepWithContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// RunCycle executes one poll. A cycle still in flight makes the new one a
// no-op rather than a queued duplicate.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Warn("Previous cycle still running, skipping this one")
		return nil
	}
	defer p.inFlight.Store(false)

	cycleID := uuid.NewString()[:8]
	log := p.logger.WithFields(logrus.Fields{
		"cycle_id": cycleID,
		"target":   p.config.TargetUsername,
	})

	err := p.runCycle(ctx, log)

	p.statsMu.Lock()
	p.stats.Cycles++
	p.stats.LastCycleAt = p.now()
	if err != nil {
		p.stats.LastError = err.Error()
	} else {
		p.stats.LastError = ""
	}
	p.statsMu.Unlock()

	return err
}

func (p *Pipeline) runCycle(ctx context.Context, log *logrus.Entry) error {
	creds := p.rotator.Select()
	client, err := p.newClient(creds)
	if err != nil {
		return fmt.Errorf("failed to build client for account %s: %w", creds.ID, err)
	}

	userID, err := p.resolveUserID(ctx, client)
	if err != nil {
		p.rotator.ReportOutcome(creds.ID, false, errors.Is(err, twitter.ErrRateLimited))
		return fmt.Errorf("failed to resolve user ID: %w", err)
	}

	sinceID := p.store.Watermark()
	start := p.now().Add(-p.config.FreshnessWindow)

	candidates, err := client.FetchRecentPosts(ctx, userID, sinceID, start, p.config.MaxResults)
	if err != nil {
		p.rotator.ReportOutcome(creds.ID, false, errors.Is(err, twitter.ErrRateLimited))
		return fmt.Errorf("failed to fetch recent posts: %w", err)
	}
	p.rotator.ReportOutcome(creds.ID, true, false)

	if len(candidates) == 0 {
		log.Debug("No new posts")
		return nil
	}

	// Oldest first so the channel reads in posting order.
	sort.Slice(candidates, func(i, j int) bool {
		return posts.Less(candidates[i], candidates[j])
	})

	log.WithField("count", len(candidates)).Info("Processing candidate posts")

	for i, post := range candidates {
		delivered := p.processPost(ctx, log, client, post)

		if i < len(candidates)-1 {
			if delivered {
				p.sleep(ctx, p.config.SuccessPacing)
			} else {
				p.sleep(ctx, p.config.FailurePacing)
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func (p *Pipeline) resolveUserID(ctx context.Context, client SourceClient) (string, error) {
	p.userMu.Lock()
	defer p.userMu.Unlock()
	if p.userID != "" {
		return p.userID, nil
	}
	id, err := client.LookupUserID(ctx, p.config.TargetUsername)
	if err != nil {
		return "", err
	}
	p.userID = id
	return id, nil
}

// processPost walks one candidate to a terminal decision. It returns
// whether the post was delivered; every terminal outcome is recorded
// durably so the post is never reconsidered.
func (p *Pipeline) processPost(ctx context.Context, log *logrus.Entry, client SourceClient, post posts.CandidatePost) bool {
	if p.store.Exists(post.ID) {
		return false
	}
	if !p.locks.TryAcquire(post.ID) {
		return false
	}
	defer p.locks.Release(post.ID)

	// Another worker may have finished while we waited on the lock.
	if p.store.Exists(post.ID) {
		return false
	}

	log = log.WithField("post_id", post.ID)

	if age := p.now().Sub(post.CreatedAt); age > p.config.FreshnessWindow {
		log.WithField("age", age.Round(time.Second)).Debug("Skipping stale post")
		p.saveSkip(ctx, log, post, client, post.Body(), classify.ReasonTooOld)
		return false
	}

	inter := classify.Interaction(post, p.config.TargetUsername)
	if !inter.Accept() {
		log.WithField("interaction", string(inter.Kind)).Debug("Skipping third-party interaction")
		p.saveSkip(ctx, log, post, client, post.Body(), classify.ReasonOtherInteraction)
		return false
	}

	body := post.Body()
	// A truncated preview keeps its read-more pointer even when the
	// expansion below succeeds.
	truncated := classify.IsTruncated(body)

	if result := p.classifier.Classify(body, post.MediaURLs()); result.Skip {
		log.WithField("reason", string(result.Reason)).Debug("Skipping filtered post")
		p.saveSkip(ctx, log, post, client, body, result.Reason)
		return false
	}

	if truncated && post.FullText == "" {
		full, err := client.FetchFullText(ctx, post.ID)
		p.rotator.ReportOutcome(client.CredentialID(), err == nil, errors.Is(err, twitter.ErrRateLimited))
		if err != nil {
			log.WithField("error", err).Warn("Full text fetch failed, relaying truncated text")
		} else if full != "" && full != body {
			body = full
			// The expansion can reveal blocked content the preview hid.
			if result := p.classifier.Classify(body, post.MediaURLs()); result.Skip {
				log.WithField("reason", string(result.Reason)).Debug("Skipping post after expansion")
				p.saveSkip(ctx, log, post, client, body, result.Reason)
				return false
			}
		}
	}

	// A pure content duplicate is not a terminal decision for this ID:
	// nothing is written, the fingerprint check catches it again next time.
	fingerprint := dedup.Fingerprint(body, post.MediaURLs())
	if p.store.HasFingerprint(fingerprint) {
		log.Debug("Skipping duplicate content")
		p.statsMu.Lock()
		p.stats.Skipped++
		p.statsMu.Unlock()
		return false
	}

	translated := p.translator.Translate(ctx, body)
	msg := p.formatter.Build(post, translated, inter, truncated)

	delivered := true
	if err := p.sink.Send(ctx, msg); err != nil {
		// Delivery failures do not reopen the post: the sink owns its own
		// fallback ladder and a flaky channel says nothing about content
		// validity. The record lands with Relayed false.
		log.WithField("error", err).Error("Delivery failed")
		delivered = false
	}

	rec := p.newRecord(post, client)
	rec.RawContent = body
	rec.Translated = translated
	rec.ContentFingerprint = fingerprint
	rec.Relayed = delivered
	if err := p.store.Save(ctx, rec); err != nil {
		log.WithField("error", err).Error("Failed to record processed post")
	}

	p.statsMu.Lock()
	p.stats.Processed++
	if delivered {
		p.stats.Relayed++
	}
	p.statsMu.Unlock()

	if delivered {
		log.Info("Post relayed")
	}
	return delivered
}

// saveSkip records a terminal skip so the post is never fetched again.
// The raw text is preserved as-is; the tag goes where a translation would.
func (p *Pipeline) saveSkip(ctx context.Context, log *logrus.Entry, post posts.CandidatePost, client SourceClient, body string, reason classify.Reason) {
	rec := p.newRecord(post, client)
	rec.RawContent = body
	rec.Translated = SkipNote(reason, body)
	if err := p.store.Save(ctx, rec); err != nil {
		log.WithField("error", err).Error("Failed to record skipped post")
	}

	p.statsMu.Lock()
	p.stats.Processed++
	p.stats.Skipped++
	p.statsMu.Unlock()
}

func (p *Pipeline) newRecord(post posts.CandidatePost, client SourceClient) *models.ProcessedPost {
	return &models.ProcessedPost{
		ID:             post.ID,
		CreatedAt:      post.CreatedAt,
		ProcessedAt:    p.now(),
		SourceURL:      p.formatter.SourceURL(post.ID),
		AccountID:      client.CredentialID(),
		ConversationID: post.ConversationID,
		MediaURLs:      post.MediaURLs(),
		IsThread:       post.ConversationID != "" && post.ConversationID != post.ID,
	}
}

// Snapshot returns current pipeline counters.
func (p *Pipeline) Snapshot() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}
