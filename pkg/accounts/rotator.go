package accounts

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// RotationSlot is the width of one time-based rotation slot: even with
	// zero failures, the preferred account changes every slot to spread
	// load across credential sets.
	RotationSlot = 20 * time.Minute

	// RateLimitCooldown is how long a credential set sits out after the
	// platform signals a rate limit.
	RateLimitCooldown = 20 * time.Minute

	// FailureRotationThreshold is the number of consecutive opaque
	// failures treated as an implicit rate-limit signal.
	FailureRotationThreshold = 3
)

// Credentials is one full set of API secrets for the source platform.
type Credentials struct {
	ID                string
	BearerToken       string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Stats tracks the health of one credential set over the process lifetime.
type Stats struct {
	Calls               int
	Successes           int
	Failures            int
	ConsecutiveFailures int
	RateLimitedUntil    time.Time
	LastUsed            time.Time
}

type account struct {
	creds Credentials
	stats Stats
}

// Option customizes a Rotator.
type Option func(*Rotator)

// WithClock overrides the rotator's time source.
func WithClock(now func() time.Time) Option {
	return func(r *Rotator) { r.now = now }
}

// Rotator selects which credential set services the next remote call,
// tracking health and cooldowns per set. Selection never fails: when every
// set is rate-limited it degrades to set 0 regardless of its state, a
// deliberate liveness-over-correctness trade.
type Rotator struct {
	mu       sync.Mutex
	accounts []*account
	current  int
	logger   *logrus.Logger
	now      func() time.Time
}

// NewRotator builds a Rotator over the configured credential sets.
func NewRotator(creds []Credentials, logger *logrus.Logger, opts ...Option) (*Rotator, error) {
	if len(creds) == 0 {
		return nil, fmt.Errorf("at least one credential set is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	r := &Rotator{logger: logger, now: time.Now}
	for _, c := range creds {
		if c.ID == "" {
			return nil, fmt.Errorf("credential set without an ID")
		}
		r.accounts = append(r.accounts, &account{creds: c})
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Len returns the number of credential sets.
func (r *Rotator) Len() int {
	return len(r.accounts)
}

// Select picks the credential set for the next remote call. The preferred
// set for the current 20-minute slot is slot mod N; if it is cooling down,
// the first available set in index order is used instead, and when none is
// available set 0 is returned anyway.
func (r *Rotator) Select() Credentials {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	preferred := int(now.Unix()/int64(RotationSlot.Seconds())) % len(r.accounts)

	if !r.accounts[preferred].isLimited(now) {
		if r.current != preferred {
			r.logger.WithFields(logrus.Fields{
				"account": r.accounts[preferred].creds.ID,
				"reason":  "time_slot",
			}).Info("Rotated to preferred account")
		}
		r.current = preferred
		return r.accounts[preferred].creds
	}

	for i, a := range r.accounts {
		if !a.isLimited(now) {
			r.logger.WithFields(logrus.Fields{
				"preferred": r.accounts[preferred].creds.ID,
				"account":   a.creds.ID,
			}).Info("Preferred account unavailable, using first available")
			r.current = i
			return a.creds
		}
	}

	r.logger.Warn("No accounts available, falling back to first account")
	r.current = 0
	return r.accounts[0].creds
}

// ReportOutcome records the result of one remote call made with the given
// credential set. A rate-limited outcome starts the cooldown and rotates
// immediately; repeated opaque failures rotate as well. It never fails.
func (r *Rotator) ReportOutcome(id string, success, rateLimited bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		r.logger.WithField("account", id).Warn("Outcome reported for unknown account")
		return
	}

	now := r.now()
	a := r.accounts[idx]
	a.stats.Calls++
	a.stats.LastUsed = now

	if success {
		a.stats.Successes++
		a.stats.ConsecutiveFailures = 0
		return
	}

	a.stats.Failures++
	a.stats.ConsecutiveFailures++

	if rateLimited {
		a.stats.RateLimitedUntil = now.Add(RateLimitCooldown)
		r.logger.WithFields(logrus.Fields{
			"account": id,
			"until":   a.stats.RateLimitedUntil.Format(time.RFC3339),
		}).Warn("Account rate limited")
		r.rotateFrom(idx, now)
		return
	}

	if a.stats.ConsecutiveFailures >= FailureRotationThreshold {
		r.logger.WithFields(logrus.Fields{
			"account":  id,
			"failures": a.stats.ConsecutiveFailures,
		}).Warn("Account failing repeatedly, rotating")
		r.rotateFrom(idx, now)
	}
}

// rotateFrom moves current to the next available set after idx, if any.
// Caller holds the lock.
func (r *Rotator) rotateFrom(idx int, now time.Time) {
	for i := 1; i < len(r.accounts); i++ {
		next := (idx + i) % len(r.accounts)
		if !r.accounts[next].isLimited(now) {
			r.logger.WithFields(logrus.Fields{
				"from": r.accounts[idx].creds.ID,
				"to":   r.accounts[next].creds.ID,
			}).Info("Switched account")
			r.current = next
			return
		}
	}
	r.logger.WithField("account", r.accounts[idx].creds.ID).Warn("No alternative accounts available")
}

func (r *Rotator) indexOf(id string) int {
	for i, a := range r.accounts {
		if a.creds.ID == id {
			return i
		}
	}
	return -1
}

func (a *account) isLimited(now time.Time) bool {
	return a.stats.RateLimitedUntil.After(now)
}
