package dedup

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tanadol/relay-go/pkg/db/models"
)

// DefaultIndexWindow is the trailing window of records kept in the
// in-memory membership indexes.
const DefaultIndexWindow = 24 * time.Hour

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIndexWindow overrides the trailing window used when rehydrating the
// in-memory indexes.
func WithIndexWindow(w time.Duration) Option {
	return func(s *Store) { s.indexWindow = w }
}

// Store is the durable record of handled posts plus derived in-memory
// membership indexes. One mutex serializes all writes; the indexes are
// mutated synchronously with the durable write so a membership check never
// races a commit.
type Store struct {
	mu          sync.Mutex
	db          *gorm.DB
	logger      *logrus.Logger
	indexWindow time.Duration
	now         func() time.Time

	seenIDs          map[string]struct{}
	seenFingerprints map[string]struct{}
	watermark        string
}

// New builds a Store. Call LoadRecent before first use so restarts do not
// forget what was already relayed.
func New(db *gorm.DB, logger *logrus.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Store{
		db:               db,
		logger:           logger,
		indexWindow:      DefaultIndexWindow,
		now:              time.Now,
		seenIDs:          make(map[string]struct{}),
		seenFingerprints: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadRecent rehydrates the in-memory ID and fingerprint indexes from
// records inside the trailing window, and recovers the fetch watermark
// from the highest non-thread post ID on record.
func (s *Store) LoadRecent(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.indexWindow)

	var rows []models.ProcessedPost
	err := s.db.WithContext(ctx).
		Select("id", "content_fingerprint", "is_thread").
		Where("processed_at > ?", cutoff).
		Find(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to load recent records: %w", err)
	}

	s.seenIDs = make(map[string]struct{}, len(rows))
	s.seenFingerprints = make(map[string]struct{}, len(rows))
	s.watermark = ""

	for _, row := range rows {
		s.seenIDs[row.ID] = struct{}{}
		if row.ContentFingerprint != "" {
			s.seenFingerprints[row.ContentFingerprint] = struct{}{}
		}
		if !row.IsThread && numericGreater(row.ID, s.watermark) {
			s.watermark = row.ID
		}
	}

	s.logger.WithFields(logrus.Fields{
		"records":   len(rows),
		"watermark": s.watermark,
	}).Info("Rehydrated dedup indexes")
	return nil
}

// Exists reports whether the post ID already reached a terminal decision
// inside the tracked window.
func (s *Store) Exists(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seenIDs[postID]
	return ok
}

// HasFingerprint reports whether equivalent content was already handled.
func (s *Store) HasFingerprint(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seenFingerprints[fp]
	return ok
}

// Watermark returns the highest non-thread post ID terminally handled,
// the lower bound for the next fetch.
func (s *Store) Watermark() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermark
}

// Save upserts the record and updates the in-memory indexes in the same
// critical section. Saving the same ID twice keeps exactly one row (last
// write wins; per-ID writes are serialized by the processing lock). The
// watermark advances only for non-thread records and never rewinds.
func (s *Store) Save(ctx context.Context, rec *models.ProcessedPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = s.now()
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.ID, err)
	}

	s.seenIDs[rec.ID] = struct{}{}
	if rec.ContentFingerprint != "" {
		s.seenFingerprints[rec.ContentFingerprint] = struct{}{}
	}
	if !rec.IsThread && numericGreater(rec.ID, s.watermark) {
		s.watermark = rec.ID
	}

	s.logger.WithFields(logrus.Fields{
		"post_id":   rec.ID,
		"relayed":   rec.Relayed,
		"watermark": s.watermark,
	}).Debug("Saved processed record")
	return nil
}

// Prune removes records older than the retention horizon. The current
// watermark row is always kept so the next since-query never rewinds.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := s.db.WithContext(ctx).Where("processed_at < ?", olderThan)
	if s.watermark != "" {
		query = query.Where("id <> ?", s.watermark)
	}

	result := query.Delete(&models.ProcessedPost{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune records: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.logger.WithField("deleted", result.RowsAffected).Info("Pruned old records")
	}
	return result.RowsAffected, nil
}

// TrimIndexes caps the in-memory sets. When a set exceeds its cap the
// newest half is kept: membership misses after a trim only cost a
// redundant durable lookup path, never a duplicate relay, because Save is
// an upsert keyed by ID.
func (s *Store) TrimIndexes(maxIDs, maxFingerprints int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if maxIDs > 0 && len(s.seenIDs) > maxIDs {
		ids := make([]string, 0, len(s.seenIDs))
		for id := range s.seenIDs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return numericGreater(ids[i], ids[j]) })

		s.seenIDs = make(map[string]struct{}, maxIDs/2)
		for _, id := range ids[:maxIDs/2] {
			s.seenIDs[id] = struct{}{}
		}
	}

	if maxFingerprints > 0 && len(s.seenFingerprints) > maxFingerprints {
		fps := make([]string, 0, len(s.seenFingerprints))
		for fp := range s.seenFingerprints {
			fps = append(fps, fp)
		}
		sort.Strings(fps)

		keep := fps[len(fps)-maxFingerprints/2:]
		s.seenFingerprints = make(map[string]struct{}, len(keep))
		for _, fp := range keep {
			s.seenFingerprints[fp] = struct{}{}
		}
	}
}

// Counts is a read-only view of the store's in-memory state for the
// status surface.
type Counts struct {
	TrackedIDs          int    `json:"tracked_ids"`
	TrackedFingerprints int    `json:"tracked_fingerprints"`
	Watermark           string `json:"watermark"`
}

// Snapshot returns the current index sizes and watermark.
func (s *Store) Snapshot() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		TrackedIDs:          len(s.seenIDs),
		TrackedFingerprints: len(s.seenFingerprints),
		Watermark:           s.watermark,
	}
}

// numericGreater compares two numeric post IDs; a non-numeric or empty ID
// never wins.
func numericGreater(a, b string) bool {
	an, err := strconv.ParseUint(a, 10, 64)
	if err != nil {
		return false
	}
	if b == "" {
		return true
	}
	bn, err := strconv.ParseUint(b, 10, 64)
	if err != nil {
		return true
	}
	return an > bn
}
