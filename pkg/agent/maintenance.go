package agent

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RecordPruner deletes durable records past a cutoff.
type RecordPruner interface {
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// IndexTrimmer caps in-memory membership indexes.
type IndexTrimmer interface {
	TrimIndexes(maxIDs, maxFingerprints int)
}

// CacheTrimmer caps a translation cache.
type CacheTrimmer interface {
	TrimCache()
}

// PruneTask deletes processed records older than the retention horizon.
type PruneTask struct {
	store     RecordPruner
	logger    *logrus.Logger
	interval  time.Duration
	retention time.Duration
	stopped   chan struct{}
}

// NewPruneTask creates a new PruneTask instance
func NewPruneTask(store RecordPruner, logger *logrus.Logger, interval, retention time.Duration) *PruneTask {
	if logger == nil {
		logger = logrus.New()
	}
	if interval <= 0 {
		interval = DefaultPruneInterval
	}
	if retention <= 0 {
		retention = DefaultRetention
	}

	return &PruneTask{
		store:     store,
		logger:    logger,
		interval:  interval,
		retention: retention,
		stopped:   make(chan struct{}),
	}
}

// Run implements the Task interface
func (t *PruneTask) Run(ctx context.Context) error {
	log := t.logger.WithField("task", TaskPrune)
	log.Info("Starting prune task")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Context cancelled, stopping prune task")
			return ctx.Err()
		case <-t.stopped:
			log.Info("Prune task stopped")
			return nil
		case <-ticker.C:
			cutoff := time.Now().Add(-t.retention)
			deleted, err := t.store.Prune(ctx, cutoff)
			if err != nil {
				log.WithError(err).Error("Prune failed")
				continue
			}
			log.WithField("deleted", deleted).Debug("Prune complete")
		}
	}
}

// Stop implements the Task interface
func (t *PruneTask) Stop() {
	select {
	case <-t.stopped:
	default:
		close(t.stopped)
	}
}

// Type implements the Task interface
func (t *PruneTask) Type() TaskType {
	return TaskPrune
}

// CacheTrimTask keeps the in-memory dedup indexes and the translation
// cache bounded on a long-running process.
type CacheTrimTask struct {
	store      IndexTrimmer
	translator CacheTrimmer
	logger     *logrus.Logger
	interval   time.Duration
	stopped    chan struct{}
}

// NewCacheTrimTask creates a new CacheTrimTask instance
func NewCacheTrimTask(store IndexTrimmer, translator CacheTrimmer, logger *logrus.Logger, interval time.Duration) *CacheTrimTask {
	if logger == nil {
		logger = logrus.New()
	}
	if interval <= 0 {
		interval = DefaultCacheTrimInterval
	}

	return &CacheTrimTask{
		store:      store,
		translator: translator,
		logger:     logger,
		interval:   interval,
		stopped:    make(chan struct{}),
	}
}

// Run implements the Task interface
func (t *CacheTrimTask) Run(ctx context.Context) error {
	log := t.logger.WithField("task", TaskCacheTrim)
	log.Info("Starting cache trim task")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Context cancelled, stopping cache trim task")
			return ctx.Err()
		case <-t.stopped:
			log.Info("Cache trim task stopped")
			return nil
		case <-ticker.C:
			t.store.TrimIndexes(MaxTrackedIDs, MaxTrackedFingerprints)
			if t.translator != nil {
				t.translator.TrimCache()
			}
			log.Debug("Cache trim complete")
		}
	}
}

// Stop implements the Task interface
func (t *CacheTrimTask) Stop() {
	select {
	case <-t.stopped:
	default:
		close(t.stopped)
	}
}

// Type implements the Task interface
func (t *CacheTrimTask) Type() TaskType {
	return TaskCacheTrim
}
