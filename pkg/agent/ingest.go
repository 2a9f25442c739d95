package agent

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// CycleRunner runs one poll-and-relay cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// IngestTask drives the relay pipeline on a fixed interval.
type IngestTask struct {
	pipeline CycleRunner
	logger   *logrus.Logger
	interval time.Duration
	stopped  chan struct{}
}

// NewIngestTask creates a new IngestTask instance
func NewIngestTask(pipeline CycleRunner, logger *logrus.Logger, interval time.Duration) *IngestTask {
	if logger == nil {
		logger = logrus.New()
	}
	if interval <= 0 {
		interval = DefaultIngestInterval
	}

	return &IngestTask{
		pipeline: pipeline,
		logger:   logger,
		interval: interval,
		stopped:  make(chan struct{}),
	}
}

// Run implements the Task interface. The first cycle fires immediately so
// a restart does not wait a full interval to catch up.
func (t *IngestTask) Run(ctx context.Context) error {
	log := t.logger.WithField("task", TaskIngest)
	log.Info("Starting ingest task")

	if err := t.pipeline.RunCycle(ctx); err != nil {
		log.WithError(err).Error("Ingest cycle failed")
		// Continue running despite errors
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Context cancelled, stopping ingest task")
			return ctx.Err()
		case <-t.stopped:
			log.Info("Ingest task stopped")
			return nil
		case <-ticker.C:
			if err := t.pipeline.RunCycle(ctx); err != nil {
				log.WithError(err).Error("Ingest cycle failed")
				// Continue running despite errors
			}
		}
	}
}

// Stop implements the Task interface
func (t *IngestTask) Stop() {
	select {
	case <-t.stopped:
	default:
		close(t.stopped)
	}
}

// Type implements the Task interface
func (t *IngestTask) Type() TaskType {
	return TaskIngest
}
