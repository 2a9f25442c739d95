package agent

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tanadol/relay-go/pkg/dedup"
	"github.com/tanadol/relay-go/pkg/pipeline"
	"github.com/tanadol/relay-go/pkg/translate"
)

// TaskType identifies a scheduled task
type TaskType string

// Task is a long-running unit of work driven by its own ticker
type Task interface {
	Run(ctx context.Context) error
	Stop()
	Type() TaskType
}

// Agent owns the relay's scheduled tasks
type Agent struct {
	pipeline    *pipeline.Pipeline
	store       *dedup.Store
	translator  *translate.Translator
	logger      *logrus.Logger
	tasks       map[TaskType]Task
	tasksMu     sync.RWMutex
	taskConfigs map[TaskType]TaskConfig
}

// TaskConfig holds configuration for a scheduled task
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
	Metadata TaskMetadata
}

// Config holds the configuration for the Agent
type Config struct {
	Pipeline   *pipeline.Pipeline
	Store      *dedup.Store
	Translator *translate.Translator
	Logger     *logrus.Logger
	Tasks      map[TaskType]TaskConfig
	Retention  time.Duration
}
