package agent

import (
	"time"
)

// Default intervals for different tasks
const (
	DefaultIngestInterval    = 20 * time.Minute
	DefaultPruneInterval     = 24 * time.Hour
	DefaultCacheTrimInterval = 15 * time.Minute

	// DefaultRetention is how long durable records are kept before Prune
	// removes them.
	DefaultRetention = 7 * 24 * time.Hour

	// Index caps enforced by the cache trim task.
	MaxTrackedIDs          = 2000
	MaxTrackedFingerprints = 2000
)

// Task Types
const (
	TaskIngest    TaskType = "ingest"     // Polls the source account and relays new posts
	TaskPrune     TaskType = "prune"      // Removes durable records past retention
	TaskCacheTrim TaskType = "cache_trim" // Caps in-memory indexes and caches
)

// TaskPriority defines the importance level of a task
type TaskPriority int

const (
	PriorityLow TaskPriority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// TaskMetadata holds additional information about a task
type TaskMetadata struct {
	Description string
	Priority    TaskPriority
}

// DefaultTaskConfigs provides the default configuration for all supported tasks
var DefaultTaskConfigs = map[TaskType]TaskConfig{
	TaskIngest: {
		Enabled:  true,
		Interval: DefaultIngestInterval,
		Metadata: TaskMetadata{
			Description: "Polls the monitored account and relays new posts",
			Priority:    PriorityCritical,
		},
	},
	TaskPrune: {
		Enabled:  true,
		Interval: DefaultPruneInterval,
		Metadata: TaskMetadata{
			Description: "Deletes processed records past the retention horizon",
			Priority:    PriorityLow,
		},
	},
	TaskCacheTrim: {
		Enabled:  true,
		Interval: DefaultCacheTrimInterval,
		Metadata: TaskMetadata{
			Description: "Caps in-memory dedup indexes and the translation cache",
			Priority:    PriorityNormal,
		},
	},
}

// IsTaskEnabled reports whether a task type is configured and enabled
func IsTaskEnabled(configs map[TaskType]TaskConfig, taskType TaskType) bool {
	if config, exists := configs[taskType]; exists {
		return config.Enabled
	}
	return false
}

// GetTaskInterval returns the configured interval for a task type
func GetTaskInterval(configs map[TaskType]TaskConfig, taskType TaskType) time.Duration {
	if config, exists := configs[taskType]; exists && config.Interval > 0 {
		return config.Interval
	}
	// Return a safe default
	return 5 * time.Minute
}
