package models

import (
	"time"

	"github.com/lib/pq"
)

// ProcessedPost is one post that reached a terminal pipeline decision,
// relayed or skipped. A skipped post stores its skip tag in Translated so
// every decision leaves an auditable row. The post ID is the primary key:
// re-processing the same ID upserts rather than duplicates.
type ProcessedPost struct {
	ID                 string         `gorm:"primaryKey;column:id"`
	RawContent         string         `gorm:"column:raw_content;not null"`
	Translated         string         `gorm:"column:translated"`
	CreatedAt          time.Time      `gorm:"column:created_at;not null"`
	ProcessedAt        time.Time      `gorm:"column:processed_at;not null;index"`
	SourceURL          string         `gorm:"column:source_url"`
	AccountID          string         `gorm:"column:account_id"`
	ContentFingerprint string         `gorm:"column:content_fingerprint;index"`
	ConversationID     string         `gorm:"column:conversation_id;index"`
	MediaURLs          pq.StringArray `gorm:"column:media_urls;type:text[]"`
	IsThread           bool           `gorm:"column:is_thread"`
	Relayed            bool           `gorm:"column:relayed"`
}

// TableName specifies the table name for the ProcessedPost model
func (ProcessedPost) TableName() string {
	return "processed_posts"
}
