package domain

import "time"

// Email is one backed-up Gmail message. GmailID is the natural key: a second
// fetch of the same id must be a no-op.
type Email struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	GmailID string `json:"gmail_id" gorm:"uniqueIndex;size:255;not null"`
	ThreadID string `json:"thread_id" gorm:"index;size:255"`

	// Headers
	Subject    string   `json:"subject" gorm:"size:1000"`
	Sender     string   `json:"sender" gorm:"index:idx_emails_sender_date;size:500"`
	Recipients []string `json:"recipients" gorm:"serializer:json"`
	Cc         []string `json:"cc" gorm:"serializer:json"`
	Bcc        []string `json:"bcc" gorm:"serializer:json"`

	// Content
	BodyPlain string `json:"body_plain" gorm:"type:text"`
	BodyHTML  string `json:"body_html" gorm:"type:text"`

	DateReceived *time.Time `json:"date_received" gorm:"index:idx_emails_sender_date;index"`
	DateSent     *time.Time `json:"date_sent"`

	// Flags derived from the Gmail label set at fetch time
	IsRead      bool `json:"is_read"`
	IsStarred   bool `json:"is_starred"`
	IsImportant bool `json:"is_important"`
	IsSpam      bool `json:"is_spam"`
	IsTrash     bool `json:"is_trash"`

	Labels []string `json:"labels" gorm:"serializer:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attachments []EmailAttachment `json:"attachments" gorm:"constraint:OnDelete:CASCADE"`
}

// EmailAttachment belongs to exactly one Email and is cascade-deleted with it.
// The payload is stored as a BLOB; Checksum is a SHA-256 hex digest for dedup
// lookups and integrity checks.
type EmailAttachment struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	EmailID uint `json:"email_id" gorm:"index;not null"`

	Filename    string `json:"filename" gorm:"size:500"`
	ContentType string `json:"content_type" gorm:"size:200"`
	Size        int64  `json:"size"`
	ContentID   string `json:"content_id" gorm:"size:255"`
	FileData    []byte `json:"-" gorm:"type:bytea"`
	IsInline    bool   `json:"is_inline"`
	Checksum    string `json:"checksum" gorm:"index;size:64"`

	CreatedAt time.Time `json:"created_at"`
}
