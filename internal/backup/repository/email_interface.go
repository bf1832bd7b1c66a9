package repository

import (
	"time"

	backupdomain "mailvault/internal/backup/domain"
)

// BackupStats summarizes what is stored locally for the status endpoint.
type BackupStats struct {
	TotalEmails         int64 `json:"total_emails"`
	UnreadEmails        int64 `json:"unread_emails"`
	TotalAttachments    int64 `json:"total_attachments"`
	AttachmentSizeBytes int64 `json:"total_attachment_size_bytes"`
}

// EmailRepository defines idempotent storage for backed-up messages.
type EmailRepository interface {
	// ExistsByGmailID checks presence by the remote natural key.
	ExistsByGmailID(gmailID string) (bool, error)
	// SaveWithAttachments inserts the email and its attachments in one
	// transaction. A duplicate gmail_id is a no-op that reports inserted=false.
	SaveWithAttachments(email *backupdomain.Email) (inserted bool, err error)
	// LatestReceivedAt returns the receipt time of the newest stored message;
	// ok is false when the store is empty.
	LatestReceivedAt() (t time.Time, ok bool, err error)
	FindByGmailID(gmailID string) (*backupdomain.Email, error)
	Stats() (*BackupStats, error)
}
