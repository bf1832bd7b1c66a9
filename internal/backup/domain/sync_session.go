package domain

import "time"

// Sync kinds.
const (
	SyncKindIncremental = "incremental"
	SyncKindFull        = "full"
	SyncKindDateRange   = "date_range"
)

// Sync sources.
const (
	SyncSourceAPI       = "api"
	SyncSourceScheduled = "scheduled"
	SyncSourceManual    = "manual"
)

// Session statuses. started -> running -> {completed, failed, cancelled};
// terminal states are final.
const (
	SyncStatusStarted   = "started"
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
	SyncStatusCancelled = "cancelled"
)

// SyncSession is one sync attempt for one account.
type SyncSession struct {
	ID        string `json:"id" gorm:"primaryKey"`
	AccountID string `json:"account_id" gorm:"index;not null"`

	SyncKind   string `json:"sync_kind" gorm:"index;size:50;not null"`
	SyncSource string `json:"sync_source" gorm:"size:50;not null"`

	// Parameters
	MaxEmails   int    `json:"max_emails"`                  // 0 = uncapped
	StartDate   string `json:"start_date" gorm:"size:20"`   // date_range only, YYYY/MM/DD
	EndDate     string `json:"end_date" gorm:"size:20"`     // date_range only, optional
	QueryFilter string `json:"query_filter" gorm:"type:text"`

	Status         string     `json:"status" gorm:"index;size:20;not null"`
	StartedAt      time.Time  `json:"started_at" gorm:"index;not null"`
	CompletedAt    *time.Time `json:"completed_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`

	// Progress counters
	EmailsProcessed  int `json:"emails_processed"`
	EmailsSynced     int `json:"emails_synced"`
	EmailsUpdated    int `json:"emails_updated"`
	EmailsSkipped    int `json:"emails_skipped"`
	BatchesProcessed int `json:"batches_processed"`
	TotalAPICalls    int `json:"total_api_calls"`

	TotalDurationSeconds int `json:"total_duration_seconds"`

	// Error tracking
	ErrorCount       int        `json:"error_count"`
	LastErrorMessage string     `json:"last_error_message" gorm:"type:text"`
	LastErrorAt      *time.Time `json:"last_error_at"`

	Notes string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the session is in a non-terminal state.
func (s *SyncSession) IsActive() bool {
	return s.Status == SyncStatusStarted || s.Status == SyncStatusRunning
}

// IsStale reports whether an active session has shown no activity for longer
// than the given threshold and should be treated as abandoned.
func (s *SyncSession) IsStale(threshold time.Duration, now time.Time) bool {
	return s.IsActive() && now.Sub(s.LastActivityAt) > threshold
}

// SyncProgress is a partial counter update; nil fields are left untouched.
type SyncProgress struct {
	EmailsProcessed  *int
	EmailsSynced     *int
	EmailsUpdated    *int
	EmailsSkipped    *int
	BatchesProcessed *int
	TotalAPICalls    *int
	ErrorCount       *int
	LastErrorMessage *string
}
