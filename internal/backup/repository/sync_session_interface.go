package repository

import (
	"time"

	backupdomain "mailvault/internal/backup/domain"
)

// SyncSessionRepository tracks sync sessions and their progress counters.
type SyncSessionRepository interface {
	// Create records a new session with status "started".
	Create(session *backupdomain.SyncSession) error
	FindByID(id string) (*backupdomain.SyncSession, error)
	// UpdateProgress merges the supplied counters, bumps last_activity and
	// promotes the session from started to running on the first call.
	UpdateProgress(id string, progress backupdomain.SyncProgress) error
	// Complete marks the session completed, merging final counters and
	// computing the total duration.
	Complete(id string, final backupdomain.SyncProgress) error
	Fail(id string, errorMessage string) error
	Cancel(id string, message string) error
	// ActiveForAccount returns the most recent started/running session, or nil.
	ActiveForAccount(accountID string) (*backupdomain.SyncSession, error)
	// LatestForAccount returns the most recent session of any status, or nil.
	LatestForAccount(accountID string) (*backupdomain.SyncSession, error)
	HistoryForAccount(accountID string, limit int) ([]backupdomain.SyncSession, error)
	// DeleteOlderThan removes sessions started before the cutoff; returns the
	// number deleted.
	DeleteOlderThan(cutoff time.Time) (int64, error)
}
