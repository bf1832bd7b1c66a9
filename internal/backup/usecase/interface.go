package usecase

import (
	"context"
	"time"

	backupdomain "mailvault/internal/backup/domain"
	"mailvault/internal/backup/repository"
)

// SyncParams selects the strategy and its bounds for one sync run.
type SyncParams struct {
	Kind      string // incremental | full | date_range
	Source    string // api | scheduled | manual
	MaxEmails int    // 0 = uncapped
	StartDate string // date_range: YYYY/MM/DD
	EndDate   string // date_range, optional
}

// SyncStatus is the read surface for the API layer.
type SyncStatus struct {
	Active  bool                      `json:"active"`
	Session *backupdomain.SyncSession `json:"session,omitempty"`
	Stats   *repository.BackupStats   `json:"stats,omitempty"`
}

// SyncUsecase drives page-by-page mailbox synchronization for one account at
// a time, with single-flight per account and cooperative stop.
type SyncUsecase interface {
	// StartSync begins a sync in the background and returns its session id,
	// or errs.ErrSyncAlreadyActive when the account already has one running.
	StartSync(ctx context.Context, accountID string, params SyncParams) (string, error)
	// RunSync runs a sync to completion on the caller's goroutine, honoring
	// ctx cancellation at page boundaries. Used by the scheduler.
	RunSync(ctx context.Context, accountID string, params SyncParams) (*backupdomain.SyncSession, error)
	// RequestStop flags the account's active session for cooperative stop;
	// reports whether one was found. The loop observes the flag between
	// pages, never mid-fetch.
	RequestStop(accountID string) bool
	IsActive(accountID string) bool
	ActiveSessionID(accountID string) (string, bool)
	// Status returns the active session (stale ones excluded) or the latest
	// terminal one, plus store statistics.
	Status(accountID string) (*SyncStatus, error)
	History(accountID string, limit int) ([]backupdomain.SyncSession, error)
	// CleanupSessions removes sessions started before now minus keep.
	CleanupSessions(keep time.Duration) (int64, error)
}
