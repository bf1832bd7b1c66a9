package repository

import (
	"testing"
	"time"

	backupdomain "mailvault/internal/backup/domain"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func newSession(t *testing.T, repo SyncSessionRepository, accountID string) *backupdomain.SyncSession {
	t.Helper()
	session := &backupdomain.SyncSession{
		AccountID:  accountID,
		SyncKind:   backupdomain.SyncKindIncremental,
		SyncSource: backupdomain.SyncSourceAPI,
	}
	require.NoError(t, repo.Create(session))
	return session
}

func TestSyncSessionRepository_CreateStartsSession(t *testing.T) {
	repo := NewSyncSessionRepository(newTestDB(t))

	session := newSession(t, repo, "acc-1")
	require.NotEmpty(t, session.ID)
	require.Equal(t, backupdomain.SyncStatusStarted, session.Status)
	require.False(t, session.StartedAt.IsZero())

	found, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.True(t, found.IsActive())
}

func TestSyncSessionRepository_UpdateProgress_PromotesToRunning(t *testing.T) {
	repo := NewSyncSessionRepository(newTestDB(t))
	session := newSession(t, repo, "acc-1")

	err := repo.UpdateProgress(session.ID, backupdomain.SyncProgress{
		EmailsProcessed:  intPtr(10),
		EmailsSynced:     intPtr(8),
		EmailsSkipped:    intPtr(2),
		BatchesProcessed: intPtr(1),
	})
	require.NoError(t, err)

	found, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	require.Equal(t, backupdomain.SyncStatusRunning, found.Status)
	require.Equal(t, 10, found.EmailsProcessed)
	require.Equal(t, 8, found.EmailsSynced)
	require.Equal(t, 2, found.EmailsSkipped)

	// Partial update touches only the supplied counters.
	err = repo.UpdateProgress(session.ID, backupdomain.SyncProgress{EmailsSynced: intPtr(9)})
	require.NoError(t, err)
	found, err = repo.FindByID(session.ID)
	require.NoError(t, err)
	require.Equal(t, 9, found.EmailsSynced)
	require.Equal(t, 10, found.EmailsProcessed)
}

func TestSyncSessionRepository_Complete(t *testing.T) {
	repo := NewSyncSessionRepository(newTestDB(t))
	session := newSession(t, repo, "acc-1")

	require.NoError(t, repo.Complete(session.ID, backupdomain.SyncProgress{
		EmailsSynced: intPtr(42),
	}))

	found, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	require.Equal(t, backupdomain.SyncStatusCompleted, found.Status)
	require.Equal(t, 42, found.EmailsSynced)
	require.NotNil(t, found.CompletedAt)
	require.False(t, found.IsActive())
}

func TestSyncSessionRepository_TerminalStatesAreFinal(t *testing.T) {
	repo := NewSyncSessionRepository(newTestDB(t))
	session := newSession(t, repo, "acc-1")

	require.NoError(t, repo.Cancel(session.ID, "stopped by request"))

	// A late Fail from the losing goroutine must not overwrite cancelled.
	require.NoError(t, repo.Fail(session.ID, "late failure"))

	found, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	require.Equal(t, backupdomain.SyncStatusCancelled, found.Status)
	require.Equal(t, "stopped by request", found.Notes)
	require.NotEqual(t, "late failure", found.LastErrorMessage)
}

func TestSyncSessionRepository_FailRecordsError(t *testing.T) {
	repo := NewSyncSessionRepository(newTestDB(t))
	session := newSession(t, repo, "acc-1")

	require.NoError(t, repo.Fail(session.ID, "listing messages: 503"))

	found, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	require.Equal(t, backupdomain.SyncStatusFailed, found.Status)
	require.Equal(t, "listing messages: 503", found.LastErrorMessage)
	require.Equal(t, 1, found.ErrorCount)
	require.NotNil(t, found.LastErrorAt)
}

func TestSyncSessionRepository_ActiveAndLatestForAccount(t *testing.T) {
	repo := NewSyncSessionRepository(newTestDB(t))

	active, err := repo.ActiveForAccount("acc-1")
	require.NoError(t, err)
	require.Nil(t, active)

	first := newSession(t, repo, "acc-1")
	require.NoError(t, repo.Complete(first.ID, backupdomain.SyncProgress{}))
	second := newSession(t, repo, "acc-1")
	newSession(t, repo, "acc-2")

	active, err = repo.ActiveForAccount("acc-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, second.ID, active.ID)

	latest, err := repo.LatestForAccount("acc-1")
	require.NoError(t, err)
	require.Equal(t, second.ID, latest.ID)

	history, err := repo.HistoryForAccount("acc-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestSyncSessionRepository_DeleteOlderThan(t *testing.T) {
	db := newTestDB(t)
	repo := NewSyncSessionRepository(db)

	old := newSession(t, repo, "acc-1")
	require.NoError(t, db.Model(&backupdomain.SyncSession{}).
		Where("id = ?", old.ID).
		Update("started_at", time.Now().Add(-48*time.Hour)).Error)
	newSession(t, repo, "acc-1")

	deleted, err := repo.DeleteOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	remaining, err := repo.HistoryForAccount("acc-1", 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}
