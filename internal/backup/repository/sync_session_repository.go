package repository

import (
	"errors"
	"time"

	backupdomain "mailvault/internal/backup/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syncSessionRepository implements SyncSessionRepository interface
type syncSessionRepository struct {
	db *gorm.DB
}

// NewSyncSessionRepository creates a new instance of syncSessionRepository
func NewSyncSessionRepository(db *gorm.DB) SyncSessionRepository {
	return &syncSessionRepository{
		db: db,
	}
}

func (r *syncSessionRepository) Create(session *backupdomain.SyncSession) error {
	now := time.Now()
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.Status = backupdomain.SyncStatusStarted
	session.StartedAt = now
	session.LastActivityAt = now
	session.CreatedAt = now
	session.UpdatedAt = now
	return r.db.Create(session).Error
}

func (r *syncSessionRepository) FindByID(id string) (*backupdomain.SyncSession, error) {
	var session backupdomain.SyncSession
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *syncSessionRepository) UpdateProgress(id string, progress backupdomain.SyncProgress) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var session backupdomain.SyncSession
		if err := tx.Where("id = ?", id).First(&session).Error; err != nil {
			return err
		}

		applyProgress(&session, progress)
		session.LastActivityAt = time.Now()
		if session.Status == backupdomain.SyncStatusStarted {
			session.Status = backupdomain.SyncStatusRunning
		}
		session.UpdatedAt = time.Now()
		return tx.Save(&session).Error
	})
}

func (r *syncSessionRepository) Complete(id string, final backupdomain.SyncProgress) error {
	return r.terminate(id, backupdomain.SyncStatusCompleted, "", final)
}

func (r *syncSessionRepository) Fail(id string, errorMessage string) error {
	return r.terminate(id, backupdomain.SyncStatusFailed, errorMessage, backupdomain.SyncProgress{})
}

func (r *syncSessionRepository) Cancel(id string, message string) error {
	return r.terminate(id, backupdomain.SyncStatusCancelled, message, backupdomain.SyncProgress{})
}

// terminate moves a session into a terminal state. Partial counters are kept
// so interrupted sessions still show their progress.
func (r *syncSessionRepository) terminate(id, status, errorMessage string, final backupdomain.SyncProgress) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var session backupdomain.SyncSession
		if err := tx.Where("id = ?", id).First(&session).Error; err != nil {
			return err
		}
		if !session.IsActive() {
			// Terminal states are final.
			return nil
		}

		applyProgress(&session, final)

		now := time.Now()
		session.Status = status
		session.CompletedAt = &now
		session.LastActivityAt = now
		session.TotalDurationSeconds = int(now.Sub(session.StartedAt).Seconds())
		if errorMessage != "" {
			session.LastErrorMessage = errorMessage
			session.LastErrorAt = &now
			if status == backupdomain.SyncStatusFailed {
				session.ErrorCount++
			}
		}
		session.UpdatedAt = now
		return tx.Save(&session).Error
	})
}

func (r *syncSessionRepository) ActiveForAccount(accountID string) (*backupdomain.SyncSession, error) {
	var session backupdomain.SyncSession
	err := r.db.
		Where("account_id = ? AND status IN ?", accountID,
			[]string{backupdomain.SyncStatusStarted, backupdomain.SyncStatusRunning}).
		Order("started_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *syncSessionRepository) LatestForAccount(accountID string) (*backupdomain.SyncSession, error) {
	var session backupdomain.SyncSession
	err := r.db.
		Where("account_id = ?", accountID).
		Order("started_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *syncSessionRepository) HistoryForAccount(accountID string, limit int) ([]backupdomain.SyncSession, error) {
	if limit <= 0 {
		limit = 10
	}
	var sessions []backupdomain.SyncSession
	err := r.db.
		Where("account_id = ?", accountID).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func (r *syncSessionRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.Where("started_at < ?", cutoff).Delete(&backupdomain.SyncSession{})
	return res.RowsAffected, res.Error
}

func applyProgress(session *backupdomain.SyncSession, p backupdomain.SyncProgress) {
	if p.EmailsProcessed != nil {
		session.EmailsProcessed = *p.EmailsProcessed
	}
	if p.EmailsSynced != nil {
		session.EmailsSynced = *p.EmailsSynced
	}
	if p.EmailsUpdated != nil {
		session.EmailsUpdated = *p.EmailsUpdated
	}
	if p.EmailsSkipped != nil {
		session.EmailsSkipped = *p.EmailsSkipped
	}
	if p.BatchesProcessed != nil {
		session.BatchesProcessed = *p.BatchesProcessed
	}
	if p.TotalAPICalls != nil {
		session.TotalAPICalls = *p.TotalAPICalls
	}
	if p.ErrorCount != nil {
		session.ErrorCount = *p.ErrorCount
	}
	if p.LastErrorMessage != nil {
		session.LastErrorMessage = *p.LastErrorMessage
		now := time.Now()
		session.LastErrorAt = &now
	}
}
