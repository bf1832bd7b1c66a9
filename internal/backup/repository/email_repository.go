package repository

import (
	"errors"
	"time"

	backupdomain "mailvault/internal/backup/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// emailRepository implements EmailRepository interface
type emailRepository struct {
	db *gorm.DB
}

// NewEmailRepository creates a new instance of emailRepository
func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{
		db: db,
	}
}

func (r *emailRepository) ExistsByGmailID(gmailID string) (bool, error) {
	var count int64
	err := r.db.Model(&backupdomain.Email{}).Where("gmail_id = ?", gmailID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *emailRepository) SaveWithAttachments(email *backupdomain.Email) (bool, error) {
	inserted := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		email.CreatedAt = now
		email.UpdatedAt = now

		// DoNothing keeps the first fetch of an id authoritative; a concurrent
		// insert of the same gmail_id is reported as a skip, not an error.
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "gmail_id"}},
			DoNothing: true,
		}).Omit("Attachments").Create(email)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		inserted = true

		for i := range email.Attachments {
			email.Attachments[i].EmailID = email.ID
			email.Attachments[i].CreatedAt = now
			if err := tx.Create(&email.Attachments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return inserted, err
}

func (r *emailRepository) LatestReceivedAt() (time.Time, bool, error) {
	var email backupdomain.Email
	err := r.db.
		Where("date_received IS NOT NULL").
		Order("date_received DESC").
		First(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	if email.DateReceived == nil {
		return time.Time{}, false, nil
	}
	return *email.DateReceived, true, nil
}

func (r *emailRepository) FindByGmailID(gmailID string) (*backupdomain.Email, error) {
	var email backupdomain.Email
	err := r.db.Preload("Attachments").Where("gmail_id = ?", gmailID).First(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

func (r *emailRepository) Stats() (*BackupStats, error) {
	stats := &BackupStats{}

	if err := r.db.Model(&backupdomain.Email{}).Count(&stats.TotalEmails).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&backupdomain.Email{}).Where("is_read = ?", false).Count(&stats.UnreadEmails).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&backupdomain.EmailAttachment{}).Count(&stats.TotalAttachments).Error; err != nil {
		return nil, err
	}
	var size *int64
	if err := r.db.Model(&backupdomain.EmailAttachment{}).Select("SUM(size)").Scan(&size).Error; err != nil {
		return nil, err
	}
	if size != nil {
		stats.AttachmentSizeBytes = *size
	}
	return stats, nil
}
