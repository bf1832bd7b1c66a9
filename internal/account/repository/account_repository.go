package repository

import (
	"errors"
	"time"

	accountdomain "mailvault/internal/account/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new instance of accountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (r *accountRepository) Create(account *accountdomain.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()
	return r.db.Create(account).Error
}

func (r *accountRepository) FindByID(id string) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByEmail(email string) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := r.db.Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindSyncable() ([]accountdomain.Account, error) {
	var accounts []accountdomain.Account
	err := r.db.
		Where("gmail_access_token <> '' AND sync_enabled = ?", true).
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) Update(account *accountdomain.Account) error {
	account.UpdatedAt = time.Now()
	return r.db.Save(account).Error
}

func (r *accountRepository) UpdateTokens(id, accessToken, refreshToken string, expiry *time.Time) error {
	updates := map[string]interface{}{
		"gmail_access_token": accessToken,
		"gmail_token_expiry": expiry,
		"updated_at":         time.Now(),
	}
	if refreshToken != "" {
		updates["gmail_refresh_token"] = refreshToken
	}
	return r.db.Model(&accountdomain.Account{}).Where("id = ?", id).Updates(updates).Error
}

func (r *accountRepository) UpdateLastSync(id string, at time.Time) error {
	return r.db.Model(&accountdomain.Account{}).Where("id = ?", id).
		Updates(map[string]interface{}{"last_sync": at, "updated_at": time.Now()}).Error
}
