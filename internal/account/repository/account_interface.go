package repository

import (
	"time"

	accountdomain "mailvault/internal/account/domain"
)

// AccountRepository defines the credential-store operations for accounts.
type AccountRepository interface {
	Create(account *accountdomain.Account) error
	FindByID(id string) (*accountdomain.Account, error)
	FindByEmail(email string) (*accountdomain.Account, error)
	// FindSyncable returns accounts with stored credentials and sync enabled.
	FindSyncable() ([]accountdomain.Account, error)
	Update(account *accountdomain.Account) error
	// UpdateTokens persists a refreshed token set. An empty refreshToken means
	// the provider did not rotate it and the stored one is kept.
	UpdateTokens(id, accessToken, refreshToken string, expiry *time.Time) error
	UpdateLastSync(id string, at time.Time) error
}
