package domain

import "time"

// Account is a Gmail mailbox registered for backup. Tokens are mutated by the
// token refresher, LastSync by the sync engine on successful completion.
type Account struct {
	ID    string `json:"id" gorm:"primaryKey"`
	Email string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name  string `json:"name" gorm:"size:255"`

	// Gmail API credentials
	GmailAccessToken  string     `json:"-" gorm:"type:text"`
	GmailRefreshToken string     `json:"-" gorm:"type:text"`
	GmailTokenExpiry  *time.Time `json:"gmail_token_expiry,omitempty"`

	// Settings
	SyncEnabled bool       `json:"sync_enabled" gorm:"default:true"`
	LastSync    *time.Time `json:"last_sync,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasCredentials reports whether the account has a usable Gmail token.
func (a *Account) HasCredentials() bool {
	return a.GmailAccessToken != ""
}
