package repository

import (
	"testing"
	"time"

	accountdomain "mailvault/internal/account/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&accountdomain.Account{}))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedAccount(t *testing.T, repo AccountRepository, email string) *accountdomain.Account {
	t.Helper()
	account := &accountdomain.Account{
		Email:             email,
		GmailAccessToken:  "access",
		GmailRefreshToken: "refresh",
		SyncEnabled:       true,
	}
	require.NoError(t, repo.Create(account))
	return account
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	account := seedAccount(t, repo, "user@example.com")
	require.NotEmpty(t, account.ID)

	byID, err := repo.FindByID(account.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	require.Equal(t, "user@example.com", byID.Email)

	byEmail, err := repo.FindByEmail("user@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	require.Equal(t, account.ID, byEmail.ID)

	missing, err := repo.FindByID("nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestAccountRepository_FindSyncable(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))

	seedAccount(t, repo, "active@example.com")

	disabled := seedAccount(t, repo, "disabled@example.com")
	disabled.SyncEnabled = false
	require.NoError(t, repo.Update(disabled))

	noToken := &accountdomain.Account{Email: "empty@example.com", SyncEnabled: true}
	require.NoError(t, repo.Create(noToken))

	syncable, err := repo.FindSyncable()
	require.NoError(t, err)
	require.Len(t, syncable, 1)
	require.Equal(t, "active@example.com", syncable[0].Email)
}

func TestAccountRepository_UpdateTokens_KeepsRefreshTokenWhenEmpty(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	account := seedAccount(t, repo, "user@example.com")

	expiry := time.Now().Add(time.Hour).UTC()
	require.NoError(t, repo.UpdateTokens(account.ID, "new-access", "", &expiry))

	found, err := repo.FindByID(account.ID)
	require.NoError(t, err)
	require.Equal(t, "new-access", found.GmailAccessToken)
	require.Equal(t, "refresh", found.GmailRefreshToken)
	require.NotNil(t, found.GmailTokenExpiry)

	// A rotated refresh token replaces the stored one.
	require.NoError(t, repo.UpdateTokens(account.ID, "new-access-2", "new-refresh", &expiry))
	found, err = repo.FindByID(account.ID)
	require.NoError(t, err)
	require.Equal(t, "new-refresh", found.GmailRefreshToken)
}

func TestAccountRepository_UpdateLastSync(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	account := seedAccount(t, repo, "user@example.com")
	require.Nil(t, account.LastSync)

	at := time.Now().UTC()
	require.NoError(t, repo.UpdateLastSync(account.ID, at))

	found, err := repo.FindByID(account.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastSync)
}
