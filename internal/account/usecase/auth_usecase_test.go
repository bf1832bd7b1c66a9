package usecase

import (
	"testing"
	"time"

	accountdomain "mailvault/internal/account/domain"
	"mailvault/pkg/config"

	"github.com/stretchr/testify/require"
)

type fakeAuthAccountRepo struct {
	accounts map[string]*accountdomain.Account
}

func (r *fakeAuthAccountRepo) Create(a *accountdomain.Account) error {
	r.accounts[a.ID] = a
	return nil
}
func (r *fakeAuthAccountRepo) FindByID(id string) (*accountdomain.Account, error) {
	return r.accounts[id], nil
}
func (r *fakeAuthAccountRepo) FindByEmail(email string) (*accountdomain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}
func (r *fakeAuthAccountRepo) FindSyncable() ([]accountdomain.Account, error) {
	return nil, nil
}
func (r *fakeAuthAccountRepo) Update(a *accountdomain.Account) error {
	r.accounts[a.ID] = a
	return nil
}
func (r *fakeAuthAccountRepo) UpdateTokens(string, string, string, *time.Time) error {
	return nil
}
func (r *fakeAuthAccountRepo) UpdateLastSync(string, time.Time) error { return nil }

func authConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret",
		JWTAccessExpiry: time.Hour,
	}
}

func TestValidateToken_RoundTrip(t *testing.T) {
	account := &accountdomain.Account{ID: "acc-1", Email: "user@example.com"}
	repo := &fakeAuthAccountRepo{accounts: map[string]*accountdomain.Account{
		account.ID: account,
	}}
	uc := NewAuthUsecase(repo, nil, authConfig()).(*authUsecase)

	token, err := uc.generateToken(account)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := uc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "acc-1", resolved.ID)
	require.Equal(t, "user@example.com", resolved.Email)
}

func TestValidateToken_Garbage(t *testing.T) {
	repo := &fakeAuthAccountRepo{accounts: map[string]*accountdomain.Account{}}
	uc := NewAuthUsecase(repo, nil, authConfig())

	_, err := uc.ValidateToken("not.a.token")
	require.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	account := &accountdomain.Account{ID: "acc-1", Email: "user@example.com"}
	repo := &fakeAuthAccountRepo{accounts: map[string]*accountdomain.Account{
		account.ID: account,
	}}

	signer := NewAuthUsecase(repo, nil, authConfig()).(*authUsecase)
	token, err := signer.generateToken(account)
	require.NoError(t, err)

	otherCfg := authConfig()
	otherCfg.JWTSecret = "different-secret"
	verifier := NewAuthUsecase(repo, nil, otherCfg)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	account := &accountdomain.Account{ID: "acc-1", Email: "user@example.com"}
	repo := &fakeAuthAccountRepo{accounts: map[string]*accountdomain.Account{
		account.ID: account,
	}}

	cfg := authConfig()
	cfg.JWTAccessExpiry = -time.Minute
	uc := NewAuthUsecase(repo, nil, cfg).(*authUsecase)

	token, err := uc.generateToken(account)
	require.NoError(t, err)

	_, err = uc.ValidateToken(token)
	require.Error(t, err)
}
