package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	accountdomain "mailvault/internal/account/domain"
	"mailvault/internal/account/repository"
	"mailvault/pkg/config"
	"mailvault/pkg/gmail"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// CredentialRefresher exchanges a refresh token for a new access token.
type CredentialRefresher interface {
	RefreshCredentials(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// TokenRefresher proactively renews Gmail tokens nearing expiry so syncs
// never start with dead credentials. Independent of sync activity.
type TokenRefresher struct {
	accountRepo repository.AccountRepository
	refresher   CredentialRefresher
	cfg         *config.Config
	log         *logrus.Logger

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewTokenRefresher creates a new token refresher
func NewTokenRefresher(accountRepo repository.AccountRepository, refresher CredentialRefresher, cfg *config.Config, log *logrus.Logger) *TokenRefresher {
	return &TokenRefresher{
		accountRepo: accountRepo,
		refresher:   refresher,
		cfg:         cfg,
		log:         log,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the refresh loop in its own goroutine.
func (t *TokenRefresher) Start() {
	t.log.WithField("interval", t.cfg.RefreshInterval).Info("starting token refresh service")

	go func() {
		ticker := time.NewTicker(t.cfg.RefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.RunCycle(context.Background())
			case <-t.stopChan:
				t.log.Info("token refresh service stopped")
				return
			}
		}
	}()
}

// Stop requests shutdown; observed within one tick.
func (t *TokenRefresher) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
}

// RunCycle checks every account with credentials and refreshes tokens that
// expire within the threshold. Failures never abort the cycle.
func (t *TokenRefresher) RunCycle(ctx context.Context) {
	accounts, err := t.accountRepo.FindSyncable()
	if err != nil {
		t.log.WithError(err).Error("failed to list accounts for token refresh")
		return
	}

	for i := range accounts {
		if err := t.refreshIfNeeded(ctx, &accounts[i]); err != nil {
			t.log.WithField("account_id", accounts[i].ID).WithError(err).Error("token refresh failed")
		}
	}
}

func (t *TokenRefresher) refreshIfNeeded(ctx context.Context, account *accountdomain.Account) error {
	log := t.log.WithField("account_id", account.ID)

	if account.GmailTokenExpiry == nil {
		// Without an expiry we cannot judge urgency; the oauth2 transport
		// will refresh lazily on the next API call instead.
		log.Debug("no token expiry recorded, skipping proactive refresh")
		return nil
	}
	if account.GmailRefreshToken == "" {
		log.Debug("no refresh token stored, skipping proactive refresh")
		return nil
	}

	untilExpiry := time.Until(*account.GmailTokenExpiry)
	if untilExpiry >= t.cfg.RefreshThreshold {
		return nil
	}

	log.WithField("expires_in", untilExpiry.Round(time.Second)).Info("token expiring soon, refreshing")

	token, err := t.refresher.RefreshCredentials(ctx, account.GmailRefreshToken)
	if err != nil {
		var authErr *gmail.AuthError
		if errors.As(err, &authErr) && authErr.Reason == gmail.AuthRevoked {
			// Terminal: nothing to retry, the user must re-authorize.
			log.Error("refresh token revoked, manual re-authorization required")
			return nil
		}
		return err
	}

	var expiry *time.Time
	if !token.Expiry.IsZero() {
		e := token.Expiry
		expiry = &e
	}
	// The refresh token only rotates sometimes; keep the stored one otherwise.
	rotated := ""
	if token.RefreshToken != "" && token.RefreshToken != account.GmailRefreshToken {
		rotated = token.RefreshToken
	}
	if err := t.accountRepo.UpdateTokens(account.ID, token.AccessToken, rotated, expiry); err != nil {
		return err
	}

	log.WithField("new_expiry", token.Expiry).Info("token refreshed")
	return nil
}
