package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	accountdomain "mailvault/internal/account/domain"
	accountdto "mailvault/internal/account/dto"
	"mailvault/internal/account/repository"
	backupdomain "mailvault/internal/backup/domain"
	"mailvault/pkg/config"
	"mailvault/pkg/gmail"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	accountRepo repository.AccountRepository
	mailService *gmail.Service
	config      *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(accountRepo repository.AccountRepository, mailService *gmail.Service, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		accountRepo: accountRepo,
		mailService: mailService,
		config:      cfg,
	}
}

func (u *authUsecase) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     u.config.GoogleClientID,
		ClientSecret: u.config.GoogleClientSecret,
		RedirectURL:  u.config.GoogleRedirectURI,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			gmailapi.GmailReadonlyScope,
			"https://www.googleapis.com/auth/userinfo.email",
		},
	}
}

func (u *authUsecase) GoogleConnect(ctx context.Context, code string) (*accountdto.TokenResponse, error) {
	token, err := u.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	creds := backupdomain.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		e := token.Expiry
		creds.Expiry = &e
	}

	email, err := u.mailService.Profile(ctx, creds, nil)
	if err != nil {
		return nil, err
	}

	account, err := u.accountRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = &accountdomain.Account{
			Email:       email,
			SyncEnabled: true,
		}
		applyToken(account, token)
		if err := u.accountRepo.Create(account); err != nil {
			return nil, err
		}
	} else {
		applyToken(account, token)
		if err := u.accountRepo.Update(account); err != nil {
			return nil, err
		}
	}

	apiToken, err := u.generateToken(account)
	if err != nil {
		return nil, err
	}

	return &accountdto.TokenResponse{
		Token:   apiToken,
		Account: account,
	}, nil
}

func applyToken(account *accountdomain.Account, token *oauth2.Token) {
	account.GmailAccessToken = token.AccessToken
	if token.RefreshToken != "" {
		account.GmailRefreshToken = token.RefreshToken
	}
	if token.Expiry.IsZero() {
		account.GmailTokenExpiry = nil
	} else {
		e := token.Expiry
		account.GmailTokenExpiry = &e
	}
}

func (u *authUsecase) generateToken(account *accountdomain.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"exp":   time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) ValidateToken(tokenString string) (*accountdomain.Account, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(u.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	accountID, _ := claims["sub"].(string)
	if accountID == "" {
		return nil, errors.New("invalid token subject")
	}

	account, err := u.accountRepo.FindByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New("account no longer exists")
	}
	return account, nil
}
