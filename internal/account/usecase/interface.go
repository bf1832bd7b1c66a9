package usecase

import (
	"context"

	accountdomain "mailvault/internal/account/domain"
	accountdto "mailvault/internal/account/dto"
)

// AuthUsecase onboards Gmail accounts and authenticates API callers.
type AuthUsecase interface {
	// GoogleConnect exchanges an OAuth authorization code for Gmail tokens,
	// upserts the account and returns an API session token.
	GoogleConnect(ctx context.Context, code string) (*accountdto.TokenResponse, error)
	// ValidateToken resolves an API token to its account.
	ValidateToken(token string) (*accountdomain.Account, error)
}
