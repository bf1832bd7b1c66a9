package dto

import accountdomain "mailvault/internal/account/domain"

type GoogleConnectRequest struct {
	Code string `json:"code" binding:"required"`
}

type TokenResponse struct {
	Token   string                 `json:"token"`
	Account *accountdomain.Account `json:"account"`
}
