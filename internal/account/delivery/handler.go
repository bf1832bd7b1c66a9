package delivery

import (
	"net/http"

	accountdomain "mailvault/internal/account/domain"
	accountdto "mailvault/internal/account/dto"
	"mailvault/internal/account/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
	}
}

// GoogleConnect completes the OAuth flow: the frontend sends the authorization
// code, we store the Gmail tokens and hand back an API token.
func (h *AuthHandler) GoogleConnect(c *gin.Context) {
	var req accountdto.GoogleConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authUsecase.GoogleConnect(c.Request.Context(), req.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	account := c.MustGet("account").(*accountdomain.Account)
	c.JSON(http.StatusOK, account)
}
