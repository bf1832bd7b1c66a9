package api

import (
	accountDelivery "mailvault/internal/account/delivery"
	accountUsecase "mailvault/internal/account/usecase"
	backupDelivery "mailvault/internal/backup/delivery"
	backupUsecase "mailvault/internal/backup/usecase"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase accountUsecase.AuthUsecase
	authHandler *accountDelivery.AuthHandler
	syncHandler *backupDelivery.SyncHandler
}

func NewHandler(authUc accountUsecase.AuthUsecase, syncUc backupUsecase.SyncUsecase) *Handler {
	return &Handler{
		authUsecase: authUc,
		authHandler: accountDelivery.NewAuthHandler(authUc),
		syncHandler: backupDelivery.NewSyncHandler(syncUc),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.authHandler, h.syncHandler)

	return r.Run(addr)
}
