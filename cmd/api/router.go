package api

import (
	"net/http"

	accountDelivery "mailvault/internal/account/delivery"
	accountUsecase "mailvault/internal/account/usecase"
	backupDelivery "mailvault/internal/backup/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase accountUsecase.AuthUsecase, authHandler *accountDelivery.AuthHandler, syncHandler *backupDelivery.SyncHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/google", authHandler.GoogleConnect)
			auth.GET("/me", accountDelivery.AuthMiddleware(authUsecase), authHandler.Me)
		}

		// Sync routes (protected)
		sync := api.Group("/sync")
		sync.Use(accountDelivery.AuthMiddleware(authUsecase))
		{
			sync.POST("/start", syncHandler.StartSync)
			sync.POST("/stop", syncHandler.StopSync)
			sync.GET("/status", syncHandler.Status)
			sync.GET("/sessions", syncHandler.Sessions)
		}
	}
}
