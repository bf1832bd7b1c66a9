package delivery

import (
	"errors"
	"net/http"
	"strconv"

	accountdomain "mailvault/internal/account/domain"
	backupdomain "mailvault/internal/backup/domain"
	backupdto "mailvault/internal/backup/dto"
	"mailvault/internal/backup/usecase"
	"mailvault/internal/errs"

	"github.com/gin-gonic/gin"
)

// SyncHandler exposes the orchestrator operations to the HTTP layer. This is
// the full surface: the API never reaches into the registries or repositories
// directly.
type SyncHandler struct {
	syncUsecase usecase.SyncUsecase
}

func NewSyncHandler(syncUsecase usecase.SyncUsecase) *SyncHandler {
	return &SyncHandler{
		syncUsecase: syncUsecase,
	}
}

func (h *SyncHandler) StartSync(c *gin.Context) {
	account := c.MustGet("account").(*accountdomain.Account)

	var req backupdto.StartSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID, err := h.syncUsecase.StartSync(c.Request.Context(), account.ID, usecase.SyncParams{
		Kind:      req.Kind,
		Source:    backupdomain.SyncSourceAPI,
		MaxEmails: req.MaxEmails,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrSyncAlreadyActive):
			c.JSON(http.StatusConflict, gin.H{"error": "sync already active for this account"})
		case errors.Is(err, errs.ErrNoCredentials):
			c.JSON(http.StatusPreconditionFailed, gin.H{"error": "account has no Gmail credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, backupdto.StartSyncResponse{
		SessionID: sessionID,
		Status:    backupdomain.SyncStatusStarted,
	})
}

func (h *SyncHandler) StopSync(c *gin.Context) {
	account := c.MustGet("account").(*accountdomain.Account)

	stopped := h.syncUsecase.RequestStop(account.ID)
	message := "stop requested; the sync will cancel at the next page boundary"
	if !stopped {
		message = "no active sync for this account"
	}
	c.JSON(http.StatusOK, backupdto.StopSyncResponse{
		Stopped: stopped,
		Message: message,
	})
}

func (h *SyncHandler) Status(c *gin.Context) {
	account := c.MustGet("account").(*accountdomain.Account)

	status, err := h.syncUsecase.Status(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *SyncHandler) Sessions(c *gin.Context) {
	account := c.MustGet("account").(*accountdomain.Account)

	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	sessions, err := h.syncUsecase.History(account.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, backupdto.SessionsResponse{Sessions: sessions})
}
