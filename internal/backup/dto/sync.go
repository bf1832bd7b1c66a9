package dto

import backupdomain "mailvault/internal/backup/domain"

type StartSyncRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=incremental full date_range"`
	MaxEmails int    `json:"max_emails"`
	StartDate string `json:"start_date"` // date_range: YYYY/MM/DD
	EndDate   string `json:"end_date"`
}

type StartSyncResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type StopSyncResponse struct {
	Stopped bool   `json:"stopped"`
	Message string `json:"message"`
}

type SessionsResponse struct {
	Sessions []backupdomain.SyncSession `json:"sessions"`
}
