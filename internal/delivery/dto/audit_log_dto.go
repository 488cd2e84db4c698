package dto

import (
	"clinic-finder/internal/domain/entity"
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type AuditLogQuery struct {
	Action string `json:"action" validate:"required,oneof=doctor.status.update doctor.status.resync"`
	Limit  int    `json:"limit" validate:"gte=1,lte=200"`
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	UserID    *uuid.UUID  `json:"user_id,omitempty"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
