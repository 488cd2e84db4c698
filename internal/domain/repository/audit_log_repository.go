package repository

import (
	"context"

	"clinic-finder/internal/domain/entity"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindByAction(ctx context.Context, action string, limit int) ([]entity.AuditLog, error)
}
