package repository

import (
	"context"

	"clinic-finder/internal/domain/entity"
)

type BranchRepository interface {
	FindAll(ctx context.Context) ([]entity.Branch, error)
	FindByID(ctx context.Context, id int) (*entity.Branch, error)
}
