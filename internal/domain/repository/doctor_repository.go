package repository

import (
	"context"

	"clinic-finder/internal/domain/entity"
)

// DoctorRepository reads doctor snapshots. Returned doctors carry their
// specializations.
type DoctorRepository interface {
	FindByID(ctx context.Context, id int) (*entity.Doctor, error)
	FindByBranch(ctx context.Context, branchID int) ([]entity.Doctor, error)
	// FindByBranchAndSpecializations returns doctors at the branch holding any
	// of specializationIDs. An empty set behaves like FindByBranch.
	FindByBranchAndSpecializations(ctx context.Context, branchID int, specializationIDs []int) ([]entity.Doctor, error)
}

// DoctorStatusRepository persists live doctor statuses
type DoctorStatusRepository interface {
	UpdateStatus(ctx context.Context, doctorID int, status entity.DoctorStatus) (int64, error)
	ListStatuses(ctx context.Context, afterID int, limit int) ([]DoctorStatusRow, error)
}

// DoctorStatusRow is a lightweight (id, status) projection used for cache sync
type DoctorStatusRow struct {
	ID     int
	Status entity.DoctorStatus
}
