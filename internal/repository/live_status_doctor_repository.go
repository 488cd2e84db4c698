package repository

import (
	"context"

	"clinic-finder/internal/domain/entity"
	domainRepo "clinic-finder/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// StatusSource supplies live doctor statuses newer than the database snapshot
type StatusSource interface {
	GetStatuses(ctx context.Context, doctorIDs []int) (map[int]entity.DoctorStatus, error)
}

// liveStatusDoctorRepository overlays live statuses on doctors read from the
// wrapped repository. When the source fails the stored statuses are kept.
type liveStatusDoctorRepository struct {
	domainRepo.DoctorRepository
	source StatusSource
	log    *logrus.Logger
}

func NewLiveStatusDoctorRepository(base domainRepo.DoctorRepository, source StatusSource, log *logrus.Logger) domainRepo.DoctorRepository {
	return &liveStatusDoctorRepository{
		DoctorRepository: base,
		source:           source,
		log:              log,
	}
}

func (r *liveStatusDoctorRepository) FindByID(ctx context.Context, id int) (*entity.Doctor, error) {
	doctor, err := r.DoctorRepository.FindByID(ctx, id)
	if err != nil || doctor == nil {
		return doctor, err
	}
	doctors := []entity.Doctor{*doctor}
	r.overlay(ctx, doctors)
	return &doctors[0], nil
}

func (r *liveStatusDoctorRepository) FindByBranch(ctx context.Context, branchID int) ([]entity.Doctor, error) {
	doctors, err := r.DoctorRepository.FindByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	r.overlay(ctx, doctors)
	return doctors, nil
}

func (r *liveStatusDoctorRepository) FindByBranchAndSpecializations(ctx context.Context, branchID int, specializationIDs []int) ([]entity.Doctor, error) {
	doctors, err := r.DoctorRepository.FindByBranchAndSpecializations(ctx, branchID, specializationIDs)
	if err != nil {
		return nil, err
	}
	r.overlay(ctx, doctors)
	return doctors, nil
}

func (r *liveStatusDoctorRepository) overlay(ctx context.Context, doctors []entity.Doctor) {
	if len(doctors) == 0 {
		return
	}

	ids := make([]int, len(doctors))
	for i := range doctors {
		ids[i] = doctors[i].ID
	}

	statuses, err := r.source.GetStatuses(ctx, ids)
	if err != nil {
		r.log.Warnf("Failed to read live doctor statuses, using stored statuses: %+v", err)
		return
	}

	for i := range doctors {
		if status, ok := statuses[doctors[i].ID]; ok {
			doctors[i].Status = status
		}
	}
}
