package repository

import (
	"context"
	"errors"

	"clinic-finder/internal/domain/entity"
	domainRepo "clinic-finder/internal/domain/repository"

	"gorm.io/gorm"
)

type doctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) domainRepo.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) FindByID(ctx context.Context, id int) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := r.db.WithContext(ctx).Preload("Specializations").Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	normalizeDoctorStatus(&doctor)
	return &doctor, nil
}

func (r *doctorRepository) FindByBranch(ctx context.Context, branchID int) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := r.byBranch(ctx, branchID).Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	normalizeDoctorStatuses(doctors)
	return doctors, nil
}

// FindByBranchAndSpecializations matches doctors holding ANY of the given
// specializations.
func (r *doctorRepository) FindByBranchAndSpecializations(ctx context.Context, branchID int, specializationIDs []int) ([]entity.Doctor, error) {
	if len(specializationIDs) == 0 {
		return r.FindByBranch(ctx, branchID)
	}

	holders := r.db.WithContext(ctx).
		Table("doctor_specializations").
		Select("doctor_id").
		Where("specialization_id IN ?", specializationIDs)

	var doctors []entity.Doctor
	err := r.byBranch(ctx, branchID).
		Where("doctors.id IN (?)", holders).
		Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	normalizeDoctorStatuses(doctors)
	return doctors, nil
}

func (r *doctorRepository) byBranch(ctx context.Context, branchID int) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Specializations").
		Joins("JOIN doctor_branch_assignments dba ON dba.doctor_id = doctors.id").
		Where("dba.branch_id = ?", branchID).
		Order("doctors.last_name ASC, doctors.first_name ASC, doctors.id ASC")
}

// normalizeDoctorStatus maps legacy and unknown stored values onto the
// canonical statuses. Unknown values are read as off duty.
func normalizeDoctorStatus(d *entity.Doctor) {
	status, err := entity.ParseDoctorStatus(string(d.Status))
	if err != nil {
		status = entity.DoctorStatusOffDuty
	}
	d.Status = status
}

func normalizeDoctorStatuses(doctors []entity.Doctor) {
	for i := range doctors {
		normalizeDoctorStatus(&doctors[i])
	}
}
