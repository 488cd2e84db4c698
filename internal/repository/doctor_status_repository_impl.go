package repository

import (
	"context"

	"clinic-finder/internal/domain/entity"
	domainRepo "clinic-finder/internal/domain/repository"

	"gorm.io/gorm"
)

type doctorStatusRepository struct {
	db *gorm.DB
}

func NewDoctorStatusRepository(db *gorm.DB) domainRepo.DoctorStatusRepository {
	return &doctorStatusRepository{db: db}
}

func (r *doctorStatusRepository) UpdateStatus(ctx context.Context, doctorID int, status entity.DoctorStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Doctor{}).
		Where("id = ?", doctorID).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// ListStatuses pages through doctor statuses ordered by id (keyset pagination)
func (r *doctorStatusRepository) ListStatuses(ctx context.Context, afterID int, limit int) ([]domainRepo.DoctorStatusRow, error) {
	var rows []domainRepo.DoctorStatusRow
	err := r.db.WithContext(ctx).
		Model(&entity.Doctor{}).
		Select("id, status").
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		status, err := entity.ParseDoctorStatus(string(rows[i].Status))
		if err != nil {
			status = entity.DoctorStatusOffDuty
		}
		rows[i].Status = status
	}
	return rows, nil
}
