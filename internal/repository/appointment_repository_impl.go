package repository

import (
	"context"
	"time"

	"clinic-finder/internal/domain/entity"
	domainRepo "clinic-finder/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) HasConflict(ctx context.Context, doctorID int, at time.Time, tolerance time.Duration) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Where("appointment_datetime BETWEEN ? AND ?", at.Add(-tolerance), at.Add(tolerance)).
		Where("status <> ?", entity.AppointmentStatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *appointmentRepository) FindByDoctorAndRange(ctx context.Context, doctorID int, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_datetime BETWEEN ? AND ?", doctorID, from, to).
		Order("appointment_datetime ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}
