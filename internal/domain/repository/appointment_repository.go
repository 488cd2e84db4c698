package repository

import (
	"context"
	"time"

	"clinic-finder/internal/domain/entity"
)

type AppointmentRepository interface {
	// HasConflict reports whether the doctor has a non-cancelled appointment
	// within [at-tolerance, at+tolerance].
	HasConflict(ctx context.Context, doctorID int, at time.Time, tolerance time.Duration) (bool, error)
	FindByDoctorAndRange(ctx context.Context, doctorID int, from, to time.Time) ([]entity.Appointment, error)
}
