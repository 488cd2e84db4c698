package entity

import "time"

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "canceled"
)

// Appointment is a booked visit of a patient with a doctor at a branch
type Appointment struct {
	ID          int               `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID   int               `gorm:"not null;index" json:"patient_id"`
	DoctorID    int               `gorm:"not null;index:idx_appointments_doctor_time" json:"doctor_id"`
	BranchID    int               `gorm:"not null;index" json:"branch_id"`
	ScheduledAt time.Time         `gorm:"column:appointment_datetime;not null;index:idx_appointments_doctor_time" json:"scheduled_at"`
	Status      AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsCancelled checks if appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}
