package entity

import (
	"fmt"
	"strings"
	"time"
)

// DoctorStatus is the live availability status of a doctor
type DoctorStatus string

const (
	DoctorStatusAvailable DoctorStatus = "available"
	DoctorStatusBusy      DoctorStatus = "busy"
	DoctorStatusOffDuty   DoctorStatus = "off_duty"

	// legacy value written by older clients, read as off duty
	doctorStatusUnavailable = "unavailable"
)

// ParseDoctorStatus normalizes a stored status value. Empty means available.
func ParseDoctorStatus(value string) (DoctorStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(DoctorStatusAvailable):
		return DoctorStatusAvailable, nil
	case string(DoctorStatusBusy):
		return DoctorStatusBusy, nil
	case string(DoctorStatusOffDuty), "off-duty", doctorStatusUnavailable:
		return DoctorStatusOffDuty, nil
	default:
		return "", fmt.Errorf("unknown doctor status %q", value)
	}
}

// IsValid reports whether s is one of the canonical statuses
func (s DoctorStatus) IsValid() bool {
	switch s {
	case DoctorStatusAvailable, DoctorStatusBusy, DoctorStatusOffDuty:
		return true
	}
	return false
}

// Doctor represents a doctor and the branches they are assigned to
type Doctor struct {
	ID        int          `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string       `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string       `gorm:"type:varchar(100);not null;index" json:"last_name"`
	Email     string       `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	Status    DoctorStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	// AvailabilityRanges holds the weekly schedule as a JSON array of
	// {"day_of_week","start_time","end_time"} objects.
	AvailabilityRanges *string   `gorm:"type:text" json:"availability_ranges,omitempty"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Specializations []Specialization `gorm:"many2many:doctor_specializations;" json:"specializations,omitempty"`
	Branches        []Branch         `gorm:"many2many:doctor_branch_assignments;" json:"branches,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// FullName returns "First Last"
func (d *Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// SpecializationIDs returns the ids of the doctor's specializations
func (d *Doctor) SpecializationIDs() []int {
	ids := make([]int, len(d.Specializations))
	for i, s := range d.Specializations {
		ids[i] = s.ID
	}
	return ids
}

// IsAvailable reports whether the doctor's live status is available
func (d *Doctor) IsAvailable() bool {
	return d.Status == DoctorStatusAvailable
}

// Schedule returns the raw weekly schedule, or "" when none is stored
func (d *Doctor) Schedule() string {
	if d.AvailabilityRanges == nil {
		return ""
	}
	return *d.AvailabilityRanges
}
