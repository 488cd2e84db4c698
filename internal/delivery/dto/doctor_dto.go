package dto

// Request DTOs

type UpdateDoctorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available busy off_duty"`
}

// Response DTOs

type DoctorResponse struct {
	ID              int      `json:"id"`
	FullName        string   `json:"full_name"`
	Email           string   `json:"email,omitempty"`
	Status          string   `json:"status"`
	Specializations []string `json:"specializations"`
}

type DoctorAvailabilityResponse struct {
	DoctorResponse
	Classification string `json:"classification"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

type SlotResponse struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type DoctorSlotsResponse struct {
	DoctorID int            `json:"doctor_id"`
	Date     string         `json:"date"`
	Slots    []SlotResponse `json:"slots"`
}
