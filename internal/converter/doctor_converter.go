package converter

import (
	"clinic-finder/internal/delivery/dto"
	"clinic-finder/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) dto.DoctorResponse {
	specializations := make([]string, len(doctor.Specializations))
	for i, s := range doctor.Specializations {
		specializations[i] = s.Name
	}

	return dto.DoctorResponse{
		ID:              doctor.ID,
		FullName:        doctor.FullName(),
		Email:           doctor.Email,
		Status:          string(doctor.Status),
		Specializations: specializations,
	}
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = DoctorToResponse(&doctors[i])
	}
	return responses
}

// SlotsToResponses renders weekly slots as day name and HH:MM bounds
func SlotsToResponses(slots []entity.AvailabilitySlot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i, s := range slots {
		responses[i] = dto.SlotResponse{
			DayOfWeek: s.Day.String(),
			StartTime: entity.FormatClock(s.Start),
			EndTime:   entity.FormatClock(s.End),
		}
	}
	return responses
}
