package converter

import (
	"clinic-finder/internal/delivery/dto"
	"clinic-finder/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// distancePlaces is the number of decimal places reported for distances
const distancePlaces = 2

// DistanceToDecimal rounds a distance in kilometers for display
func DistanceToDecimal(km float64) decimal.Decimal {
	return decimal.NewFromFloat(km).Round(distancePlaces)
}

// BranchToResponse converts a Branch entity to BranchResponse DTO
func BranchToResponse(branch *entity.Branch) dto.BranchResponse {
	return dto.BranchResponse{
		ID:            branch.ID,
		Name:          branch.Name,
		Address:       branch.Address,
		Latitude:      branch.Latitude,
		Longitude:     branch.Longitude,
		Capacity:      branch.Capacity,
		ContactNumber: branch.ContactNumber,
	}
}

// BranchCandidatesToResponses converts ranked candidates, keeping their order
func BranchCandidatesToResponses(candidates []entity.BranchCandidate) []dto.BranchCandidateResponse {
	responses := make([]dto.BranchCandidateResponse, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		doctors := make([]dto.DoctorAvailabilityResponse, len(c.Doctors))
		for j := range c.Doctors {
			doctors[j] = dto.DoctorAvailabilityResponse{
				DoctorResponse: DoctorToResponse(&c.Doctors[j].Doctor),
				Classification: string(c.Doctors[j].Classification),
			}
		}
		responses[i] = dto.BranchCandidateResponse{
			Branch:     BranchToResponse(&c.Branch),
			DistanceKm: DistanceToDecimal(c.DistanceKm),
			GreenCount: c.GreenCount(),
			Doctors:    doctors,
		}
	}
	return responses
}

// RecommendationsToResponses converts ranked recommendations, keeping their order
func RecommendationsToResponses(recs []entity.Recommendation) []dto.RecommendationResponse {
	responses := make([]dto.RecommendationResponse, len(recs))
	for i := range recs {
		responses[i] = dto.RecommendationResponse{
			Branch:               BranchToResponse(&recs[i].Branch),
			DistanceKm:           DistanceToDecimal(recs[i].DistanceKm),
			AvailableDoctorCount: recs[i].AvailableDoctorCount,
		}
	}
	return responses
}
