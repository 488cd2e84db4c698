package dto

import (
	"github.com/shopspring/decimal"
)

// Request DTOs

type BranchSearchRequest struct {
	Latitude         *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Longitude        *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	SpecializationID int      `json:"specialization_id"`
	PreferredAt      string   `json:"preferred_at" validate:"omitempty"`
	MaxResults       *int     `json:"max_results" validate:"omitempty,gte=0,lte=50"`
}

type BranchRecommendationRequest struct {
	Latitude         *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Longitude        *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	SpecializationID int      `json:"specialization_id"`
	Limit            *int     `json:"limit" validate:"omitempty,gte=0,lte=100"`
}

// Response DTOs

type BranchResponse struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address,omitempty"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Capacity      int      `json:"capacity,omitempty"`
	ContactNumber string   `json:"contact_number,omitempty"`
}

type BranchCandidateResponse struct {
	Branch     BranchResponse               `json:"branch"`
	DistanceKm decimal.Decimal              `json:"distance_km"`
	GreenCount int                          `json:"green_count"`
	Doctors    []DoctorAvailabilityResponse `json:"doctors"`
}

type BranchSearchResponse struct {
	SearchID string                    `json:"search_id"`
	Results  []BranchCandidateResponse `json:"results"`
	Total    int                       `json:"total"`
}

type RecommendationResponse struct {
	Branch               BranchResponse  `json:"branch"`
	DistanceKm           decimal.Decimal `json:"distance_km"`
	AvailableDoctorCount int             `json:"available_doctor_count"`
}

type RecommendationListResponse struct {
	SearchID string                   `json:"search_id"`
	Results  []RecommendationResponse `json:"results"`
	Total    int                      `json:"total"`
}
