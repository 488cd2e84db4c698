package handler

import (
	"errors"
	"net/http"
	"strconv"

	"clinic-finder/internal/delivery/dto"
	"clinic-finder/internal/service"
	"clinic-finder/internal/usecase"
	"clinic-finder/pkg/geo"
	"clinic-finder/pkg/response"
	"clinic-finder/pkg/validator"

	"github.com/gorilla/mux"
)

type BranchHandler struct {
	branchUsecase usecase.BranchSearchUsecase
	validator     *validator.CustomValidator
}

func NewBranchHandler(branchUsecase usecase.BranchSearchUsecase, validator *validator.CustomValidator) *BranchHandler {
	return &BranchHandler{
		branchUsecase: branchUsecase,
		validator:     validator,
	}
}

func (h *BranchHandler) SearchBranches(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r.URL.Query())
	req := dto.BranchSearchRequest{
		Latitude:         q.Float("lat"),
		Longitude:        q.Float("lon"),
		SpecializationID: q.IntOr("specialization_id", 0),
		PreferredAt:      q.String("preferred_at"),
		MaxResults:       q.Int("max_results"),
	}
	if !q.Valid() {
		response.ValidationError(w, q.errors)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.branchUsecase.SearchBranches(r.Context(), &req)
	if err != nil {
		writeSearchError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Branches retrieved successfully", result)
}

func (h *BranchHandler) RecommendBranches(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r.URL.Query())
	req := dto.BranchRecommendationRequest{
		Latitude:         q.Float("lat"),
		Longitude:        q.Float("lon"),
		SpecializationID: q.IntOr("specialization_id", 0),
		Limit:            q.Int("limit"),
	}
	if !q.Valid() {
		response.ValidationError(w, q.errors)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.branchUsecase.RecommendBranches(r.Context(), &req)
	if err != nil {
		writeSearchError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Recommendations retrieved successfully", result)
}

func (h *BranchHandler) GetAvailableDoctors(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	branchID, err := strconv.Atoi(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid branch ID", nil)
		return
	}

	q := newQueryParser(r.URL.Query())
	specializationID := q.IntOr("specialization_id", 0)
	if !q.Valid() {
		response.ValidationError(w, q.errors)
		return
	}

	doctors, err := h.branchUsecase.GetAvailableDoctors(r.Context(), branchID, specializationID)
	if err != nil {
		if errors.Is(err, service.ErrBranchNotFound) {
			response.NotFound(w, "Branch not found")
			return
		}
		response.InternalServerError(w, "Failed to get available doctors")
		return
	}

	response.Success(w, http.StatusOK, "Available doctors retrieved successfully", doctors)
}

func writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, geo.ErrInvalidCoordinate):
		response.Error(w, http.StatusBadRequest, "Invalid coordinate", err.Error())
	case errors.Is(err, usecase.ErrInvalidPreferredAt):
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrBranchListUnavailable):
		response.ServiceUnavailable(w, "Branch directory is temporarily unavailable")
	default:
		response.InternalServerError(w, "Failed to search branches")
	}
}
