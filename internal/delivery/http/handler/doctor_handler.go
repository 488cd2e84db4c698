package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"clinic-finder/internal/delivery/dto"
	"clinic-finder/internal/delivery/http/middleware"
	"clinic-finder/internal/service"
	"clinic-finder/internal/usecase"
	"clinic-finder/pkg/response"
	"clinic-finder/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

func (h *DoctorHandler) GetDoctorSlots(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := strconv.Atoi(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		response.ValidationError(w, map[string]string{"date": "date is required"})
		return
	}

	slots, err := h.doctorUsecase.GetDoctorSlots(r.Context(), doctorID, date)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidDate):
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to get doctor slots")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor slots retrieved successfully", slots)
}

func (h *DoctorHandler) UpdateDoctorStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := strconv.Atoi(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	var req dto.UpdateDoctorStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	var actorID *uuid.UUID
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		actorID = &userID
	}

	doctor, err := h.doctorUsecase.UpdateDoctorStatus(r.Context(), actorID, doctorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, service.ErrInvalidDoctorStatus):
			response.Error(w, http.StatusBadRequest, "Invalid doctor status", nil)
		default:
			response.InternalServerError(w, "Failed to update doctor status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor status updated successfully", doctor)
}
