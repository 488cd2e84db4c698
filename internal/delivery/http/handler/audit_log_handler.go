package handler

import (
	"net/http"

	"clinic-finder/internal/delivery/dto"
	"clinic-finder/internal/usecase"
	"clinic-finder/pkg/response"
	"clinic-finder/pkg/validator"
)

const defaultAuditLogLimit = 50

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
	validator       *validator.CustomValidator
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase, validator *validator.CustomValidator) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
		validator:       validator,
	}
}

func (h *AuditLogHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r.URL.Query())
	query := dto.AuditLogQuery{
		Action: q.String("action"),
		Limit:  q.IntOr("limit", defaultAuditLogLimit),
	}
	if !q.Valid() {
		response.ValidationError(w, q.errors)
		return
	}

	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	auditLogs, err := h.auditLogUsecase.GetAuditLogs(r.Context(), &query)
	if err != nil {
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", auditLogs)
}
