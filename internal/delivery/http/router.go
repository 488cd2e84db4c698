package http

import (
	"net/http"

	"clinic-finder/internal/delivery/http/handler"
	"clinic-finder/internal/delivery/http/middleware"
	"clinic-finder/pkg/metrics"

	"github.com/gorilla/mux"
)

type Router struct {
	router          *mux.Router
	branchHandler   *handler.BranchHandler
	doctorHandler   *handler.DoctorHandler
	auditLogHandler *handler.AuditLogHandler
	authMiddleware  *middleware.AuthMiddleware
	corsMiddleware  *middleware.CORSMiddleware
	metrics         *metrics.Collector
}

func NewRouter(
	branchHandler *handler.BranchHandler,
	doctorHandler *handler.DoctorHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	collector *metrics.Collector,
) *Router {
	return &Router{
		router:          mux.NewRouter(),
		branchHandler:   branchHandler,
		doctorHandler:   doctorHandler,
		auditLogHandler: auditLogHandler,
		authMiddleware:  authMiddleware,
		corsMiddleware:  corsMiddleware,
		metrics:         collector,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Branch search (public)
	api.HandleFunc("/branches/search", r.branchHandler.SearchBranches).Methods(http.MethodGet)
	api.HandleFunc("/branches/recommendations", r.branchHandler.RecommendBranches).Methods(http.MethodGet)
	api.HandleFunc("/branches/{id:[0-9]+}/available-doctors", r.branchHandler.GetAvailableDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id:[0-9]+}/slots", r.doctorHandler.GetDoctorSlots).Methods(http.MethodGet)

	// Doctor status (admin or the doctor's own staff)
	staff := api.PathPrefix("/doctors").Subrouter()
	staff.Use(r.authMiddleware.Authenticate)
	staff.Use(middleware.RequireAdminOrDoctor)
	staff.HandleFunc("/{id:[0-9]+}/status", r.doctorHandler.UpdateDoctorStatus).Methods(http.MethodPut)

	// Audit trail (admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAuditLogs).Methods(http.MethodGet)

	// Metrics
	if r.metrics != nil {
		r.router.Handle("/metrics", r.metrics.Handler()).Methods(http.MethodGet)
	}

	r.router.Use(r.metrics.Middleware)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
