package handler

import (
	"net/http"
	"strconv"

	"github.com/medcircle/commons/api/internal/middleware"
	"github.com/medcircle/commons/api/internal/model"
	"github.com/medcircle/commons/api/internal/service"
)

// ReportHandler handles report lifecycle HTTP requests
type ReportHandler struct {
	svc *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux, auth middleware.Middleware) {
	mux.Handle("POST /v1/reports", auth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /v1/reports", auth(http.HandlerFunc(h.List)))
	mux.Handle("GET /v1/reports/{reportId}", auth(http.HandlerFunc(h.Get)))
	mux.Handle("POST /v1/reports/{reportId}/review", auth(http.HandlerFunc(h.Review)))
	mux.Handle("GET /v1/moderation/dashboard", auth(http.HandlerFunc(h.Dashboard)))
}

// Create handles POST /v1/reports
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateReportRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	report, err := h.svc.Create(ctx, userID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, report)
}

// List handles GET /v1/reports - moderator report queue, filterable by
// status, target_type, and urgency query params
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	filter := model.ReportFilter{Limit: 50}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		if !model.IsValidReportStatus(v) {
			WriteError(w, model.NewValidationError([]model.FieldError{
				{Field: "status", Message: "unknown report status"},
			}))
			return
		}
		status := model.ReportStatus(v)
		filter.Status = &status
	}
	if v := q.Get("target_type"); v != "" {
		if !model.IsValidReportTargetType(v) {
			WriteError(w, model.NewValidationError([]model.FieldError{
				{Field: "target_type", Message: "unknown target type"},
			}))
			return
		}
		targetType := model.ReportTargetType(v)
		filter.TargetType = &targetType
	}
	if v := q.Get("urgency"); v != "" {
		if !model.IsValidReportUrgency(v) {
			WriteError(w, model.NewValidationError([]model.FieldError{
				{Field: "urgency", Message: "unknown urgency"},
			}))
			return
		}
		urgency := model.ReportUrgency(v)
		filter.Urgency = &urgency
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}

	reports, err := h.svc.List(ctx, userID, filter)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, reports, len(reports))
}

// Get handles GET /v1/reports/{reportId}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	reportID := r.PathValue("reportId")
	if reportID == "" {
		WriteError(w, model.NewBadRequestError("report ID required"))
		return
	}

	report, err := h.svc.Get(ctx, userID, reportID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, report)
}

// Review handles POST /v1/reports/{reportId}/review
func (h *ReportHandler) Review(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	reportID := r.PathValue("reportId")
	if reportID == "" {
		WriteError(w, model.NewBadRequestError("report ID required"))
		return
	}

	var req model.ReviewReportRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	report, err := h.svc.Review(ctx, userID, reportID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, report)
}

// Dashboard handles GET /v1/moderation/dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	dashboard, err := h.svc.Dashboard(ctx, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, dashboard)
}
