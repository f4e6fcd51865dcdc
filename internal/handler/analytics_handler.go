package handler

import (
	"net/http"

	"civic-portal/internal/repository"
	"civic-portal/internal/response"
	"civic-portal/internal/service"
)

type AnalyticsHandler struct {
	svc *service.AnalyticsService
}

func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

func (h *AnalyticsHandler) ComplaintsByStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.ComplaintsByStatus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"byStatus": counts})
}

func (h *AnalyticsHandler) MonthlyComplaints(w http.ResponseWriter, r *http.Request) {
	months, err := h.svc.MonthlyComplaints(r.Context(), queryInt(r, "months", 6))
	if err != nil {
		writeError(w, err)
		return
	}
	if months == nil {
		months = []repository.MonthCount{}
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"monthly": months})
}
