package handler

import (
	"log"
	"net/http"

	"nightlog/internal/httputil"
	"nightlog/internal/model"
	"nightlog/internal/service"
	"nightlog/internal/transport/http/middleware"
)

// InsightsHandler serves the aggregation endpoints. Each takes an optional
// ?period= query, defaulting to all time.
type InsightsHandler struct {
	insightsService *service.InsightsService
}

func NewInsightsHandler(insightsService *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{insightsService: insightsService}
}

func (h *InsightsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	stats, err := h.insightsService.Stats(r.Context(), userID, period)
	if err != nil {
		log.Printf("[ERROR] InsightsStats handler: %v", err)
		httputil.WriteInternalError(w, "Failed to compute stats")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", httputil.Fields{
		"data": stats,
	})
}

func (h *InsightsHandler) Moods(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	insights, err := h.insightsService.Moods(r.Context(), userID, period)
	if err != nil {
		log.Printf("[ERROR] InsightsMoods handler: %v", err)
		httputil.WriteInternalError(w, "Failed to compute mood insights")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", httputil.Fields{
		"data": insights,
	})
}

func (h *InsightsHandler) Symbols(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	insights, err := h.insightsService.Symbols(r.Context(), userID, period)
	if err != nil {
		log.Printf("[ERROR] InsightsSymbols handler: %v", err)
		httputil.WriteInternalError(w, "Failed to compute symbol insights")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", httputil.Fields{
		"data": insights,
	})
}

// parsePeriod validates the ?period= query, defaulting to all time.
func parsePeriod(w http.ResponseWriter, r *http.Request) (string, bool) {
	period := r.URL.Query().Get("period")
	if period == "" {
		return model.PeriodAll, true
	}
	if !model.IsValidPeriod(period) {
		httputil.WriteBadRequest(w, "Period must be one of 7d, 30d, 90d, 1y, all")
		return "", false
	}
	return period, true
}
