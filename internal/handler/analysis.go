package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"nightlog/internal/httputil"
	"nightlog/internal/model"
	"nightlog/internal/service"
	"nightlog/internal/transport/http/middleware"
)

// AnalysisHandler serves the AI analysis endpoints.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// AnalyzeDream analyzes a stored dream and persists the result. Reanalysis
// goes through the same path; the new result overwrites the old one.
func (h *AnalysisHandler) AnalyzeDream(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	dreamID, ok := parseDreamID(w, r)
	if !ok {
		return
	}

	analysis, err := h.analysisService.AnalyzeDream(r.Context(), userID, dreamID)
	if err != nil {
		writeDreamError(w, "AnalyzeDream", err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Dream analyzed", httputil.Fields{
		"analysis": analysis,
	})
}

// analyzeTextRequest is the payload for the ad-hoc analysis endpoint.
type analyzeTextRequest struct {
	Content string `json:"content"`
}

// AnalyzeText classifies free text without storing anything.
func (h *AnalysisHandler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req analyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if len(req.Content) < model.MinContentLength {
		httputil.WriteValidationErrors(w, []model.FieldError{
			{Field: "content", Message: "Dream content must be at least 10 characters"},
		})
		return
	}
	if len(req.Content) > model.MaxContentLength {
		httputil.WriteValidationErrors(w, []model.FieldError{
			{Field: "content", Message: "Dream content must be at most 10,000 characters"},
		})
		return
	}

	analysis := h.analysisService.AnalyzeText(r.Context(), req.Content)

	httputil.WriteSuccess(w, http.StatusOK, "", httputil.Fields{
		"analysis": analysis,
	})
}
