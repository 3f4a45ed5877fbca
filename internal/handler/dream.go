package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"nightlog/internal/httputil"
	"nightlog/internal/model"
	"nightlog/internal/service"
	"nightlog/internal/transport/http/middleware"
)

// DreamHandler serves the dream CRUD and trash lifecycle endpoints.
type DreamHandler struct {
	dreamService *service.DreamService
}

func NewDreamHandler(dreamService *service.DreamService) *DreamHandler {
	return &DreamHandler{dreamService: dreamService}
}

func (h *DreamHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req model.CreateDreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		httputil.WriteValidationErrors(w, errs)
		return
	}

	dream, err := h.dreamService.Create(r.Context(), userID, &req)
	if err != nil {
		log.Printf("[ERROR] CreateDream handler: %v", err)
		httputil.WriteInternalError(w, "Failed to create dream")
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "Dream recorded", httputil.Fields{
		"dream": dream,
	})
}

func (h *DreamHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	dreamID, ok := parseDreamID(w, r)
	if !ok {
		return
	}

	dream, err := h.dreamService.Get(r.Context(), userID, dreamID)
	if err != nil {
		writeDreamError(w, "GetDream", err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", httputil.Fields{
		"dream": dream,
	})
}

func (h *DreamHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	filter, errs := parseDreamFilter(r)
	if len(errs) > 0 {
		httputil.WriteValidationErrors(w, errs)
		return
	}

	dreams, pagination, err := h.dreamService.List(r.Context(), userID, filter)
	if err != nil {
		log.Printf("[ERROR] ListDreams handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list dreams")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", httputil.Fields{
		"dreams":     dreams,
		"pagination": pagination,
	})
}

func (h *DreamHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	dreamID, ok := parseDreamID(w, r)
	if !ok {
		return
	}

	var req model.UpdateDreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		httputil.WriteValidationErrors(w, errs)
		return
	}

	dream, err := h.dreamService.Update(r.Context(), userID, dreamID, &req)
	if err != nil {
		writeDreamError(w, "UpdateDream", err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Dream updated", httputil.Fields{
		"dream": dream,
	})
}

func (h *DreamHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	dreamID, ok := parseDreamID(w, r)
	if !ok {
		return
	}

	if err := h.dreamService.SoftDelete(r.Context(), userID, dreamID); err != nil {
		writeDreamError(w, "SoftDeleteDream", err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Dream moved to trash", nil)
}

func (h *DreamHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	dreams, err := h.dreamService.ListTrash(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] ListTrash handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list trash")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", httputil.Fields{
		"dreams": dreams,
	})
}

func (h *DreamHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	dreamID, ok := parseDreamID(w, r)
	if !ok {
		return
	}

	dream, err := h.dreamService.Restore(r.Context(), userID, dreamID)
	if err != nil {
		writeDreamError(w, "RestoreDream", err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Dream restored", httputil.Fields{
		"dream": dream,
	})
}

func (h *DreamHandler) DeletePermanent(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	dreamID, ok := parseDreamID(w, r)
	if !ok {
		return
	}

	if err := h.dreamService.DeletePermanent(r.Context(), userID, dreamID); err != nil {
		writeDreamError(w, "DeletePermanentDream", err)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Dream permanently deleted", nil)
}

// parseDreamID reads the {id} route param, writing a 400 on garbage.
func parseDreamID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httputil.WriteBadRequest(w, "Invalid dream ID")
		return 0, false
	}
	return id, true
}

// writeDreamError maps domain errors to status codes: not found 404, not
// owner 403, not trashed 400, anything else 500.
func writeDreamError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrDreamNotFound):
		httputil.WriteNotFound(w, "Dream not found")
	case errors.Is(err, model.ErrNotDreamOwner):
		httputil.WriteForbidden(w, "You do not have access to this dream")
	case errors.Is(err, model.ErrDreamNotTrashed):
		httputil.WriteBadRequest(w, "Dream is not in trash")
	default:
		log.Printf("[ERROR] %s handler: %v", op, err)
		httputil.WriteInternalError(w, "Something went wrong")
	}
}

// parseDreamFilter builds a DreamFilter from query parameters. Absent
// parameters leave their filter fields nil so they never reach the SQL.
func parseDreamFilter(r *http.Request) (model.DreamFilter, []model.FieldError) {
	q := r.URL.Query()
	var filter model.DreamFilter
	var errs []model.FieldError

	if mood := q.Get("mood"); mood != "" {
		if !model.IsValidMood(mood) {
			errs = append(errs, model.FieldError{Field: "mood", Message: "Invalid mood"})
		} else {
			filter.Mood = &mood
		}
	}
	if lucid := q.Get("isLucid"); lucid != "" {
		v, err := strconv.ParseBool(lucid)
		if err != nil {
			errs = append(errs, model.FieldError{Field: "isLucid", Message: "isLucid must be true or false"})
		} else {
			filter.IsLucid = &v
		}
	}
	if start := q.Get("startDate"); start != "" {
		t, err := parseDate(start)
		if err != nil {
			errs = append(errs, model.FieldError{Field: "startDate", Message: "Invalid start date"})
		} else {
			filter.StartDate = &t
		}
	}
	if end := q.Get("endDate"); end != "" {
		t, err := parseDate(end)
		if err != nil {
			errs = append(errs, model.FieldError{Field: "endDate", Message: "Invalid end date"})
		} else {
			filter.EndDate = &t
		}
	}
	filter.Search = q.Get("search")
	filter.SortBy = q.Get("sortBy")
	filter.SortOrder = q.Get("sortOrder")

	if page := q.Get("page"); page != "" {
		v, err := strconv.Atoi(page)
		if err != nil || v < 1 {
			errs = append(errs, model.FieldError{Field: "page", Message: "Page must be a positive integer"})
		} else {
			filter.Page = v
		}
	}
	if limit := q.Get("limit"); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v < 1 || v > model.MaxPageLimit {
			errs = append(errs, model.FieldError{Field: "limit", Message: "Limit must be between 1 and 50"})
		} else {
			filter.Limit = v
		}
	}

	return filter, errs
}

// parseDate accepts RFC3339 or a bare YYYY-MM-DD day.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
