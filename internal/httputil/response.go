package httputil

import (
	"encoding/json"
	"net/http"

	"nightlog/internal/model"
)

// Fields carries the top-level payload keys of a success envelope
// (e.g. "user", "dream", "data").
type Fields map[string]interface{}

// WriteSuccess writes {"success":true, "message":..., <fields>...}.
// message and fields are optional.
func WriteSuccess(w http.ResponseWriter, status int, message string, fields Fields) {
	body := map[string]interface{}{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// errorResponse is the envelope for all failure responses.
type errorResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Code    string             `json:"code,omitempty"`
	Errors  []model.FieldError `json:"errors,omitempty"`
	Stack   string             `json:"stack,omitempty"`
}

// WriteError writes {"success":false,"message":...} with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

// WriteErrorWithCode includes a machine-readable code in the error detail.
func WriteErrorWithCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message, Code: code})
}

// WriteValidationErrors writes the 400 "Validation failed" envelope with
// per-field messages.
func WriteValidationErrors(w http.ResponseWriter, errs []model.FieldError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Common status helpers

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

func WriteUnauthorizedWithCode(w http.ResponseWriter, code, message string) {
	WriteErrorWithCode(w, http.StatusUnauthorized, code, message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers already sent; nothing left to do.
			return
		}
	}
}
