package model

// FieldError is one entry in a "Validation failed" response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error codes surfaced alongside 401 responses so clients can tell an expired
// session from a bad token without behavioral differences server-side.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)
