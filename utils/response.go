package utils

import (
	"encoding/json"
	"net/http"
)

// Stable machine-checkable error categories. Clients switch on these, not on
// the human-readable message.
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodePaymentNotCompleted  = "PAYMENT_NOT_COMPLETED"
	ErrCodeUpstreamVerification = "UPSTREAM_VERIFICATION_FAILED"
	ErrCodeDuplicateOrder       = "DUPLICATE_ORDER"
	ErrCodeDuplicateEmail       = "DUPLICATE_EMAIL"
	ErrCodeStorage              = "STORAGE_ERROR"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteError writes a failure envelope with a stable error code.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, APIResponse{Success: false, Error: code, Message: message})
}

// GetStringValue returns the value of a nullable string pointer or empty string if nil
func GetStringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
