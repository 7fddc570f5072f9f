package common

import (
	"encoding/json"
	"net/http"

	pkgerrors "scholar-backend/pkg/errors"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// RespondAppError maps an application error onto the HTTP surface. The
// status and code travel on the error itself; anything unclassified becomes
// an opaque 500.
func RespondAppError(w http.ResponseWriter, err error) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		response := APIResponse{
			Success: false,
			Error: &ErrorInfo{
				Code:    string(appErr.Type),
				Message: appErr.Message,
				Details: appErr.Details,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(response)
		return
	}
	RespondError(w, http.StatusInternalServerError, string(pkgerrors.ErrorTypeInternal), "internal server error")
}

// ParseJSONBody parses JSON request body with size limit
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return pkgerrors.NewValidationError("malformed request body").WithCause(err)
	}

	return nil
}
