package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the flat error shape: {"success":false,"error":"...","code":"..."}.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ErrorBody is the nested error object of an Envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the uniform API response: {"success":bool,"data":...} or
// {"success":false,"error":{...}}.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondData wraps data in a success Envelope.
func RespondData(w http.ResponseWriter, data any, statusCode int) {
	RespondJSON(w, Envelope{Success: true, Data: data}, statusCode)
}

