package utils

import (
	"encoding/json"
	"net/http"
)

// Payload is the envelope of every JSON response.
type Payload struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSONResponse sends a JSON response with given status, success flag, and payload
func JSONResponse(w http.ResponseWriter, status int, payload Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK sends a 200 success envelope carrying data.
func OK(w http.ResponseWriter, message string, data any) {
	JSONResponse(w, http.StatusOK, Payload{Success: true, Message: message, Data: data})
}

// Fail sends an error envelope. fields may be nil.
func Fail(w http.ResponseWriter, status int, message string, fields map[string]string) {
	JSONResponse(w, status, Payload{Success: false, Message: message, Errors: fields})
}
