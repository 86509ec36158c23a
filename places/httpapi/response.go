package httpapi

import (
	"encoding/json"
	"net/http"
)

// APIError é o corpo de toda resposta de erro.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RenderJSON renders a JSON response
func RenderJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// RenderError renders an error response
func RenderError(w http.ResponseWriter, code int, message string) {
	RenderJSON(w, code, APIError{Code: code, Message: message})
}
