package handlers

import (
	"encoding/json"
	"net/http"
)

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the body of every non-200 response
type ErrorResponse struct {
	Error string `json:"error"`
}
