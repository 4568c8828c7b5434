package rest

import (
	"encoding/json"
	"log"
	"net/http"
)

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("  ⚠️  Failed to encode response: %v", err)
	}
}

// respondError writes a JSON error response, logging the underlying cause
func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Printf("  ⚠️  %s: %v", message, err)
	}
	respondJSON(w, status, map[string]string{"error": message})
}
