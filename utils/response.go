package utils

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform JSON wrapper for single-resource responses.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ListEnvelope wraps collection responses with pagination metadata.
type ListEnvelope struct {
	Success     bool  `json:"success"`
	Count       int   `json:"count"`
	Total       int64 `json:"total"`
	Pages       int   `json:"pages"`
	CurrentPage int   `json:"currentPage"`
	Data        any   `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// WriteSuccess writes a success envelope with optional message and data.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteList writes a collection envelope. count is the number of items in
// this page, total the number matching the query overall.
func WriteList(w http.ResponseWriter, count int, total int64, pages, currentPage int, data any) {
	writeJSON(w, http.StatusOK, ListEnvelope{
		Success:     true,
		Count:       count,
		Total:       total,
		Pages:       pages,
		CurrentPage: currentPage,
		Data:        data,
	})
}

// WriteError writes a failure envelope with the given HTTP status.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message})
}
