package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/maksimkurb/keen-dhcp/src/internal/hal"
	"github.com/maksimkurb/keen-dhcp/src/internal/inventory"
	"github.com/maksimkurb/keen-dhcp/src/internal/log"
)

// writeJSON writes v as the JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("Failed to encode response: %v", err)
	}
}

// WriteError writes an error resource whose base link points at baseURL.
func WriteError(w http.ResponseWriter, baseURL string, statusCode int, message string) {
	asm := hal.NewAssembler(hal.NewLinker(baseURL))
	writeJSON(w, statusCode, asm.Error(statusCode, message, time.Now()))
}

// WriteNotFound writes a 404 for the level that failed to resolve.
func WriteNotFound(w http.ResponseWriter, baseURL string, err *inventory.NotFoundError) {
	WriteError(w, baseURL, http.StatusNotFound, err.Error())
}

// WriteUnavailable writes a 503, used when no inventory snapshot can be taken.
func WriteUnavailable(w http.ResponseWriter, baseURL string, message string) {
	WriteError(w, baseURL, http.StatusServiceUnavailable, message)
}

// WriteInternalError writes a 500 Internal Server Error.
func WriteInternalError(w http.ResponseWriter, baseURL string, message string) {
	WriteError(w, baseURL, http.StatusInternalServerError, message)
}
