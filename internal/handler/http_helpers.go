// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"docforge/internal/domain"
	"docforge/pkg/errors"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError maps a pipeline error onto its HTTP status and body
func writeDomainError(w http.ResponseWriter, err error) {
	appErr := errors.FromDomain(err)
	writeJSON(w, appErr.StatusCode, appErr)
}

// writeBinary writes document bytes as a download attachment
func writeBinary(w http.ResponseWriter, out *domain.Output) {
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	if len(out.OpenPlaceholders) > 0 {
		w.Header().Set("X-Open-Placeholders", strings.Join(out.OpenPlaceholders, ","))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

// sourceFormat decides how a request body is parsed. YAML content types
// parse as YAML, everything else as JSON.
func sourceFormat(contentType string) domain.SourceFormat {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "yaml") || strings.Contains(ct, "yml") {
		return domain.FormatYAML
	}
	return domain.FormatJSON
}

// readBody reads a request body capped at the configured spec size limit
func readBody(r *http.Request, maxSize int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxSize))
}

// formFile reads one uploaded multipart file fully into memory
func formFile(r *http.Request, field string, maxSize int64) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxSize))
}
