package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"docforge/internal/domain"
)

// BatchHandler handles batch generation requests
type BatchHandler struct {
	batch  domain.BatchRunner
	config domain.Config
	logger domain.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batch domain.BatchRunner, config domain.Config, logger domain.Logger) *BatchHandler {
	return &BatchHandler{
		batch:  batch,
		config: config,
		logger: logger,
	}
}

type batchRequest struct {
	Items []domain.BatchItem `json:"items"`
}

// Generate runs every item of the request and returns a zip archive. The
// number of failed items is reported in the X-Batch-Failed header; their
// details are in the archive's report.json entry.
func (h *BatchHandler) Generate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r, h.config.GetMaxSpecSize())
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req batchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.batch.Run(r.Context(), req.Items)
	if err != nil {
		h.logger.Error("batch failed", err)
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="documents.zip"`)
	w.Header().Set("X-Batch-Failed", strconv.Itoa(len(result.Failed)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Archive)
}
