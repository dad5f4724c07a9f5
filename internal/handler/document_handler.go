package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"docforge/internal/domain"
)

// DocumentHandler handles inspection and replacement requests on existing
// documents.
type DocumentHandler struct {
	inspector domain.Inspector
	rewriter  domain.Rewriter
	config    domain.Config
	logger    domain.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(inspector domain.Inspector, rewriter domain.Rewriter, config domain.Config, logger domain.Logger) *DocumentHandler {
	return &DocumentHandler{
		inspector: inspector,
		rewriter:  rewriter,
		config:    config,
		logger:    logger,
	}
}

// Inspect reports metadata and statistics for an uploaded document.
// Multipart field: `file`.
func (h *DocumentHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.config.GetMaxSpecSize()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	data, err := formFile(r, "file", h.config.GetMaxSpecSize())
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}

	info, err := h.inspector.Inspect(data)
	if err != nil {
		h.logger.Error("inspection failed", err)
		writeError(w, http.StatusUnprocessableEntity, "could not read document: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Replace substitutes placeholder tokens in an uploaded document.
// Multipart fields: `file` is the document, `replacements` a JSON object
// mapping keys to values. The replacement count is reported in the
// X-Replacements-Made header.
func (h *DocumentHandler) Replace(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.config.GetMaxSpecSize()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	data, err := formFile(r, "file", h.config.GetMaxSpecSize())
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}

	raw := r.FormValue("replacements")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "replacements is required")
		return
	}
	var vars map[string]string
	if err := json.Unmarshal([]byte(raw), &vars); err != nil {
		writeError(w, http.StatusBadRequest, "replacements must be a JSON object of strings")
		return
	}

	rewritten, count, err := h.rewriter.Replace(data, vars)
	if err != nil {
		h.logger.Error("replacement failed", err)
		writeError(w, http.StatusUnprocessableEntity, "could not rewrite document: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypeDocx)
	w.Header().Set("Content-Disposition", `attachment; filename="document.docx"`)
	w.Header().Set("X-Replacements-Made", strconv.Itoa(count))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rewritten)
}

const contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
