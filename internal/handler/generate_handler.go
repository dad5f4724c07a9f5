package handler

import (
	"encoding/json"
	"net/http"

	"docforge/internal/domain"
)

// GenerateHandler handles document generation HTTP requests
type GenerateHandler struct {
	generator domain.Generator
	config    domain.Config
	logger    domain.Logger
}

// NewGenerateHandler creates a new generation handler
func NewGenerateHandler(generator domain.Generator, config domain.Config, logger domain.Logger) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		config:    config,
		logger:    logger,
	}
}

// Generate compiles the request body, a YAML or JSON specification, into a
// document. The output format comes from the `format` query parameter and
// call-site variables from repeated `var` parameters in KEY=VALUE form.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r, h.config.GetMaxSpecSize())
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "request body is empty")
		return
	}

	opts := domain.GenerateOptions{
		Format:    r.URL.Query().Get("format"),
		Variables: parseVarParams(r.URL.Query()["var"]),
	}

	out, err := h.generator.GenerateSource(r.Context(), body, sourceFormat(r.Header.Get("Content-Type")), opts)
	if err != nil {
		h.logger.Error("generation failed", err)
		writeDomainError(w, err)
		return
	}
	writeBinary(w, out)
}

// GenerateWithTemplate compiles a specification into an uploaded base
// document. Multipart fields: `template` is the base .docx, `spec` is the
// specification source.
func (h *GenerateHandler) GenerateWithTemplate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.config.GetMaxSpecSize()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	base, err := formFile(r, "template", h.config.GetMaxSpecSize())
	if err != nil {
		writeError(w, http.StatusBadRequest, "template file is required")
		return
	}

	spec, specFormat, ok := h.specFromForm(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "spec is required")
		return
	}

	opts := domain.GenerateOptions{
		Format:       domain.OutputDOCX,
		Variables:    parseVarParams(r.URL.Query()["var"]),
		BaseDocument: base,
	}

	out, err := h.generator.GenerateSource(r.Context(), spec, specFormat, opts)
	if err != nil {
		h.logger.Error("template generation failed", err)
		writeDomainError(w, err)
		return
	}
	writeBinary(w, out)
}

// specFromForm pulls the specification out of the multipart form, as a
// `spec` file upload or a `spec` value field. JSON-looking content parses
// as JSON, everything else as YAML.
func (h *GenerateHandler) specFromForm(r *http.Request) ([]byte, domain.SourceFormat, bool) {
	if data, err := formFile(r, "spec", h.config.GetMaxSpecSize()); err == nil && len(data) > 0 {
		return data, sniffSpecFormat(data), true
	}
	if v := r.FormValue("spec"); v != "" {
		return []byte(v), sniffSpecFormat([]byte(v)), true
	}
	return nil, "", false
}

func sniffSpecFormat(data []byte) domain.SourceFormat {
	if json.Valid(data) {
		return domain.FormatJSON
	}
	return domain.FormatYAML
}

// parseVarParams parses repeated KEY=VALUE query parameters.
func parseVarParams(params []string) map[string]string {
	if len(params) == 0 {
		return nil
	}
	vars := map[string]string{}
	for _, p := range params {
		for i := 0; i < len(p); i++ {
			if p[i] == '=' {
				vars[p[:i]] = p[i+1:]
				break
			}
		}
	}
	return vars
}
