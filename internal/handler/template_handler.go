package handler

import (
	"net/http"

	"docforge/internal/domain"
	"docforge/internal/service"

	"github.com/gorilla/mux"
)

// TemplateHandler serves the built-in template registry
type TemplateHandler struct {
	logger domain.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(logger domain.Logger) *TemplateHandler {
	return &TemplateHandler{logger: logger}
}

// List returns every built-in template.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": service.ListTemplates(),
	})
}

// Get returns the full configuration of one template.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	tpl, ok := service.GetTemplate(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown template "+name)
		return
	}
	writeJSON(w, http.StatusOK, templateDetail(tpl))
}

func templateDetail(tpl *service.TemplateConfig) map[string]interface{} {
	out := map[string]interface{}{
		"name":                 tpl.Name,
		"description":          tpl.Description,
		"page_size":            tpl.PageSize,
		"margins":              tpl.Margins,
		"include_footer":       tpl.IncludeFooter,
		"include_page_numbers": tpl.IncludePageNumbers,
		"boilerplate_sections": len(tpl.Sections),
	}
	if tpl.FontBody != "" {
		out["font_body"] = tpl.FontBody
	}
	if tpl.FontHeading != "" {
		out["font_heading"] = tpl.FontHeading
	}
	if tpl.HeaderText != "" {
		out["header_text"] = tpl.HeaderText
	}
	if tpl.FooterText != "" {
		out["footer_text"] = tpl.FooterText
	}
	if tpl.LineSpacing > 0 {
		out["line_spacing"] = tpl.LineSpacing
	}
	return out
}
