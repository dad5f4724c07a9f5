package service

import (
	"sort"
	"strings"

	"docforge/internal/domain"
)

// TemplateConfig is the declared configuration of a built-in named template:
// page geometry, font and color choices, header/footer text (which may carry
// placeholders), and boilerplate sections prepended to the document.
type TemplateConfig struct {
	Name        string
	Description string

	PageSize string
	Margins  string

	FontBody    string
	FontHeading string

	PrimaryColor   string
	SecondaryColor string
	AccentColor    string

	HeaderText         string
	FooterText         string
	IncludeFooter      bool
	IncludePageNumbers bool

	LineSpacing float64

	// Sections holds boilerplate entries in source form; they pass
	// through the normalizer like user-authored sections.
	Sections []map[string]any
}

// builtinTemplates is the runtime template registry. Lookups against it
// fail with a StyleResolutionError, not an enum validation error.
var builtinTemplates = map[string]*TemplateConfig{
	"default": {
		Name:               "default",
		Description:        "Clean, professional default template",
		PageSize:           "letter",
		Margins:            "normal",
		IncludeFooter:      true,
		IncludePageNumbers: true,
	},
	"report": {
		Name:               "report",
		Description:        "Business report with header and footer",
		PageSize:           "letter",
		Margins:            "moderate",
		HeaderText:         "{{TITLE}}",
		FooterText:         "{{AUTHOR}} - {{DATE}}",
		IncludeFooter:      true,
		IncludePageNumbers: true,
		LineSpacing:        1.15,
	},
	"memo": {
		Name:        "memo",
		Description: "Internal memo format",
		PageSize:    "letter",
		Margins:     "normal",
		LineSpacing: 1.0,
		Sections: []map[string]any{
			{"type": "heading", "title": "MEMORANDUM", "level": 1},
			{"type": "content", "text": "TO: {{TO}}"},
			{"type": "content", "text": "FROM: {{FROM}}"},
			{"type": "content", "text": "DATE: {{DATE}}"},
			{"type": "content", "text": "RE: {{SUBJECT}}"},
			{"type": "horizontal_line"},
		},
	},
	"letter": {
		Name:        "letter",
		Description: "Formal business letter",
		PageSize:    "letter",
		Margins:     "normal",
		LineSpacing: 1.0,
		Sections: []map[string]any{
			{"type": "content", "text": "{{SENDER_ADDRESS}}"},
			{"type": "content", "text": ""},
			{"type": "content", "text": "{{DATE}}"},
			{"type": "content", "text": ""},
			{"type": "content", "text": "{{RECIPIENT_NAME}}"},
			{"type": "content", "text": "{{RECIPIENT_ADDRESS}}"},
			{"type": "content", "text": ""},
			{"type": "content", "text": "Dear {{RECIPIENT_NAME}}:"},
		},
	},
	"academic": {
		Name:               "academic",
		Description:        "Academic paper format (APA-style)",
		PageSize:           "letter",
		Margins:            "normal",
		FontBody:           "Times New Roman",
		FontHeading:        "Times New Roman",
		HeaderText:         "{{RUNNING_HEAD}}",
		IncludeFooter:      true,
		IncludePageNumbers: true,
		LineSpacing:        2.0,
	},
	"proposal": {
		Name:               "proposal",
		Description:        "Project proposal template",
		PageSize:           "letter",
		Margins:            "moderate",
		HeaderText:         "{{COMPANY}} - Proposal",
		FooterText:         "Confidential",
		IncludeFooter:      true,
		IncludePageNumbers: true,
		Sections: []map[string]any{
			{"type": "heading", "title": "{{TITLE}}", "level": 1},
			{"type": "content", "text": "Prepared for: {{CLIENT}}"},
			{"type": "content", "text": "Prepared by: {{AUTHOR}}"},
			{"type": "content", "text": "Date: {{DATE}}"},
			{"type": "page_break"},
		},
	},
	"manual": {
		Name:               "manual",
		Description:        "Technical documentation / user manual",
		PageSize:           "letter",
		Margins:            "moderate",
		HeaderText:         "{{PRODUCT_NAME}} - User Manual",
		FooterText:         "Version {{VERSION}}",
		IncludeFooter:      true,
		IncludePageNumbers: true,
	},
	"contract": {
		Name:               "contract",
		Description:        "Legal contract format",
		PageSize:           "letter",
		Margins:            "normal",
		FontBody:           "Times New Roman",
		FooterText:         "Page {{PAGE}} of {{TOTAL_PAGES}}",
		IncludeFooter:      true,
		IncludePageNumbers: true,
		LineSpacing:        1.5,
	},
	"resume": {
		Name:        "resume",
		Description: "Professional resume/CV template",
		PageSize:    "letter",
		Margins:     "narrow",
		LineSpacing: 1.0,
	},
	"newsletter": {
		Name:               "newsletter",
		Description:        "Company newsletter format",
		PageSize:           "letter",
		Margins:            "narrow",
		HeaderText:         "{{NEWSLETTER_NAME}} - {{ISSUE_DATE}}",
		IncludeFooter:      true,
		IncludePageNumbers: true,
	},
	"minutes": {
		Name:               "minutes",
		Description:        "Meeting minutes template",
		PageSize:           "letter",
		Margins:            "normal",
		IncludeFooter:      true,
		IncludePageNumbers: true,
		Sections: []map[string]any{
			{"type": "heading", "title": "Meeting Minutes", "level": 1},
			{"type": "content", "text": "Date: {{DATE}}"},
			{"type": "content", "text": "Time: {{TIME}}"},
			{"type": "content", "text": "Location: {{LOCATION}}"},
			{"type": "content", "text": "Attendees: {{ATTENDEES}}"},
			{"type": "horizontal_line"},
		},
	},
	"invoice": {
		Name:          "invoice",
		Description:   "Business invoice template",
		PageSize:      "letter",
		Margins:       "normal",
		FooterText:    "Thank you for your business!",
		IncludeFooter: true,
	},
	"a4": {
		Name:               "a4",
		Description:        "A4 page size (European standard)",
		PageSize:           "a4",
		Margins:            "normal",
		IncludeFooter:      true,
		IncludePageNumbers: true,
	},
	"a4-narrow": {
		Name:               "a4-narrow",
		Description:        "A4 page size with narrow margins",
		PageSize:           "a4",
		Margins:            "narrow",
		IncludeFooter:      true,
		IncludePageNumbers: true,
	},
	"legal": {
		Name:               "legal",
		Description:        "Legal page size",
		PageSize:           "legal",
		Margins:            "normal",
		FontBody:           "Times New Roman",
		IncludeFooter:      true,
		IncludePageNumbers: true,
		LineSpacing:        1.5,
	},
}

// GetTemplate looks a built-in template up by name.
func GetTemplate(name string) (*TemplateConfig, bool) {
	tpl, ok := builtinTemplates[strings.ToLower(name)]
	return tpl, ok
}

// ListTemplates returns the registry contents sorted by name.
func ListTemplates() []domain.TemplateInfo {
	out := make([]domain.TemplateInfo, 0, len(builtinTemplates))
	for _, tpl := range builtinTemplates {
		out = append(out, domain.TemplateInfo{
			Name:        tpl.Name,
			Description: tpl.Description,
			PageSize:    tpl.PageSize,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TemplateNames returns the sorted registry key set.
func TemplateNames() []string {
	names := make([]string, 0, len(builtinTemplates))
	for name := range builtinTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBaseDocumentRef reports whether a template value names an external base
// document rather than a registry entry: anything with a path separator or
// a container extension is fetched through the asset store.
func IsBaseDocumentRef(ref string) bool {
	return strings.ContainsAny(ref, "/\\") || strings.HasSuffix(strings.ToLower(ref), ".docx")
}
