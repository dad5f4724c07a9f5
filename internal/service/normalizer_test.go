package service

import (
	"errors"
	"strings"
	"testing"

	"docforge/internal/domain"
)

func TestNormalizeSpecification_Defaults(t *testing.T) {
	spec, err := NormalizeSpecification(map[string]any{
		"title": "Quarterly Report",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if spec.Title != "Quarterly Report" {
		t.Errorf("expected title Quarterly Report, got %q", spec.Title)
	}
	if spec.PageSize != "letter" || spec.PageSizeSet {
		t.Errorf("expected default page size letter (unset), got %q set=%v", spec.PageSize, spec.PageSizeSet)
	}
	if spec.Margins.Preset != "normal" || spec.MarginsSet {
		t.Errorf("expected default margins normal (unset), got %q set=%v", spec.Margins.Preset, spec.MarginsSet)
	}
	if !spec.TitlePageBreak {
		t.Error("expected title_page_break to default to true")
	}
	if spec.TableOfContents {
		t.Error("expected table_of_contents to default to false")
	}
}

func TestNormalizeSpecification_UnknownPageSize(t *testing.T) {
	_, err := NormalizeSpecification(map[string]any{"page_size": "tabloid"})
	var vErr *domain.SpecValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected SpecValidationError, got %v", err)
	}
	if vErr.Path != "page_size" {
		t.Errorf("expected path page_size, got %q", vErr.Path)
	}
	if len(vErr.Allowed) != 4 {
		t.Errorf("expected 4 allowed page sizes, got %v", vErr.Allowed)
	}
}

func TestNormalizeSpecification_Margins(t *testing.T) {
	tests := []struct {
		name    string
		margins any
		want    domain.MarginSpec
		wantErr string
	}{
		{
			name:    "preset",
			margins: "narrow",
			want:    domain.MarginSpec{Preset: "narrow"},
		},
		{
			name:    "explicit",
			margins: map[string]any{"top": 1.0, "bottom": 1, "left": 0.75, "right": 0.75},
			want:    domain.MarginSpec{Explicit: true, Top: 1, Bottom: 1, Left: 0.75, Right: 0.75},
		},
		{
			name:    "unknown preset",
			margins: "huge",
			wantErr: "margins",
		},
		{
			name:    "missing side",
			margins: map[string]any{"top": 1.0, "bottom": 1.0, "left": 1.0},
			wantErr: "margins.right",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := NormalizeSpecification(map[string]any{"margins": tt.margins})
			if tt.wantErr != "" {
				var vErr *domain.SpecValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected SpecValidationError, got %v", err)
				}
				if vErr.Path != tt.wantErr {
					t.Errorf("expected path %q, got %q", tt.wantErr, vErr.Path)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if spec.Margins != tt.want {
				t.Errorf("expected margins %+v, got %+v", tt.want, spec.Margins)
			}
			if !spec.MarginsSet {
				t.Error("expected MarginsSet to be true")
			}
		})
	}
}

func TestNormalizeSection_MissingType(t *testing.T) {
	_, err := NormalizeSpecification(map[string]any{
		"sections": []any{
			map[string]any{"type": "content", "text": "ok"},
			map[string]any{"text": "no type"},
		},
	})
	var vErr *domain.SpecValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected SpecValidationError, got %v", err)
	}
	if vErr.Path != "sections[1].type" {
		t.Errorf("expected path sections[1].type, got %q", vErr.Path)
	}
}

func TestNormalizeSection_ShapeRules(t *testing.T) {
	tests := []struct {
		name     string
		section  map[string]any
		wantPath string
	}{
		{
			name:     "heading without title",
			section:  map[string]any{"type": "heading"},
			wantPath: "sections[0].title",
		},
		{
			name:     "content without content",
			section:  map[string]any{"type": "content"},
			wantPath: "sections[0]",
		},
		{
			name:     "table without headers",
			section:  map[string]any{"type": "table", "data": []any{}},
			wantPath: "sections[0].headers",
		},
		{
			name:     "image without ref",
			section:  map[string]any{"type": "image"},
			wantPath: "sections[0].image",
		},
		{
			name:     "quote without text",
			section:  map[string]any{"type": "quote"},
			wantPath: "sections[0].text",
		},
		{
			name:     "level out of range",
			section:  map[string]any{"type": "heading", "title": "H", "level": 7},
			wantPath: "sections[0].level",
		},
		{
			name:     "unknown type",
			section:  map[string]any{"type": "sidebar"},
			wantPath: "sections[0].type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeSpecification(map[string]any{"sections": []any{tt.section}})
			var vErr *domain.SpecValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected SpecValidationError, got %v", err)
			}
			if vErr.Path != tt.wantPath {
				t.Errorf("expected path %q, got %q", tt.wantPath, vErr.Path)
			}
		})
	}
}

func TestNormalizeSection_ContentLevelDefault(t *testing.T) {
	spec, err := NormalizeSpecification(map[string]any{
		"sections": []any{
			map[string]any{"type": "content", "title": "Details", "text": "body"},
			map[string]any{"type": "heading", "title": "Top"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Sections[0].Level != 2 {
		t.Errorf("expected content level default 2, got %d", spec.Sections[0].Level)
	}
	if spec.Sections[1].Level != 1 {
		t.Errorf("expected heading level default 1, got %d", spec.Sections[1].Level)
	}
}

func TestNormalizeSection_TableCellCoercion(t *testing.T) {
	spec, err := NormalizeSpecification(map[string]any{
		"sections": []any{
			map[string]any{
				"type":    "table",
				"headers": []any{"Name", "Count"},
				"data": []any{
					[]any{"widgets", 42},
					[]any{"gadgets", 3.5},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := spec.Sections[0].Data
	if rows[0][1] != "42" {
		t.Errorf("expected integer cell coerced to 42, got %q", rows[0][1])
	}
	if rows[1][1] != "3.5" {
		t.Errorf("expected float cell coerced to 3.5, got %q", rows[1][1])
	}
}

func TestNormalizeSection_ImagePathAlias(t *testing.T) {
	spec, err := NormalizeSpecification(map[string]any{
		"sections": []any{
			map[string]any{"type": "image", "path": "diagrams/arch.png"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Sections[0].Image != "diagrams/arch.png" {
		t.Errorf("expected path alias to fill image ref, got %q", spec.Sections[0].Image)
	}
}

func TestParseSpecification_YAMLAndJSON(t *testing.T) {
	yamlSrc := []byte("title: Notes\nsections:\n  - type: content\n    text: hello\n")
	spec, err := ParseSpecification(yamlSrc, domain.FormatYAML)
	if err != nil {
		t.Fatalf("yaml parse failed: %v", err)
	}
	if spec.Title != "Notes" || len(spec.Sections) != 1 {
		t.Errorf("unexpected yaml result: %+v", spec)
	}

	jsonSrc := []byte(`{"title":"Notes","sections":[{"type":"content","text":"hello"}]}`)
	spec, err = ParseSpecification(jsonSrc, domain.FormatJSON)
	if err != nil {
		t.Fatalf("json parse failed: %v", err)
	}
	if spec.Title != "Notes" || len(spec.Sections) != 1 {
		t.Errorf("unexpected json result: %+v", spec)
	}

	_, err = ParseSpecification([]byte("title: [unclosed"), domain.FormatYAML)
	var vErr *domain.SpecValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected SpecValidationError for bad yaml, got %v", err)
	}
	if !strings.Contains(vErr.Message, "YAML") {
		t.Errorf("expected YAML parse message, got %q", vErr.Message)
	}
}
