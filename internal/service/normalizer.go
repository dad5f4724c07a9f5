// Package service implements the document compilation pipeline: spec
// normalization, style resolution, placeholder substitution, section
// compilation, and batch generation.
package service

import (
	"encoding/json"
	"fmt"
	"sort"

	"docforge/internal/domain"

	"gopkg.in/yaml.v3"
)

// ParseSpecification parses raw YAML or JSON text into a validated
// Specification.
func ParseSpecification(data []byte, format domain.SourceFormat) (*domain.Specification, error) {
	raw := map[string]any{}
	switch format {
	case domain.FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &domain.SpecValidationError{Path: "(document)", Message: fmt.Sprintf("invalid YAML: %v", err)}
		}
	case domain.FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &domain.SpecValidationError{Path: "(document)", Message: fmt.Sprintf("invalid JSON: %v", err)}
		}
	default:
		return nil, &domain.SpecValidationError{Path: "(document)", Message: fmt.Sprintf("unsupported source format %q", format)}
	}
	return NormalizeSpecification(raw)
}

// NormalizeSpecification validates a loosely-typed mapping and applies field
// defaults, producing the immutable internal Specification. It is a pure
// function: unknown top-level keys are ignored, every violation is reported
// with the path of the offending field, and the input map is not modified.
func NormalizeSpecification(raw map[string]any) (*domain.Specification, error) {
	spec := &domain.Specification{
		PageSize:        "letter",
		Margins:         domain.MarginSpec{Preset: "normal"},
		TitlePageBreak:  true,
		TableOfContents: false,
	}

	var err error
	if spec.Title, err = optString(raw, "title"); err != nil {
		return nil, err
	}
	if spec.Subtitle, err = optString(raw, "subtitle"); err != nil {
		return nil, err
	}
	if spec.Author, err = optString(raw, "author"); err != nil {
		return nil, err
	}
	if spec.Template, err = optString(raw, "template"); err != nil {
		return nil, err
	}
	if spec.Header, err = optString(raw, "header"); err != nil {
		return nil, err
	}
	if spec.Footer, err = optString(raw, "footer"); err != nil {
		return nil, err
	}

	if v, ok := raw["page_size"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, &domain.SpecValidationError{Path: "page_size", Message: "expected a string"}
		}
		if !contains(domain.PageSizes, s) {
			return nil, &domain.SpecValidationError{Path: "page_size", Message: fmt.Sprintf("unknown page size %q", s), Allowed: domain.PageSizes}
		}
		spec.PageSize = s
		spec.PageSizeSet = true
	}

	if v, ok := raw["margins"]; ok {
		m, err := normalizeMargins(v)
		if err != nil {
			return nil, err
		}
		spec.Margins = m
		spec.MarginsSet = true
	}

	if spec.TableOfContents, err = optBool(raw, "table_of_contents", false); err != nil {
		return nil, err
	}
	if spec.TitlePageBreak, err = optBool(raw, "title_page_break", true); err != nil {
		return nil, err
	}

	if v, ok := raw["placeholders"]; ok {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, &domain.SpecValidationError{Path: "placeholders", Message: "expected a mapping of string to string"}
		}
		spec.Placeholders = make(map[string]string, len(m))
		for k, pv := range m {
			s, ok := scalarString(pv)
			if !ok {
				return nil, &domain.SpecValidationError{Path: "placeholders." + k, Message: "expected a scalar value"}
			}
			spec.Placeholders[k] = s
		}
	}

	if v, ok := raw["sections"]; ok {
		list, ok := v.([]any)
		if !ok {
			return nil, &domain.SpecValidationError{Path: "sections", Message: "expected a sequence"}
		}
		spec.Sections = make([]domain.SectionSpec, 0, len(list))
		for i, entry := range list {
			sec, err := normalizeSection(i, entry)
			if err != nil {
				return nil, err
			}
			spec.Sections = append(spec.Sections, sec)
		}
	}

	return spec, nil
}

func normalizeMargins(v any) (domain.MarginSpec, error) {
	switch m := v.(type) {
	case string:
		if !contains(domain.MarginPresets, m) {
			return domain.MarginSpec{}, &domain.SpecValidationError{Path: "margins", Message: fmt.Sprintf("unknown margin preset %q", m), Allowed: domain.MarginPresets}
		}
		return domain.MarginSpec{Preset: m}, nil
	case map[string]any:
		out := domain.MarginSpec{Explicit: true}
		for _, side := range []string{"top", "bottom", "left", "right"} {
			raw, ok := m[side]
			if !ok {
				return domain.MarginSpec{}, &domain.SpecValidationError{Path: "margins." + side, Message: "explicit margins require all four sides, in inches"}
			}
			f, ok := asFloat(raw)
			if !ok {
				return domain.MarginSpec{}, &domain.SpecValidationError{Path: "margins." + side, Message: "expected a number of inches"}
			}
			switch side {
			case "top":
				out.Top = f
			case "bottom":
				out.Bottom = f
			case "left":
				out.Left = f
			case "right":
				out.Right = f
			}
		}
		return out, nil
	default:
		return domain.MarginSpec{}, &domain.SpecValidationError{Path: "margins", Message: "expected a preset name or an explicit {top, bottom, left, right} mapping"}
	}
}

func normalizeSection(index int, entry any) (domain.SectionSpec, error) {
	path := func(field string) string {
		if field == "" {
			return fmt.Sprintf("sections[%d]", index)
		}
		return fmt.Sprintf("sections[%d].%s", index, field)
	}

	m, ok := entry.(map[string]any)
	if !ok {
		return domain.SectionSpec{}, &domain.SpecValidationError{Path: path(""), Message: "expected a mapping"}
	}

	rawType, ok := m["type"]
	if !ok {
		// An untyped section is ambiguous; this is a hard failure, not a
		// default.
		return domain.SectionSpec{}, &domain.SpecValidationError{Path: path("type"), Message: "missing required field"}
	}
	typeName, ok := rawType.(string)
	if !ok {
		return domain.SectionSpec{}, &domain.SpecValidationError{Path: path("type"), Message: "expected a string"}
	}
	secType := domain.SectionType(typeName)
	if !sectionTypeKnown(secType) {
		return domain.SectionSpec{}, &domain.SpecValidationError{Path: path("type"), Message: fmt.Sprintf("unknown section type %q", typeName), Allowed: sectionTypeNames()}
	}

	sec := domain.SectionSpec{Type: secType, Level: 1}

	var err error
	if sec.Title, err = optStringAt(m, "title", path); err != nil {
		return domain.SectionSpec{}, err
	}
	if sec.Subtitle, err = optStringAt(m, "subtitle", path); err != nil {
		return domain.SectionSpec{}, err
	}
	if v, ok := m["text"]; ok {
		s, isStr := v.(string)
		if !isStr {
			return domain.SectionSpec{}, &domain.SpecValidationError{Path: path("text"), Message: "expected a string"}
		}
		sec.Text = &s
	}
	if v, ok := m["level"]; ok {
		n, isInt := asInt(v)
		if !isInt {
			return domain.SectionSpec{}, &domain.SpecValidationError{Path: path("level"), Message: "expected an integer"}
		}
		if n < 1 || n > 5 {
			return domain.SectionSpec{}, &domain.SpecValidationError{Path: path("level"), Message: fmt.Sprintf("level %d out of range 1-5", n)}
		}
		sec.Level = n
	} else if secType == domain.SectionTypeContent {
		// Content titles render one level below section headings.
		sec.Level = 2
	}
	if sec.PageBreak, err = optBoolAt(m, "page_break", path); err != nil {
		return domain.SectionSpec{}, err
	}
	if sec.Bullets, err = optStringList(m, "bullets", path); err != nil {
		return domain.SectionSpec{}, err
	}
	if sec.Numbered, err = optStringList(m, "numbered", path); err != nil {
		return domain.SectionSpec{}, err
	}
	if sec.Headers, err = optStringList(m, "headers", path); err != nil {
		return domain.SectionSpec{}, err
	}
	if v, ok := m["data"]; ok {
		rows, ok := v.([]any)
		if !ok {
			return domain.SectionSpec{}, &domain.SpecValidationError{Path: path("data"), Message: "expected a sequence of rows"}
		}
		sec.Data = make([][]string, 0, len(rows))
		for r, rawRow := range rows {
			cells, ok := rawRow.([]any)
			if !ok {
				return domain.SectionSpec{}, &domain.SpecValidationError{Path: fmt.Sprintf("%s[%d]", path("data"), r), Message: "expected a sequence of cells"}
			}
			row := make([]string, 0, len(cells))
			for c, cell := range cells {
				s, ok := scalarString(cell)
				if !ok {
					return domain.SectionSpec{}, &domain.SpecValidationError{Path: fmt.Sprintf("%s[%d][%d]", path("data"), r, c), Message: "expected a scalar cell value"}
				}
				row = append(row, s)
			}
			sec.Data = append(sec.Data, row)
		}
	}
	if v, ok := m["column_widths"]; ok {
		list, ok := v.([]any)
		if !ok {
			return domain.SectionSpec{}, &domain.SpecValidationError{Path: path("column_widths"), Message: "expected a sequence of numbers"}
		}
		sec.ColumnWidths = make([]float64, 0, len(list))
		for i, w := range list {
			f, ok := asFloat(w)
			if !ok {
				return domain.SectionSpec{}, &domain.SpecValidationError{Path: fmt.Sprintf("%s[%d]", path("column_widths"), i), Message: "expected a number of inches"}
			}
			sec.ColumnWidths = append(sec.ColumnWidths, f)
		}
	}
	if sec.Image, err = optStringAt(m, "image", path); err != nil {
		return domain.SectionSpec{}, err
	}
	if sec.Image == "" {
		if sec.Image, err = optStringAt(m, "path", path); err != nil {
			return domain.SectionSpec{}, err
		}
	}
	if v, ok := m["width"]; ok {
		if sec.Width, ok = asFloat(v); !ok {
			return domain.SectionSpec{}, &domain.SpecValidationError{Path: path("width"), Message: "expected a number of inches"}
		}
	}
	if v, ok := m["height"]; ok {
		if sec.Height, ok = asFloat(v); !ok {
			return domain.SectionSpec{}, &domain.SpecValidationError{Path: path("height"), Message: "expected a number of inches"}
		}
	}
	if sec.Caption, err = optStringAt(m, "caption", path); err != nil {
		return domain.SectionSpec{}, err
	}
	if sec.Code, err = optStringAt(m, "code", path); err != nil {
		return domain.SectionSpec{}, err
	}
	if sec.Language, err = optStringAt(m, "language", path); err != nil {
		return domain.SectionSpec{}, err
	}
	if sec.Author, err = optStringAt(m, "author", path); err != nil {
		return domain.SectionSpec{}, err
	}

	if err := validateSectionShape(&sec, path); err != nil {
		return domain.SectionSpec{}, err
	}
	return sec, nil
}

func validateSectionShape(sec *domain.SectionSpec, path func(string) string) error {
	switch sec.Type {
	case domain.SectionTypeSection, domain.SectionTypeHeading:
		if sec.Title == "" {
			return &domain.SpecValidationError{Path: path("title"), Message: "required for section and heading entries"}
		}
	case domain.SectionTypeContent:
		if sec.Text == nil && len(sec.Bullets) == 0 && len(sec.Numbered) == 0 {
			return &domain.SpecValidationError{Path: path(""), Message: "content entries need at least one of text, bullets, or numbered"}
		}
	case domain.SectionTypeTable:
		if len(sec.Headers) == 0 {
			return &domain.SpecValidationError{Path: path("headers"), Message: "required for table entries"}
		}
	case domain.SectionTypeImage:
		if sec.Image == "" {
			return &domain.SpecValidationError{Path: path("image"), Message: "required for image entries"}
		}
	case domain.SectionTypeQuote:
		if sec.Text == nil || *sec.Text == "" {
			return &domain.SpecValidationError{Path: path("text"), Message: "required for quote entries"}
		}
	case domain.SectionTypeCode:
		if sec.Code == "" && (sec.Text == nil || *sec.Text == "") {
			return &domain.SpecValidationError{Path: path("code"), Message: "required for code entries"}
		}
	}
	return nil
}

func sectionTypeKnown(t domain.SectionType) bool {
	for _, known := range domain.SectionTypes {
		if t == known {
			return true
		}
	}
	return false
}

func sectionTypeNames() []string {
	names := make([]string, len(domain.SectionTypes))
	for i, t := range domain.SectionTypes {
		names[i] = string(t)
	}
	return names
}

// Loose-typing helpers. YAML yields int for whole numbers where JSON yields
// float64, so numeric coercion accepts both.

func optString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &domain.SpecValidationError{Path: key, Message: "expected a string"}
	}
	return s, nil
}

func optStringAt(m map[string]any, key string, path func(string) string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &domain.SpecValidationError{Path: path(key), Message: "expected a string"}
	}
	return s, nil
}

func optBool(m map[string]any, key string, def bool) (bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, &domain.SpecValidationError{Path: key, Message: "expected a boolean"}
	}
	return b, nil
}

func optBoolAt(m map[string]any, key string, path func(string) string) (bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, &domain.SpecValidationError{Path: path(key), Message: "expected a boolean"}
	}
	return b, nil
}

func optStringList(m map[string]any, key string, path func(string) string) ([]string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &domain.SpecValidationError{Path: path(key), Message: "expected a sequence of strings"}
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := scalarString(item)
		if !ok {
			return nil, &domain.SpecValidationError{Path: fmt.Sprintf("%s[%d]", path(key), i), Message: "expected a string"}
		}
		out = append(out, s)
	}
	return out, nil
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return fmt.Sprintf("%v", s), true
	case int, int64, float64:
		return fmt.Sprintf("%v", s), true
	default:
		return "", false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
