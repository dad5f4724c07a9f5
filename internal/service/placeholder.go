package service

import (
	"regexp"
	"strings"

	"docforge/internal/domain"
)

// placeholderPattern matches {{KEY}} tokens: a contiguous key with no
// internal braces or whitespace, with optional whitespace inside the braces.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Substitute replaces every {{KEY}} token whose KEY is present in vars.
// Tokens with no replacement are left verbatim and returned as open
// placeholders, sorted and de-duplicated, so generation-time-missing and
// replace-time-supplied variables can be layered independently.
func Substitute(text string, vars map[string]string) (string, []string) {
	open := map[string]struct{}{}
	out := placeholderPattern.ReplaceAllStringFunc(text, func(tok string) string {
		key := strings.TrimSpace(tok[2 : len(tok)-2])
		if val, ok := vars[key]; ok {
			return val
		}
		open[key] = struct{}{}
		return tok
	})
	if len(open) == 0 {
		return out, nil
	}
	return out, sortedKeys(open)
}

// Collect extracts every placeholder key in text, replacement or not,
// sorted and de-duplicated.
func Collect(text string) []string {
	seen := map[string]struct{}{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		seen[strings.TrimSpace(m[1])] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}
	return sortedKeys(seen)
}

// MergeVariables layers call-supplied variables over a specification's own
// placeholder mapping; the call-supplied value wins on key collision.
func MergeVariables(specVars, callVars map[string]string) map[string]string {
	if len(specVars) == 0 && len(callVars) == 0 {
		return nil
	}
	merged := make(map[string]string, len(specVars)+len(callVars))
	for k, v := range specVars {
		merged[k] = v
	}
	for k, v := range callVars {
		merged[k] = v
	}
	return merged
}

// SubstituteSpec applies spec-time substitution to every text-bearing field
// of a specification, returning a substituted copy and the union of open
// placeholders. The input specification is not modified.
func SubstituteSpec(spec *domain.Specification, vars map[string]string) (*domain.Specification, []string) {
	out := *spec
	open := map[string]struct{}{}

	sub := func(s string) string {
		replaced, missing := Substitute(s, vars)
		for _, k := range missing {
			open[k] = struct{}{}
		}
		return replaced
	}

	out.Title = sub(spec.Title)
	out.Subtitle = sub(spec.Subtitle)
	out.Author = sub(spec.Author)
	out.Header = sub(spec.Header)
	out.Footer = sub(spec.Footer)

	out.Sections = make([]domain.SectionSpec, len(spec.Sections))
	for i, sec := range spec.Sections {
		sec.Title = sub(sec.Title)
		sec.Subtitle = sub(sec.Subtitle)
		if sec.Text != nil {
			t := sub(*sec.Text)
			sec.Text = &t
		}
		sec.Bullets = subList(sec.Bullets, sub)
		sec.Numbered = subList(sec.Numbered, sub)
		sec.Headers = subList(sec.Headers, sub)
		if sec.Data != nil {
			rows := make([][]string, len(sec.Data))
			for r, row := range sec.Data {
				rows[r] = subList(row, sub)
			}
			sec.Data = rows
		}
		sec.Caption = sub(sec.Caption)
		sec.Code = sub(sec.Code)
		sec.Author = sub(sec.Author)
		out.Sections[i] = sec
	}

	if len(open) == 0 {
		return &out, nil
	}
	return &out, sortedKeys(open)
}

func subList(items []string, sub func(string) string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = sub(item)
	}
	return out
}
