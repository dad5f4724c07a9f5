package service

import (
	"sort"
	"testing"
)

func TestGetTemplate(t *testing.T) {
	tpl, ok := GetTemplate("report")
	if !ok {
		t.Fatal("expected report template to exist")
	}
	if tpl.Margins != "moderate" || !tpl.IncludePageNumbers {
		t.Errorf("unexpected report config: %+v", tpl)
	}

	if _, ok := GetTemplate("REPORT"); !ok {
		t.Error("lookup should be case-insensitive")
	}

	if _, ok := GetTemplate("fancy"); ok {
		t.Error("unknown name should not resolve")
	}
}

func TestListTemplates(t *testing.T) {
	infos := ListTemplates()
	if len(infos) != len(builtinTemplates) {
		t.Fatalf("expected %d templates, got %d", len(builtinTemplates), len(infos))
	}
	if !sort.SliceIsSorted(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name }) {
		t.Error("template list should be sorted by name")
	}
	for _, info := range infos {
		if info.Name == "" || info.Description == "" {
			t.Errorf("incomplete template info: %+v", info)
		}
	}
}

func TestTemplateNames(t *testing.T) {
	names := TemplateNames()
	if len(names) != len(builtinTemplates) {
		t.Fatalf("expected %d names, got %d", len(builtinTemplates), len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Error("names should be sorted")
	}
}

func TestIsBaseDocumentRef(t *testing.T) {
	cases := []struct {
		ref  string
		want bool
	}{
		{"report", false},
		{"letterhead.docx", true},
		{"Letterhead.DOCX", true},
		{"bases/letterhead.docx", true},
		{"bases\\letterhead.docx", true},
		{"a4-narrow", false},
	}
	for _, tc := range cases {
		if got := IsBaseDocumentRef(tc.ref); got != tc.want {
			t.Errorf("IsBaseDocumentRef(%q) = %v, want %v", tc.ref, got, tc.want)
		}
	}
}
