package service

import (
	"reflect"
	"testing"

	"docforge/internal/domain"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		vars     map[string]string
		want     string
		wantOpen []string
	}{
		{
			name: "simple",
			text: "Hello {{NAME}}",
			vars: map[string]string{"NAME": "Ada"},
			want: "Hello Ada",
		},
		{
			name: "inner whitespace tolerated",
			text: "Hello {{ NAME }}",
			vars: map[string]string{"NAME": "Ada"},
			want: "Hello Ada",
		},
		{
			name:     "unmatched left verbatim",
			text:     "Dear {{NAME}}, re {{SUBJECT}}",
			vars:     map[string]string{"NAME": "Ada"},
			want:     "Dear Ada, re {{SUBJECT}}",
			wantOpen: []string{"SUBJECT"},
		},
		{
			name: "key with internal space is not a token",
			text: "{{TWO WORDS}}",
			vars: map[string]string{"TWO WORDS": "x"},
			want: "{{TWO WORDS}}",
		},
		{
			name:     "open keys deduplicated and sorted",
			text:     "{{B}} {{A}} {{B}}",
			vars:     nil,
			want:     "{{B}} {{A}} {{B}}",
			wantOpen: []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, open := Substitute(tt.text, tt.vars)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if !reflect.DeepEqual(open, tt.wantOpen) {
				t.Errorf("expected open %v, got %v", tt.wantOpen, open)
			}
		})
	}
}

func TestSubstitute_ResultIsStable(t *testing.T) {
	vars := map[string]string{"NAME": "Ada"}
	once, _ := Substitute("Hello {{NAME}}", vars)
	twice, open := Substitute(once, vars)
	if once != twice {
		t.Errorf("substitution is not stable: %q then %q", once, twice)
	}
	if open != nil {
		t.Errorf("expected no open placeholders on second pass, got %v", open)
	}
}

func TestCollect(t *testing.T) {
	got := Collect("From {{FROM}} to {{TO}}, cc {{FROM}}")
	want := []string{"FROM", "TO"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if Collect("no tokens here") != nil {
		t.Error("expected nil for token-free text")
	}
}

func TestMergeVariables_CallSiteWins(t *testing.T) {
	merged := MergeVariables(
		map[string]string{"A": "spec", "B": "spec"},
		map[string]string{"B": "call", "C": "call"},
	)
	want := map[string]string{"A": "spec", "B": "call", "C": "call"}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("expected %v, got %v", want, merged)
	}
}

func TestSubstituteSpec(t *testing.T) {
	text := "Contact {{OWNER}}"
	spec := &domain.Specification{
		Title:  "{{PROJECT}} Plan",
		Header: "{{PROJECT}}",
		Sections: []domain.SectionSpec{
			{Type: domain.SectionTypeContent, Text: &text},
			{
				Type:    domain.SectionTypeTable,
				Headers: []string{"Key", "{{COL}}"},
				Data:    [][]string{{"owner", "{{OWNER}}"}},
			},
			{Type: domain.SectionTypeContent, Bullets: []string{"ship {{PROJECT}}", "{{MISSING}}"}},
		},
	}

	vars := map[string]string{"PROJECT": "Apollo", "OWNER": "Ada", "COL": "Value"}
	out, open := SubstituteSpec(spec, vars)

	if out.Title != "Apollo Plan" {
		t.Errorf("title not substituted: %q", out.Title)
	}
	if out.Header != "Apollo" {
		t.Errorf("header not substituted: %q", out.Header)
	}
	if *out.Sections[0].Text != "Contact Ada" {
		t.Errorf("section text not substituted: %q", *out.Sections[0].Text)
	}
	if out.Sections[1].Headers[1] != "Value" {
		t.Errorf("table header not substituted: %q", out.Sections[1].Headers[1])
	}
	if out.Sections[1].Data[0][1] != "Ada" {
		t.Errorf("table cell not substituted: %q", out.Sections[1].Data[0][1])
	}
	if out.Sections[2].Bullets[0] != "ship Apollo" {
		t.Errorf("bullet not substituted: %q", out.Sections[2].Bullets[0])
	}
	if !reflect.DeepEqual(open, []string{"MISSING"}) {
		t.Errorf("expected open [MISSING], got %v", open)
	}

	// input untouched
	if spec.Title != "{{PROJECT}} Plan" {
		t.Errorf("input specification was modified: %q", spec.Title)
	}
	if *spec.Sections[0].Text != "Contact {{OWNER}}" {
		t.Errorf("input section text was modified: %q", *spec.Sections[0].Text)
	}
}
