package pdf

import (
	"bytes"
	"testing"

	"docforge/internal/domain"
	"docforge/internal/service"
)

func testDocument(t *testing.T, blocks []domain.ContentBlock) *domain.CompiledDocument {
	t.Helper()
	style, err := service.ResolveStyle(&domain.Specification{}, nil, nil)
	if err != nil {
		t.Fatalf("resolving default style: %v", err)
	}
	return &domain.CompiledDocument{
		Title:  "Test Document",
		Author: "Tester",
		Footer: "Page {{PAGE}} of {{TOTAL_PAGES}}",
		Style:  style,
		Blocks: blocks,
	}
}

func TestBackendMetadata(t *testing.T) {
	b := NewBackend()
	if b.ContentType() != "application/pdf" {
		t.Errorf("unexpected content type %q", b.ContentType())
	}
	if b.FileExtension() != "pdf" {
		t.Errorf("unexpected extension %q", b.FileExtension())
	}
}

func TestRender(t *testing.T) {
	doc := testDocument(t, []domain.ContentBlock{
		{Kind: domain.BlockTitle, Text: "Annual Review", Subtitle: "FY 2026"},
		{Kind: domain.BlockPageBreak},
		{Kind: domain.BlockHeading, Text: "Summary", Level: 1},
		{Kind: domain.BlockParagraph, Text: "A year of steady progress."},
		{Kind: domain.BlockList, Items: []string{"first", "second"}, Ordered: true},
		{Kind: domain.BlockTable, Headers: []string{"Quarter", "Revenue"}, Rows: [][]string{{"Q1", "10"}, {"Q2", "12"}}},
		{Kind: domain.BlockQuote, Text: "Onward.", Attribution: "The Board"},
		{Kind: domain.BlockCode, Text: "make release"},
		{Kind: domain.BlockRule},
	})

	data, err := NewBackend().Render(doc)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not look like a pdf: %q", data[:min(16, len(data))])
	}
	if len(data) < 1000 {
		t.Errorf("suspiciously small output: %d bytes", len(data))
	}
}

func TestRender_RejectsBase(t *testing.T) {
	doc := testDocument(t, nil)
	doc.Base = []byte("base container")
	if _, err := NewBackend().Render(doc); err == nil {
		t.Error("base documents should be rejected for pdf output")
	}
}

func TestRender_TOC(t *testing.T) {
	doc := testDocument(t, []domain.ContentBlock{
		{Kind: domain.BlockTOC, Entries: []domain.TOCEntry{
			{Level: 1, Text: "Intro"},
			{Level: 2, Text: "Details"},
		}},
		{Kind: domain.BlockHeading, Text: "Intro", Level: 1},
	})
	data, err := NewBackend().Render(doc)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output does not look like a pdf")
	}
}

func TestCoreFamily(t *testing.T) {
	cases := []struct {
		family string
		want   string
	}{
		{"Cambria", "Times"},
		{"Georgia", "Times"},
		{"Times New Roman", "Times"},
		{"Consolas", "Courier"},
		{"Calibri", "Helvetica"},
		{"", "Helvetica"},
	}
	for _, tc := range cases {
		if got := coreFamily(tc.family); got != tc.want {
			t.Errorf("coreFamily(%q) = %q, want %q", tc.family, got, tc.want)
		}
	}
}
