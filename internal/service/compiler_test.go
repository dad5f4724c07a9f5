package service

import (
	"errors"
	"testing"

	"docforge/internal/domain"
)

func strptr(s string) *string { return &s }

func TestCompileSections_BasicFlow(t *testing.T) {
	spec := &domain.Specification{
		Title:          "Launch Plan",
		Subtitle:       "Moon Mission",
		TitlePageBreak: true,
		Sections: []domain.SectionSpec{
			{Type: domain.SectionTypeSection, Title: "Overview", Text: strptr("We go up.")},
			{Type: domain.SectionTypeContent, Text: strptr("Details."), Bullets: []string{"a", "b"}},
			{Type: domain.SectionTypeHorizontalLine},
		},
	}

	blocks, err := CompileSections(spec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKinds := []domain.BlockKind{
		domain.BlockTitle,
		domain.BlockPageBreak,
		domain.BlockHeading,
		domain.BlockParagraph,
		domain.BlockParagraph,
		domain.BlockList,
		domain.BlockRule,
	}
	if len(blocks) != len(wantKinds) {
		t.Fatalf("expected %d blocks, got %d", len(wantKinds), len(blocks))
	}
	for i, want := range wantKinds {
		if blocks[i].Kind != want {
			t.Errorf("block %d: expected %s, got %s", i, want, blocks[i].Kind)
		}
	}
	if blocks[0].Subtitle != "Moon Mission" {
		t.Errorf("title subtitle missing: %+v", blocks[0])
	}
	if blocks[2].Level != 1 {
		t.Errorf("section heading should be level 1, got %d", blocks[2].Level)
	}
	if blocks[5].Ordered {
		t.Error("bullets should not be ordered")
	}
}

func TestCompileSections_TOCEntries(t *testing.T) {
	spec := &domain.Specification{
		Title:           "Manual",
		TableOfContents: true,
		Sections: []domain.SectionSpec{
			{Type: domain.SectionTypeSection, Title: "Install"},
			{Type: domain.SectionTypeHeading, Title: "Linux", Level: 2},
			{Type: domain.SectionTypeContent, Title: "Notes", Level: 3, Text: strptr("x")},
		},
	}

	blocks, err := CompileSections(spec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var toc *domain.ContentBlock
	for i := range blocks {
		if blocks[i].Kind == domain.BlockTOC {
			toc = &blocks[i]
			break
		}
	}
	if toc == nil {
		t.Fatal("no toc block emitted")
	}
	if len(toc.Entries) != 3 {
		t.Fatalf("expected 3 toc entries, got %d", len(toc.Entries))
	}
	if toc.Entries[0].Text != "Install" || toc.Entries[0].Level != 1 {
		t.Errorf("unexpected first entry: %+v", toc.Entries[0])
	}
	if toc.Entries[1].Text != "Linux" || toc.Entries[1].Level != 2 {
		t.Errorf("unexpected second entry: %+v", toc.Entries[1])
	}
	if toc.Entries[2].Text != "Notes" || toc.Entries[2].Level != 3 {
		t.Errorf("unexpected third entry: %+v", toc.Entries[2])
	}
}

func TestCompileSections_TOCOnOwnPage(t *testing.T) {
	spec := &domain.Specification{
		Title:           "Guide",
		TitlePageBreak:  true,
		TableOfContents: true,
		Sections: []domain.SectionSpec{
			{Type: domain.SectionTypeHeading, Title: "Intro", Level: 1},
		},
	}
	blocks, err := CompileSections(spec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKinds := []domain.BlockKind{
		domain.BlockTitle,
		domain.BlockPageBreak,
		domain.BlockTOC,
		domain.BlockPageBreak,
		domain.BlockHeading,
	}
	if len(blocks) != len(wantKinds) {
		t.Fatalf("expected %d blocks, got %d", len(wantKinds), len(blocks))
	}
	for i, want := range wantKinds {
		if blocks[i].Kind != want {
			t.Errorf("block %d: expected %s, got %s", i, want, blocks[i].Kind)
		}
	}
}

func TestCompileSections_SectionSubtitle(t *testing.T) {
	spec := &domain.Specification{
		Sections: []domain.SectionSpec{
			{Type: domain.SectionTypeSection, Title: "Scope", Subtitle: "What this covers", Text: strptr("Body.")},
		},
	}
	blocks, err := CompileSections(spec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected heading, subtitle and paragraph, got %d blocks", len(blocks))
	}
	sub := blocks[1]
	if sub.Kind != domain.BlockParagraph || sub.Text != "What this covers" {
		t.Fatalf("unexpected subtitle block: %+v", sub)
	}
	if !sub.Italic {
		t.Error("section subtitle should render italic")
	}
	if blocks[2].Italic {
		t.Error("body paragraph should not inherit italics")
	}
}

func TestCompileSections_TableRowShape(t *testing.T) {
	spec := &domain.Specification{
		Sections: []domain.SectionSpec{
			{Type: domain.SectionTypeContent, Text: strptr("padding")},
			{
				Type:    domain.SectionTypeTable,
				Headers: []string{"A", "B", "C"},
				Data: [][]string{
					{"1", "2", "3"},
					{"1", "2"},
				},
			},
		},
	}

	_, err := CompileSections(spec, nil)
	var cErr *domain.CompilationError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected CompilationError, got %v", err)
	}
	if cErr.Section != 1 {
		t.Errorf("expected section index 1, got %d", cErr.Section)
	}
	if cErr.Field != "data[1]" {
		t.Errorf("expected field data[1], got %q", cErr.Field)
	}
}

func TestCompileSections_ColumnWidthMismatch(t *testing.T) {
	spec := &domain.Specification{
		Sections: []domain.SectionSpec{
			{
				Type:         domain.SectionTypeTable,
				Headers:      []string{"A", "B"},
				ColumnWidths: []float64{1, 2, 3},
			},
		},
	}
	_, err := CompileSections(spec, nil)
	var cErr *domain.CompilationError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected CompilationError, got %v", err)
	}
	if cErr.Field != "column_widths" {
		t.Errorf("expected field column_widths, got %q", cErr.Field)
	}
}

func TestCompileSections_ImageAssets(t *testing.T) {
	spec := &domain.Specification{
		Sections: []domain.SectionSpec{
			{Type: domain.SectionTypeImage, Image: "logo.png", Caption: "Logo"},
		},
	}

	blocks, err := CompileSections(spec, map[string][]byte{"logo.png": {1, 2, 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocks[0].Kind != domain.BlockImage || string(blocks[0].ImageData) != "\x01\x02\x03" {
		t.Errorf("image data not wired: %+v", blocks[0])
	}

	_, err = CompileSections(spec, nil)
	var cErr *domain.CompilationError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected CompilationError for missing asset, got %v", err)
	}
}

func TestCompileSections_ImageCaptionFallsBackToTitle(t *testing.T) {
	spec := &domain.Specification{
		Sections: []domain.SectionSpec{
			{Type: domain.SectionTypeImage, Image: "chart.png", Title: "Q3 Revenue"},
		},
	}
	blocks, err := CompileSections(spec, map[string][]byte{"chart.png": {1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocks[0].Caption != "Q3 Revenue" {
		t.Errorf("caption should fall back to title, got %q", blocks[0].Caption)
	}
}

func TestCompileSections_TableAndCodeTitles(t *testing.T) {
	spec := &domain.Specification{
		TableOfContents: true,
		Sections: []domain.SectionSpec{
			{
				Type:    domain.SectionTypeTable,
				Title:   "Budget",
				Headers: []string{"Item", "Cost"},
				Data:    [][]string{{"pens", "3"}},
			},
			{Type: domain.SectionTypeCode, Title: "Example", Code: "x = 1"},
		},
	}
	blocks, err := CompileSections(spec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKinds := []domain.BlockKind{
		domain.BlockTOC,
		domain.BlockPageBreak,
		domain.BlockHeading,
		domain.BlockTable,
		domain.BlockHeading,
		domain.BlockCode,
	}
	if len(blocks) != len(wantKinds) {
		t.Fatalf("expected %d blocks, got %d", len(wantKinds), len(blocks))
	}
	for i, want := range wantKinds {
		if blocks[i].Kind != want {
			t.Errorf("block %d: expected %s, got %s", i, want, blocks[i].Kind)
		}
	}
	if blocks[2].Text != "Budget" || blocks[2].Level != 2 {
		t.Errorf("table title should be a level 2 heading: %+v", blocks[2])
	}
	if blocks[4].Text != "Example" || blocks[4].Level != 3 {
		t.Errorf("code title should be a level 3 heading: %+v", blocks[4])
	}

	entries := blocks[0].Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 toc entries, got %d", len(entries))
	}
	if entries[0].Text != "Budget" || entries[0].Level != 2 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Text != "Example" || entries[1].Level != 3 {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestCompileSections_QuoteAndCode(t *testing.T) {
	spec := &domain.Specification{
		Sections: []domain.SectionSpec{
			{Type: domain.SectionTypeQuote, Text: strptr("Know thyself."), Author: "Socrates"},
			{Type: domain.SectionTypeCode, Code: "print('hi')", Language: "python"},
		},
	}
	blocks, err := CompileSections(spec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocks[0].Kind != domain.BlockQuote || blocks[0].Attribution != "Socrates" {
		t.Errorf("unexpected quote block: %+v", blocks[0])
	}
	if blocks[1].Kind != domain.BlockCode || blocks[1].Language != "python" {
		t.Errorf("unexpected code block: %+v", blocks[1])
	}
}

func TestCompileSections_ParagraphSplitting(t *testing.T) {
	spec := &domain.Specification{
		Sections: []domain.SectionSpec{
			{Type: domain.SectionTypeContent, Text: strptr("first\n\nsecond")},
			{Type: domain.SectionTypeContent, Text: strptr("")},
		},
	}
	blocks, err := CompileSections(spec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 paragraph blocks, got %d", len(blocks))
	}
	if blocks[0].Text != "first" || blocks[1].Text != "second" {
		t.Errorf("paragraph split wrong: %q / %q", blocks[0].Text, blocks[1].Text)
	}
	if blocks[2].Text != "" {
		t.Errorf("empty text should yield an empty paragraph, got %q", blocks[2].Text)
	}
}

func TestCompileSections_PageBreakBeforeSection(t *testing.T) {
	spec := &domain.Specification{
		Sections: []domain.SectionSpec{
			{Type: domain.SectionTypeSection, Title: "One"},
			{Type: domain.SectionTypeSection, Title: "Two", PageBreak: true},
		},
	}
	blocks, err := CompileSections(spec, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocks[0].Kind != domain.BlockHeading {
		t.Errorf("expected heading first, got %s", blocks[0].Kind)
	}
	if blocks[1].Kind != domain.BlockPageBreak || blocks[2].Kind != domain.BlockHeading {
		t.Errorf("expected page break before second heading, got %s then %s", blocks[1].Kind, blocks[2].Kind)
	}
}
