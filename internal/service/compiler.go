package service

import (
	"fmt"
	"strings"

	"docforge/internal/domain"
)

// CompileSections walks a substituted specification and produces the
// ordered, backend-neutral block sequence. Cross-field invariants that
// depend on neighboring values, table row shapes in particular, are
// enforced here rather than in the normalizer. Image bytes are looked up in
// assets, a mapping from section image refs to already-fetched content, so
// compilation itself never performs I/O.
func CompileSections(spec *domain.Specification, assets map[string][]byte) ([]domain.ContentBlock, error) {
	var blocks []domain.ContentBlock
	var toc []domain.TOCEntry
	tocAt := -1

	if spec.Title != "" {
		blocks = append(blocks, domain.ContentBlock{
			Kind:     domain.BlockTitle,
			Text:     spec.Title,
			Subtitle: spec.Subtitle,
		})
		if spec.TitlePageBreak {
			blocks = append(blocks, domain.ContentBlock{Kind: domain.BlockPageBreak})
		}
	}
	// The table of contents takes its own page after the title page.
	if spec.TableOfContents {
		tocAt = len(blocks)
		blocks = append(blocks, domain.ContentBlock{Kind: domain.BlockTOC})
		blocks = append(blocks, domain.ContentBlock{Kind: domain.BlockPageBreak})
	}

	for i, sec := range spec.Sections {
		switch sec.Type {
		case domain.SectionTypeSection:
			if sec.PageBreak {
				blocks = append(blocks, domain.ContentBlock{Kind: domain.BlockPageBreak})
			}
			blocks = append(blocks, domain.ContentBlock{
				Kind:  domain.BlockHeading,
				Text:  sec.Title,
				Level: 1,
			})
			toc = append(toc, domain.TOCEntry{Level: 1, Text: sec.Title})
			if sec.Subtitle != "" {
				blocks = append(blocks, domain.ContentBlock{
					Kind:   domain.BlockParagraph,
					Text:   sec.Subtitle,
					Italic: true,
				})
			}
			if sec.Text != nil {
				appendParagraphs(&blocks, *sec.Text)
			}

		case domain.SectionTypeHeading:
			if sec.PageBreak {
				blocks = append(blocks, domain.ContentBlock{Kind: domain.BlockPageBreak})
			}
			blocks = append(blocks, domain.ContentBlock{
				Kind:  domain.BlockHeading,
				Text:  sec.Title,
				Level: sec.Level,
			})
			toc = append(toc, domain.TOCEntry{Level: sec.Level, Text: sec.Title})

		case domain.SectionTypeContent:
			if sec.Title != "" {
				blocks = append(blocks, domain.ContentBlock{
					Kind:  domain.BlockHeading,
					Text:  sec.Title,
					Level: sec.Level,
				})
				toc = append(toc, domain.TOCEntry{Level: sec.Level, Text: sec.Title})
			}
			if sec.Text != nil {
				appendParagraphs(&blocks, *sec.Text)
			}
			if len(sec.Bullets) > 0 {
				blocks = append(blocks, domain.ContentBlock{
					Kind:  domain.BlockList,
					Items: sec.Bullets,
				})
			}
			if len(sec.Numbered) > 0 {
				blocks = append(blocks, domain.ContentBlock{
					Kind:    domain.BlockList,
					Items:   sec.Numbered,
					Ordered: true,
				})
			}

		case domain.SectionTypeTable:
			want := len(sec.Headers)
			for r, row := range sec.Data {
				if len(row) != want {
					return nil, &domain.CompilationError{
						Section: i,
						Field:   fmt.Sprintf("data[%d]", r),
						Message: fmt.Sprintf("row has %d cells, header has %d columns", len(row), want),
					}
				}
			}
			if len(sec.ColumnWidths) > 0 && len(sec.ColumnWidths) != want {
				return nil, &domain.CompilationError{
					Section: i,
					Field:   "column_widths",
					Message: fmt.Sprintf("got %d widths for %d columns", len(sec.ColumnWidths), want),
				}
			}
			if sec.Title != "" {
				blocks = append(blocks, domain.ContentBlock{
					Kind:  domain.BlockHeading,
					Text:  sec.Title,
					Level: 2,
				})
				toc = append(toc, domain.TOCEntry{Level: 2, Text: sec.Title})
			}
			blocks = append(blocks, domain.ContentBlock{
				Kind:         domain.BlockTable,
				Headers:      sec.Headers,
				Rows:         sec.Data,
				ColumnWidths: sec.ColumnWidths,
				Caption:      sec.Caption,
			})

		case domain.SectionTypeImage:
			data, ok := assets[sec.Image]
			if !ok {
				return nil, &domain.CompilationError{
					Section: i,
					Field:   "image",
					Message: fmt.Sprintf("no content resolved for %q", sec.Image),
				}
			}
			caption := sec.Caption
			if caption == "" {
				caption = sec.Title
			}
			blocks = append(blocks, domain.ContentBlock{
				Kind:      domain.BlockImage,
				ImageData: data,
				ImageRef:  sec.Image,
				Width:     sec.Width,
				Height:    sec.Height,
				Caption:   caption,
			})

		case domain.SectionTypeQuote:
			blocks = append(blocks, domain.ContentBlock{
				Kind:        domain.BlockQuote,
				Text:        textOrEmpty(sec.Text),
				Attribution: sec.Author,
			})

		case domain.SectionTypeCode:
			if sec.Title != "" {
				blocks = append(blocks, domain.ContentBlock{
					Kind:  domain.BlockHeading,
					Text:  sec.Title,
					Level: 3,
				})
				toc = append(toc, domain.TOCEntry{Level: 3, Text: sec.Title})
			}
			code := sec.Code
			if code == "" {
				code = textOrEmpty(sec.Text)
			}
			blocks = append(blocks, domain.ContentBlock{
				Kind:     domain.BlockCode,
				Text:     code,
				Language: sec.Language,
			})

		case domain.SectionTypePageBreak:
			blocks = append(blocks, domain.ContentBlock{Kind: domain.BlockPageBreak})

		case domain.SectionTypeHorizontalLine:
			blocks = append(blocks, domain.ContentBlock{Kind: domain.BlockRule})

		default:
			return nil, &domain.CompilationError{
				Section: i,
				Field:   "type",
				Message: fmt.Sprintf("unhandled section type %q", sec.Type),
			}
		}
	}

	if tocAt >= 0 {
		blocks[tocAt].Entries = toc
	}

	return blocks, nil
}

// appendParagraphs splits text on blank lines, emitting one paragraph block
// per chunk. A deliberately empty text (a blank line in letter boilerplate)
// still produces a single empty paragraph.
func appendParagraphs(blocks *[]domain.ContentBlock, text string) {
	chunks := strings.Split(text, "\n\n")
	emitted := false
	for _, chunk := range chunks {
		chunk = strings.TrimRight(chunk, "\n")
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		*blocks = append(*blocks, domain.ContentBlock{Kind: domain.BlockParagraph, Text: chunk})
		emitted = true
	}
	if !emitted {
		*blocks = append(*blocks, domain.ContentBlock{Kind: domain.BlockParagraph, Text: ""})
	}
}

func textOrEmpty(t *string) string {
	if t == nil {
		return ""
	}
	return *t
}
