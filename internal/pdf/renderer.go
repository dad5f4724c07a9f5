// Package pdf implements the PDF rendering backend. It flows the compiled
// block sequence into a paginated document with the core PDF fonts; the
// configured font families map onto the nearest core family.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	gofpdf "github.com/lvillar/gofpdf"
	"github.com/lvillar/gofpdf/table"

	"docforge/internal/domain"
)

// Backend renders compiled documents to PDF. Base document merging is a
// container-level operation and is rejected before rendering, so Base is
// always nil here.
type Backend struct{}

func NewBackend() *Backend {
	return &Backend{}
}

func (b *Backend) ContentType() string {
	return "application/pdf"
}

func (b *Backend) FileExtension() string {
	return "pdf"
}

func (b *Backend) Render(doc *domain.CompiledDocument) ([]byte, error) {
	if doc.Base != nil {
		return nil, fmt.Errorf("base document merging is not supported for pdf output")
	}

	s := doc.Style
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: s.PageWidth.Points(), Ht: s.PageHeight.Points()},
	})
	pdf.SetMargins(s.MarginLeft.Points(), s.MarginTop.Points(), s.MarginRight.Points())
	pdf.SetAutoPageBreak(true, s.MarginBottom.Points())
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	if doc.Author != "" {
		pdf.SetAuthor(doc.Author, true)
	}

	r := &renderer{pdf: pdf, style: s}

	if doc.Header != "" {
		header := doc.Header
		pdf.SetHeaderFunc(func() {
			r.chromeLine(header, true)
		})
	}
	if doc.Footer != "" {
		footer := doc.Footer
		pdf.AliasNbPages("")
		pdf.SetFooterFunc(func() {
			r.chromeLine(footer, false)
		})
	}

	pdf.AddPage()
	for _, blk := range doc.Blocks {
		if err := r.block(blk); err != nil {
			return nil, err
		}
	}

	if pdf.Err() {
		return nil, fmt.Errorf("rendering pdf: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type renderer struct {
	pdf    *gofpdf.Fpdf
	style  *domain.ResolvedStyle
	images int
}

// coreFamily maps configured families onto the core PDF fonts.
func coreFamily(family string) string {
	switch strings.ToLower(family) {
	case "cambria", "georgia", "times new roman", "garamond":
		return "Times"
	case "consolas", "courier new":
		return "Courier"
	default:
		return "Helvetica"
	}
}

func (r *renderer) setFont(f domain.FontRole) float64 {
	style := ""
	if f.Bold {
		style += "B"
	}
	if f.Italic {
		style += "I"
	}
	r.pdf.SetFont(coreFamily(f.Family), style, float64(f.Size))
	r.pdf.SetTextColor(int(f.Color.R), int(f.Color.G), int(f.Color.B))
	return float64(f.Size)
}

func (r *renderer) contentWidth() float64 {
	w, _ := r.pdf.GetPageSize()
	lm, _, rm, _ := r.pdf.GetMargins()
	return w - lm - rm
}

// lineHeight derives cell height from font size and the resolved line
// spacing factor.
func (r *renderer) lineHeight(size float64) float64 {
	return size * 1.2 * r.style.LineSpacing
}

func (r *renderer) block(blk domain.ContentBlock) error {
	switch blk.Kind {
	case domain.BlockTitle:
		r.title(blk)
	case domain.BlockTOC:
		r.toc(blk)
	case domain.BlockHeading:
		r.heading(blk)
	case domain.BlockParagraph:
		font := r.style.Body
		font.Italic = font.Italic || blk.Italic
		r.paragraph(blk.Text, font, "L")
	case domain.BlockList:
		r.list(blk)
	case domain.BlockTable:
		return r.table(blk)
	case domain.BlockImage:
		return r.image(blk)
	case domain.BlockQuote:
		r.quote(blk)
	case domain.BlockCode:
		r.code(blk)
	case domain.BlockPageBreak:
		r.pdf.AddPage()
	case domain.BlockRule:
		r.rule()
	default:
		return fmt.Errorf("unhandled block kind %q", blk.Kind)
	}
	return nil
}

func (r *renderer) paragraph(text string, font domain.FontRole, align string) {
	size := r.setFont(font)
	r.pdf.MultiCell(r.contentWidth(), r.lineHeight(size), text, "", align, false)
	r.pdf.Ln(size * 0.4)
}

func (r *renderer) title(blk domain.ContentBlock) {
	_, h := r.pdf.GetPageSize()
	r.pdf.SetY(h * 0.25)
	size := r.setFont(r.style.Title)
	r.pdf.MultiCell(r.contentWidth(), r.lineHeight(size), blk.Text, "", "C", false)
	if blk.Subtitle != "" {
		r.pdf.Ln(size * 0.3)
		sub := r.setFont(r.style.Subtitle)
		r.pdf.MultiCell(r.contentWidth(), r.lineHeight(sub), blk.Subtitle, "", "C", false)
	}
	r.pdf.Ln(size * 0.5)
}

func (r *renderer) toc(blk domain.ContentBlock) {
	size := r.setFont(r.style.Heading(1))
	r.pdf.MultiCell(r.contentWidth(), r.lineHeight(size), "Table of Contents", "", "L", false)
	r.pdf.Ln(size * 0.3)
	body := r.setFont(r.style.Body)
	lm, _, _, _ := r.pdf.GetMargins()
	for _, e := range blk.Entries {
		indent := float64(e.Level-1) * 18
		r.pdf.SetX(lm + indent)
		r.pdf.MultiCell(r.contentWidth()-indent, r.lineHeight(body), e.Text, "", "L", false)
	}
	r.pdf.Ln(body * 0.5)
}

func (r *renderer) heading(blk domain.ContentBlock) {
	font := r.style.Heading(blk.Level)
	size := r.setFont(font)
	r.pdf.Ln(size * 0.5)
	r.pdf.MultiCell(r.contentWidth(), r.lineHeight(size), blk.Text, "", "L", false)
	r.pdf.Ln(size * 0.2)
}

func (r *renderer) list(blk domain.ContentBlock) {
	size := r.setFont(r.style.Body)
	lm, _, _, _ := r.pdf.GetMargins()
	indent := 14.0
	for i, item := range blk.Items {
		prefix := "• "
		if blk.Ordered {
			prefix = fmt.Sprintf("%d. ", i+1)
		}
		r.pdf.SetX(lm + indent)
		r.pdf.MultiCell(r.contentWidth()-indent, r.lineHeight(size), prefix+item, "", "L", false)
	}
	r.pdf.Ln(size * 0.4)
}

func (r *renderer) table(blk domain.ContentBlock) error {
	t := table.New(r.pdf)

	width := r.contentWidth()
	weights := blk.ColumnWidths
	cols := make([]table.ColumnDef, len(blk.Headers))
	var sum float64
	for _, w := range weights {
		sum += w
	}
	for i := range cols {
		cw := width / float64(len(cols))
		if len(weights) == len(cols) && sum > 0 {
			cw = width * weights[i] / sum
		}
		cols[i] = table.ColumnDef{Width: cw}
	}
	t.SetColumns(cols...)

	hr := t.AddHeaderRow()
	for _, h := range blk.Headers {
		hr.AddCell(h)
	}
	hdr := r.style.Colors.TableHeader
	zebra := r.style.Colors.TableZebra
	t.SetStyle(table.TableStyle{
		CellPadding: table.UniformPadding(3),
		HeaderStyle: &table.CellStyle{
			FillColor: &table.RGBColor{R: int(hdr.R), G: int(hdr.G), B: int(hdr.B)},
			TextColor: &table.RGBColor{R: 255, G: 255, B: 255},
			Font:      &table.FontSpec{Family: coreFamily(r.style.Body.Family), Style: "B", Size: float64(r.style.Body.Size)},
		},
		AlternateRows: &table.AlternateStyle{
			Even: table.CellStyle{
				FillColor: &table.RGBColor{R: int(zebra.R), G: int(zebra.G), B: int(zebra.B)},
			},
		},
	})

	for _, row := range blk.Rows {
		tr := t.AddRow()
		for _, cell := range row {
			tr.AddCell(cell)
		}
	}
	if err := t.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	if blk.Caption != "" {
		r.paragraph(blk.Caption, r.style.Caption, "C")
	} else {
		r.pdf.Ln(6)
	}
	return nil
}

func (r *renderer) image(blk domain.ContentBlock) error {
	r.images++
	name := fmt.Sprintf("img%d", r.images)
	opts := gofpdf.ImageOptions{ImageType: "", ReadDpi: true}
	info := r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(blk.ImageData))
	if r.pdf.Err() {
		return fmt.Errorf("image %q: %w", blk.ImageRef, r.pdf.Error())
	}

	w := blk.Width * 72
	h := blk.Height * 72
	if w == 0 && h == 0 {
		w = info.Width()
		if max := r.contentWidth(); w > max {
			w = max
		}
	}

	x := r.pdf.GetX()
	if w > 0 {
		x += (r.contentWidth() - w) / 2
	}
	r.pdf.ImageOptions(name, x, r.pdf.GetY(), w, h, true, opts, 0, "")
	r.pdf.Ln(6)
	if blk.Caption != "" {
		r.paragraph(blk.Caption, r.style.Caption, "C")
	}
	return nil
}

func (r *renderer) quote(blk domain.ContentBlock) {
	size := r.setFont(r.style.Quote)
	lm, _, _, _ := r.pdf.GetMargins()
	indent := 24.0

	a := r.style.Colors.Accent
	y0 := r.pdf.GetY()
	r.pdf.SetX(lm + indent)
	r.pdf.MultiCell(r.contentWidth()-indent*2, r.lineHeight(size), blk.Text, "", "L", false)
	y1 := r.pdf.GetY()
	r.pdf.SetDrawColor(int(a.R), int(a.G), int(a.B))
	r.pdf.SetLineWidth(2)
	r.pdf.Line(lm+indent-8, y0, lm+indent-8, y1)
	r.pdf.SetLineWidth(0.2)
	r.pdf.SetDrawColor(0, 0, 0)

	if blk.Attribution != "" {
		m := r.style.Colors.Muted
		r.pdf.SetTextColor(int(m.R), int(m.G), int(m.B))
		r.pdf.SetX(lm + indent)
		r.pdf.MultiCell(r.contentWidth()-indent*2, r.lineHeight(size), "— "+blk.Attribution, "", "R", false)
	}
	r.pdf.Ln(size * 0.4)
}

func (r *renderer) code(blk domain.ContentBlock) {
	size := r.setFont(r.style.Code)
	r.pdf.SetFillColor(245, 245, 245)
	r.pdf.MultiCell(r.contentWidth(), size*1.3, blk.Text, "", "L", true)
	r.pdf.Ln(size * 0.4)
}

func (r *renderer) rule() {
	c := r.style.Colors.Rule
	w, _ := r.pdf.GetPageSize()
	lm, _, rm, _ := r.pdf.GetMargins()
	r.pdf.Ln(4)
	y := r.pdf.GetY()
	r.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	r.pdf.Line(lm, y, w-rm, y)
	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.Ln(6)
}

// chromeLine draws one header or footer line. Page numbering tokens are
// resolved against the live page number.
func (r *renderer) chromeLine(text string, top bool) {
	size := r.setFont(r.style.Chrome)
	resolved := strings.ReplaceAll(text, "{{PAGE}}", fmt.Sprintf("%d", r.pdf.PageNo()))
	resolved = strings.ReplaceAll(resolved, "{{TOTAL_PAGES}}", "{nb}")
	if top {
		r.pdf.SetY(r.style.MarginTop.Points() / 2)
	} else {
		r.pdf.SetY(-r.style.MarginBottom.Points() / 2)
	}
	r.pdf.CellFormat(r.contentWidth(), size*1.2, resolved, "", 0, "C", false, 0, "")
}
