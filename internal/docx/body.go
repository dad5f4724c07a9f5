package docx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"docforge/internal/domain"
)

// mediaFile is one image carried by a build: its part name, its bytes, and
// the relationship id the document text refers to it by.
type mediaFile struct {
	PartName    string
	Data        []byte
	ContentType string
	RelID       string
}

// numInstance is one concrete numbering instance. Ordered lists each get
// their own instance with a start override so numbering restarts at 1.
type numInstance struct {
	NumID      int
	AbstractID int
	Restart    bool
}

// Numbering abstract definition ids. Instances refer to these.
const (
	abstractBullet  = 0
	abstractDecimal = 1
)

// bodyBuilder accumulates the document body for one render. A builder is
// seeded with the id floors of the target package so merged content never
// collides with ids already present in a base document.
type bodyBuilder struct {
	style *domain.ResolvedStyle
	buf   bytes.Buffer

	nextNumID  int
	nextRelID  int
	nextMedia  int
	numbering  []numInstance
	media      []mediaFile
	bulletsNum int
}

// newBodyBuilder seeds a builder. firstNumID, firstRelID and firstMedia are
// the lowest free ids in the target package.
func newBodyBuilder(style *domain.ResolvedStyle, firstNumID, firstRelID, firstMedia int) *bodyBuilder {
	return &bodyBuilder{
		style:     style,
		nextNumID: firstNumID,
		nextRelID: firstRelID,
		nextMedia: firstMedia,
	}
}

// Build renders every block in order and returns the body XML.
func (b *bodyBuilder) Build(blocks []domain.ContentBlock) (string, error) {
	for _, blk := range blocks {
		if err := b.writeBlock(blk); err != nil {
			return "", err
		}
	}
	return b.buf.String(), nil
}

func (b *bodyBuilder) writeBlock(blk domain.ContentBlock) error {
	switch blk.Kind {
	case domain.BlockTitle:
		b.writeTitle(blk)
	case domain.BlockTOC:
		b.writeTOC(blk)
	case domain.BlockHeading:
		b.writeHeading(blk)
	case domain.BlockParagraph:
		font := b.style.Body
		if blk.Italic {
			font.Italic = true
		}
		b.writeParagraph(blk.Text, font, "")
	case domain.BlockList:
		b.writeList(blk)
	case domain.BlockTable:
		b.writeTable(blk)
	case domain.BlockImage:
		return b.writeImage(blk)
	case domain.BlockQuote:
		b.writeQuote(blk)
	case domain.BlockCode:
		b.writeCode(blk)
	case domain.BlockPageBreak:
		b.buf.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
	case domain.BlockRule:
		b.writeRule()
	default:
		return fmt.Errorf("unhandled block kind %q", blk.Kind)
	}
	return nil
}

// spacingProps renders paragraph spacing. Line spacing is expressed in
// 240ths of a line.
func (b *bodyBuilder) spacingProps(before, after int) string {
	line := int(b.style.LineSpacing*240 + 0.5)
	return fmt.Sprintf(`<w:spacing w:before="%d" w:after="%d" w:line="%d" w:lineRule="auto"/>`,
		before, after, line)
}

func (b *bodyBuilder) writeParagraph(text string, font domain.FontRole, extraPPr string) {
	b.buf.WriteString("<w:p><w:pPr>")
	b.buf.WriteString(b.spacingProps(0, 160))
	b.buf.WriteString(extraPPr)
	b.buf.WriteString("</w:pPr>")
	if text != "" {
		b.buf.WriteString(textRun(text, runProps(font)))
	}
	b.buf.WriteString("</w:p>")
}

func (b *bodyBuilder) writeTitle(blk domain.ContentBlock) {
	b.buf.WriteString(`<w:p><w:pPr><w:jc w:val="center"/>`)
	b.buf.WriteString(b.spacingProps(2400, 240))
	b.buf.WriteString("</w:pPr>")
	b.buf.WriteString(textRun(blk.Text, runProps(b.style.Title)))
	b.buf.WriteString("</w:p>")
	if blk.Subtitle != "" {
		b.buf.WriteString(`<w:p><w:pPr><w:jc w:val="center"/>`)
		b.buf.WriteString(b.spacingProps(0, 120))
		b.buf.WriteString("</w:pPr>")
		b.buf.WriteString(textRun(blk.Subtitle, runProps(b.style.Subtitle)))
		b.buf.WriteString("</w:p>")
	}
}

func (b *bodyBuilder) writeTOC(blk domain.ContentBlock) {
	heading := b.style.Heading(1)
	b.buf.WriteString("<w:p><w:pPr>")
	b.buf.WriteString(b.spacingProps(240, 240))
	b.buf.WriteString("</w:pPr>")
	b.buf.WriteString(textRun("Table of Contents", runProps(heading)))
	b.buf.WriteString("</w:p>")

	// Live TOC field, with the compiled entries cached as the field result
	// so the listing is readable before Word first updates it.
	b.buf.WriteString("<w:p><w:pPr>")
	b.buf.WriteString(b.spacingProps(0, 80))
	b.buf.WriteString("</w:pPr>")
	b.buf.WriteString(`<w:r><w:fldChar w:fldCharType="begin"/></w:r>`)
	b.buf.WriteString(`<w:r><w:instrText xml:space="preserve"> TOC \o "1-3" \h \z \u </w:instrText></w:r>`)
	b.buf.WriteString(`<w:r><w:fldChar w:fldCharType="separate"/></w:r>`)
	if len(blk.Entries) == 0 {
		hint := b.style.Body
		hint.Italic = true
		hint.Color = b.style.Colors.Muted
		b.buf.WriteString(textRun("Right-click and select 'Update Field' to generate the table of contents", runProps(hint)))
		b.buf.WriteString("</w:p>")
	} else {
		b.buf.WriteString("</w:p>")
		for _, e := range blk.Entries {
			indent := (e.Level - 1) * 360
			if indent < 0 {
				indent = 0
			}
			extra := fmt.Sprintf(`<w:ind w:left="%d"/>`, indent)
			b.writeParagraph(e.Text, b.style.Body, extra)
		}
	}
	b.buf.WriteString(`<w:p><w:r><w:fldChar w:fldCharType="end"/></w:r></w:p>`)
}

func (b *bodyBuilder) writeHeading(blk domain.ContentBlock) {
	font := b.style.Heading(blk.Level)
	before := 360
	if blk.Level <= 1 {
		before = 480
	}
	b.buf.WriteString("<w:p><w:pPr>")
	fmt.Fprintf(&b.buf, `<w:outlineLvl w:val="%d"/>`, clampLevel(blk.Level)-1)
	b.buf.WriteString(b.spacingProps(before, 120))
	b.buf.WriteString("</w:pPr>")
	b.buf.WriteString(textRun(blk.Text, runProps(font)))
	b.buf.WriteString("</w:p>")
}

func (b *bodyBuilder) writeList(blk domain.ContentBlock) {
	numID := b.listNumID(blk.Ordered)
	for _, item := range blk.Items {
		extra := fmt.Sprintf(
			`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="%d"/></w:numPr><w:ind w:left="720" w:hanging="360"/>`,
			numID)
		b.buf.WriteString("<w:p><w:pPr>")
		b.buf.WriteString(extra)
		b.buf.WriteString(b.spacingProps(0, 80))
		b.buf.WriteString("</w:pPr>")
		b.buf.WriteString(textRun(item, runProps(b.style.Body)))
		b.buf.WriteString("</w:p>")
	}
}

// listNumID allocates numbering instances. Every bullet list shares one
// instance; every ordered list gets a fresh instance with a start override
// so its numbering restarts at 1.
func (b *bodyBuilder) listNumID(ordered bool) int {
	if !ordered {
		if b.bulletsNum == 0 {
			b.bulletsNum = b.nextNumID
			b.nextNumID++
			b.numbering = append(b.numbering, numInstance{NumID: b.bulletsNum, AbstractID: abstractBullet})
		}
		return b.bulletsNum
	}
	id := b.nextNumID
	b.nextNumID++
	b.numbering = append(b.numbering, numInstance{NumID: id, AbstractID: abstractDecimal, Restart: true})
	return id
}

func (b *bodyBuilder) writeTable(blk domain.ContentBlock) {
	width := int(b.style.ContentWidth())
	cols := columnWidths(width, len(blk.Headers), blk.ColumnWidths)
	border := fmt.Sprintf(`<w:sz w:val="4"/><w:space w:val="0"/><w:color w:val="%s"/>`, b.style.Colors.Rule.Hex())

	b.buf.WriteString("<w:tbl><w:tblPr>")
	fmt.Fprintf(&b.buf, `<w:tblW w:w="%d" w:type="dxa"/>`, width)
	b.buf.WriteString("<w:tblBorders>")
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(&b.buf, `<w:%s w:val="single" %s/>`, side, border)
	}
	b.buf.WriteString("</w:tblBorders></w:tblPr><w:tblGrid>")
	for _, c := range cols {
		fmt.Fprintf(&b.buf, `<w:gridCol w:w="%d"/>`, c)
	}
	b.buf.WriteString("</w:tblGrid>")

	headerFont := b.style.Body
	headerFont.Bold = true
	headerFont.Color = domain.RGB{R: 0xFF, G: 0xFF, B: 0xFF}
	b.writeTableRow(blk.Headers, cols, headerFont, b.style.Colors.TableHeader.Hex(), true)

	for i, row := range blk.Rows {
		fill := ""
		if i%2 == 1 {
			fill = b.style.Colors.TableZebra.Hex()
		}
		b.writeTableRow(row, cols, b.style.Body, fill, false)
	}
	b.buf.WriteString("</w:tbl>")

	if blk.Caption != "" {
		extra := `<w:jc w:val="center"/>`
		b.writeParagraph(blk.Caption, b.style.Caption, extra)
	} else {
		// keeps the table from merging with a following one
		b.buf.WriteString("<w:p/>")
	}
}

func (b *bodyBuilder) writeTableRow(cells []string, cols []int, font domain.FontRole, fill string, header bool) {
	b.buf.WriteString("<w:tr>")
	if header {
		b.buf.WriteString(`<w:trPr><w:tblHeader/></w:trPr>`)
	}
	for i, cell := range cells {
		b.buf.WriteString("<w:tc><w:tcPr>")
		fmt.Fprintf(&b.buf, `<w:tcW w:w="%d" w:type="dxa"/>`, cols[i])
		if fill != "" {
			fmt.Fprintf(&b.buf, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, fill)
		}
		b.buf.WriteString("</w:tcPr><w:p><w:pPr>")
		b.buf.WriteString(b.spacingProps(40, 40))
		b.buf.WriteString("</w:pPr>")
		b.buf.WriteString(textRun(cell, runProps(font)))
		b.buf.WriteString("</w:p></w:tc>")
	}
	b.buf.WriteString("</w:tr>")
}

func (b *bodyBuilder) writeImage(blk domain.ContentBlock) error {
	width, height, err := imageExtent(blk, b.style)
	if err != nil {
		return err
	}
	contentType, ext := sniffImageType(blk.ImageData)
	name := fmt.Sprintf("word/media/image%d.%s", b.nextMedia, ext)
	relID := fmt.Sprintf("rId%d", b.nextRelID)
	b.nextMedia++
	b.nextRelID++
	b.media = append(b.media, mediaFile{
		PartName:    name,
		Data:        blk.ImageData,
		ContentType: contentType,
		RelID:       relID,
	})

	docPrID := b.nextMedia * 100
	b.buf.WriteString(`<w:p><w:pPr><w:jc w:val="center"/>`)
	b.buf.WriteString(b.spacingProps(120, 120))
	b.buf.WriteString("</w:pPr><w:r><w:drawing>")
	fmt.Fprintf(&b.buf, `<wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/>`+
		`<wp:docPr id="%d" name="%s"/>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline>`,
		width.EMU(), height.EMU(),
		docPrID, escapeXML(blk.ImageRef),
		docPrID, escapeXML(blk.ImageRef),
		relID,
		width.EMU(), height.EMU())
	b.buf.WriteString("</w:drawing></w:r></w:p>")

	if blk.Caption != "" {
		extra := `<w:jc w:val="center"/>`
		b.writeParagraph(blk.Caption, b.style.Caption, extra)
	}
	return nil
}

func (b *bodyBuilder) writeQuote(blk domain.ContentBlock) {
	extra := fmt.Sprintf(
		`<w:pBdr><w:left w:val="single" w:sz="24" w:space="8" w:color="%s"/></w:pBdr><w:ind w:left="720" w:right="720"/>`,
		b.style.Colors.Accent.Hex())
	b.writeParagraph(blk.Text, b.style.Quote, extra)
	if blk.Attribution != "" {
		attr := `<w:ind w:left="720"/><w:jc w:val="right"/>`
		font := b.style.Quote
		font.Italic = false
		font.Color = b.style.Colors.Muted
		b.writeParagraph("— "+blk.Attribution, font, attr)
	}
}

func (b *bodyBuilder) writeCode(blk domain.ContentBlock) {
	shade := `<w:shd w:val="clear" w:color="auto" w:fill="F5F5F5"/>`
	border := fmt.Sprintf(
		`<w:pBdr><w:top w:val="single" w:sz="4" w:space="4" w:color="%[1]s"/><w:bottom w:val="single" w:sz="4" w:space="4" w:color="%[1]s"/><w:left w:val="single" w:sz="4" w:space="4" w:color="%[1]s"/><w:right w:val="single" w:sz="4" w:space="4" w:color="%[1]s"/></w:pBdr>`,
		b.style.Colors.Rule.Hex())
	b.buf.WriteString("<w:p><w:pPr>")
	b.buf.WriteString(border)
	b.buf.WriteString(shade)
	b.buf.WriteString(b.spacingProps(80, 160))
	b.buf.WriteString("</w:pPr>")
	b.buf.WriteString(textRun(blk.Text, runProps(b.style.Code)))
	b.buf.WriteString("</w:p>")
}

func (b *bodyBuilder) writeRule() {
	extra := fmt.Sprintf(
		`<w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="%s"/></w:pBdr>`,
		b.style.Colors.Rule.Hex())
	b.writeParagraph("", b.style.Body, extra)
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}

// columnWidths distributes the content width over the columns. Explicit
// widths are relative weights; absent, columns share evenly.
func columnWidths(total, n int, weights []float64) []int {
	if n == 0 {
		return nil
	}
	out := make([]int, n)
	if len(weights) != n {
		for i := range out {
			out[i] = total / n
		}
		return out
	}
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		for i := range out {
			out[i] = total / n
		}
		return out
	}
	for i, w := range weights {
		out[i] = int(float64(total) * w / sum)
	}
	return out
}

// imageExtent decides the rendered size of an image. Explicit width and
// height are in inches. With only one given, the other keeps the image's
// aspect ratio; with neither, the natural pixel size at 96dpi is used,
// capped at the content width.
func imageExtent(blk domain.ContentBlock, style *domain.ResolvedStyle) (domain.Twips, domain.Twips, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(blk.ImageData))
	if err != nil {
		return 0, 0, fmt.Errorf("image %q: %w", blk.ImageRef, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("image %q: empty dimensions", blk.ImageRef)
	}
	aspect := float64(cfg.Height) / float64(cfg.Width)

	switch {
	case blk.Width > 0 && blk.Height > 0:
		return domain.FromInches(blk.Width), domain.FromInches(blk.Height), nil
	case blk.Width > 0:
		return domain.FromInches(blk.Width), domain.FromInches(blk.Width * aspect), nil
	case blk.Height > 0:
		return domain.FromInches(blk.Height / aspect), domain.FromInches(blk.Height), nil
	}

	w := domain.FromInches(float64(cfg.Width) / 96)
	if max := style.ContentWidth(); w > max {
		w = max
	}
	h := domain.Twips(float64(w)*aspect + 0.5)
	return w, h, nil
}

// sniffImageType detects the image content type from magic bytes.
func sniffImageType(data []byte) (contentType, ext string) {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte("\x89PNG\r\n\x1a\n")):
		return "image/png", "png"
	case len(data) >= 3 && bytes.Equal(data[:3], []byte("\xff\xd8\xff")):
		return "image/jpeg", "jpeg"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "image/gif", "gif"
	default:
		return "image/png", "png"
	}
}
