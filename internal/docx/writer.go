package docx

import (
	"fmt"
	"strings"
	"time"

	"docforge/internal/domain"
)

const contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Backend renders compiled documents to .docx containers. A nil-base
// document is rendered from scratch; a document carrying base bytes is
// appended into the base container with the base's own parts preserved.
type Backend struct{}

func NewBackend() *Backend {
	return &Backend{}
}

func (b *Backend) ContentType() string {
	return contentTypeDocx
}

func (b *Backend) FileExtension() string {
	return "docx"
}

func (b *Backend) Render(doc *domain.CompiledDocument) ([]byte, error) {
	if doc.Base != nil {
		return AppendToBase(doc.Base, doc)
	}
	return renderFresh(doc)
}

// renderFresh assembles a complete container from nothing.
func renderFresh(doc *domain.CompiledDocument) ([]byte, error) {
	// rId1 styles, rId2 numbering, rId4 header, rId5 footer; media
	// relationships start at rId6.
	builder := newBodyBuilder(doc.Style, 1, 6, 1)
	body, err := builder.Build(doc.Blocks)
	if err != nil {
		return nil, err
	}

	pkg := NewPackage()
	hasNumbering := len(builder.numbering) > 0
	pkg.SetPart(partContentType, []byte(contentTypesXML(builder.media, doc, hasNumbering)))
	pkg.SetPart(partRootRels, []byte(rootRelsXML))
	pkg.SetPart(partDocument, []byte(documentXML(doc, body)))
	pkg.SetPart(partDocRels, []byte(documentRelsXML(builder.media, doc, hasNumbering)))
	pkg.SetPart(partStyles, []byte(stylesXML(doc.Style)))
	if len(builder.numbering) > 0 {
		pkg.SetPart(partNumbering, []byte(numberingXML(builder.numbering)))
	}
	if doc.Header != "" {
		pkg.SetPart("word/header1.xml", []byte(headerXML(doc.Header, doc.Style)))
	}
	if doc.Footer != "" {
		pkg.SetPart("word/footer1.xml", []byte(footerXML(doc.Footer, doc.Style)))
	}
	pkg.SetPart(partCore, []byte(coreXML(doc)))
	pkg.SetPart(partApp, []byte(appXML))
	for _, m := range builder.media {
		pkg.SetPart(m.PartName, m.Data)
	}
	return pkg.Bytes()
}

func documentXML(doc *domain.CompiledDocument, body string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:document ` + wNamespaces + `><w:body>`)
	b.WriteString(body)
	b.WriteString(sectPrXML(doc))
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func sectPrXML(doc *domain.CompiledDocument) string {
	s := doc.Style
	var b strings.Builder
	b.WriteString("<w:sectPr>")
	if doc.Header != "" {
		b.WriteString(`<w:headerReference w:type="default" r:id="rId4"/>`)
	}
	if doc.Footer != "" {
		b.WriteString(`<w:footerReference w:type="default" r:id="rId5"/>`)
	}
	fmt.Fprintf(&b, `<w:pgSz w:w="%d" w:h="%d"/>`, s.PageWidth, s.PageHeight)
	fmt.Fprintf(&b, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="720" w:footer="720" w:gutter="0"/>`,
		s.MarginTop, s.MarginRight, s.MarginBottom, s.MarginLeft)
	b.WriteString("</w:sectPr>")
	return b.String()
}

func headerXML(text string, style *domain.ResolvedStyle) string {
	return xmlHeader +
		`<w:hdr ` + wNamespaces + `>` +
		`<w:p><w:pPr><w:jc w:val="center"/><w:pBdr><w:bottom w:val="single" w:sz="4" w:space="4" w:color="` +
		style.Colors.Rule.Hex() + `"/></w:pBdr></w:pPr>` +
		chromeRuns(text, runProps(style.Chrome)) +
		`</w:p></w:hdr>`
}

func footerXML(text string, style *domain.ResolvedStyle) string {
	return xmlHeader +
		`<w:ftr ` + wNamespaces + `>` +
		`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` +
		chromeRuns(text, runProps(style.Chrome)) +
		`</w:p></w:ftr>`
}

func contentTypesXML(media []mediaFile, doc *domain.CompiledDocument, hasNumbering bool) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	for _, ext := range mediaExtensions(media) {
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="image/%s"/>`, ext, ext)
	}
	b.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	b.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	if hasNumbering {
		b.WriteString(`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>`)
	}
	if doc.Header != "" {
		b.WriteString(`<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`)
	}
	if doc.Footer != "" {
		b.WriteString(`<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`)
	}
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return b.String()
}

func mediaExtensions(media []mediaFile) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range media {
		ext := m.PartName[strings.LastIndex(m.PartName, ".")+1:]
		if !seen[ext] {
			seen[ext] = true
			out = append(out, ext)
		}
	}
	return out
}

const rootRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

func documentRelsXML(media []mediaFile, doc *domain.CompiledDocument, hasNumbering bool) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	if hasNumbering {
		b.WriteString(`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>`)
	}
	if doc.Header != "" {
		b.WriteString(`<Relationship Id="rId4" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>`)
	}
	if doc.Footer != "" {
		b.WriteString(`<Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>`)
	}
	for _, m := range media {
		target := strings.TrimPrefix(m.PartName, "word/")
		fmt.Fprintf(&b,
			`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="%s"/>`,
			m.RelID, target)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// stylesXML emits document defaults plus the Normal style so readers that
// key off style names see sensible body formatting. Block-level formatting
// itself is written directly on runs and paragraphs.
func stylesXML(s *domain.ResolvedStyle) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:styles ` + wNamespaces + `>`)
	b.WriteString(`<w:docDefaults><w:rPrDefault>`)
	fmt.Fprintf(&b, `<w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:sz w:val="%d"/><w:color w:val="%s"/></w:rPr>`,
		escapeXML(s.Body.Family), escapeXML(s.Body.Family), s.Body.Size*2, s.Body.Color.Hex())
	b.WriteString(`</w:rPrDefault><w:pPrDefault>`)
	fmt.Fprintf(&b, `<w:pPr><w:spacing w:after="160" w:line="%d" w:lineRule="auto"/></w:pPr>`,
		int(s.LineSpacing*240+0.5))
	b.WriteString(`</w:pPrDefault></w:docDefaults>`)
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>`)
	for i := 0; i < 5; i++ {
		h := s.Headings[i]
		fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="Heading%d"><w:name w:val="heading %d"/><w:basedOn w:val="Normal"/>`+
			`<w:pPr><w:outlineLvl w:val="%d"/></w:pPr>`+
			`<w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:b/><w:sz w:val="%d"/><w:color w:val="%s"/></w:rPr></w:style>`,
			i+1, i+1, i, escapeXML(h.Family), escapeXML(h.Family), h.Size*2, h.Color.Hex())
	}
	b.WriteString(`</w:styles>`)
	return b.String()
}

// numberingXML emits two abstract definitions, bullet and decimal, plus the
// allocated instances. A restarting instance carries a start override so
// its list numbers from 1 regardless of earlier lists.
func numberingXML(nums []numInstance) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:numbering ` + wNamespaces + `>`)
	fmt.Fprintf(&b, `<w:abstractNum w:abstractNumId="%d">`+
		`<w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/><w:lvlText w:val="%s"/>`+
		`<w:rPr><w:rFonts w:ascii="Symbol" w:hAnsi="Symbol"/></w:rPr>`+
		`<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>`,
		abstractBullet, "")
	fmt.Fprintf(&b, `<w:abstractNum w:abstractNumId="%d">`+
		`<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%%1."/>`+
		`<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>`,
		abstractDecimal)
	for _, n := range nums {
		fmt.Fprintf(&b, `<w:num w:numId="%d"><w:abstractNumId w:val="%d"/>`, n.NumID, n.AbstractID)
		if n.Restart {
			b.WriteString(`<w:lvlOverride w:ilvl="0"><w:startOverride w:val="1"/></w:lvlOverride>`)
		}
		b.WriteString(`</w:num>`)
	}
	b.WriteString(`</w:numbering>`)
	return b.String()
}

func coreXML(doc *domain.CompiledDocument) string {
	now := time.Now().UTC().Format(time.RFC3339)
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<cp:coreProperties ` +
		`xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" ` +
		`xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	fmt.Fprintf(&b, `<dc:title>%s</dc:title>`, escapeXML(doc.Title))
	fmt.Fprintf(&b, `<dc:creator>%s</dc:creator>`, escapeXML(doc.Author))
	fmt.Fprintf(&b, `<cp:lastModifiedBy>%s</cp:lastModifiedBy>`, escapeXML(doc.Author))
	fmt.Fprintf(&b, `<dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>`, now)
	fmt.Fprintf(&b, `<dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>`, now)
	b.WriteString(`</cp:coreProperties>`)
	return b.String()
}

const appXML = xmlHeader +
	`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
	`<Application>docforge</Application>` +
	`</Properties>`
