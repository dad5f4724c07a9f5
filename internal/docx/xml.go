package docx

import (
	"fmt"
	"strings"

	"docforge/internal/domain"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const wNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"`

// escapeXML escapes text content for embedding in an XML element.
func escapeXML(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// runProps renders the run property block of a font role. Font sizes are in
// points; WordprocessingML wants half-points.
func runProps(f domain.FontRole) string {
	var b strings.Builder
	b.WriteString("<w:rPr>")
	fmt.Fprintf(&b, `<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, escapeXML(f.Family), escapeXML(f.Family))
	if f.Bold {
		b.WriteString("<w:b/>")
	}
	if f.Italic {
		b.WriteString("<w:i/>")
	}
	fmt.Fprintf(&b, `<w:color w:val="%s"/>`, f.Color.Hex())
	fmt.Fprintf(&b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, f.Size*2, f.Size*2)
	b.WriteString("</w:rPr>")
	return b.String()
}

// textRun renders one literal run with the given properties. Line breaks in
// the text become soft breaks inside the run.
func textRun(text, props string) string {
	var b strings.Builder
	b.WriteString("<w:r>")
	b.WriteString(props)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("<w:br/>")
		}
		fmt.Fprintf(&b, `<w:t xml:space="preserve">%s</w:t>`, escapeXML(line))
	}
	b.WriteString("</w:r>")
	return b.String()
}

// fieldRun renders a simple field, for page numbering in footers.
func fieldRun(instr, props string) string {
	return fmt.Sprintf(`<w:fldSimple w:instr="%s"><w:r>%s<w:t>1</w:t></w:r></w:fldSimple>`,
		escapeXML(instr), props)
}

// chromeRuns renders header or footer text, turning the page numbering
// tokens into live fields so they update as the document repaginates.
func chromeRuns(text, props string) string {
	var b strings.Builder
	rest := text
	for {
		page := strings.Index(rest, "{{PAGE}}")
		total := strings.Index(rest, "{{TOTAL_PAGES}}")
		if page < 0 && total < 0 {
			break
		}
		at, tok, instr := page, "{{PAGE}}", " PAGE "
		if page < 0 || (total >= 0 && total < page) {
			at, tok, instr = total, "{{TOTAL_PAGES}}", " NUMPAGES "
		}
		if at > 0 {
			b.WriteString(textRun(rest[:at], props))
		}
		b.WriteString(fieldRun(instr, props))
		rest = rest[at+len(tok):]
	}
	if rest != "" {
		b.WriteString(textRun(rest, props))
	}
	return b.String()
}
