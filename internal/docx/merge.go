package docx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"docforge/internal/domain"
)

var (
	relIDPattern       = regexp.MustCompile(`Id="rId(\d+)"`)
	numIDPattern       = regexp.MustCompile(`<w:num w:numId="(\d+)"`)
	abstractIDPattern  = regexp.MustCompile(`w:abstractNumId="(\d+)"`)
	mediaIndexPattern  = regexp.MustCompile(`^word/media/image(\d+)\.`)
	bodySectPrPattern  = regexp.MustCompile(`<w:sectPr[ >]`)
	contentTypeDefault = `<Default Extension="%s" ContentType="%s"/>`
)

// AppendToBase renders the compiled blocks into an existing container,
// inserting them after the base's own content and before its final section
// properties. Every base part that is not touched by the merge survives
// byte for byte; base styles, headers and footers keep governing the page.
func AppendToBase(base []byte, doc *domain.CompiledDocument) ([]byte, error) {
	pkg, err := OpenPackage(base)
	if err != nil {
		return nil, err
	}

	docXML, _ := pkg.Part(partDocument)
	relsXML, _ := pkg.Part(partDocRels)

	builder := newBodyBuilder(doc.Style,
		maxPatternID(pkg, numIDPattern, partNumbering)+1,
		maxID(relIDPattern, relsXML)+1,
		maxMediaIndex(pkg)+1)
	body, err := builder.Build(doc.Blocks)
	if err != nil {
		return nil, err
	}

	merged, err := insertBeforeSectPr(string(docXML), body)
	if err != nil {
		return nil, err
	}
	pkg.SetPart(partDocument, []byte(merged))

	if err := mergeNumbering(pkg, builder.numbering); err != nil {
		return nil, err
	}
	if err := mergeMedia(pkg, builder.media); err != nil {
		return nil, err
	}
	return pkg.Bytes()
}

// insertBeforeSectPr splices content in front of the body's trailing
// section properties, or in front of </w:body> when the base has no
// trailing sectPr.
func insertBeforeSectPr(docXML, content string) (string, error) {
	locs := bodySectPrPattern.FindAllStringIndex(docXML, -1)
	if len(locs) > 0 {
		at := locs[len(locs)-1][0]
		return docXML[:at] + content + docXML[at:], nil
	}
	at := strings.LastIndex(docXML, "</w:body>")
	if at < 0 {
		return "", fmt.Errorf("base document has no body")
	}
	return docXML[:at] + content + docXML[at:], nil
}

// mergeNumbering adds the build's numbering instances to the base. The
// abstract definitions are re-emitted under ids above anything the base
// already declares so nothing collides.
func mergeNumbering(pkg *Package, nums []numInstance) error {
	if len(nums) == 0 {
		return nil
	}

	if !pkg.Has(partNumbering) {
		pkg.SetPart(partNumbering, []byte(numberingXML(nums)))
		if err := addOverride(pkg, "/word/numbering.xml",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"); err != nil {
			return err
		}
		return addDocRelationship(pkg,
			"http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering",
			"numbering.xml")
	}

	numXML, _ := pkg.Part(partNumbering)
	offset := maxID(abstractIDPattern, numXML) + 1

	var frag strings.Builder
	fmt.Fprintf(&frag, `<w:abstractNum w:abstractNumId="%d">`+
		`<w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/><w:lvlText w:val="%s"/>`+
		`<w:rPr><w:rFonts w:ascii="Symbol" w:hAnsi="Symbol"/></w:rPr>`+
		`<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>`,
		offset+abstractBullet, "")
	fmt.Fprintf(&frag, `<w:abstractNum w:abstractNumId="%d">`+
		`<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%%1."/>`+
		`<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>`,
		offset+abstractDecimal)
	for _, n := range nums {
		fmt.Fprintf(&frag, `<w:num w:numId="%d"><w:abstractNumId w:val="%d"/>`, n.NumID, offset+n.AbstractID)
		if n.Restart {
			frag.WriteString(`<w:lvlOverride w:ilvl="0"><w:startOverride w:val="1"/></w:lvlOverride>`)
		}
		frag.WriteString(`</w:num>`)
	}

	// abstractNum elements must precede num elements; splice the whole
	// fragment in front of the base's first w:num when it has any.
	s := string(numXML)
	at := strings.Index(s, "<w:num ")
	if at < 0 {
		at = strings.LastIndex(s, "</w:numbering>")
		if at < 0 {
			return fmt.Errorf("malformed numbering part")
		}
	}
	pkg.SetPart(partNumbering, []byte(s[:at]+frag.String()+s[at:]))
	return nil
}

func mergeMedia(pkg *Package, media []mediaFile) error {
	for _, m := range media {
		pkg.SetPart(m.PartName, m.Data)
		ext := m.PartName[strings.LastIndex(m.PartName, ".")+1:]
		if err := addDefault(pkg, ext, m.ContentType); err != nil {
			return err
		}
		if err := addDocRelationshipWithID(pkg, m.RelID,
			"http://schemas.openxmlformats.org/officeDocument/2006/relationships/image",
			strings.TrimPrefix(m.PartName, "word/")); err != nil {
			return err
		}
	}
	return nil
}

func addDefault(pkg *Package, ext, contentType string) error {
	ct, ok := pkg.Part(partContentType)
	if !ok {
		return fmt.Errorf("base document has no content types part")
	}
	s := string(ct)
	if strings.Contains(s, fmt.Sprintf(`Extension="%s"`, ext)) {
		return nil
	}
	at := strings.LastIndex(s, "</Types>")
	if at < 0 {
		return fmt.Errorf("malformed content types part")
	}
	entry := fmt.Sprintf(contentTypeDefault, ext, contentType)
	pkg.SetPart(partContentType, []byte(s[:at]+entry+s[at:]))
	return nil
}

func addOverride(pkg *Package, partName, contentType string) error {
	ct, ok := pkg.Part(partContentType)
	if !ok {
		return fmt.Errorf("base document has no content types part")
	}
	s := string(ct)
	if strings.Contains(s, fmt.Sprintf(`PartName="%s"`, partName)) {
		return nil
	}
	at := strings.LastIndex(s, "</Types>")
	if at < 0 {
		return fmt.Errorf("malformed content types part")
	}
	entry := fmt.Sprintf(`<Override PartName="%s" ContentType="%s"/>`, partName, contentType)
	pkg.SetPart(partContentType, []byte(s[:at]+entry+s[at:]))
	return nil
}

func addDocRelationship(pkg *Package, relType, target string) error {
	rels, _ := pkg.Part(partDocRels)
	id := fmt.Sprintf("rId%d", maxID(relIDPattern, rels)+1)
	return addDocRelationshipWithID(pkg, id, relType, target)
}

func addDocRelationshipWithID(pkg *Package, id, relType, target string) error {
	rels, ok := pkg.Part(partDocRels)
	if !ok {
		return fmt.Errorf("base document has no relationships part")
	}
	s := string(rels)
	at := strings.LastIndex(s, "</Relationships>")
	if at < 0 {
		return fmt.Errorf("malformed relationships part")
	}
	entry := fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"/>`, id, relType, target)
	pkg.SetPart(partDocRels, []byte(s[:at]+entry+s[at:]))
	return nil
}

// maxID returns the highest captured integer the pattern finds in data.
func maxID(pattern *regexp.Regexp, data []byte) int {
	max := 0
	for _, m := range pattern.FindAllSubmatch(data, -1) {
		if n, err := strconv.Atoi(string(m[1])); err == nil && n > max {
			max = n
		}
	}
	return max
}

func maxPatternID(pkg *Package, pattern *regexp.Regexp, partName string) int {
	data, ok := pkg.Part(partName)
	if !ok {
		return 0
	}
	return maxID(pattern, data)
}

func maxMediaIndex(pkg *Package) int {
	max := 0
	for _, name := range pkg.PartNames() {
		if m := mediaIndexPattern.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max
}
