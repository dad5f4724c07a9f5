package docx

import (
	"regexp"
	"sort"
	"strings"

	"docforge/internal/domain"
)

var (
	paragraphOpenPattern = regexp.MustCompile(`<w:p[ />]`)
	tablePattern         = regexp.MustCompile(`<w:tbl[ >]`)
	sectPattern          = regexp.MustCompile(`<w:sectPr[ />]`)
	styleIDPattern       = regexp.MustCompile(`<w:style [^>]*w:styleId="([^"]+)"`)
	corePropPattern      = map[string]*regexp.Regexp{
		"title":    regexp.MustCompile(`<dc:title[^>]*>([^<]*)</dc:title>`),
		"creator":  regexp.MustCompile(`<dc:creator[^>]*>([^<]*)</dc:creator>`),
		"created":  regexp.MustCompile(`<dcterms:created[^>]*>([^<]*)</dcterms:created>`),
		"modified": regexp.MustCompile(`<dcterms:modified[^>]*>([^<]*)</dcterms:modified>`),
	}
)

// Inspector reports metadata and content statistics for an existing
// document without modifying it.
type Inspector struct{}

func NewInspector() *Inspector {
	return &Inspector{}
}

func (ins *Inspector) Inspect(data []byte) (*domain.DocumentInfo, error) {
	pkg, err := OpenPackage(data)
	if err != nil {
		return nil, err
	}

	info := &domain.DocumentInfo{}

	if core, ok := pkg.Part(partCore); ok {
		s := string(core)
		info.Title = coreProp(s, "title")
		info.Author = coreProp(s, "creator")
		info.Created = coreProp(s, "created")
		info.Modified = coreProp(s, "modified")
	}

	docXML, _ := pkg.Part(partDocument)
	s := string(docXML)
	info.Paragraphs = len(paragraphOpenPattern.FindAllString(s, -1))
	info.Tables = len(tablePattern.FindAllString(s, -1))
	info.Sections = len(sectPattern.FindAllString(s, -1))

	text := extractText(s)
	info.WordCount = len(strings.Fields(text))

	placeholders := map[string]struct{}{}
	collectPlaceholders(text, placeholders)
	for _, name := range pkg.HeaderFooterParts() {
		part, _ := pkg.Part(name)
		collectPlaceholders(extractText(string(part)), placeholders)
	}
	info.Placeholders = sortedSet(placeholders)

	if stylesPart, ok := pkg.Part(partStyles); ok {
		for _, m := range styleIDPattern.FindAllStringSubmatch(string(stylesPart), -1) {
			info.Styles = append(info.Styles, m[1])
		}
		sort.Strings(info.Styles)
	}

	return info, nil
}

func coreProp(coreXML, key string) string {
	if m := corePropPattern[key].FindStringSubmatch(coreXML); m != nil {
		return unescapeXML(m[1])
	}
	return ""
}

// extractText joins every run text in a part, separating paragraphs with
// newlines so word counting does not fuse adjacent paragraphs.
func extractText(xml string) string {
	var b strings.Builder
	for _, para := range paragraphPattern.FindAllString(xml, -1) {
		for _, m := range textElemPattern.FindAllStringSubmatch(para, -1) {
			b.WriteString(unescapeXML(m[1]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func collectPlaceholders(text string, into map[string]struct{}) {
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		into[strings.TrimSpace(m[1])] = struct{}{}
	}
}

func sortedSet(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
