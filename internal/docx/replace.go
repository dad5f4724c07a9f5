package docx

import (
	"regexp"
	"strings"
)

var (
	placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)
	paragraphPattern   = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	textElemPattern    = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
)

// Rewriter performs placeholder substitution on finished documents. A
// token may be split across any number of runs by editing history or
// spell-check markup; matching happens on the concatenated paragraph text
// and edits are pushed back down to the individual runs.
type Rewriter struct{}

func NewRewriter() *Rewriter {
	return &Rewriter{}
}

// Replace substitutes {{KEY}} tokens in the document body and in every
// header and footer part. Tokens without a supplied value stay verbatim.
// It returns the rewritten container and the replacement count; run
// formatting and all untouched parts are preserved.
func (r *Rewriter) Replace(data []byte, vars map[string]string) ([]byte, int, error) {
	pkg, err := OpenPackage(data)
	if err != nil {
		return nil, 0, err
	}

	total := 0
	targets := append([]string{partDocument}, pkg.HeaderFooterParts()...)
	for _, name := range targets {
		content, ok := pkg.Part(name)
		if !ok {
			continue
		}
		rewritten, n := replaceInPart(string(content), vars)
		if n > 0 {
			pkg.SetPart(name, []byte(rewritten))
			total += n
		}
	}

	out, err := pkg.Bytes()
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func replaceInPart(xml string, vars map[string]string) (string, int) {
	total := 0
	out := paragraphPattern.ReplaceAllStringFunc(xml, func(para string) string {
		rewritten, n := replaceInParagraph(para, vars)
		total += n
		return rewritten
	})
	return out, total
}

// replaceInParagraph concatenates the paragraph's run texts, matches
// placeholder tokens against the joined text, and redistributes the edits:
// the replacement lands in the run where the token starts, and the token's
// remainder is cut from the runs it spilled into.
func replaceInParagraph(para string, vars map[string]string) (string, int) {
	locs := textElemPattern.FindAllStringSubmatchIndex(para, -1)
	if len(locs) == 0 {
		return para, 0
	}

	texts := make([]string, len(locs))
	spans := make([][2]int, len(locs))
	var concat strings.Builder
	for i, loc := range locs {
		t := unescapeXML(para[loc[2]:loc[3]])
		spans[i][0] = concat.Len()
		concat.WriteString(t)
		spans[i][1] = concat.Len()
		texts[i] = t
	}
	joined := concat.String()

	type edit struct {
		start, end  int
		replacement string
	}
	var edits []edit
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(joined, -1) {
		key := strings.TrimSpace(joined[m[2]:m[3]])
		if val, ok := vars[key]; ok {
			edits = append(edits, edit{start: m[0], end: m[1], replacement: val})
		}
	}
	if len(edits) == 0 {
		return para, 0
	}

	newTexts := make([]string, len(texts))
	for i, sp := range spans {
		var b strings.Builder
		pos := sp[0]
		for _, e := range edits {
			if e.end <= pos || e.start >= sp[1] {
				continue
			}
			if e.start >= pos {
				b.WriteString(joined[pos:e.start])
				b.WriteString(e.replacement)
			}
			if e.end < sp[1] {
				pos = e.end
			} else {
				pos = sp[1]
			}
		}
		if pos < sp[1] {
			b.WriteString(joined[pos:sp[1]])
		}
		newTexts[i] = b.String()
	}

	var b strings.Builder
	last := 0
	for i, loc := range locs {
		b.WriteString(para[last:loc[0]])
		b.WriteString(`<w:t xml:space="preserve">`)
		b.WriteString(escapeXML(newTexts[i]))
		b.WriteString(`</w:t>`)
		last = loc[1]
	}
	b.WriteString(para[last:])
	return b.String(), len(edits)
}

func unescapeXML(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	r := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
	return r.Replace(s)
}
