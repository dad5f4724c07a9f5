// Package docx implements the WordprocessingML container backend: rendering
// compiled documents to fresh .docx packages, appending compiled content to
// an existing base package, document-time placeholder replacement, and
// package inspection. All package surgery is done on the raw part text so
// that untouched parts of a base document survive byte for byte.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Package part names used throughout this package.
const (
	partDocument    = "word/document.xml"
	partStyles      = "word/styles.xml"
	partNumbering   = "word/numbering.xml"
	partDocRels     = "word/_rels/document.xml.rels"
	partRootRels    = "_rels/.rels"
	partContentType = "[Content_Types].xml"
	partCore        = "docProps/core.xml"
	partApp         = "docProps/app.xml"
)

// Package holds a .docx container as an ordered set of named parts. Order
// is preserved on write so a read-modify-write cycle keeps the original
// part layout.
type Package struct {
	names []string
	parts map[string][]byte
}

// OpenPackage reads a .docx container from raw bytes.
func OpenPackage(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reading container: %w", err)
	}
	pkg := &Package{parts: map[string][]byte{}}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening part %q: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading part %q: %w", f.Name, err)
		}
		pkg.names = append(pkg.names, f.Name)
		pkg.parts[f.Name] = content
	}
	if _, ok := pkg.parts[partDocument]; !ok {
		return nil, fmt.Errorf("not a word document: missing %s", partDocument)
	}
	return pkg, nil
}

// NewPackage returns an empty container.
func NewPackage() *Package {
	return &Package{parts: map[string][]byte{}}
}

// Part returns the named part's content, or false if absent.
func (p *Package) Part(name string) ([]byte, bool) {
	content, ok := p.parts[name]
	return content, ok
}

// Has reports whether the named part exists.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// SetPart stores content under name, preserving the part's position if it
// already exists.
func (p *Package) SetPart(name string, content []byte) {
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	p.parts[name] = content
}

// PartNames returns part names in container order.
func (p *Package) PartNames() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// HeaderFooterParts returns the names of header and footer parts, sorted.
func (p *Package) HeaderFooterParts() []string {
	var out []string
	for _, name := range p.names {
		if isHeaderFooterPart(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func isHeaderFooterPart(name string) bool {
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	return strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer")
}

// Bytes serializes the container back to zip form.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("creating part %q: %w", name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			return nil, fmt.Errorf("writing part %q: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing container: %w", err)
	}
	return buf.Bytes(), nil
}
