package service

import (
	"context"
	"fmt"
	"strings"

	"docforge/internal/domain"
)

// GeneratorService runs the full compilation pipeline for a single
// specification: normalize, resolve the template and style, substitute
// placeholders, prefetch referenced assets, compile sections, render.
type GeneratorService struct {
	assets   domain.AssetStore
	backends map[string]domain.Backend
	rewriter domain.Rewriter
	logger   domain.Logger
}

func NewGeneratorService(
	assets domain.AssetStore,
	backends map[string]domain.Backend,
	rewriter domain.Rewriter,
	logger domain.Logger,
) *GeneratorService {
	return &GeneratorService{
		assets:   assets,
		backends: backends,
		rewriter: rewriter,
		logger:   logger,
	}
}

// GenerateSource parses raw YAML or JSON and generates from the result.
func (s *GeneratorService) GenerateSource(ctx context.Context, source []byte, format domain.SourceFormat, opts domain.GenerateOptions) (*domain.Output, error) {
	spec, err := ParseSpecification(source, format)
	if err != nil {
		return nil, err
	}
	return s.GenerateSpec(ctx, spec, opts)
}

// GenerateSpec generates a document from an already-normalized
// specification. The specification is not modified; placeholder
// substitution works on a copy.
func (s *GeneratorService) GenerateSpec(ctx context.Context, spec *domain.Specification, opts domain.GenerateOptions) (*domain.Output, error) {
	format := opts.Format
	if format == "" {
		format = domain.OutputDOCX
	}
	backend, ok := s.backends[format]
	if !ok {
		return nil, &domain.SpecValidationError{
			Path:    "format",
			Message: fmt.Sprintf("unsupported output format %q", format),
			Allowed: backendNames(s.backends),
		}
	}

	tpl, base, err := s.resolveTemplate(ctx, spec, opts)
	if err != nil {
		return nil, err
	}
	if base != nil && format != domain.OutputDOCX {
		return nil, &domain.SpecValidationError{
			Path:    "template",
			Message: fmt.Sprintf("base documents cannot be merged into %q output", format),
		}
	}

	working := spec
	if tpl != nil && len(tpl.Sections) > 0 {
		prefixed, err := prependTemplateSections(spec, tpl)
		if err != nil {
			return nil, err
		}
		working = prefixed
	}

	style, err := ResolveStyle(working, tpl, opts.Overrides)
	if err != nil {
		return nil, err
	}

	vars := MergeVariables(working.Placeholders, opts.Variables)
	substituted, open := SubstituteSpec(working, vars)

	header, footer := substituted.Header, substituted.Footer
	if tpl != nil {
		if header == "" && tpl.HeaderText != "" {
			header, open = substituteChrome(tpl.HeaderText, vars, open)
		}
		if footer == "" && tpl.FooterText != "" {
			footer, open = substituteChrome(tpl.FooterText, vars, open)
		}
	}

	// The base document gets document-time substitution before the
	// compiled blocks are appended into it.
	if base != nil && s.rewriter != nil && len(vars) > 0 {
		rewritten, n, err := s.rewriter.Replace(base, vars)
		if err != nil {
			return nil, err
		}
		base = rewritten
		if n > 0 {
			s.logger.Debug("base document placeholders replaced", "count", n)
		}
	}

	images, err := s.fetchImages(ctx, substituted)
	if err != nil {
		return nil, err
	}

	blocks, err := CompileSections(substituted, images)
	if err != nil {
		return nil, err
	}

	doc := &domain.CompiledDocument{
		Title:  substituted.Title,
		Author: substituted.Author,
		Header: header,
		Footer: footer,
		Style:  style,
		Blocks: blocks,
		Base:   base,
	}

	data, err := backend.Render(doc)
	if err != nil {
		return nil, err
	}

	out := &domain.Output{
		Filename:         outputFilename(substituted.Title, backend.FileExtension()),
		ContentType:      backend.ContentType(),
		Data:             data,
		OpenPlaceholders: open,
	}
	s.logger.Info("document generated",
		"filename", out.Filename,
		"blocks", len(blocks),
		"open_placeholders", len(open))
	return out, nil
}

// resolveTemplate decides what the specification's template field names. A
// registry name resolves to a built-in configuration; a path-like reference
// resolves to base document bytes through the asset store; an unknown bare
// name is a style resolution failure. Call-supplied base bytes short-circuit
// the lookup.
func (s *GeneratorService) resolveTemplate(ctx context.Context, spec *domain.Specification, opts domain.GenerateOptions) (*TemplateConfig, []byte, error) {
	if opts.BaseDocument != nil {
		return nil, opts.BaseDocument, nil
	}
	if spec.Template == "" {
		return nil, nil, nil
	}
	if tpl, ok := GetTemplate(spec.Template); ok {
		return tpl, nil, nil
	}
	if !IsBaseDocumentRef(spec.Template) {
		return nil, nil, &domain.StyleResolutionError{Kind: "template", Name: spec.Template}
	}
	if s.assets == nil {
		return nil, nil, &domain.ResourceError{Ref: spec.Template, Err: fmt.Errorf("no asset store configured")}
	}
	data, err := s.assets.Fetch(ctx, spec.Template)
	if err != nil {
		return nil, nil, &domain.ResourceError{Ref: spec.Template, Err: err}
	}
	return nil, data, nil
}

func (s *GeneratorService) fetchImages(ctx context.Context, spec *domain.Specification) (map[string][]byte, error) {
	var images map[string][]byte
	for _, sec := range spec.Sections {
		if sec.Type != domain.SectionTypeImage {
			continue
		}
		if images == nil {
			images = map[string][]byte{}
		}
		if _, done := images[sec.Image]; done {
			continue
		}
		if s.assets == nil {
			return nil, &domain.ResourceError{Ref: sec.Image, Err: fmt.Errorf("no asset store configured")}
		}
		data, err := s.assets.Fetch(ctx, sec.Image)
		if err != nil {
			return nil, &domain.ResourceError{Ref: sec.Image, Err: err}
		}
		images[sec.Image] = data
	}
	return images, nil
}

// prependTemplateSections normalizes a template's boilerplate entries and
// places them ahead of the authored sections, leaving the input untouched.
func prependTemplateSections(spec *domain.Specification, tpl *TemplateConfig) (*domain.Specification, error) {
	out := *spec
	boiler := make([]domain.SectionSpec, 0, len(tpl.Sections))
	for i, entry := range tpl.Sections {
		sec, err := normalizeSection(i, entry)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", tpl.Name, err)
		}
		boiler = append(boiler, sec)
	}
	out.Sections = make([]domain.SectionSpec, 0, len(boiler)+len(spec.Sections))
	out.Sections = append(out.Sections, boiler...)
	out.Sections = append(out.Sections, spec.Sections...)
	return &out, nil
}

func substituteChrome(text string, vars map[string]string, open []string) (string, []string) {
	replaced, missing := Substitute(text, vars)
	if len(missing) == 0 {
		return replaced, open
	}
	seen := map[string]struct{}{}
	for _, k := range open {
		seen[k] = struct{}{}
	}
	for _, k := range missing {
		seen[k] = struct{}{}
	}
	return replaced, sortedKeys(seen)
}

// outputFilename derives a safe download filename from a document title.
func outputFilename(title, ext string) string {
	name := strings.TrimSpace(strings.ToLower(title))
	if name == "" {
		name = "document"
	}
	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	name = strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "document"
	}
	return name + "." + ext
}

func backendNames(backends map[string]domain.Backend) []string {
	names := map[string]struct{}{}
	for name := range backends {
		names[name] = struct{}{}
	}
	return sortedKeys(names)
}
