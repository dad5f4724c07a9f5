package service

import (
	"docforge/internal/domain"
)

// Built-in page geometry constants, the lowest precedence layer of style
// resolution.
var pageSizes = map[string][2]domain.Twips{
	"letter": {domain.FromInches(8.5), domain.FromInches(11)},
	"legal":  {domain.FromInches(8.5), domain.FromInches(14)},
	"a4":     {domain.FromMillimeters(210), domain.FromMillimeters(297)},
	"a5":     {domain.FromMillimeters(148), domain.FromMillimeters(210)},
}

// marginPresets resolve to four independent measurements; top/bottom and
// left/right differ for the moderate and wide presets.
var marginPresets = map[string][4]domain.Twips{
	"normal":   {domain.FromInches(1), domain.FromInches(1), domain.FromInches(1), domain.FromInches(1)},
	"narrow":   {domain.FromInches(0.5), domain.FromInches(0.5), domain.FromInches(0.5), domain.FromInches(0.5)},
	"moderate": {domain.FromInches(1), domain.FromInches(1), domain.FromInches(0.75), domain.FromInches(0.75)},
	"wide":     {domain.FromInches(1), domain.FromInches(1), domain.FromInches(1.5), domain.FromInches(1.5)},
}

// Brand palette: burgundy primary, slate body text, gold accent.
var (
	colorPrimary     = domain.RGB{R: 0x72, G: 0x2F, B: 0x37}
	colorPrimaryDark = domain.RGB{R: 0x4A, G: 0x1C, B: 0x23}
	colorSecondary   = domain.RGB{R: 0x2C, G: 0x3E, B: 0x50}
	colorAccent      = domain.RGB{R: 0xD4, G: 0xA5, B: 0x74}
	colorMuted       = domain.RGB{R: 0x6C, G: 0x75, B: 0x7D}
	colorRule        = domain.RGB{R: 0xCE, G: 0xD4, B: 0xDA}
	colorZebra       = domain.RGB{R: 0xF8, G: 0xF9, B: 0xFA}
	colorQuoteText   = domain.RGB{R: 0x49, G: 0x50, B: 0x57}
	colorCodeText    = domain.RGB{R: 0x34, G: 0x3A, B: 0x40}
	colorChromeText  = domain.RGB{R: 0xAD, G: 0xB5, B: 0xBD}
)

// defaultStyle returns the built-in style constants with the default fonts:
// Cambria headings, Calibri body, Georgia quotes, Consolas code.
func defaultStyle() *domain.ResolvedStyle {
	s := &domain.ResolvedStyle{
		PageWidth:    pageSizes["letter"][0],
		PageHeight:   pageSizes["letter"][1],
		MarginTop:    marginPresets["normal"][0],
		MarginBottom: marginPresets["normal"][1],
		MarginLeft:   marginPresets["normal"][2],
		MarginRight:  marginPresets["normal"][3],
		Colors: domain.ColorRoles{
			Primary:     colorPrimary,
			PrimaryDark: colorPrimaryDark,
			Secondary:   colorSecondary,
			Accent:      colorAccent,
			Muted:       colorMuted,
			Rule:        colorRule,
			TableHeader: colorPrimary,
			TableZebra:  colorZebra,
		},
		Title:    domain.FontRole{Family: "Cambria", Size: 28, Bold: true, Color: colorPrimaryDark},
		Subtitle: domain.FontRole{Family: "Calibri", Size: 14, Italic: true, Color: colorMuted},
		Headings: [5]domain.FontRole{
			{Family: "Cambria", Size: 24, Bold: true, Color: colorPrimaryDark},
			{Family: "Cambria", Size: 20, Bold: true, Color: colorPrimary},
			{Family: "Cambria", Size: 16, Bold: true, Color: colorPrimary},
			{Family: "Cambria", Size: 14, Bold: true, Color: colorSecondary},
			{Family: "Cambria", Size: 12, Bold: true, Color: colorSecondary},
		},
		Body:        domain.FontRole{Family: "Calibri", Size: 11, Color: colorSecondary},
		Quote:       domain.FontRole{Family: "Georgia", Size: 12, Italic: true, Color: colorQuoteText},
		Code:        domain.FontRole{Family: "Consolas", Size: 10, Color: colorCodeText},
		Caption:     domain.FontRole{Family: "Calibri", Size: 9, Italic: true, Color: colorMuted},
		Chrome:      domain.FontRole{Family: "Calibri", Size: 9, Color: colorChromeText},
		LineSpacing: 1.15,
	}
	return s
}

// ResolveStyle derives the concrete style of one compilation run. Precedence,
// lowest to highest: built-in constants, the named template's declared style,
// the specification's own page_size/margins fields (only when actually
// present in the source document), explicit call-site overrides.
func ResolveStyle(spec *domain.Specification, tpl *TemplateConfig, ov *domain.StyleOverrides) (*domain.ResolvedStyle, error) {
	style := defaultStyle()

	if tpl != nil {
		if err := applyTemplateStyle(style, tpl); err != nil {
			return nil, err
		}
	}

	if spec != nil {
		if spec.PageSizeSet {
			size, ok := pageSizes[spec.PageSize]
			if !ok {
				return nil, &domain.StyleResolutionError{Kind: "page size", Name: spec.PageSize}
			}
			style.PageWidth, style.PageHeight = size[0], size[1]
		}
		if spec.MarginsSet {
			if err := applyMargins(style, spec.Margins); err != nil {
				return nil, err
			}
		}
	}

	if ov != nil {
		applyOverrides(style, ov)
	}

	return style, nil
}

func applyTemplateStyle(style *domain.ResolvedStyle, tpl *TemplateConfig) error {
	if tpl.PageSize != "" {
		size, ok := pageSizes[tpl.PageSize]
		if !ok {
			return &domain.StyleResolutionError{Kind: "page size", Name: tpl.PageSize}
		}
		style.PageWidth, style.PageHeight = size[0], size[1]
	}
	if tpl.Margins != "" {
		if err := applyMargins(style, domain.MarginSpec{Preset: tpl.Margins}); err != nil {
			return err
		}
	}
	if tpl.FontHeading != "" {
		style.Title.Family = tpl.FontHeading
		for i := range style.Headings {
			style.Headings[i].Family = tpl.FontHeading
		}
	}
	if tpl.FontBody != "" {
		style.Body.Family = tpl.FontBody
		style.Subtitle.Family = tpl.FontBody
		style.Caption.Family = tpl.FontBody
		style.Chrome.Family = tpl.FontBody
	}
	if tpl.PrimaryColor != "" {
		c, err := domain.ParseHex(tpl.PrimaryColor)
		if err != nil {
			return err
		}
		style.Colors.Primary = c
		style.Colors.TableHeader = c
		style.Headings[1].Color = c
		style.Headings[2].Color = c
	}
	if tpl.SecondaryColor != "" {
		c, err := domain.ParseHex(tpl.SecondaryColor)
		if err != nil {
			return err
		}
		style.Colors.Secondary = c
		style.Body.Color = c
	}
	if tpl.AccentColor != "" {
		c, err := domain.ParseHex(tpl.AccentColor)
		if err != nil {
			return err
		}
		style.Colors.Accent = c
	}
	if tpl.LineSpacing > 0 {
		style.LineSpacing = tpl.LineSpacing
	}
	return nil
}

func applyMargins(style *domain.ResolvedStyle, m domain.MarginSpec) error {
	if m.Explicit {
		style.MarginTop = domain.FromInches(m.Top)
		style.MarginBottom = domain.FromInches(m.Bottom)
		style.MarginLeft = domain.FromInches(m.Left)
		style.MarginRight = domain.FromInches(m.Right)
		return nil
	}
	preset, ok := marginPresets[m.Preset]
	if !ok {
		return &domain.StyleResolutionError{Kind: "margins", Name: m.Preset}
	}
	style.MarginTop = preset[0]
	style.MarginBottom = preset[1]
	style.MarginLeft = preset[2]
	style.MarginRight = preset[3]
	return nil
}

func applyOverrides(style *domain.ResolvedStyle, ov *domain.StyleOverrides) {
	if ov.PageWidth != nil {
		style.PageWidth = *ov.PageWidth
	}
	if ov.PageHeight != nil {
		style.PageHeight = *ov.PageHeight
	}
	if ov.MarginTop != nil {
		style.MarginTop = *ov.MarginTop
	}
	if ov.MarginBottom != nil {
		style.MarginBottom = *ov.MarginBottom
	}
	if ov.MarginLeft != nil {
		style.MarginLeft = *ov.MarginLeft
	}
	if ov.MarginRight != nil {
		style.MarginRight = *ov.MarginRight
	}
}
