package domain

import "fmt"

// Twips is the measurement unit all resolved styles standardize on:
// twentieths of a point, 1440 to the inch (the native unit of the OOXML
// page geometry elements).
type Twips int

// FromInches converts inches to twips.
func FromInches(in float64) Twips {
	return Twips(in*1440 + 0.5)
}

// FromMillimeters converts millimeters to twips.
func FromMillimeters(mm float64) Twips {
	return Twips(mm/25.4*1440 + 0.5)
}

// Inches returns the measurement in inches.
func (t Twips) Inches() float64 { return float64(t) / 1440 }

// Points returns the measurement in typographic points.
func (t Twips) Points() float64 { return float64(t) / 20 }

// EMU returns the measurement in English Metric Units (914400 per inch),
// the unit DrawingML extents are expressed in.
func (t Twips) EMU() int64 { return int64(t) * 635 }

// RGB is a color role value.
type RGB struct {
	R, G, B uint8
}

// Hex returns the six-digit uppercase hex form without a leading '#'.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHex parses a hex color string, with or without a leading '#'.
func ParseHex(s string) (RGB, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	var c RGB
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	return c, nil
}

// FontRole is a concrete font assignment for one role in the document.
type FontRole struct {
	Family string
	Size   int // points
	Bold   bool
	Italic bool
	Color  RGB
}

// ColorRoles holds the resolved color palette of a compilation.
type ColorRoles struct {
	Primary     RGB
	PrimaryDark RGB
	Secondary   RGB
	Accent      RGB
	Muted       RGB
	Rule        RGB
	TableHeader RGB // fill behind table header cells
	TableZebra  RGB // fill behind alternating body rows
}

// ResolvedStyle is the immutable, fully concrete style of one compilation
// run. It is derived once, before the section walk, and never mutated; a
// changed override means deriving a fresh value, not patching this one.
type ResolvedStyle struct {
	PageWidth  Twips
	PageHeight Twips

	MarginTop    Twips
	MarginBottom Twips
	MarginLeft   Twips
	MarginRight  Twips

	Colors ColorRoles

	Title    FontRole
	Subtitle FontRole
	Headings [5]FontRole // index 0 is heading level 1
	Body     FontRole
	Quote    FontRole
	Code     FontRole
	Caption  FontRole
	Chrome   FontRole // page header and footer text

	LineSpacing float64
}

// Heading returns the font role for a heading level, clamping levels
// outside 1..5 to the nearest defined role.
func (s *ResolvedStyle) Heading(level int) FontRole {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return s.Headings[level-1]
}

// ContentWidth returns the usable width between the side margins.
func (s *ResolvedStyle) ContentWidth() Twips {
	return s.PageWidth - s.MarginLeft - s.MarginRight
}

// StyleOverrides carries explicit numeric overrides supplied at the call
// boundary. They sit at the top of the resolution precedence, above the
// specification's own fields. Nil pointers mean "no override".
type StyleOverrides struct {
	PageWidth  *Twips
	PageHeight *Twips

	MarginTop    *Twips
	MarginBottom *Twips
	MarginLeft   *Twips
	MarginRight  *Twips
}
