/*
Package pattern parses font description patterns.

A pattern follows the naming convention of fontconfig:

    family[-pointsize][:property=value]...

for example "DejaVu Sans-10:bold" or "Noto Color Emoji:pixelsize=24".
Known properties are size, pixelsize, dpi, weight, slant and style;
other properties are retained but ignored by the matcher. A property
without a value is interpreted as a constant, e.g. ":bold" is short for
":weight=bold".

Special characters ('\', '-', ':' and ',') may be escaped with a backslash.
A list of patterns is separated by commas, see SplitList.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package pattern

import (
	"strconv"
	"strings"

	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/parameters"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/text/unicode/norm"
)

// tracer traces with key 'glyphset.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("glyphset.glyphs")
}

// Property names known to the matcher.
const (
	PropSize      = "size"
	PropPixelSize = "pixelsize"
	PropDPI       = "dpi"
	PropWeight    = "weight"
	PropSlant     = "slant"
	PropStyle     = "style"
)

// Property is a name/value pair of a pattern. Value may be empty for
// constants which could not be resolved.
type Property struct {
	Name  string
	Value string
}

// Pattern is a parsed font description. A zero Pattern requests the
// default font.
type Pattern struct {
	Family string     // NFC normalized, empty for the default family
	Props  []Property // in order of appearance
}

// SplitList splits a comma separated list of patterns. Escaped commas do not
// split. Empty entries are dropped, surrounding white space is trimmed.
func SplitList(patterns string) []string {
	var list []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			list = append(list, s)
		}
		b.Reset()
	}
	escaped := false
	for _, r := range patterns {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			b.WriteRune(r)
			escaped = true
		case r == ',':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return list
}

// Parse parses a single pattern.
func Parse(s string) (Pattern, error) {
	p := Pattern{}
	parts := splitUnescaped(strings.TrimSpace(s), ':')
	head := parts[0]
	if i := lastUnescaped(head, '-'); i >= 0 {
		size := strings.TrimSpace(head[i+1:])
		if _, err := strconv.ParseFloat(size, 64); err != nil {
			return p, core.WrapError(err, core.EINVALID, "illegal point size in font pattern %q", s)
		}
		p.Props = append(p.Props, Property{Name: PropSize, Value: size})
		head = head[:i]
	}
	p.Family = norm.NFC.String(strings.TrimSpace(unescape(head)))
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, hasValue := strings.Cut(part, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		value = unescape(strings.TrimSpace(value))
		if !hasValue {
			if c, ok := constants[name]; ok {
				p.Props = append(p.Props, c)
				continue
			}
			tracer().Debugf("font pattern %q: unknown constant %q", s, name)
		}
		if name == "" {
			return p, core.Error(core.EINVALID, "missing property name in font pattern %q", s)
		}
		switch name {
		case PropSize, PropPixelSize, PropDPI:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return p, core.WrapError(err, core.EINVALID,
					"property %s of font pattern %q is not numeric", name, s)
			}
		}
		p.Props = append(p.Props, Property{Name: name, Value: value})
	}
	return p, nil
}

var constants = map[string]Property{
	"thin":       {PropWeight, "thin"},
	"extralight": {PropWeight, "extralight"},
	"light":      {PropWeight, "light"},
	"book":       {PropWeight, "book"},
	"regular":    {PropWeight, "regular"},
	"medium":     {PropWeight, "medium"},
	"semibold":   {PropWeight, "semibold"},
	"demibold":   {PropWeight, "demibold"},
	"bold":       {PropWeight, "bold"},
	"extrabold":  {PropWeight, "extrabold"},
	"black":      {PropWeight, "black"},
	"roman":      {PropSlant, "roman"},
	"italic":     {PropSlant, "italic"},
	"oblique":    {PropSlant, "oblique"},
}

// Get returns the last value of a property. Later properties override earlier
// ones.
func (p Pattern) Get(name string) (string, bool) {
	for i := len(p.Props) - 1; i >= 0; i-- {
		if p.Props[i].Name == name {
			return p.Props[i].Value, true
		}
	}
	return "", false
}

// Set replaces all values of a property by a single value.
func (p *Pattern) Set(name, value string) {
	props := p.Props[:0:0]
	for _, prop := range p.Props {
		if prop.Name != name {
			props = append(props, prop)
		}
	}
	p.Props = append(props, Property{Name: name, Value: value})
}

// SetFloat replaces all values of a property by a numeric value.
func (p *Pattern) SetFloat(name string, x float64) {
	p.Set(name, formatFloat(x))
}

// Float returns a numeric property, or 0.
func (p Pattern) Float(name string) float64 {
	v, ok := p.Get(name)
	if !ok {
		return 0
	}
	x, _ := strconv.ParseFloat(v, 64)
	return x
}

// HasSize is true if a point size or a pixel size has been requested.
func (p Pattern) HasSize() bool {
	return p.Float(PropSize) > 0 || p.Float(PropPixelSize) > 0
}

// PixelSize returns the pixel size of a substituted pattern.
func (p Pattern) PixelSize() float64 {
	return p.Float(PropPixelSize)
}

// Substitute fills in default values for properties not given in the
// pattern: dpi, size and pixelsize. If the pattern requests a pixel size, the
// point size is derived from it; otherwise the pixel size is computed from the
// point size and the resolution.
func (p Pattern) Substitute(regs *parameters.RasterRegisters) Pattern {
	q := Pattern{Family: p.Family, Props: append([]Property(nil), p.Props...)}
	dpi := q.Float(PropDPI)
	if dpi <= 0 {
		dpi = regs.F(parameters.P_DPI)
		q.Set(PropDPI, formatFloat(dpi))
	}
	if px := q.Float(PropPixelSize); px > 0 {
		q.Set(PropSize, formatFloat(px*72/dpi))
		return q
	}
	size := q.Float(PropSize)
	if size <= 0 {
		size = regs.F(parameters.P_POINTSIZE)
		q.Set(PropSize, formatFloat(size))
	}
	q.Set(PropPixelSize, formatFloat(size*dpi/72))
	return q
}

// Style returns the requested slant (or style) as an x/image font style.
func (p Pattern) Style() xfont.Style {
	if v, ok := p.Get(PropSlant); ok {
		switch strings.ToLower(v) {
		case "italic", "100":
			return xfont.StyleItalic
		case "oblique", "110":
			return xfont.StyleOblique
		}
		return xfont.StyleNormal
	}
	if v, ok := p.Get(PropStyle); ok {
		v = strings.ToLower(v)
		if strings.Contains(v, "italic") {
			return xfont.StyleItalic
		} else if strings.Contains(v, "oblique") {
			return xfont.StyleOblique
		}
	}
	return xfont.StyleNormal
}

// Weight returns the requested weight as an x/image font weight. Numeric
// weights are interpreted on fontconfig's scale (0…210).
func (p Pattern) Weight() xfont.Weight {
	v, ok := p.Get(PropWeight)
	if !ok {
		v, ok = p.Get(PropStyle)
		if !ok {
			return xfont.WeightNormal
		}
		v = strings.NewReplacer("italic", "", "oblique", "", " ", "").Replace(strings.ToLower(v))
	}
	v = strings.ToLower(v)
	if n, err := strconv.Atoi(v); err == nil {
		return numericWeight(n)
	}
	switch v {
	case "thin":
		return xfont.WeightThin
	case "extralight", "ultralight":
		return xfont.WeightExtraLight
	case "light", "demilight", "semilight":
		return xfont.WeightLight
	case "medium":
		return xfont.WeightMedium
	case "semibold", "demibold":
		return xfont.WeightSemiBold
	case "bold":
		return xfont.WeightBold
	case "extrabold", "ultrabold":
		return xfont.WeightExtraBold
	case "black", "heavy":
		return xfont.WeightBlack
	}
	return xfont.WeightNormal
}

func numericWeight(n int) xfont.Weight {
	switch {
	case n <= 20:
		return xfont.WeightThin
	case n <= 45:
		return xfont.WeightExtraLight
	case n <= 70:
		return xfont.WeightLight
	case n <= 90:
		return xfont.WeightNormal
	case n <= 140:
		return xfont.WeightMedium
	case n <= 190:
		return xfont.WeightSemiBold
	case n <= 202:
		return xfont.WeightBold
	case n <= 207:
		return xfont.WeightExtraBold
	}
	return xfont.WeightBlack
}

// String renders a pattern in canonical form, with the family escaped and
// properties in order of appearance.
func (p Pattern) String() string {
	var b strings.Builder
	b.WriteString(escape(p.Family))
	for _, prop := range p.Props {
		b.WriteByte(':')
		b.WriteString(prop.Name)
		b.WriteByte('=')
		b.WriteString(escape(prop.Value))
	}
	return b.String()
}

// --- Helpers ---------------------------------------------------------------

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func splitUnescaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == sep {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func lastUnescaped(s string, c byte) int {
	last := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == c {
			last = i
		}
	}
	return last
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

var escaper = strings.NewReplacer(`\`, `\\`, `-`, `\-`, `:`, `\:`, `,`, `\,`, `=`, `\=`)

func escape(s string) string {
	return escaper.Replace(s)
}
