package otquery

import (
	"github.com/npillmayer/glyphset/core/font/opentype"
	"github.com/npillmayer/glyphset/core/font/opentype/ot"
	"golang.org/x/image/font/sfnt"
)

// FontMetrics retrieves selected metrics of a font.
//
// Ascender and descender are taken from table 'hhea'. Some fonts leave them
// empty; for those we fall back to the typographic values of table 'OS/2'.
func FontMetrics(otf *ot.Font) opentype.FontMetricsInfo {
	metrics := opentype.FontMetricsInfo{}
	hhea := otf.HHea() // hhea is a required table
	metrics.Ascent = sfnt.Units(hhea.Ascender)
	metrics.Descent = sfnt.Units(hhea.Descender)
	metrics.LineGap = sfnt.Units(hhea.LineGap)
	if metrics.Ascent == 0 && metrics.Descent == 0 {
		if os2 := otf.Table(ot.T("OS/2")); os2 != nil && len(os2.Binary()) >= 72 {
			b := os2.Binary()
			a := sfnt.Units(i16(b[68:]))
			if a > metrics.Ascent {
				tracer().Debugf("override of ascent: %d -> %d", metrics.Ascent, a)
				metrics.Ascent = a
			}
			d := sfnt.Units(i16(b[70:]))
			if d < metrics.Descent {
				tracer().Debugf("override of descent: %d -> %d", metrics.Descent, d)
				metrics.Descent = d
			}
		}
	}
	head := otf.Head() // head is a required table
	metrics.UnitsPerEm = sfnt.Units(head.UnitsPerEm)
	metrics.BBox = FontBBox(otf)
	return metrics
}

// FontBBox returns the union of all glyph bounding boxes, as stated in table
// 'head', in font units.
func FontBBox(otf *ot.Font) opentype.BoundingBox {
	head := otf.Head()
	return opentype.BoundingBox{
		MinX: sfnt.Units(head.XMin),
		MinY: sfnt.Units(head.YMin),
		MaxX: sfnt.Units(head.XMax),
		MaxY: sfnt.Units(head.YMax),
	}
}

// --- Glyph Routines --------------------------------------------------------

// GlyphIndex returns the glyph index for a give code-point.
// If the code-point cannot be found, 0 is returned.
//
// From the OpenType specification: character codes that do not correspond to any glyph in
// the font should be mapped to glyph index 0. The glyph at this location must be a special
// glyph representing a missing character, commonly known as '.notdef'.
func GlyphIndex(otf *ot.Font, codepoint rune) ot.GlyphIndex {
	return otf.CMap.Lookup(codepoint)
}

// --- Helpers ----------------------------------------------------------

func i16(b []byte) int16 {
	return int16(b[0])<<8 | int16(b[1])<<0
}
