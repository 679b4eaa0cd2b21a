package otquery

import (
	"github.com/npillmayer/glyphset/core/font/opentype/ot"
	"golang.org/x/exp/slices"
)

// FontType returns the font type, encoded in the font header, as a string.
func FontType(otf *ot.Font) string {
	if otf.Header == nil {
		return "<empty>"
	}
	typ := otf.Header.FontType
	switch typ {
	case 0x4f54544f: // OTTO
		return "OpenType (outlines)"
	case 0x00010000: // TrueType
		return "TrueType"
	case 0x74727565: // true
		return "TrueType (Mac legacy)"
	}
	return "<unknown>"
}

// NameInfo returns a map with selected fields from OpenType table `name`.
// Will include (if available in the font) "family", "subfamily", "fullname".
//
// Typographic family names (name IDs 16 and 17) take precedence over the
// legacy ones, as the latter are often restricted to four styles per family.
func NameInfo(otf *ot.Font) map[string]string {
	names := make(map[string]string)
	if otf.Names == nil {
		tracer().Debugf("no name table found in font")
		return names
	}
	setName := func(field string, ids ...ot.NameID) {
		for _, id := range ids {
			if s := otf.Names.Name(id); s != "" {
				names[field] = s
				return
			}
		}
	}
	setName("family", ot.NameTypographicFamily, ot.NameFamily)
	setName("subfamily", ot.NameTypographicSubfamily, ot.NameSubfamily)
	setName("fullname", ot.NameFull)
	return names
}

// HasOutlines is a predicate: does the font contain scalable outlines,
// either TrueType ('glyf') or CFF?
func HasOutlines(otf *ot.Font) bool {
	return otf.HasTable(ot.T("glyf")) || otf.HasTable(ot.T("CFF ")) || otf.HasTable(ot.T("CFF2"))
}

// HasColorBitmaps is a predicate: does the font contain color bitmap strikes?
func HasColorBitmaps(otf *ot.Font) bool {
	return bitmapLoc(otf, "CBLC", "CBDT") != nil
}

// BitmapStrikes returns the bitmap strikes of a font, together with the data
// table holding the glyph images. Color strikes are preferred over gray ones.
// Strikes are sorted by ascending vertical pixels per em.
// If the font has no strikes, nil is returned.
func BitmapStrikes(otf *ot.Font) ([]ot.BitmapStrike, ot.Table) {
	for _, tags := range [][2]string{{"CBLC", "CBDT"}, {"EBLC", "EBDT"}} {
		if loc := bitmapLoc(otf, tags[0], tags[1]); loc != nil && len(loc.Strikes) > 0 {
			strikes := make([]ot.BitmapStrike, len(loc.Strikes))
			copy(strikes, loc.Strikes)
			slices.SortStableFunc(strikes, func(a, b ot.BitmapStrike) int {
				return int(a.PpemY) - int(b.PpemY)
			})
			return strikes, otf.Table(ot.T(tags[1]))
		}
	}
	return nil, nil
}

func bitmapLoc(otf *ot.Font, loc, data string) *ot.BitmapLocTable {
	if !otf.HasTable(ot.T(data)) {
		return nil
	}
	t := otf.Table(ot.T(loc))
	if t == nil {
		return nil
	}
	return t.Self().AsBitmapLoc()
}
