package ot

import (
	"fmt"
)

// Code comment often will cite passage from the
// OpenType specification version 1.8.4;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Parse parses an OpenType font from a byte slice.
// An ot.Font needs ongoing access to the fonts byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
func Parse(font []byte) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	src := binarySegm(font)
	if len(src) < 12 {
		return nil, errFontFormat("font header too short")
	}
	h := FontHeader{
		FontType:   u32(src),
		TableCount: u16(src[4:]),
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // true
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	otf := &Font{Header: &h, tables: make(map[Tag]Table)}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.view(12, 16*int(h.TableCount))
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			return nil, errFontFormat("table order")
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			return nil, errFontFormat("invalid table offset")
		}
		if uint64(off)+uint64(size) > uint64(len(src)) {
			return nil, errFontFormat(fmt.Sprintf("table %s exceeds font data", tag))
		}
		otf.tables[tag], err = parseTable(tag, src[off:off+size], off, size)
		if err != nil {
			return nil, err
		}
	}
	if err := checkRequiredTables(otf); err != nil {
		return nil, err
	}
	if cm := otf.tables[T("cmap")]; cm != nil {
		otf.CMap = cm.Self().AsCMap()
	}
	if nm := otf.tables[T("name")]; nm != nil {
		otf.Names = nm.Self().AsName()
	}
	return otf, nil
}

// RequiredTables are the tables a font has to contain to be usable for
// rasterization. The OpenType spec requires more, but fonts in the wild
// (bitmap-only fonts in particular) often omit some of them.
var RequiredTables = []string{
	"head", "hhea", "maxp",
}

func checkRequiredTables(otf *Font) error {
	for _, tag := range RequiredTables {
		if otf.tables[T(tag)] == nil {
			return errFontFormat("missing required table " + tag)
		}
	}
	return nil
}

func parseTable(t Tag, b binarySegm, offset, size uint32) (Table, error) {
	switch t {
	case T("cmap"):
		return parseCMap(t, b, offset, size)
	case T("head"):
		return parseHead(t, b, offset, size)
	case T("hhea"):
		return parseHHea(t, b, offset, size)
	case T("maxp"):
		return parseMaxP(t, b, offset, size)
	case T("name"):
		return parseNames(t, b, offset, size)
	case T("EBLC"), T("CBLC"):
		return parseBitmapLoc(t, b, offset, size)
	}
	tracer().Debugf("font contains table (%s), will not be interpreted", t)
	return newTable(t, b, offset, size), nil
}

// --- Head table ------------------------------------------------------------

func parseHead(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < 54 {
		return nil, errFontFormat("size of head table")
	}
	t := &HeadTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	t.Flags, _ = b.u16(16)      // flags
	t.UnitsPerEm, _ = b.u16(18) // units per em
	if t.UnitsPerEm == 0 {
		return nil, errFontFormat("head table states 0 units per em")
	}
	t.XMin, t.YMin = b.I16(36), b.I16(38)
	t.XMax, t.YMax = b.I16(40), b.I16(42)
	// IndexToLocFormat is needed to interpret the loca table:
	// 0 for short offsets, 1 for long
	t.IndexToLocFormat, _ = b.u16(50)
	return t, nil
}

// --- MaxP table ------------------------------------------------------------

// This table establishes the memory requirements for this font. Fonts with CFF data
// or bitmap-only fonts use Version 0.5 of this table, specifying only the numGlyphs field.
// Fonts with TrueType outlines must use Version 1.0 of this table, where all data is required.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < 6 {
		return nil, errFontFormat("size of maxp table")
	}
	t := &MaxPTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	n, _ := b.u16(4)
	t.NumGlyphs = int(n)
	return t, nil
}

// --- HHea table ------------------------------------------------------------

// This table contains information for horizontal layout.
func parseHHea(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	tracer().Debugf("HHea table has size %d", size)
	if size < 36 {
		return nil, errFontFormat("hhea table incomplete")
	}
	t := &HHeaTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	t.Ascender = b.I16(4)
	t.Descender = b.I16(6)
	t.LineGap = b.I16(8)
	n, _ := b.u16(34)
	t.NumberOfHMetrics = int(n)
	return t, nil
}
