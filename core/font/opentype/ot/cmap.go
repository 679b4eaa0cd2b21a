package ot

import "sort"

// CMapTable represents an OpenType cmap table, i.e. the table to receive glyphs
// from code-points.
//
// See https://docs.microsoft.com/de-de/typography/opentype/spec/cmap
//
// A cmap table may contain more than one lookup table, but we will only
// instantiate the most appropriate one.
type CMapTable struct {
	tableBase
	GlyphIndexMap CMapGlyphIndex
}

// CMapGlyphIndex represents a CMap table index to receive a glyph index from
// a code-point.
type CMapGlyphIndex interface {
	Lookup(rune) GlyphIndex // central activity of CMap
}

// platformEncodingWidth returns the number of bytes per character assumed by
// the given Platform ID and Platform Specific ID.
//
// Old fonts, from when Unicode meant the Basic Multilingual Plane (BMP),
// assume that 2 bytes per character is sufficient.
func platformEncodingWidth(pid, psid uint16) int {
	switch pid {
	case 0: // Unicode platform
		switch psid {
		case 3: // Unicode BMB
			return 2
		case 4, 10: // Unicode full  (include 10 from FontForge bug)
			return 4
		}
	case 3: // Windows platform
		switch psid {
		case 1: // Unicode BMP
			return 2
		case 10: // Unicode full
			return 4
		}
	}
	return 0 // width 0 will never get selected
}

// We only support the following platform/encoding/format combinations:
//
//	0 (Unicode)  3    4   Unicode BMB
//	0 (Unicode)  4    12  Unicode full  (10 from FontForge, error)
//	3 (Win)      1    4   Unicode BMP
//	3 (Win)      10   12  Unicode full
func supportedCmapFormat(format, pid, psid uint16) bool {
	return (pid == 0 && psid == 3 && format == 4) ||
		(pid == 0 && (psid == 4 || psid == 10) && format == 12) ||
		(pid == 3 && psid == 1 && format == 4) ||
		(pid == 3 && psid == 10 && format == 12)
}

func parseCMap(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	n, _ := b.u16(2) // number of sub-tables
	tracer().Debugf("font cmap has %d sub-tables in %d|%d bytes", n, len(b), size)
	t := &CMapTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	const headerSize, entrySize = 4, 8
	if size < headerSize+entrySize*uint32(n) {
		return nil, errFontFormat("size of cmap table")
	}
	width, format := 0, uint16(0)
	var subtable binarySegm
	for i := 0; i < int(n); i++ {
		rec, _ := b.view(headerSize+entrySize*i, entrySize)
		pid, psid := u16(rec), u16(rec[2:])
		w := platformEncodingWidth(pid, psid)
		if w <= width {
			continue
		}
		sub, err := b.tail(int(u32(rec[4:])))
		if err != nil || len(sub) < 2 {
			tracer().Infof("cmap sub-table cannot be parsed")
			continue
		}
		if f := u16(sub); supportedCmapFormat(f, pid, psid) {
			width, format, subtable = w, f, sub
		}
	}
	if width == 0 {
		tracer().Infof("font has no supported cmap format")
		return t, nil
	}
	var err error
	switch format {
	case 4:
		t.GlyphIndexMap, err = makeGlyphIndexFormat4(subtable)
	case 12:
		t.GlyphIndexMap, err = makeGlyphIndexFormat12(subtable)
	}
	return t, err
}

// Lookup returns the glyph index for a code-point. Code-points not covered by
// the font map to glyph 0, the '.notdef' glyph.
func (t *CMapTable) Lookup(r rune) GlyphIndex {
	if t == nil || t.GlyphIndexMap == nil {
		return 0
	}
	return t.GlyphIndexMap.Lookup(r)
}

// --- Format 4 --------------------------------------------------------------

type format4GlyphIndex struct {
	segCount int
	data     binarySegm
}

func makeGlyphIndexFormat4(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 14
	if len(b) < headerSize {
		return nil, errFontFormat("cmap format 4 header")
	}
	segCount := int(u16(b[6:])) / 2
	// endCode, reservedPad, startCode, idDelta, idRangeOffset
	if len(b) < headerSize+2+8*segCount {
		return nil, errFontFormat("cmap format 4 segments")
	}
	return format4GlyphIndex{segCount: segCount, data: b}, nil
}

func (f4 format4GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xffff {
		return 0
	}
	c := uint16(r)
	ends := 14
	starts := ends + 2*f4.segCount + 2
	deltas := starts + 2*f4.segCount
	rangeOffsets := deltas + 2*f4.segCount
	// segments are sorted by endCode
	i := sort.Search(f4.segCount, func(i int) bool {
		return f4.data.U16(ends+2*i) >= c
	})
	if i == f4.segCount {
		return 0
	}
	start := f4.data.U16(starts + 2*i)
	if c < start {
		return 0
	}
	delta := f4.data.U16(deltas + 2*i)
	rangeOffsetPos := rangeOffsets + 2*i
	rangeOffset := f4.data.U16(rangeOffsetPos)
	if rangeOffset == 0 {
		return GlyphIndex(c + delta)
	}
	gid := f4.data.U16(rangeOffsetPos + int(rangeOffset) + 2*int(c-start))
	if gid == 0 {
		return 0
	}
	return GlyphIndex(gid + delta)
}

// --- Format 12 -------------------------------------------------------------

type format12GlyphIndex struct {
	numGroups int
	groups    binarySegm
}

func makeGlyphIndexFormat12(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize, groupSize = 16, 12
	if len(b) < headerSize {
		return nil, errFontFormat("cmap format 12 header")
	}
	n := int(u32(b[12:]))
	groups, err := b.view(headerSize, n*groupSize)
	if err != nil && n > 0 {
		return nil, errFontFormat("cmap format 12 groups")
	}
	return format12GlyphIndex{numGroups: n, groups: groups}, nil
}

func (f12 format12GlyphIndex) Lookup(r rune) GlyphIndex {
	c := uint32(r)
	i := sort.Search(f12.numGroups, func(i int) bool {
		return f12.groups.U32(12*i+4) >= c
	})
	if i == f12.numGroups {
		return 0
	}
	startChar := f12.groups.U32(12 * i)
	if c < startChar {
		return 0
	}
	return GlyphIndex(f12.groups.U32(12*i+8) + c - startChar)
}
