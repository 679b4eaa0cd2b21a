/*
Package ottest assembles small synthetic OpenType fonts for tests.

Fonts produced by ottest carry just enough tables to be accepted by package
ot: 'head', 'hhea', 'maxp', optionally 'name' and bitmap strikes in
'EBLC'/'EBDT' or 'CBLC'/'CBDT'. Checksums are not computed.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ottest

import (
	"encoding/binary"
	"sort"
	"unicode/utf16"
)

// Builder collects tables and assembles them into a font binary.
type Builder struct {
	tables map[string][]byte
}

// NewBuilder creates a builder pre-loaded with the required tables 'head',
// 'hhea' and 'maxp'.
func NewBuilder(numGlyphs int, unitsPerEm uint16) *Builder {
	b := &Builder{tables: make(map[string][]byte)}
	b.Add("head", Head(unitsPerEm, 0, -int16(unitsPerEm)/4, int16(unitsPerEm), int16(unitsPerEm)))
	b.Add("hhea", HHea(int16(unitsPerEm)*3/4, -int16(unitsPerEm)/4, 0, 1))
	b.Add("maxp", MaxP(uint16(numGlyphs)))
	return b
}

// Add adds or replaces a table.
func (b *Builder) Add(tag string, data []byte) *Builder {
	b.tables[tag] = data
	return b
}

// Bytes assembles the font. Tables are sorted by tag and aligned to 4 bytes.
func (b *Builder) Bytes() []byte {
	tags := make([]string, 0, len(b.tables))
	for tag := range b.tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	n := len(tags)
	out := make([]byte, 12+16*n)
	binary.BigEndian.PutUint32(out, 0x00010000)
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	for i, tag := range tags {
		data := b.tables[tag]
		rec := out[12+16*i:]
		copy(rec, (tag + "    ")[:4])
		binary.BigEndian.PutUint32(rec[8:], uint32(len(out)))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(data)))
		out = append(out, data...)
		for len(out)%4 != 0 {
			out = append(out, 0)
		}
	}
	return out
}

// Head creates a 'head' table.
func Head(upem uint16, xMin, yMin, xMax, yMax int16) []byte {
	t := make([]byte, 54)
	binary.BigEndian.PutUint32(t, 0x00010000)
	binary.BigEndian.PutUint32(t[12:], 0x5F0F3CF5) // magic number
	binary.BigEndian.PutUint16(t[18:], upem)
	binary.BigEndian.PutUint16(t[36:], uint16(xMin))
	binary.BigEndian.PutUint16(t[38:], uint16(yMin))
	binary.BigEndian.PutUint16(t[40:], uint16(xMax))
	binary.BigEndian.PutUint16(t[42:], uint16(yMax))
	return t
}

// HHea creates a 'hhea' table.
func HHea(ascender, descender, lineGap int16, numHMetrics uint16) []byte {
	t := make([]byte, 36)
	binary.BigEndian.PutUint32(t, 0x00010000)
	binary.BigEndian.PutUint16(t[4:], uint16(ascender))
	binary.BigEndian.PutUint16(t[6:], uint16(descender))
	binary.BigEndian.PutUint16(t[8:], uint16(lineGap))
	binary.BigEndian.PutUint16(t[34:], numHMetrics)
	return t
}

// MaxP creates a version 0.5 'maxp' table.
func MaxP(numGlyphs uint16) []byte {
	t := make([]byte, 6)
	binary.BigEndian.PutUint32(t, 0x00005000)
	binary.BigEndian.PutUint16(t[4:], numGlyphs)
	return t
}

// Name creates a 'name' table with family and subfamily entries for the
// Windows platform.
func Name(family, subfamily string) []byte {
	strs := [][]byte{utf16be(family), utf16be(subfamily)}
	count := len(strs)
	t := make([]byte, 6+12*count)
	binary.BigEndian.PutUint16(t[2:], uint16(count))
	binary.BigEndian.PutUint16(t[4:], uint16(6+12*count))
	var strbuf []byte
	for i, s := range strs {
		rec := t[6+12*i:]
		binary.BigEndian.PutUint16(rec, 3)        // Windows
		binary.BigEndian.PutUint16(rec[2:], 1)    // Unicode BMP
		binary.BigEndian.PutUint16(rec[4:], 0x409) // English
		binary.BigEndian.PutUint16(rec[6:], uint16(i+1))
		binary.BigEndian.PutUint16(rec[8:], uint16(len(s)))
		binary.BigEndian.PutUint16(rec[10:], uint16(len(strbuf)))
		strbuf = append(strbuf, s...)
	}
	return append(t, strbuf...)
}

// CMap creates a 'cmap' table with a single format 12 sub-table, mapping
// consecutive code-points starting at first to consecutive glyphs starting at
// firstGlyph.
func CMap(first rune, count int, firstGlyph uint16) []byte {
	t := make([]byte, 4+8+16+12)
	binary.BigEndian.PutUint16(t[2:], 1)
	binary.BigEndian.PutUint16(t[4:], 3)   // Windows
	binary.BigEndian.PutUint16(t[6:], 10)  // Unicode full
	binary.BigEndian.PutUint32(t[8:], 12) // offset of sub-table
	sub := t[12:]
	binary.BigEndian.PutUint16(sub, 12)
	binary.BigEndian.PutUint32(sub[4:], 28)
	binary.BigEndian.PutUint32(sub[12:], 1)
	binary.BigEndian.PutUint32(sub[16:], uint32(first))
	binary.BigEndian.PutUint32(sub[20:], uint32(first)+uint32(count)-1)
	binary.BigEndian.PutUint32(sub[24:], uint32(firstGlyph))
	return t
}

func utf16be(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := make([]byte, 2*len(units))
	for i, u := range units {
		binary.BigEndian.PutUint16(b[2*i:], u)
	}
	return b
}

// --- Bitmap strikes --------------------------------------------------------

// StrikeGlyph is a glyph image within a strike.
type StrikeGlyph struct {
	Width, Height      uint8
	BearingX, BearingY int8
	Advance            uint8
	Data               []byte // image data, without metrics
}

// Strike is a set of glyph images for a fixed pixel size.
// Glyphs are stored with index format 1 for consecutive glyph IDs starting
// at First. ImageFormat is 1 (gray, byte aligned), 2 (gray, bit aligned) or
// 17 (PNG); all use small glyph metrics.
type Strike struct {
	Ppem                uint8
	BitDepth            uint8
	Ascender, Descender int8
	First               uint16
	ImageFormat         uint16
	Glyphs              []StrikeGlyph
}

// BitmapTables creates a location table ('EBLC'/'CBLC') and a data table
// ('EBDT'/'CBDT') for a set of strikes.
func BitmapTables(strikes []Strike) (loc, data []byte) {
	data = make([]byte, 4)
	binary.BigEndian.PutUint16(data, 2) // EBDT major version
	n := len(strikes)
	loc = make([]byte, 8+48*n)
	binary.BigEndian.PutUint16(loc, 2)
	binary.BigEndian.PutUint32(loc[4:], uint32(n))
	for i, s := range strikes {
		imageDataOffset := uint32(len(data))
		offsets := make([]uint32, 0, len(s.Glyphs)+1)
		for _, g := range s.Glyphs {
			offsets = append(offsets, uint32(len(data))-imageDataOffset)
			data = append(data, g.Height, g.Width, byte(g.BearingX), byte(g.BearingY), g.Advance)
			if s.ImageFormat == 17 {
				data = binary.BigEndian.AppendUint32(data, uint32(len(g.Data)))
			}
			data = append(data, g.Data...)
		}
		offsets = append(offsets, uint32(len(data))-imageDataOffset)
		// IndexSubTableArray with one record, followed by the IndexSubTable
		arrayOffset := uint32(len(loc))
		last := s.First + uint16(len(s.Glyphs)) - 1
		loc = binary.BigEndian.AppendUint16(loc, s.First)
		loc = binary.BigEndian.AppendUint16(loc, last)
		loc = binary.BigEndian.AppendUint32(loc, 8)
		loc = binary.BigEndian.AppendUint16(loc, 1) // index format
		loc = binary.BigEndian.AppendUint16(loc, s.ImageFormat)
		loc = binary.BigEndian.AppendUint32(loc, imageDataOffset)
		for _, off := range offsets {
			loc = binary.BigEndian.AppendUint32(loc, off)
		}
		rec := loc[8+48*i:]
		binary.BigEndian.PutUint32(rec, arrayOffset)
		binary.BigEndian.PutUint32(rec[4:], uint32(len(loc))-arrayOffset)
		binary.BigEndian.PutUint32(rec[8:], 1)
		rec[16] = byte(s.Ascender)
		rec[17] = byte(s.Descender)
		rec[18] = s.Ppem
		binary.BigEndian.PutUint16(rec[40:], s.First)
		binary.BigEndian.PutUint16(rec[42:], last)
		rec[44], rec[45] = s.Ppem, s.Ppem
		rec[46] = s.BitDepth
		rec[47] = 0x01 // horizontal metrics
	}
	return loc, data
}
