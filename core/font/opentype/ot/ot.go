package ot

// Font represents the internal structure of an OpenType font.
// It is used to query properties of a font for rasterization tasks.
//
// Contrary to what a text shaper would need, we do not insist on layout tables.
// A font needs tables 'head', 'hhea' and 'maxp' to be accepted.
type Font struct {
	Header *FontHeader
	tables map[Tag]Table
	CMap   *CMapTable // character map, nil if the font has no supported Unicode cmap
	Names  *NameTable // naming table, nil if missing or corrupt
}

// FontHeader is a directory of the top-level tables in a font. If the font file
// contains only one font, the table directory will begin at byte 0 of the file.
//
// OpenType fonts that contain TrueType outlines should use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2) should
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
// The Apple specification for TrueType fonts allows for 'true' and 'typ1',
// but these version tags should not be used for OpenType fonts.
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
//
// Table tag names are case-sensitive, following the names in the OpenType specification,
// e.g. "EBLC", "CBDT", "OS/2".
func (otf *Font) Table(tag Tag) Table {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// HasTable is a predicate: does the font contain a table with the given tag?
func (otf *Font) HasTable(tag Tag) bool {
	_, ok := otf.tables[tag]
	return ok
}

// TableTags returns a list of tags, one for each table contained in the font.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	return tags
}

// Head returns the font's 'head' table. It is a required table.
func (otf *Font) Head() *HeadTable {
	return otf.Table(T("head")).Self().AsHead()
}

// HHea returns the font's 'hhea' table. It is a required table.
func (otf *Font) HHea() *HHeaTable {
	return otf.Table(T("hhea")).Self().AsHHea()
}

// NumGlyphs returns the number of glyphs, as stated in table 'maxp'.
func (otf *Font) NumGlyphs() int {
	return otf.Table(T("maxp")).Self().AsMaxP().NumGlyphs
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the spec as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treated as read-only by clients
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	},
	}
	t.self = t
	return t
}

type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   interface{}
}

func makeTableBase(tag Tag, b binarySegm, offset, size uint32) tableBase {
	return tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
//
// Calling Self() on a nil Table is not possible, therefore clients should
// check for nil before converting:
//
//	if t := otf.Table(T("EBLC")); t != nil {
//	    eblc := t.Self().AsBitmapLoc()
//	}
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) interface{} {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return TableSelf{}
	}
	return tself.tableBase.self
}

// AsCMap returns this table as a cmap table, or nil.
func (tself TableSelf) AsCMap() *CMapTable {
	if k, ok := safeSelf(tself).(*CMapTable); ok {
		return k
	}
	return nil
}

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable {
	if k, ok := safeSelf(tself).(*MaxPTable); ok {
		return k
	}
	return nil
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable {
	if k, ok := safeSelf(tself).(*HeadTable); ok {
		return k
	}
	return nil
}

// AsHHea returns this table as a hhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable {
	if k, ok := safeSelf(tself).(*HHeaTable); ok {
		return k
	}
	return nil
}

// AsName returns this table as a name table, or nil.
func (tself TableSelf) AsName() *NameTable {
	if k, ok := safeSelf(tself).(*NameTable); ok {
		return k
	}
	return nil
}

// AsBitmapLoc returns this table as an EBLC or CBLC table, or nil.
func (tself TableSelf) AsBitmapLoc() *BitmapLocTable {
	if k, ok := safeSelf(tself).(*BitmapLocTable); ok {
		return k
	}
	return nil
}

// --- Concrete table implementations ----------------------------------------

// HeadTable gives global information about the font.
// Only a small subset of fields are made public by HeadTable: the ones needed
// for consistency-checks and for scaling glyphs.
type HeadTable struct {
	tableBase
	Flags            uint16 // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	XMin, YMin       int16  // bounding box for all glyph bounding boxes, in font units
	XMax, YMax       int16
	IndexToLocFormat uint16 // needed to interpret loca table
}

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Ascender         int16 // distance from baseline of highest ascender, font units
	Descender        int16 // distance from baseline of lowest descender, font units (negative)
	LineGap          int16 // typographic line gap
	NumberOfHMetrics int
}
