package glyphing

import "fmt"

// GlyphID is a composite glyph id: the glyph's index in the font in the low
// bits, a sub-pixel phase in the bits above.
type GlyphID uint32

// GlyphMode is the kind of glyph images a handle produces.
type GlyphMode int

//go:generate stringer -type=GlyphMode
const (
	Outline     GlyphMode = iota // rasterized outlines, alpha only
	BitmapGray                   // gray bitmap strikes, alpha only
	BitmapColor                  // color bitmap strikes, BGRA plus alpha mask
)

func (m GlyphMode) String() string {
	switch m {
	case Outline:
		return "Outline"
	case BitmapGray:
		return "BitmapGray"
	case BitmapColor:
		return "BitmapColor"
	}
	return fmt.Sprintf("GlyphMode(%d)", int(m))
}

// MaxSubpixelBits is the maximum number of bits for sub-pixel phases.
const MaxSubpixelBits = 6

// idLayout describes how composite glyph ids are put together.
type idLayout struct {
	glyphIDBits  uint
	subpixelBits uint
	glyphIDMask  uint32
	subpixelMask uint32
}

// glyphIDBits returns the number of bits needed to hold every glyph index of
// a font with numGlyphs glyphs. At least 1 bit is used.
func glyphIDBits(numGlyphs int) (bits uint, mask uint32) {
	n := uint32(numGlyphs)
	bits, mask = 1, 1
	for n&mask != n {
		bits++
		mask = mask<<1 | 1
	}
	return
}

func newIDLayout(numGlyphs int, subpixelBits int) idLayout {
	if subpixelBits < 0 {
		subpixelBits = 0
	} else if subpixelBits > MaxSubpixelBits {
		subpixelBits = MaxSubpixelBits
	}
	l := idLayout{subpixelBits: uint(subpixelBits)}
	l.glyphIDBits, l.glyphIDMask = glyphIDBits(numGlyphs)
	l.subpixelMask = (1<<l.subpixelBits - 1) << l.glyphIDBits
	return l
}

func (l idLayout) compose(base uint32, phase int) GlyphID {
	return GlyphID(uint32(phase)<<l.glyphIDBits&l.subpixelMask | base&l.glyphIDMask)
}

func (l idLayout) decompose(id GlyphID) (base uint32, phase int) {
	return uint32(id) & l.glyphIDMask, int(uint32(id) >> l.glyphIDBits)
}

// max is the largest valid composite id.
func (l idLayout) max() GlyphID {
	return GlyphID(l.glyphIDMask | l.subpixelMask)
}

// size is the number of distinct composite ids.
func (l idLayout) size() uint {
	return 1 << (l.glyphIDBits + l.subpixelBits)
}
