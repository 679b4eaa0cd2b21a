/*
Package opentype handles OpenType fonts.

Sub-package ot parses the font tables relevant for rasterization, sub-package
otquery answers questions about a parsed font. This package holds the types
shared between the two and their clients.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package opentype

import (
	"golang.org/x/image/font/sfnt"
)

// --- Font metrics ----------------------------------------------------------

// FontMetricsInfo contains selected metric information for a font.
type FontMetricsInfo struct {
	UnitsPerEm      sfnt.Units // ad-hoc units per em
	Ascent, Descent sfnt.Units // ascender and descender; descent is negative
	LineGap         sfnt.Units // typographic line gap
	BBox            BoundingBox
}

// BoundingBox describes the bounding box of a glyph or the union of all
// glyph boxes of a font.
type BoundingBox struct {
	MinX, MinY sfnt.Units
	MaxX, MaxY sfnt.Units
}

// Empty is a predicate: has this box a zero area?
func (bbox BoundingBox) Empty() bool {
	return bbox.MaxX-bbox.MinX == 0 || bbox.MaxY-bbox.MinY == 0
}

// Dx is the horizontal extent of this box.
func (bbox BoundingBox) Dx() sfnt.Units {
	return bbox.MaxX - bbox.MinX
}

// Dy is the vertical extent of this box.
func (bbox BoundingBox) Dy() sfnt.Units {
	return bbox.MaxY - bbox.MinY
}
