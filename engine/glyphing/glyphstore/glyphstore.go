/*
Package glyphstore defines the interface to a remote glyph store.

A glyph store holds rasterized glyphs on the side of a display server, where
they are used for compositing text. Stores are created for a pixel format,
filled by uploading batches of glyphs, and freed when no longer needed.
Uploads are subject to a maximum request size, which is estimated by
RequestSize.

Failures of a store may be reported asynchronously, after the request
which caused them has already returned. Clients subscribe to these
notifications per store.

This package provides MemStore, an in-memory implementation.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyphstore

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'glyphset.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("glyphset.glyphs")
}

// ID identifies a store.
type ID uint32

// PixelFormat is the pixel format of a store.
type PixelFormat int

//go:generate stringer -type=PixelFormat
const (
	A8     PixelFormat = iota // 8 bit alpha
	ARGB32                    // 32 bit color, bytes in B, G, R, A order
)

func (pf PixelFormat) String() string {
	switch pf {
	case A8:
		return "A8"
	case ARGB32:
		return "ARGB32"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(pf))
}

// BytesPerPixel returns the pixel size of a format.
func (pf PixelFormat) BytesPerPixel() int {
	if pf == ARGB32 {
		return 4
	}
	return 1
}

// RowStride returns the padded size of a row of width pixels.
func (pf PixelFormat) RowStride(width int) int {
	return (width*pf.BytesPerPixel() + 3) &^ 3
}

// GlyphInfo holds the metrics of an uploaded glyph. X and Y are the offsets
// from the glyph origin to the upper left corner of the bitmap, XOff and
// YOff the advance to the next glyph.
type GlyphInfo struct {
	Width, Height uint16
	X, Y          int16
	XOff, YOff    int16
}

func (gi GlyphInfo) String() string {
	return fmt.Sprintf("[%dx%d @(%d,%d)]", gi.Width, gi.Height, gi.X, gi.Y)
}

// Sizes for estimating the size of an upload request.
const (
	HeaderSize = 12 // fixed part of a request
	IDSize     = 4  // per glyph id
	InfoSize   = 12 // per GlyphInfo
)

// RequestSize estimates the size of a request uploading n glyphs with a total
// of dataLen bytes of bitmap data.
func RequestSize(n, dataLen int) int {
	return HeaderSize + n*(IDSize+InfoSize) + dataLen
}

// FailureFunc is called when a store reports a failure asynchronously.
type FailureFunc func(id ID, err error)

// Store is a remote glyph store.
type Store interface {
	// CreateStore creates a store for glyphs of a pixel format.
	CreateStore(PixelFormat) (ID, error)
	// AddGlyphs uploads glyphs. data holds the bitmaps of all glyphs, in order
	// and with padded row strides.
	AddGlyphs(id ID, glyphIDs []uint32, infos []GlyphInfo, data []byte) error
	// FreeStore releases a store.
	FreeStore(ID) error
	// Subscribe registers a function for asynchronous failure notifications
	// concerning a store. There is at most one subscriber per store.
	Subscribe(ID, FailureFunc)
	// Unsubscribe removes a subscription.
	Unsubscribe(ID)
}
