package font

import (
	"image"
	"image/draw"

	"github.com/npillmayer/glyphset/core"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// loadOutline rasterizes the outline of glyph gid at the current pixel size.
// Outline coordinates from sfnt grow downwards, therefore the bitmap's top
// is the negated minimum y.
func (tc *TypeCase) loadOutline(gid uint32, xshift fixed.Int26_6) (Bitmap, error) {
	f := tc.scalableFontParent
	segs, err := f.SFNT.LoadGlyph(&tc.buf, sfnt.GlyphIndex(gid), tc.ppem, nil)
	if err != nil {
		return Bitmap{}, core.WrapError(err, core.EINVALID, "cannot load outline of glyph %d", gid)
	}
	if len(segs) == 0 { // e.g., space
		return Bitmap{Mode: PixelModeGray}, nil
	}
	bounds := segmentBounds(segs, xshift)
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	maxX, maxY := bounds.Max.X.Ceil(), bounds.Max.Y.Ceil()
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return Bitmap{Mode: PixelModeGray}, nil
	}
	r := vector.NewRasterizer(w, h)
	r.DrawOp = draw.Src
	ox := float32(minX) - float32(xshift)/64
	oy := float32(minY)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X)/64 - ox, float32(p.Y)/64 - oy
	}
	open := false
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				r.ClosePath()
			}
			r.MoveTo(pt(seg.Args[0]))
			open = true
		case sfnt.SegmentOpLineTo:
			r.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			x1, y1 := pt(seg.Args[0])
			x2, y2 := pt(seg.Args[1])
			r.QuadTo(x1, y1, x2, y2)
		case sfnt.SegmentOpCubeTo:
			x1, y1 := pt(seg.Args[0])
			x2, y2 := pt(seg.Args[1])
			x3, y3 := pt(seg.Args[2])
			r.CubeTo(x1, y1, x2, y2, x3, y3)
		}
	}
	if open {
		r.ClosePath()
	}
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return Bitmap{
		Left:   minX,
		Top:    -minY,
		Width:  w,
		Rows:   h,
		Pitch:  dst.Stride,
		Mode:   PixelModeGray,
		Buffer: dst.Pix,
	}, nil
}

// segmentBounds returns the bounding box of all points of an outline,
// including control points, shifted horizontally by xshift.
func segmentBounds(segs sfnt.Segments, xshift fixed.Int26_6) fixed.Rectangle26_6 {
	first := true
	var b fixed.Rectangle26_6
	for _, seg := range segs {
		n := 1
		switch seg.Op {
		case sfnt.SegmentOpQuadTo:
			n = 2
		case sfnt.SegmentOpCubeTo:
			n = 3
		}
		for _, p := range seg.Args[:n] {
			p.X += xshift
			if first {
				b.Min, b.Max = p, p
				first = false
				continue
			}
			b.Min.X, b.Max.X = min(b.Min.X, p.X), max(b.Max.X, p.X)
			b.Min.Y, b.Max.Y = min(b.Min.Y, p.Y), max(b.Max.Y, p.Y)
		}
	}
	return b
}
