package font

import (
	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font/opentype"
	"github.com/npillmayer/glyphset/core/font/opentype/ot"
	"github.com/npillmayer/glyphset/core/font/opentype/otquery"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// SizeMetrics are the metrics of a sized font. Scale factors convert font
// units to 26.6 pixel values, see MulFix.
type SizeMetrics struct {
	XPpem, YPpem        fixed.Int26_6
	XScale, YScale      Fixed16
	Ascender, Descender fixed.Int26_6 // descender is negative
	Height              fixed.Int26_6 // baseline-to-baseline distance
}

// LoadFlags control how glyphs are loaded.
type LoadFlags uint8

const (
	LoadDefault  LoadFlags = 0
	LoadNoBitmap LoadFlags = 1 << iota // ignore bitmap strikes, render outlines
	LoadColor                          // prefer color bitmaps
)

// PixelMode is the pixel format of a glyph bitmap.
type PixelMode uint8

const (
	PixelModeGray PixelMode = iota // 1 byte per pixel, coverage 0…255
	PixelModeBGRA                  // 4 bytes per pixel, premultiplied alpha
)

// Bitmap is a rendered glyph image. Left and Top are the distances of the
// image's left and top edges from the glyph origin (Top positive upwards).
type Bitmap struct {
	Left, Top   int
	Width, Rows int
	Pitch       int // bytes per row
	Mode        PixelMode
	Buffer      []byte
}

// BytesPerPixel returns the number of bytes per pixel for the bitmap's mode.
func (bm Bitmap) BytesPerPixel() int {
	if bm.Mode == PixelModeBGRA {
		return 4
	}
	return 1
}

// TypeCase is a font prepared for rendering glyphs at a size, either a
// selected bitmap strike or a pixel size for outlines.
//
// A TypeCase is not safe for concurrent use.
type TypeCase struct {
	scalableFontParent *ScalableFont
	strikes            []ot.BitmapStrike
	strikeData         []byte
	strike             int           // selected strike or -1
	ppem               fixed.Int26_6 // pixel size for outlines
	metrics            SizeMetrics
	buf                sfnt.Buffer
	release            func()
}

// PrepareCase creates an unsized typecase for a font. Clients have to call
// either SelectStrike or SetPixelSize before loading glyphs.
// onClose, if non-nil, will be called once when the typecase is closed.
func (sf *ScalableFont) PrepareCase(onClose func()) *TypeCase {
	tc := &TypeCase{
		scalableFontParent: sf,
		strike:             -1,
		release:            onClose,
	}
	var data ot.Table
	if tc.strikes, data = otquery.BitmapStrikes(sf.OT); data != nil {
		tc.strikeData = data.Binary()
	}
	return tc
}

// ScalableFontParent returns the font a typecase has been created from.
func (tc *TypeCase) ScalableFontParent() *ScalableFont {
	return tc.scalableFontParent
}

// Family returns the font's family name.
func (tc *TypeCase) Family() string {
	return tc.scalableFontParent.Family
}

// Scalable is true if the font contains outlines.
func (tc *TypeCase) Scalable() bool {
	return tc.scalableFontParent.SFNT != nil
}

// HasColor is true if the font contains color bitmaps.
func (tc *TypeCase) HasColor() bool {
	return otquery.HasColorBitmaps(tc.scalableFontParent.OT)
}

// NumGlyphs returns the number of glyphs in the font.
func (tc *TypeCase) NumGlyphs() int {
	return tc.scalableFontParent.OT.NumGlyphs()
}

// Strikes returns the pixel sizes of the font's bitmap strikes, in ascending
// order. Indices into this slice are used for SelectStrike.
func (tc *TypeCase) Strikes() []float64 {
	sizes := make([]float64, len(tc.strikes))
	for i, s := range tc.strikes {
		sizes[i] = float64(s.PpemY)
	}
	return sizes
}

// SelectStrike selects bitmap strike i for rendering.
func (tc *TypeCase) SelectStrike(i int) error {
	if i < 0 || i >= len(tc.strikes) {
		return core.Error(core.EINVALID, "font %s has no strike #%d", tc.scalableFontParent.Fontname, i)
	}
	s := tc.strikes[i]
	upem := tc.scalableFontParent.OT.Head().UnitsPerEm
	tc.strike = i
	tc.ppem = fixed.I(int(s.PpemY))
	tc.metrics = SizeMetrics{
		XPpem:     fixed.I(int(s.PpemX)),
		YPpem:     fixed.I(int(s.PpemY)),
		XScale:    scaleOf(fixed.I(int(s.PpemX)), upem),
		YScale:    scaleOf(fixed.I(int(s.PpemY)), upem),
		Ascender:  fixed.I(int(s.Hori.Ascender)),
		Descender: fixed.I(int(s.Hori.Descender)),
	}
	tc.metrics.Height = tc.metrics.Ascender - tc.metrics.Descender
	tracer().Debugf("selected strike %d of %s at %dppem", i, tc.scalableFontParent.Fontname, s.PpemY)
	return nil
}

// SetPixelSize sets the rendering size for outlines, in 26.6 pixels.
func (tc *TypeCase) SetPixelSize(ppem fixed.Int26_6) error {
	f := tc.scalableFontParent
	if f.SFNT == nil {
		return core.Error(core.EINVALID, "font %s is not scalable", f.Fontname)
	}
	if ppem <= 0 {
		return core.Error(core.EINVALID, "invalid pixel size %v", ppem)
	}
	m, err := f.SFNT.Metrics(&tc.buf, ppem, font.HintingNone)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot size font %s", f.Fontname)
	}
	upem := f.OT.Head().UnitsPerEm
	tc.strike = -1
	tc.ppem = ppem
	tc.metrics = SizeMetrics{
		XPpem:     ppem,
		YPpem:     ppem,
		XScale:    scaleOf(ppem, upem),
		YScale:    scaleOf(ppem, upem),
		Ascender:  m.Ascent,
		Descender: -m.Descent,
		Height:    m.Height,
	}
	return nil
}

// SizeMetrics returns the metrics for the current size.
func (tc *TypeCase) SizeMetrics() SizeMetrics {
	return tc.metrics
}

// ScaleMetrics multiplies the scale factors by scale, adding one unit of
// rounding bias. It is used when glyph images of a strike will be resampled
// to a different size.
func (tc *TypeCase) ScaleMetrics(scale float64) {
	tc.metrics.XScale = Fixed16(float64(tc.metrics.XScale)*scale + 1)
	tc.metrics.YScale = Fixed16(float64(tc.metrics.YScale)*scale + 1)
}

// BBox returns the union of all glyph bounding boxes, in font units.
func (tc *TypeCase) BBox() opentype.BoundingBox {
	return otquery.FontBBox(tc.scalableFontParent.OT)
}

// GlyphIndex returns the glyph for a code-point, or 0 if the font has none.
func (tc *TypeCase) GlyphIndex(r rune) uint32 {
	return uint32(otquery.GlyphIndex(tc.scalableFontParent.OT, r))
}

// LoadGlyph renders glyph gid. If a strike is selected and flags do not
// contain LoadNoBitmap, the glyph image is taken from the strike. Otherwise
// the glyph's outline is rasterized, shifted to the right by xshift.
func (tc *TypeCase) LoadGlyph(gid uint32, flags LoadFlags, xshift fixed.Int26_6) (Bitmap, error) {
	if int(gid) >= tc.NumGlyphs() {
		return Bitmap{}, core.Error(core.EINVALID, "glyph index %d out of range", gid)
	}
	if tc.strike >= 0 && flags&LoadNoBitmap == 0 {
		bm, err := tc.loadStrikeGlyph(gid)
		if err == nil || !tc.Scalable() {
			return bm, err
		}
		tracer().Debugf("glyph %d not in strike, falling back to outline", gid)
	}
	if !tc.Scalable() {
		return Bitmap{}, core.Error(core.EINVALID, "font %s has no outlines", tc.scalableFontParent.Fontname)
	}
	if tc.ppem <= 0 {
		return Bitmap{}, core.Error(core.EINVALID, "font %s has no size set", tc.scalableFontParent.Fontname)
	}
	return tc.loadOutline(gid, xshift)
}

// Close releases the typecase. It is safe to call Close more than once.
func (tc *TypeCase) Close() error {
	if tc.release != nil {
		tc.release()
		tc.release = nil
	}
	return nil
}
