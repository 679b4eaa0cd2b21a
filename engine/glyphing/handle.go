package glyphing

import (
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font"
	"github.com/npillmayer/glyphset/core/parameters"
	"github.com/npillmayer/glyphset/engine/glyphing/glyphstore"
	"golang.org/x/image/math/fixed"
)

// Handle is a sized font face bound to glyph stores. It is created by
// Matcher.Match and has to be closed by the client.
type Handle struct {
	face       Face
	store      glyphstore.Store
	family     string
	mode       GlyphMode
	pixelSize  float64 // requested pixel size
	strikeSize float64 // size of the strike to scale from, or 0
	scale      float64 // pixelSize/strikeSize, or 0 if not scaling
	layout     idLayout
	uploaded   *bitset.BitSet
	primary    glyphstore.ID
	mask       glyphstore.ID
	hasMask    bool
	maxWidth   fixed.Int26_6
	maxHeight  fixed.Int26_6
	baseline   fixed.Int26_6
	hasError   atomic.Bool
	closed     bool
}

// newHandle takes ownership of face, which has already been sized. If
// strikeSize is non-zero and differs from pixelSize, glyph images will be
// resampled from the strike.
func newHandle(face Face, store glyphstore.Store, family string, pixelSize, strikeSize float64,
	subpixelBits int, regs *parameters.RasterRegisters) (*Handle, error) {
	//
	h := &Handle{
		face:       face,
		store:      store,
		family:     family,
		pixelSize:  pixelSize,
		strikeSize: strikeSize,
	}
	switch {
	case face.HasColor():
		h.mode = BitmapColor
	case strikeSize != 0:
		h.mode = BitmapGray
	default:
		h.mode = Outline
	}
	if strikeSize != 0 {
		subpixelBits = 0
	}
	h.layout = newIDLayout(face.NumGlyphs(), subpixelBits)
	h.uploaded = bitset.New(h.layout.size())
	if strikeSize != 0 && strikeSize != pixelSize {
		h.scale = pixelSize / strikeSize
		face.ScaleMetrics(h.scale)
	}
	if err := h.createStores(); err != nil {
		return nil, err
	}
	h.computeMetrics(regs.F(parameters.P_BBOXRATIO))
	notify := func(id glyphstore.ID, err error) {
		tracer().Errorf("glyph store %d of font %s failed: %v", id, h.family, err)
		h.hasError.Store(true)
	}
	store.Subscribe(h.primary, notify)
	if h.hasMask {
		store.Subscribe(h.mask, notify)
	}
	return h, nil
}

func (h *Handle) createStores() (err error) {
	format := glyphstore.A8
	if h.mode == BitmapColor {
		format = glyphstore.ARGB32
	}
	if h.primary, err = h.store.CreateStore(format); err != nil {
		return core.WrapError(err, core.ECONNECTION, "cannot create glyph store for font %s", h.family)
	}
	if h.mode == BitmapColor {
		if h.mask, err = h.store.CreateStore(glyphstore.A8); err != nil {
			if e := h.store.FreeStore(h.primary); e != nil {
				tracer().Errorf("cannot free glyph store %d: %v", h.primary, e)
			}
			return core.WrapError(err, core.ECONNECTION, "cannot create mask glyph store for font %s", h.family)
		}
		h.hasMask = true
	}
	return nil
}

// computeMetrics derives maximum glyph dimensions and the baseline from the
// font's bounding box. Some fonts state bounding boxes far larger than their
// glyphs. If the box height is at least ratio times the line height claimed
// by ascender and descender, the claimed height is used instead. This is a
// heuristic.
func (h *Handle) computeMetrics(ratio float64) {
	m := h.face.SizeMetrics()
	bbox := h.face.BBox()
	claimed := m.Ascender - m.Descender
	if h.scale != 0 {
		claimed = fixed.Int26_6(h.scale*float64(claimed) + 1)
	}
	h.maxWidth = font.MulFix(int32(bbox.MaxX), m.XScale) - font.MulFix(int32(bbox.MinX), m.XScale)
	h.maxHeight = font.MulFix(int32(bbox.MaxY), m.YScale) - font.MulFix(int32(bbox.MinY), m.YScale)
	if h.maxHeight == 0 || (claimed != 0 && float64(h.maxHeight) >= float64(claimed)*ratio) {
		h.maxHeight = claimed
		h.baseline = m.Ascender
		if h.scale != 0 {
			h.baseline = fixed.Int26_6(h.scale*float64(m.Ascender) + 1)
		}
	} else {
		h.baseline = font.MulFix(int32(bbox.MaxY), m.YScale)
	}
}

// scaleSize scales a size from strike pixels to requested pixels, rounding
// away from zero. It is the identity if no scaling is done.
func (h *Handle) scaleSize(v int) int {
	if h.scale == 0 || v == 0 {
		return v
	}
	if v < 0 {
		return -int(float64(-v)*h.scale + 1)
	}
	return int(float64(v)*h.scale + 1)
}

// Close unsubscribes from failure notifications, frees the glyph stores and
// closes the font face. It is safe to call Close more than once.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	var err error
	h.store.Unsubscribe(h.primary)
	if h.hasMask {
		h.store.Unsubscribe(h.mask)
		if e := h.store.FreeStore(h.mask); e != nil {
			err = core.WrapError(e, core.ECONNECTION, "cannot free mask glyph store %d", h.mask)
		}
	}
	if e := h.store.FreeStore(h.primary); e != nil && err == nil {
		err = core.WrapError(e, core.ECONNECTION, "cannot free glyph store %d", h.primary)
	}
	if e := h.face.Close(); e != nil && err == nil {
		err = e
	}
	return err
}

// --- Accessors -------------------------------------------------------------

// Family returns the family name of the matched font.
func (h *Handle) Family() string { return h.family }

// Mode returns the kind of glyph images the handle produces.
func (h *Handle) Mode() GlyphMode { return h.mode }

// PixelSize returns the pixel size glyphs are rendered at.
func (h *Handle) PixelSize() float64 { return h.pixelSize }

// StrikeSize returns the pixel size of the selected bitmap strike, or 0 for
// outline fonts.
func (h *Handle) StrikeSize() float64 { return h.strikeSize }

// SubpixelBits returns the number of bits of a glyph id used for sub-pixel
// phases.
func (h *Handle) SubpixelBits() int { return int(h.layout.subpixelBits) }

// GlyphIDBits returns the number of bits of a glyph id used for the glyph
// index.
func (h *Handle) GlyphIDBits() int { return int(h.layout.glyphIDBits) }

// Phases returns the number of sub-pixel phases.
func (h *Handle) Phases() int { return 1 << h.layout.subpixelBits }

// MaxID returns the largest valid composite glyph id.
func (h *Handle) MaxID() GlyphID { return h.layout.max() }

// Compose creates a composite glyph id from a glyph index and a sub-pixel
// phase. Bits outside of the ranges for index and phase are dropped.
func (h *Handle) Compose(gid uint32, phase int) GlyphID {
	return h.layout.compose(gid, phase)
}

// Decompose splits a composite glyph id into glyph index and phase.
func (h *Handle) Decompose(id GlyphID) (gid uint32, phase int) {
	return h.layout.decompose(id)
}

// GlyphIndex returns the glyph index for a code-point, or 0.
func (h *Handle) GlyphIndex(r rune) uint32 { return h.face.GlyphIndex(r) }

// Uploaded is true if a glyph has been uploaded to the glyph store.
func (h *Handle) Uploaded(id GlyphID) bool {
	return id <= h.layout.max() && h.uploaded.Test(uint(id))
}

// UploadedCount returns the number of glyphs uploaded so far.
func (h *Handle) UploadedCount() int { return int(h.uploaded.Count()) }

// MaxWidth returns the maximum glyph width in 26.6 pixels.
func (h *Handle) MaxWidth() fixed.Int26_6 { return h.maxWidth }

// MaxHeight returns the maximum glyph height in 26.6 pixels. It is taken
// from the font's bounding box unless the box is implausibly high compared to
// the claimed line height (see register P_BBOXRATIO); this is a heuristic.
func (h *Handle) MaxHeight() fixed.Int26_6 { return h.maxHeight }

// Baseline returns the distance from the top of a line to the baseline,
// in 26.6 pixels.
func (h *Handle) Baseline() fixed.Int26_6 { return h.baseline }

// LineSpace returns the baseline-to-baseline distance, rounded to pixels.
func (h *Handle) LineSpace() int {
	return int((h.face.SizeMetrics().Height + 0x20) >> 6)
}

// HasError is true if a glyph store has reported a failure asynchronously.
// Once set, it stays set.
func (h *Handle) HasError() bool { return h.hasError.Load() }

// StoreIDs returns the id of the glyph store and, for color fonts, of the
// store for the alpha masks.
func (h *Handle) StoreIDs() (primary glyphstore.ID, mask glyphstore.ID, hasMask bool) {
	return h.primary, h.mask, h.hasMask
}
