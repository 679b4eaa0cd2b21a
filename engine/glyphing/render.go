package glyphing

import (
	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font"
	"github.com/npillmayer/glyphset/engine/glyphing/boxfilter"
	"github.com/npillmayer/glyphset/engine/glyphing/glyphstore"
	"golang.org/x/image/math/fixed"
)

// RenderedGlyph is a glyph image ready for upload. Rows of Data and Mask are
// padded to multiples of 4 bytes.
type RenderedGlyph struct {
	ID   GlyphID
	Info glyphstore.GlyphInfo
	Data []byte // alpha, or BGRA for color glyphs
	Mask []byte // alpha of color glyphs, nil otherwise
}

// Render renders the glyphs of ids which have not been uploaded yet. Every
// glyph is rendered at most once, even if ids contains duplicates.
//
// If an id is out of range, Render fails with core.EOUTOFRANGE and nothing
// is rendered. A glyph which cannot be rendered is replaced by an empty glyph.
func (h *Handle) Render(ids []GlyphID) ([]RenderedGlyph, error) {
	pending, err := h.pending(ids)
	if err != nil {
		return nil, err
	}
	glyphs := make([]RenderedGlyph, len(pending))
	for i, id := range pending {
		glyphs[i] = h.renderOrEmpty(id)
	}
	return glyphs, nil
}

// pending checks the range of ids and returns those not yet uploaded,
// without duplicates and in order of first appearance.
func (h *Handle) pending(ids []GlyphID) ([]GlyphID, error) {
	max := h.layout.max()
	for _, id := range ids {
		if id > max {
			return nil, core.Error(core.EOUTOFRANGE,
				"glyph id %#x exceeds maximum of %#x for font %s", id, max, h.family)
		}
	}
	pending := make([]GlyphID, 0, len(ids))
	seen := make(map[GlyphID]struct{}, len(ids))
	for _, id := range ids {
		if h.uploaded.Test(uint(id)) {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		pending = append(pending, id)
	}
	return pending, nil
}

func (h *Handle) renderOrEmpty(id GlyphID) RenderedGlyph {
	g, err := h.renderGlyph(id)
	if err != nil {
		tracer().Errorf("cannot render glyph %#x of font %s: %v", id, h.family, err)
		g = RenderedGlyph{ID: id}
	}
	return g
}

func (h *Handle) loadFlags() font.LoadFlags {
	switch h.mode {
	case Outline:
		return font.LoadNoBitmap
	case BitmapColor:
		return font.LoadColor
	}
	return font.LoadDefault
}

func (h *Handle) renderGlyph(id GlyphID) (RenderedGlyph, error) {
	gid, phase := h.layout.decompose(id)
	var xshift fixed.Int26_6
	if h.mode == Outline {
		xshift = fixed.Int26_6(phase << (6 - h.layout.subpixelBits))
	}
	bm, err := h.face.LoadGlyph(gid, h.loadFlags(), xshift)
	if err != nil {
		return RenderedGlyph{}, err
	}
	w, ht := h.scaleSize(bm.Width), h.scaleSize(bm.Rows)
	g := RenderedGlyph{
		ID: id,
		Info: glyphstore.GlyphInfo{
			Width:  uint16(w),
			Height: uint16(ht),
			X:      int16(h.scaleSize(-bm.Left)),
			Y:      int16(h.scaleSize(bm.Top)),
		},
	}
	src := boxfilter.Bitmap{
		Pix:      bm.Buffer,
		Width:    bm.Width,
		Height:   bm.Rows,
		Stride:   bm.Pitch,
		Channels: bm.BytesPerPixel(),
	}
	switch h.mode {
	case Outline:
		dst := boxfilter.New(w, ht, 1)
		boxfilter.Copy(dst, src)
		g.Data = dst.Pix
	case BitmapGray:
		dst := boxfilter.New(w, ht, 1)
		boxfilter.Gray(dst, src, h.filterScale())
		g.Data = dst.Pix
	case BitmapColor:
		if src.Channels == 1 {
			src = grayToBGRA(src)
		}
		dst := boxfilter.New(w, ht, 4)
		mask := boxfilter.New(w, ht, 1)
		boxfilter.Color(dst, mask, src, h.filterScale())
		g.Data, g.Mask = dst.Pix, mask.Pix
	}
	return g, nil
}

// filterScale is the ratio of source (strike) pixels to target pixels.
func (h *Handle) filterScale() float64 {
	if h.scale == 0 {
		return 1
	}
	return h.strikeSize / h.pixelSize
}

// grayToBGRA turns a coverage bitmap into black pixels with premultiplied
// alpha.
func grayToBGRA(src boxfilter.Bitmap) boxfilter.Bitmap {
	dst := boxfilter.New(src.Width, src.Height, 4)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			dst.Pix[y*dst.Stride+4*x+3] = src.Pix[y*src.Stride+x]
		}
	}
	return dst
}
