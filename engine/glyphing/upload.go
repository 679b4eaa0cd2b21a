package glyphing

import (
	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/engine/glyphing/glyphstore"
)

// batch collects glyphs for a single upload request.
type batch struct {
	ids   []uint32
	infos []glyphstore.GlyphInfo
	data  []byte
	mask  []byte
}

func (b *batch) len() int {
	return len(b.ids)
}

func (b *batch) add(g RenderedGlyph) {
	b.ids = append(b.ids, uint32(g.ID))
	b.infos = append(b.infos, g.Info)
	b.data = append(b.data, g.Data...)
	b.mask = append(b.mask, g.Mask...)
}

func (b *batch) reset() {
	b.ids = b.ids[:0]
	b.infos = b.infos[:0]
	b.data = b.data[:0]
	b.mask = b.mask[:0]
}

// fits checks if a batch extended by g would stay within maxRequestSize,
// for the glyph store as well as for the mask store.
func (b *batch) fits(g RenderedGlyph, maxRequestSize int, hasMask bool) bool {
	n := b.len() + 1
	if glyphstore.RequestSize(n, len(b.data)+len(g.Data)) > maxRequestSize {
		return false
	}
	return !hasMask || glyphstore.RequestSize(n, len(b.mask)+len(g.Mask)) <= maxRequestSize
}

// Upload renders the glyphs of ids which have not been uploaded yet and
// uploads them to the glyph store. No single request will exceed
// maxRequestSize bytes (see glyphstore.RequestSize). Upload returns the
// number of glyphs uploaded.
//
// If an id is out of range, Upload fails with core.EOUTOFRANGE and nothing
// is uploaded. A glyph too large to be uploaded in a single request fails
// the call with core.EINVALID, a failing request with core.ECONNECTION. In
// both cases glyphs uploaded by previous requests of the call stay uploaded.
func (h *Handle) Upload(ids []GlyphID, maxRequestSize int) (int, error) {
	pending, err := h.pending(ids)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		tracer().Debugf("nothing to upload for font %s", h.family)
		return 0, nil
	}
	count := 0
	b, empty := &batch{}, &batch{}
	for _, id := range pending {
		g := h.renderOrEmpty(id)
		if !empty.fits(g, maxRequestSize, h.hasMask) {
			return count, core.Error(core.EINVALID,
				"glyph %#x of font %s too large for a request size of %d", id, h.family, maxRequestSize)
		}
		if b.len() > 0 && !b.fits(g, maxRequestSize, h.hasMask) {
			if err := h.flush(b); err != nil {
				return count, err
			}
			count += b.len()
			b.reset()
		}
		b.add(g)
	}
	if err := h.flush(b); err != nil {
		return count, err
	}
	count += b.len()
	return count, nil
}

// flush sends a batch to the glyph store (and the mask store) and marks its
// glyphs as uploaded.
func (h *Handle) flush(b *batch) error {
	if b.len() == 0 {
		return nil
	}
	tracer().Debugf("uploading %d glyphs (%d bytes) for font %s", b.len(), len(b.data), h.family)
	if err := h.store.AddGlyphs(h.primary, b.ids, b.infos, b.data); err != nil {
		return core.WrapError(err, core.ECONNECTION, "cannot upload glyphs to glyph store %d", h.primary)
	}
	if h.hasMask {
		if err := h.store.AddGlyphs(h.mask, b.ids, b.infos, b.mask); err != nil {
			return core.WrapError(err, core.ECONNECTION, "cannot upload glyphs to mask glyph store %d", h.mask)
		}
	}
	for _, id := range b.ids {
		h.uploaded.Set(uint(id))
	}
	return nil
}

// UploadedIDs returns the ids of all glyphs uploaded so far, in ascending
// order.
func (h *Handle) UploadedIDs() []GlyphID {
	ids := make([]GlyphID, 0, h.uploaded.Count())
	for i, ok := h.uploaded.NextSet(0); ok; i, ok = h.uploaded.NextSet(i + 1) {
		ids = append(ids, GlyphID(i))
	}
	return ids
}
