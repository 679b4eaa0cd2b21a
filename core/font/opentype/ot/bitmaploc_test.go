package ot

import (
	"testing"

	"github.com/npillmayer/glyphset/core/font/opentype/ot/ottest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitmapStrikes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.fonts")
	defer teardown()
	//
	glyph := ottest.StrikeGlyph{Width: 2, Height: 3, BearingX: 1, BearingY: 3, Advance: 4,
		Data: []byte{1, 2, 3, 4, 5, 6}}
	empty := ottest.StrikeGlyph{Advance: 4}
	loc, data := ottest.BitmapTables([]ottest.Strike{
		{Ppem: 8, BitDepth: 8, Ascender: 7, Descender: -1, First: 1, ImageFormat: 1,
			Glyphs: []ottest.StrikeGlyph{glyph, empty, glyph}},
		{Ppem: 16, BitDepth: 8, Ascender: 14, Descender: -2, First: 2, ImageFormat: 1,
			Glyphs: []ottest.StrikeGlyph{glyph}},
	})
	b := ottest.NewBuilder(5, 1000)
	b.Add("EBLC", loc).Add("EBDT", data)
	otf, err := Parse(b.Bytes())
	require.NoError(t, err)
	eblc := otf.Table(T("EBLC")).Self().AsBitmapLoc()
	require.NotNil(t, eblc)
	require.Len(t, eblc.Strikes, 2)
	s := eblc.Strikes[0]
	assert.Equal(t, uint8(8), s.PpemY)
	assert.Equal(t, int8(7), s.Hori.Ascender)
	assert.Equal(t, int8(-1), s.Hori.Descender)
	assert.Equal(t, GlyphIndex(1), s.StartGlyph)
	assert.Equal(t, GlyphIndex(3), s.EndGlyph)
	//
	gloc, ok := s.Locate(1)
	require.True(t, ok)
	assert.Equal(t, uint16(1), gloc.ImageFormat)
	assert.Equal(t, uint32(5+6), gloc.Length, "small metrics plus 6 bytes of pixels")
	m, err := SmallMetrics(otf.Table(T("EBDT")).Binary(), int(gloc.Offset))
	require.NoError(t, err)
	assert.Equal(t, GlyphMetrics{Height: 3, Width: 2, BearingX: 1, BearingY: 3, Advance: 4}, m)
	//
	gloc, ok = s.Locate(2)
	assert.True(t, ok, "empty image still has metrics")
	assert.Equal(t, uint32(5), gloc.Length)
	_, ok = s.Locate(4)
	assert.False(t, ok, "glyph 4 is not covered by strike 0")
	_, ok = eblc.Strikes[1].Locate(1)
	assert.False(t, ok, "glyph 1 is not covered by strike 1")
	_, ok = eblc.Strikes[1].Locate(2)
	assert.True(t, ok)
}
