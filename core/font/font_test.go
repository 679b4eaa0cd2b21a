package font

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font/opentype/ot/ottest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

func TestFallbackFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.fonts")
	defer teardown()
	//
	f := FallbackFont()
	require.NotNil(t, f)
	assert.Equal(t, FallbackFontFamily, f.Family)
	assert.Equal(t, FallbackFontPath, f.Filepath)
	assert.NotNil(t, f.SFNT)
	g, err := LoadOpenTypeFont(FallbackFontPath)
	require.NoError(t, err)
	assert.Same(t, f, g)
}

func TestLoadMissingFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.fonts")
	defer teardown()
	//
	_, err := LoadOpenTypeFont("/does/not/exist.ttf")
	assert.True(t, core.HasCode(err, core.EMISSING), "expected EMISSING, got %v", err)
}

func TestMulFix(t *testing.T) {
	scale := scaleOf(fixed.I(10), 1000)
	assert.Equal(t, fixed.I(10), MulFix(1000, scale))
	assert.Equal(t, -fixed.I(10), MulFix(-1000, scale))
	assert.Equal(t, fixed.Int26_6(0), MulFix(0, scale))
	assert.InDelta(t, 0.64, scale.Float(), 0.0001)
	assert.Equal(t, Fixed16(0x18000), Fixed16FromFloat(1.5))
}

func TestOutlineTypeCase(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.fonts")
	defer teardown()
	//
	f, err := ParseOpenTypeFont(goregular.TTF)
	require.NoError(t, err)
	closed := 0
	tc := f.PrepareCase(func() { closed++ })
	assert.True(t, tc.Scalable())
	assert.False(t, tc.HasColor())
	assert.Empty(t, tc.Strikes())
	assert.Error(t, tc.SelectStrike(0))
	require.NoError(t, tc.SetPixelSize(fixed.I(16)))
	m := tc.SizeMetrics()
	assert.Equal(t, fixed.I(16), m.YPpem)
	assert.Greater(t, m.Ascender, fixed.Int26_6(0))
	assert.Less(t, m.Descender, fixed.Int26_6(0))
	assert.Equal(t, fixed.I(16), MulFix(int32(f.OT.Head().UnitsPerEm), m.YScale))
	//
	gid := tc.GlyphIndex('A')
	require.NotZero(t, gid)
	bm, err := tc.LoadGlyph(gid, LoadNoBitmap, 0)
	require.NoError(t, err)
	assert.Equal(t, PixelModeGray, bm.Mode)
	assert.Greater(t, bm.Width, 0)
	assert.Greater(t, bm.Rows, 8)
	assert.Greater(t, bm.Top, 8, "capital A should reach well above the baseline")
	assert.Len(t, bm.Buffer, bm.Pitch*bm.Rows)
	assert.Contains(t, bm.Buffer, byte(0xff), "expected fully covered pixels")
	//
	shifted, err := tc.LoadGlyph(gid, LoadNoBitmap, 32)
	require.NoError(t, err)
	assert.NotEqual(t, "", cmp.Diff(bm.Buffer, shifted.Buffer), "half pixel shift should change coverage")
	//
	space, err := tc.LoadGlyph(tc.GlyphIndex(' '), LoadDefault, 0)
	require.NoError(t, err)
	assert.Zero(t, space.Width)
	_, err = tc.LoadGlyph(uint32(tc.NumGlyphs()), LoadDefault, 0)
	assert.Error(t, err)
	//
	tc.ScaleMetrics(2)
	assert.Equal(t, m.YScale*2+1, tc.SizeMetrics().YScale)
	assert.NoError(t, tc.Close())
	assert.NoError(t, tc.Close())
	assert.Equal(t, 1, closed)
}

func TestGrayStrikes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.fonts")
	defer teardown()
	//
	byteGlyph := ottest.StrikeGlyph{Width: 2, Height: 2, BearingX: 1, BearingY: 2, Advance: 3,
		Data: []byte{10, 20, 30, 40}}
	bitGlyph := ottest.StrikeGlyph{Width: 3, Height: 2, BearingX: 0, BearingY: 2, Advance: 4,
		Data: []byte{0xAC}} // 101 011
	loc, data := ottest.BitmapTables([]ottest.Strike{
		{Ppem: 20, BitDepth: 1, Ascender: 16, Descender: -4, First: 1, ImageFormat: 2,
			Glyphs: []ottest.StrikeGlyph{bitGlyph}},
		{Ppem: 10, BitDepth: 8, Ascender: 8, Descender: -2, First: 1, ImageFormat: 1,
			Glyphs: []ottest.StrikeGlyph{byteGlyph}},
	})
	b := ottest.NewBuilder(3, 1000)
	b.Add("name", ottest.Name("Pixels", "Regular"))
	b.Add("EBLC", loc).Add("EBDT", data)
	f, err := ParseOpenTypeFont(b.Bytes())
	require.NoError(t, err)
	assert.Nil(t, f.SFNT)
	assert.Equal(t, "Pixels", f.Family)
	tc := f.PrepareCase(nil)
	assert.False(t, tc.Scalable())
	assert.False(t, tc.HasColor())
	require.Equal(t, []float64{10, 20}, tc.Strikes())
	assert.Error(t, tc.SetPixelSize(fixed.I(12)))
	//
	require.NoError(t, tc.SelectStrike(0))
	m := tc.SizeMetrics()
	assert.Equal(t, fixed.I(8), m.Ascender)
	assert.Equal(t, fixed.I(-2), m.Descender)
	assert.Equal(t, fixed.I(10), m.Height)
	assert.Equal(t, fixed.I(10), MulFix(1000, m.XScale))
	bm, err := tc.LoadGlyph(1, LoadDefault, 0)
	require.NoError(t, err)
	assert.Equal(t, Bitmap{Left: 1, Top: 2, Width: 2, Rows: 2, Pitch: 2, Mode: PixelModeGray,
		Buffer: []byte{10, 20, 30, 40}}, bm)
	_, err = tc.LoadGlyph(2, LoadDefault, 0)
	assert.True(t, core.HasCode(err, core.EMISSING), "expected glyph 2 to be missing, got %v", err)
	//
	require.NoError(t, tc.SelectStrike(1))
	bm, err = tc.LoadGlyph(1, LoadDefault, 0)
	require.NoError(t, err)
	if diff := cmp.Diff([]byte{255, 0, 255, 0, 255, 255}, bm.Buffer); diff != "" {
		t.Errorf("unexpected 1-bit expansion (-want +got):\n%s", diff)
	}
	_, err = tc.LoadGlyph(1, LoadNoBitmap, 0)
	assert.Error(t, err, "bitmap-only font cannot render outlines")
}

func TestColorStrike(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.fonts")
	defer teardown()
	//
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 128})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	glyph := ottest.StrikeGlyph{Width: 2, Height: 1, BearingY: 1, Advance: 2, Data: buf.Bytes()}
	loc, data := ottest.BitmapTables([]ottest.Strike{
		{Ppem: 109, BitDepth: 32, Ascender: 100, Descender: -9, First: 1, ImageFormat: 17,
			Glyphs: []ottest.StrikeGlyph{glyph}},
	})
	b := ottest.NewBuilder(2, 2048)
	b.Add("CBLC", loc).Add("CBDT", data)
	f, err := ParseOpenTypeFont(b.Bytes())
	require.NoError(t, err)
	tc := f.PrepareCase(nil)
	assert.True(t, tc.HasColor())
	require.NoError(t, tc.SelectStrike(0))
	bm, err := tc.LoadGlyph(1, LoadColor, 0)
	require.NoError(t, err)
	assert.Equal(t, PixelModeBGRA, bm.Mode)
	assert.Equal(t, 4, bm.BytesPerPixel())
	assert.Equal(t, 2, bm.Width)
	assert.Equal(t, 1, bm.Rows)
	if diff := cmp.Diff([]byte{0, 0, 255, 255, 128, 0, 0, 128}, bm.Buffer); diff != "" {
		t.Errorf("unexpected BGRA pixels (-want +got):\n%s", diff)
	}
}
