package otquery

import (
	"testing"

	"github.com/npillmayer/glyphset/core/font/opentype/ot"
	"github.com/npillmayer/glyphset/core/font/opentype/ot/ottest"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// --- Test Suite Preparation ------------------------------------------------

type MetricsTestEnviron struct {
	suite.Suite
	goregular *ot.Font
	bitmaps   *ot.Font
}

// listen for 'go test' command --> run test methods
func TestMetricsFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.fonts")
	defer teardown()
	suite.Run(t, new(MetricsTestEnviron))
}

// run once, before test suite methods
func (env *MetricsTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("glyphset.fonts").SetTraceLevel(tracing.LevelError)
	var err error
	env.goregular, err = ot.Parse(goregular.TTF)
	env.Require().NoError(err)
	b := ottest.NewBuilder(4, 1000)
	b.Add("name", ottest.Name("Pixels", "Regular"))
	small := ottest.StrikeGlyph{Width: 1, Height: 1, Data: []byte{0xff}}
	loc, data := ottest.BitmapTables([]ottest.Strike{
		{Ppem: 20, BitDepth: 8, First: 1, ImageFormat: 1, Glyphs: []ottest.StrikeGlyph{small}},
		{Ppem: 10, BitDepth: 8, First: 1, ImageFormat: 1, Glyphs: []ottest.StrikeGlyph{small}},
	})
	b.Add("EBLC", loc).Add("EBDT", data)
	env.bitmaps, err = ot.Parse(b.Bytes())
	env.Require().NoError(err)
	tracing.Select("glyphset.fonts").SetTraceLevel(tracing.LevelInfo)
}

// run once, after test suite methods
func (env *MetricsTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

// --- Tests -----------------------------------------------------------------

func (env *MetricsTestEnviron) TestGlyphIndex() {
	gid := GlyphIndex(env.goregular, 'A')
	env.NotEqual(ot.GlyphIndex(0), gid, "expected 'A' to be present in Go Sans")
	env.Equal(ot.GlyphIndex(0), GlyphIndex(env.bitmaps, 'A'), "expected font without cmap to map to .notdef")
}

func (env *MetricsTestEnviron) TestFontMetrics() {
	m := FontMetrics(env.goregular)
	env.Equal(sfnt.Units(2048), m.UnitsPerEm)
	env.Greater(m.Ascent, sfnt.Units(0))
	env.Less(m.Descent, sfnt.Units(0))
	env.False(m.BBox.Empty())
	env.Equal(m.BBox.MaxY-m.BBox.MinY, m.BBox.Dy())
}

func (env *MetricsTestEnviron) TestNameInfo() {
	names := NameInfo(env.goregular)
	env.Equal("Go", names["family"])
	env.Equal("Regular", names["subfamily"])
	names = NameInfo(env.bitmaps)
	env.Equal("Pixels", names["family"])
	env.Equal("", names["fullname"])
}

func (env *MetricsTestEnviron) TestFontKind() {
	env.Equal("TrueType", FontType(env.goregular))
	env.True(HasOutlines(env.goregular))
	env.False(HasColorBitmaps(env.goregular))
	env.False(HasOutlines(env.bitmaps))
	env.False(HasColorBitmaps(env.bitmaps))
}

func (env *MetricsTestEnviron) TestBitmapStrikes() {
	strikes, data := BitmapStrikes(env.goregular)
	env.Nil(strikes)
	env.Nil(data)
	strikes, data = BitmapStrikes(env.bitmaps)
	env.Require().Len(strikes, 2)
	env.NotNil(data)
	env.Equal(uint8(10), strikes[0].PpemY, "expected strikes to be sorted by size")
	env.Equal(uint8(20), strikes[1].PpemY)
}
