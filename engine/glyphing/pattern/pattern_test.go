package pattern

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/parameters"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xfont "golang.org/x/image/font"
)

func TestSplitList(t *testing.T) {
	for i, test := range []struct {
		in   string
		list []string
	}{
		{"", nil},
		{" , ,", nil},
		{"DejaVu Sans", []string{"DejaVu Sans"}},
		{"Noto Color Emoji:pixelsize=24, DejaVu Sans-10", []string{"Noto Color Emoji:pixelsize=24", "DejaVu Sans-10"}},
		{`A\,B,C`, []string{`A\,B`, "C"}},
	} {
		list := SplitList(test.in)
		if diff := cmp.Diff(test.list, list); diff != "" {
			t.Errorf("test #%d: SplitList(%q) mismatch (-want +got):\n%s", i, test.in, diff)
		}
	}
}

func TestParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	for i, test := range []struct {
		in  string
		out Pattern
	}{
		{"", Pattern{}},
		{"DejaVu Sans", Pattern{Family: "DejaVu Sans"}},
		{"DejaVu Sans-10.5", Pattern{Family: "DejaVu Sans", Props: []Property{{"size", "10.5"}}}},
		{"Noto Color Emoji:pixelsize=24", Pattern{Family: "Noto Color Emoji",
			Props: []Property{{"pixelsize", "24"}}}},
		{"Serif-12:bold:italic", Pattern{Family: "Serif",
			Props: []Property{{"size", "12"}, {"weight", "bold"}, {"slant", "italic"}}}},
		{`Foo\-Bar:antialias=true`, Pattern{Family: "Foo-Bar",
			Props: []Property{{"antialias", "true"}}}},
		{":Style=Bold Italic", Pattern{Props: []Property{{"style", "Bold Italic"}}}},
		{"Café", Pattern{Family: "Café"}},
	} {
		p, err := Parse(test.in)
		require.NoError(t, err, "test #%d", i)
		if diff := cmp.Diff(test.out, p); diff != "" {
			t.Errorf("test #%d: Parse(%q) mismatch (-want +got):\n%s", i, test.in, diff)
		}
	}
	for _, bad := range []string{"Sans-twelve", "Sans:pixelsize=big", "Sans:=3"} {
		_, err := Parse(bad)
		assert.True(t, core.HasCode(err, core.EINVALID), "expected %q to be rejected", bad)
	}
}

func TestSubstitute(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	regs := parameters.NewRasterRegisters()
	p, _ := Parse("Sans")
	assert.False(t, p.HasSize())
	q := p.Substitute(regs)
	assert.Equal(t, 16.0, q.PixelSize(), "12pt at 96 dpi should be 16px")
	assert.Empty(t, p.Props, "substitution must not alter the original pattern")
	//
	p, _ = Parse("Sans-9:dpi=144")
	assert.True(t, p.HasSize())
	assert.Equal(t, 18.0, p.Substitute(regs).PixelSize())
	//
	p, _ = Parse("Sans:pixelsize=24")
	q = p.Substitute(regs)
	assert.Equal(t, 24.0, q.PixelSize())
	assert.Equal(t, 18.0, q.Float(PropSize))
	//
	p, _ = Parse("Sans")
	p.Set(PropPixelSize, "11")
	assert.Equal(t, 11.0, p.Substitute(regs).PixelSize())
}

func TestStyleAndWeight(t *testing.T) {
	for i, test := range []struct {
		in     string
		style  xfont.Style
		weight xfont.Weight
	}{
		{"Sans", xfont.StyleNormal, xfont.WeightNormal},
		{"Sans:bold", xfont.StyleNormal, xfont.WeightBold},
		{"Sans:oblique:light", xfont.StyleOblique, xfont.WeightLight},
		{"Sans:weight=200", xfont.StyleNormal, xfont.WeightBold},
		{"Sans:weight=80:slant=100", xfont.StyleItalic, xfont.WeightNormal},
		{"Sans:style=SemiBold Italic", xfont.StyleItalic, xfont.WeightSemiBold},
	} {
		p, err := Parse(test.in)
		require.NoError(t, err)
		assert.Equal(t, test.style, p.Style(), "test #%d: style of %q", i, test.in)
		assert.Equal(t, test.weight, p.Weight(), "test #%d: weight of %q", i, test.in)
	}
}

func TestString(t *testing.T) {
	p, err := Parse(`Foo\-Bar-10:bold`)
	require.NoError(t, err)
	assert.Equal(t, `Foo\-Bar:size=10:weight=bold`, p.String())
	q, err := Parse(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, q)
}
