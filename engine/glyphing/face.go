package glyphing

import (
	"github.com/npillmayer/glyphset/core/font"
	"github.com/npillmayer/glyphset/core/font/fontregistry"
	"github.com/npillmayer/glyphset/core/font/opentype"
	"github.com/npillmayer/glyphset/core/locate/resources"
	"golang.org/x/image/math/fixed"
)

// Face is an opened font face, as needed by a Handle.
// It is implemented by *font.TypeCase.
type Face interface {
	Family() string
	Scalable() bool
	HasColor() bool
	NumGlyphs() int
	Strikes() []float64 // pixel sizes of bitmap strikes
	SelectStrike(i int) error
	SetPixelSize(ppem fixed.Int26_6) error
	SizeMetrics() font.SizeMetrics
	ScaleMetrics(scale float64)
	BBox() opentype.BoundingBox
	GlyphIndex(r rune) uint32
	LoadGlyph(gid uint32, flags font.LoadFlags, xshift fixed.Int26_6) (font.Bitmap, error)
	Close() error
}

var _ Face = (*font.TypeCase)(nil)

// FontDB resolves font queries to font files.
// It is implemented by *resources.Database.
type FontDB interface {
	Match(resources.Query) (resources.Match, bool)
}

var _ FontDB = (*resources.Database)(nil)

// FaceOpener opens font files.
type FaceOpener interface {
	Open(path string) (Face, error)
}

// RegistryOpener opens faces from a font registry. The registry has to be
// initialized for Open to succeed.
type RegistryOpener struct {
	*fontregistry.Registry
}

// Open is part of interface FaceOpener.
func (ro RegistryOpener) Open(path string) (Face, error) {
	tc, err := ro.Registry.Open(path)
	if err != nil {
		return nil, err
	}
	return tc, nil
}
