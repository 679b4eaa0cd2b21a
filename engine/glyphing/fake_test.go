package glyphing

import (
	"errors"

	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font"
	"github.com/npillmayer/glyphset/core/font/opentype"
	"github.com/npillmayer/glyphset/core/locate/resources"
	"github.com/npillmayer/glyphset/engine/glyphing/glyphstore"
	"golang.org/x/image/math/fixed"
)

// fakeFace is a bitmap (or pseudo-outline) face with synthetic glyphs.
type fakeFace struct {
	family    string
	numGlyphs int
	scalable  bool
	color     bool
	strikes   []float64
	selected  int
	ppem      fixed.Int26_6
	metrics   font.SizeMetrics
	bbox      opentype.BoundingBox
	glyph     func(gid uint32, xshift fixed.Int26_6) font.Bitmap
	broken    map[uint32]bool
	flags     []font.LoadFlags
	closed    int
}

// unity is a scale factor mapping 1 font unit to 1 pixel.
const unity = font.Fixed16(64 << 16)

func newGrayFace(family string, strikes ...float64) *fakeFace {
	return &fakeFace{
		family:    family,
		numGlyphs: 100,
		strikes:   strikes,
		selected:  -1,
		metrics: font.SizeMetrics{
			XScale:    unity,
			YScale:    unity,
			Ascender:  fixed.I(12),
			Descender: -fixed.I(4),
			Height:    fixed.I(18),
		},
		bbox: opentype.BoundingBox{MinX: -1, MinY: -4, MaxX: 10, MaxY: 14},
		glyph: func(gid uint32, _ fixed.Int26_6) font.Bitmap {
			return grayBitmap(4, 4, byte(gid))
		},
		broken: make(map[uint32]bool),
	}
}

func grayBitmap(w, h int, v byte) font.Bitmap {
	buf := make([]byte, w*h)
	for i := range buf {
		buf[i] = v
	}
	return font.Bitmap{Left: 1, Top: h, Width: w, Rows: h, Pitch: w, Mode: font.PixelModeGray, Buffer: buf}
}

func bgraBitmap(w, h int, px [4]byte) font.Bitmap {
	buf := make([]byte, w*h*4)
	for i := 0; i < len(buf); i += 4 {
		copy(buf[i:], px[:])
	}
	return font.Bitmap{Left: 0, Top: h, Width: w, Rows: h, Pitch: 4 * w, Mode: font.PixelModeBGRA, Buffer: buf}
}

func (ff *fakeFace) Family() string     { return ff.family }
func (ff *fakeFace) Scalable() bool     { return ff.scalable }
func (ff *fakeFace) HasColor() bool     { return ff.color }
func (ff *fakeFace) NumGlyphs() int     { return ff.numGlyphs }
func (ff *fakeFace) Strikes() []float64 { return ff.strikes }

func (ff *fakeFace) SelectStrike(i int) error {
	if i < 0 || i >= len(ff.strikes) {
		return core.Error(core.EINVALID, "no strike #%d", i)
	}
	ff.selected = i
	return nil
}

func (ff *fakeFace) SetPixelSize(ppem fixed.Int26_6) error {
	if !ff.scalable {
		return core.Error(core.EINVALID, "not scalable")
	}
	ff.ppem = ppem
	return nil
}

func (ff *fakeFace) SizeMetrics() font.SizeMetrics { return ff.metrics }

func (ff *fakeFace) ScaleMetrics(scale float64) {
	ff.metrics.XScale = font.Fixed16(float64(ff.metrics.XScale)*scale + 1)
	ff.metrics.YScale = font.Fixed16(float64(ff.metrics.YScale)*scale + 1)
}

func (ff *fakeFace) BBox() opentype.BoundingBox { return ff.bbox }

func (ff *fakeFace) GlyphIndex(r rune) uint32 {
	if int(r) < ff.numGlyphs {
		return uint32(r)
	}
	return 0
}

func (ff *fakeFace) LoadGlyph(gid uint32, flags font.LoadFlags, xshift fixed.Int26_6) (font.Bitmap, error) {
	ff.flags = append(ff.flags, flags)
	if int(gid) >= ff.numGlyphs || ff.broken[gid] {
		return font.Bitmap{}, core.Error(core.EINVALID, "cannot load glyph %d", gid)
	}
	return ff.glyph(gid, xshift), nil
}

func (ff *fakeFace) Close() error {
	ff.closed++
	return nil
}

var _ Face = &fakeFace{}

// --- Font database and opener ----------------------------------------------

// fakeDB knows fonts by family; unknown families are substituted by the
// first entry of order, like fontconfig does.
type fakeDB struct {
	fonts   map[string]resources.Match
	order   []string
	queries []resources.Query
}

func newFakeDB(families ...string) *fakeDB {
	db := &fakeDB{fonts: make(map[string]resources.Match)}
	for _, f := range families {
		db.fonts[f] = resources.Match{Family: f, Path: "/fonts/" + f + ".ttf"}
		db.order = append(db.order, f)
	}
	return db
}

func (db *fakeDB) Match(q resources.Query) (resources.Match, bool) {
	db.queries = append(db.queries, q)
	if m, ok := db.fonts[q.Family]; ok {
		return m, true
	}
	if len(db.order) == 0 {
		return resources.Match{}, false
	}
	return db.fonts[db.order[0]], true
}

type fakeOpener struct {
	faces  map[string]*fakeFace
	opened []string
}

func (fo *fakeOpener) Open(path string) (Face, error) {
	fo.opened = append(fo.opened, path)
	if f, ok := fo.faces[path]; ok {
		return f, nil
	}
	return nil, core.Error(core.EMISSING, "no font at %s", path)
}

// --- Glyph store with scheduled failures -------------------------------------

var errStore = errors.New("store refused request")

// failingStore fails the n-th call to CreateStore or AddGlyphs (counting
// from 1); 0 means never.
type failingStore struct {
	*glyphstore.MemStore
	failCreate, creates int
	failAdd, adds       int
}

func (fs *failingStore) CreateStore(format glyphstore.PixelFormat) (glyphstore.ID, error) {
	fs.creates++
	if fs.creates == fs.failCreate {
		return 0, errStore
	}
	return fs.MemStore.CreateStore(format)
}

func (fs *failingStore) AddGlyphs(id glyphstore.ID, ids []uint32, infos []glyphstore.GlyphInfo, data []byte) error {
	fs.adds++
	if fs.adds == fs.failAdd {
		return errStore
	}
	return fs.MemStore.AddGlyphs(id, ids, infos, data)
}
