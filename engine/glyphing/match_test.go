package glyphing

import (
	"testing"

	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font"
	"github.com/npillmayer/glyphset/core/font/fontregistry"
	"github.com/npillmayer/glyphset/core/locate/resources"
	"github.com/npillmayer/glyphset/core/parameters"
	"github.com/npillmayer/glyphset/engine/glyphing/glyphstore"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchGoFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	registry := fontregistry.NewRegistry()
	store := glyphstore.NewMemStore()
	m := NewMatcher(resources.NewDatabase(nil, ""), RegistryOpener{registry}, store)
	_, err := m.Match(2, "Go")
	assert.True(t, core.HasCode(err, core.EINVALID), "uninitialized font library should be reported")
	//
	registry.Init()
	h, err := m.Match(2, "Unknown Family, Go-12")
	require.NoError(t, err)
	assert.Equal(t, font.FallbackFontFamily, h.Family())
	assert.Equal(t, Outline, h.Mode())
	assert.Equal(t, 16.0, h.PixelSize(), "12pt at 96 dpi")
	assert.Equal(t, 0.0, h.StrikeSize())
	assert.Equal(t, 2, h.SubpixelBits())
	assert.Equal(t, 4, h.Phases())
	assert.Greater(t, h.MaxHeight(), h.Baseline())
	assert.Greater(t, h.LineSpace(), 14)
	primary, _, hasMask := h.StoreIDs()
	assert.False(t, hasMask)
	assert.True(t, store.Exists(primary))
	//
	registry.Teardown()
	assert.True(t, registry.Initialized(), "open handle should keep the font library alive")
	require.NoError(t, h.Close())
	assert.False(t, registry.Initialized())
	assert.False(t, store.Exists(primary))
}

func TestMatchCandidates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	db := newFakeDB("Sans", "Mono")
	opener := &fakeOpener{faces: map[string]*fakeFace{
		"/fonts/Sans.ttf": newGrayFace("Sans", 10, 20),
		"/fonts/Mono.ttf": newGrayFace("Mono", 8, 16, 32),
	}}
	regs := parameters.NewRasterRegisters()
	regs.Push(parameters.P_DEFAULTFAMILY, "Sans")
	m := NewMatcher(db, opener, glyphstore.NewMemStore(), WithRegisters(regs))
	//
	h, err := m.Match(3, "Missing:pixelsize=15, Mono")
	require.NoError(t, err)
	assert.Equal(t, "Mono", h.Family())
	assert.Equal(t, []string{"/fonts/Mono.ttf"}, opener.opened, "family mismatch should reject before opening")
	require.Len(t, db.queries, 2)
	assert.Equal(t, 15.0, db.queries[1].PixelSize, "pixel size should carry over to the next entry")
	assert.Equal(t, 16.0, h.PixelSize(), "strike within deviation should be used unscaled")
	assert.Equal(t, 16.0, h.StrikeSize())
	assert.Equal(t, 0, h.SubpixelBits())
	assert.Equal(t, 1, opener.faces["/fonts/Mono.ttf"].selected)
	h.Close()
}

func TestMatchDefaultEntry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	db := newFakeDB("Sans")
	opener := &fakeOpener{faces: map[string]*fakeFace{
		"/fonts/Sans.ttf": newGrayFace("Sans", 10, 20),
	}}
	m := NewMatcher(db, opener, glyphstore.NewMemStore())
	h, err := m.Match(0, "Missing-15")
	require.NoError(t, err)
	assert.Equal(t, "Sans", h.Family())
	require.Len(t, db.queries, 2)
	assert.Equal(t, "sans", db.queries[1].Family, "default entry should ask for the default family")
	assert.Equal(t, 20.0, db.queries[1].PixelSize, "15pt at 96 dpi")
	assert.Equal(t, 20.0, h.PixelSize())
	h.Close()
	//
	h, err = m.Match(0, "")
	require.NoError(t, err)
	assert.Equal(t, 20.0, h.StrikeSize())
	assert.Equal(t, 16.0, h.PixelSize(), "strike out of deviation range should be scaled")
	assert.NotZero(t, h.scale)
	h.Close()
}

func TestMatchRejections(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	noStrikes := newGrayFace("Empty")
	db := newFakeDB("Empty", "Missing")
	opener := &fakeOpener{faces: map[string]*fakeFace{
		"/fonts/Empty.ttf": noStrikes,
	}}
	m := NewMatcher(db, opener, glyphstore.NewMemStore())
	_, err := m.Match(2, "Missing,Empty,Broken-pattern")
	assert.True(t, core.HasCode(err, core.EMISSING))
	assert.Equal(t, 2, noStrikes.closed, "rejected faces should be closed")
	//
	m = NewMatcher(newFakeDB(), opener, glyphstore.NewMemStore())
	_, err = m.Match(2, "Anything")
	assert.True(t, core.HasCode(err, core.EMISSING), "empty font database should find nothing")
}

func TestMatchStoreFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	face := newGrayFace("Sans", 16)
	opener := &fakeOpener{faces: map[string]*fakeFace{"/fonts/Sans.ttf": face}}
	store := glyphstore.NewMemStore()
	store.FailNextCreate(errStore)
	m := NewMatcher(newFakeDB("Sans"), opener, store)
	_, err := m.Match(2, "Sans")
	assert.True(t, core.HasCode(err, core.ECONNECTION))
	assert.ErrorIs(t, err, errStore)
	assert.Equal(t, 1, face.closed)
}
