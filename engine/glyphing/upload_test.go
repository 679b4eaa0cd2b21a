package glyphing

import (
	"bytes"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font"
	"github.com/npillmayer/glyphset/core/font/fontregistry"
	"github.com/npillmayer/glyphset/core/locate/resources"
	"github.com/npillmayer/glyphset/core/parameters"
	"github.com/npillmayer/glyphset/engine/glyphing/glyphstore"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"
)

func TestUploadOutlinePhases(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	registry := fontregistry.NewRegistry()
	registry.Init()
	defer registry.Teardown()
	store := glyphstore.NewMemStore()
	m := NewMatcher(resources.NewDatabase(nil, ""), RegistryOpener{registry}, store)
	h, err := m.Match(2, "Go:pixelsize=32")
	require.NoError(t, err)
	defer h.Close()
	//
	gid := h.GlyphIndex('A')
	require.NotZero(t, gid)
	ids := []GlyphID{h.Compose(gid, 0), h.Compose(gid, 2), h.Compose(gid, 0)}
	n, err := h.Upload(ids, 1<<16)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "duplicate id should be uploaded once")
	assert.True(t, h.Uploaded(ids[0]))
	assert.True(t, h.Uploaded(ids[1]))
	assert.False(t, h.Uploaded(h.Compose(gid, 1)))
	assert.Equal(t, 2, h.UploadedCount())
	//
	primary, _, _ := h.StoreIDs()
	g0, ok := store.Glyph(primary, uint32(ids[0]))
	require.True(t, ok)
	g2, ok := store.Glyph(primary, uint32(ids[1]))
	require.True(t, ok)
	assert.Greater(t, g0.Info.Height, uint16(16))
	assert.Equal(t, g0.Info.Y, g2.Info.Y)
	assert.False(t, bytes.Equal(g0.Data, g2.Data), "half-pixel shift should change the glyph image")
	assert.Equal(t, 0, len(g0.Data)%4, "rows should be padded")
	//
	n, err = h.Upload(ids, 1<<16)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "second upload should be a no-op")
	assert.Len(t, store.AddCalls(primary), 1)
	assert.Equal(t, []GlyphID{ids[0], ids[1]}, h.UploadedIDs())
}

func TestUploadOutOfRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	h, store := newTestHandle(t, newGrayFace("Fake", 16), 16, 16, nil)
	_, err := h.Upload([]GlyphID{1, h.MaxID() + 1}, 1<<16)
	assert.True(t, core.HasCode(err, core.EOUTOFRANGE))
	_, err = h.Render([]GlyphID{h.MaxID() + 1})
	assert.True(t, core.HasCode(err, core.EOUTOFRANGE))
	assert.Equal(t, 0, h.UploadedCount())
	primary, _, _ := h.StoreIDs()
	assert.Empty(t, store.AddCalls(primary), "nothing should be uploaded")
	n, err := h.Upload(nil, 1<<16)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestUploadBatches(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	face := newGrayFace("Fake", 16)
	h, store := newTestHandle(t, face, 16, 16, nil)
	// every glyph is 4×4 pixels, i.e. 16 bytes of data
	max := glyphstore.RequestSize(3, 3*16)
	ids := []GlyphID{10, 11, 12, 13, 14, 15, 16}
	n, err := h.Upload(ids, max)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	primary, _, _ := h.StoreIDs()
	adds := store.AddCalls(primary)
	require.Len(t, adds, 3)
	var uploaded []uint32
	for _, call := range adds {
		assert.LessOrEqual(t, call.Size, max)
		uploaded = append(uploaded, call.GlyphIDs...)
	}
	sort.Slice(uploaded, func(i, j int) bool { return uploaded[i] < uploaded[j] })
	assert.Equal(t, []uint32{10, 11, 12, 13, 14, 15, 16}, uploaded)
	for _, flags := range face.flags {
		assert.Equal(t, font.LoadDefault, flags)
	}
	g, ok := store.Glyph(primary, 12)
	require.True(t, ok)
	want := glyphstore.GlyphInfo{Width: 4, Height: 4, X: -1, Y: 4}
	if diff := cmp.Diff(want, g.Info); diff != "" {
		t.Errorf("glyph info mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, bytes.Repeat([]byte{12}, 16), g.Data)
	//
	_, err = h.Upload([]GlyphID{20}, glyphstore.RequestSize(1, 15))
	assert.True(t, core.HasCode(err, core.EINVALID), "glyph exceeding the request size should be rejected")
	assert.False(t, h.Uploaded(20))
}

func TestUploadStoreFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	store := &failingStore{MemStore: glyphstore.NewMemStore(), failAdd: 2}
	h, err := newHandle(newGrayFace("Fake", 16), store, "Fake", 16, 16, 0, parameters.NewRasterRegisters())
	require.NoError(t, err)
	n, err := h.Upload([]GlyphID{1, 2, 3, 4, 5}, glyphstore.RequestSize(2, 2*16))
	assert.True(t, core.HasCode(err, core.ECONNECTION))
	assert.Equal(t, 2, n)
	assert.True(t, h.Uploaded(1))
	assert.True(t, h.Uploaded(2))
	assert.False(t, h.Uploaded(3), "glyphs of a failed request should not be marked")
	n, err = h.Upload([]GlyphID{1, 2, 3, 4, 5}, glyphstore.RequestSize(2, 2*16))
	require.NoError(t, err)
	assert.Equal(t, 3, n, "retry should upload the remaining glyphs only")
}

func TestUploadBrokenGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	face := newGrayFace("Fake", 16)
	face.broken[7] = true
	h, store := newTestHandle(t, face, 16, 16, nil)
	n, err := h.Upload([]GlyphID{6, 7, 8}, 1<<16)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	primary, _, _ := h.StoreIDs()
	g, ok := store.Glyph(primary, 7)
	require.True(t, ok)
	assert.Equal(t, glyphstore.GlyphInfo{}, g.Info, "broken glyph should be replaced by an empty one")
}

func TestUploadColor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	face := newGrayFace("Emoji", 8)
	face.color = true
	face.glyph = func(gid uint32, _ fixed.Int26_6) font.Bitmap {
		if gid == 2 {
			return grayBitmap(8, 8, 200)
		}
		return bgraBitmap(8, 8, [4]byte{10, 20, 30, 128})
	}
	h, store := newTestHandle(t, face, 4, 8, nil)
	n, err := h.Upload([]GlyphID{1, 2}, 1<<16)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for _, flags := range face.flags {
		assert.Equal(t, font.LoadColor, flags)
	}
	primary, mask, _ := h.StoreIDs()
	require.Len(t, store.AddCalls(primary), 1)
	require.Len(t, store.AddCalls(mask), 1)
	assert.Equal(t, []uint32{1, 2}, store.AddCalls(mask)[0].GlyphIDs)
	//
	g, ok := store.Glyph(primary, 1)
	require.True(t, ok)
	// 8 strike pixels scaled by 1/2, plus rounding bias
	assert.Equal(t, uint16(5), g.Info.Width)
	assert.Equal(t, uint16(5), g.Info.Height)
	require.Len(t, g.Data, 5*5*4)
	for i := 0; i < len(g.Data); i += 4 {
		assert.Equal(t, []byte{10, 20, 30, 0xff}, g.Data[i:i+4], "color should be opaque")
	}
	gm, ok := store.Glyph(mask, 1)
	require.True(t, ok)
	require.Len(t, gm.Data, 8*5)
	assert.Equal(t, byte(128), gm.Data[0], "mask should hold the filtered alpha")
	//
	g, _ = store.Glyph(primary, 2)
	assert.Equal(t, []byte{0, 0, 0, 0xff}, g.Data[:4], "gray glyph should turn black")
	gm, _ = store.Glyph(mask, 2)
	assert.Equal(t, byte(200), gm.Data[0])
}

func TestRender(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphset.glyphs")
	defer teardown()
	//
	face := newGrayFace("Fake", 16)
	h, _ := newTestHandle(t, face, 16, 16, nil)
	_, err := h.Upload([]GlyphID{3}, 1<<16)
	require.NoError(t, err)
	glyphs, err := h.Render([]GlyphID{3, 4, 4, 5})
	require.NoError(t, err)
	require.Len(t, glyphs, 2, "uploaded and duplicate glyphs should be skipped")
	assert.Equal(t, GlyphID(4), glyphs[0].ID)
	assert.Equal(t, GlyphID(5), glyphs[1].ID)
	assert.Nil(t, glyphs[0].Mask)
	assert.Equal(t, 1, h.UploadedCount(), "rendering does not upload")
}
