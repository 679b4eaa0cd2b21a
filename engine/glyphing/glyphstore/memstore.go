package glyphstore

import (
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/glyphset/core"
)

// Glyph is a glyph held in a MemStore.
type Glyph struct {
	Info GlyphInfo
	Data []byte // rows with padded stride
}

// Call records a request to a MemStore.
type Call struct {
	Op       string // "create", "add" or "free"
	Store    ID
	GlyphIDs []uint32
	Size     int // estimated request size, for "add"
}

type memGlyphSet struct {
	format PixelFormat
	glyphs *treemap.Map // uint32 glyph id → Glyph
}

// MemStore is an in-memory glyph store. It checks uploads for consistency,
// records all requests and supports injecting failures. It is safe for
// concurrent use.
type MemStore struct {
	mx             sync.Mutex
	MaxRequestSize int // if > 0, larger uploads are refused
	next           ID
	sets           *treemap.Map // uint32 store id → *memGlyphSet
	subscribers    map[ID]FailureFunc
	calls          []Call
	failCreate     error
	failAdd        map[ID]error
	notifications  sync.WaitGroup
}

var _ Store = &MemStore{}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		sets:        treemap.NewWith(utils.UInt32Comparator),
		subscribers: make(map[ID]FailureFunc),
		failAdd:     make(map[ID]error),
	}
}

// CreateStore is part of interface Store.
func (ms *MemStore) CreateStore(format PixelFormat) (ID, error) {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	if err := ms.failCreate; err != nil {
		ms.failCreate = nil
		return 0, err
	}
	ms.next++
	id := ms.next
	ms.sets.Put(uint32(id), &memGlyphSet{
		format: format,
		glyphs: treemap.NewWith(utils.UInt32Comparator),
	})
	ms.calls = append(ms.calls, Call{Op: "create", Store: id})
	tracer().Debugf("memstore: created store %d for %s", id, format)
	return id, nil
}

// AddGlyphs is part of interface Store.
func (ms *MemStore) AddGlyphs(id ID, glyphIDs []uint32, infos []GlyphInfo, data []byte) error {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	size := RequestSize(len(glyphIDs), len(data))
	ms.calls = append(ms.calls, Call{
		Op:       "add",
		Store:    id,
		GlyphIDs: append([]uint32(nil), glyphIDs...),
		Size:     size,
	})
	if err := ms.failAdd[id]; err != nil {
		return err
	}
	s, ok := ms.sets.Get(uint32(id))
	if !ok {
		return core.Error(core.EINVALID, "no glyph store with id %d", id)
	}
	set := s.(*memGlyphSet)
	if len(glyphIDs) != len(infos) {
		return core.Error(core.EINVALID, "%d glyph ids, but %d glyph infos", len(glyphIDs), len(infos))
	}
	if ms.MaxRequestSize > 0 && size > ms.MaxRequestSize {
		return core.Error(core.EINVALID, "request size %d exceeds maximum of %d", size, ms.MaxRequestSize)
	}
	glyphs := make([]Glyph, len(infos))
	pos := 0
	for i, info := range infos {
		n := set.format.RowStride(int(info.Width)) * int(info.Height)
		if pos+n > len(data) {
			return core.Error(core.EINVALID, "bitmap data too short for glyph %d", glyphIDs[i])
		}
		glyphs[i] = Glyph{Info: info, Data: append([]byte(nil), data[pos:pos+n]...)}
		pos += n
	}
	if pos != len(data) {
		return core.Error(core.EINVALID, "%d bytes of excess bitmap data", len(data)-pos)
	}
	for i, g := range glyphs {
		set.glyphs.Put(glyphIDs[i], g)
	}
	return nil
}

// FreeStore is part of interface Store.
func (ms *MemStore) FreeStore(id ID) error {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	ms.calls = append(ms.calls, Call{Op: "free", Store: id})
	if _, ok := ms.sets.Get(uint32(id)); !ok {
		return core.Error(core.EINVALID, "no glyph store with id %d", id)
	}
	ms.sets.Remove(uint32(id))
	return nil
}

// Subscribe is part of interface Store.
func (ms *MemStore) Subscribe(id ID, fn FailureFunc) {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	ms.subscribers[id] = fn
}

// Unsubscribe is part of interface Store.
func (ms *MemStore) Unsubscribe(id ID) {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	delete(ms.subscribers, id)
}

// --- Inspection and failure injection ---------------------------------------

// FailNextCreate lets the next call to CreateStore fail with err.
func (ms *MemStore) FailNextCreate(err error) {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	ms.failCreate = err
}

// FailAdd lets calls to AddGlyphs for store id fail with err. A nil err
// clears the failure.
func (ms *MemStore) FailAdd(id ID, err error) {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	if err == nil {
		delete(ms.failAdd, id)
		return
	}
	ms.failAdd[id] = err
}

// Notify reports a failure of store id to its subscriber, if any. The
// subscriber is called from a separate goroutine; Notify returns after it
// has completed.
func (ms *MemStore) Notify(id ID, err error) {
	ms.mx.Lock()
	fn := ms.subscribers[id]
	ms.mx.Unlock()
	if fn == nil {
		tracer().Debugf("memstore: no subscriber for failure of store %d", id)
		return
	}
	ms.notifications.Add(1)
	go func() {
		defer ms.notifications.Done()
		fn(id, err)
	}()
	ms.notifications.Wait()
}

// Calls returns the requests recorded so far.
func (ms *MemStore) Calls() []Call {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	return append([]Call(nil), ms.calls...)
}

// AddCalls returns the upload requests for store id.
func (ms *MemStore) AddCalls(id ID) []Call {
	var adds []Call
	for _, c := range ms.Calls() {
		if c.Op == "add" && c.Store == id {
			adds = append(adds, c)
		}
	}
	return adds
}

// Exists is true if store id has been created and not yet freed.
func (ms *MemStore) Exists(id ID) bool {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	_, ok := ms.sets.Get(uint32(id))
	return ok
}

// Subscribed is true if a failure subscriber for store id is registered.
func (ms *MemStore) Subscribed(id ID) bool {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	return ms.subscribers[id] != nil
}

// Glyph returns a glyph stored in store id.
func (ms *MemStore) Glyph(id ID, glyphID uint32) (Glyph, bool) {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	s, ok := ms.sets.Get(uint32(id))
	if !ok {
		return Glyph{}, false
	}
	g, ok := s.(*memGlyphSet).glyphs.Get(glyphID)
	if !ok {
		return Glyph{}, false
	}
	return g.(Glyph), true
}

// GlyphIDs returns the ids of all glyphs in store id, in ascending order.
func (ms *MemStore) GlyphIDs(id ID) []uint32 {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	s, ok := ms.sets.Get(uint32(id))
	if !ok {
		return nil
	}
	keys := s.(*memGlyphSet).glyphs.Keys()
	ids := make([]uint32, len(keys))
	for i, k := range keys {
		ids[i] = k.(uint32)
	}
	return ids
}
