package fontregistry

import (
	"sort"
	"sync"

	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font"
	"github.com/npillmayer/schuko/tracing"
)

// Registry is a type for holding information about loaded fonts.
// It is safe for concurrent use.
type Registry struct {
	sync.Mutex
	refcnt int
	fonts  map[string]*font.ScalableFont // keyed by file path
	load   func(path string) (*font.ScalableFont, error)
}

// NewRegistry creates an uninitialized registry. Fonts are loaded from the
// file system with font.LoadOpenTypeFont.
func NewRegistry() *Registry {
	fr := &Registry{
		fonts: make(map[string]*font.ScalableFont),
		load:  font.LoadOpenTypeFont,
	}
	return fr
}

// Init acquires a reference to the registry. A registry has to be initialized
// before fonts can be opened.
func (fr *Registry) Init() {
	fr.Lock()
	defer fr.Unlock()
	fr.refcnt++
	tracer().Debugf("font registry reference count = %d", fr.refcnt)
}

// Teardown releases a reference acquired by Init.
func (fr *Registry) Teardown() {
	fr.Lock()
	defer fr.Unlock()
	fr.unref()
}

func (fr *Registry) unref() {
	if fr.refcnt == 0 {
		tracer().Errorf("font registry torn down more often than initialized")
		return
	}
	fr.refcnt--
	if fr.refcnt == 0 {
		tracer().Debugf("font registry released, dropping %d cached fonts", len(fr.fonts))
		fr.fonts = make(map[string]*font.ScalableFont)
	}
}

// Initialized is true while at least one reference to the registry is held.
func (fr *Registry) Initialized() bool {
	fr.Lock()
	defer fr.Unlock()
	return fr.refcnt > 0
}

// StoreFont pushes a font into the registry if it isn't contained yet.
//
// The font will be stored using its file path as a key. If this
// key is already associated with a font, that font will not be overridden.
func (fr *Registry) StoreFont(f *font.ScalableFont) {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	fr.Lock()
	defer fr.Unlock()
	if _, ok := fr.fonts[f.Filepath]; !ok {
		tracer().Debugf("registry stores font %s as %s", f.Fontname, f.Filepath)
		fr.fonts[f.Filepath] = f
	}
}

// Open opens the font file at path and returns an unsized typecase for it.
// The typecase holds a reference to the registry until it is closed.
//
// Open fails with core.EINVALID if the registry has not been initialized.
func (fr *Registry) Open(path string) (*font.TypeCase, error) {
	fr.Lock()
	defer fr.Unlock()
	if fr.refcnt == 0 {
		return nil, core.Error(core.EINVALID, "font registry not initialized")
	}
	f, ok := fr.fonts[path]
	if !ok {
		var err error
		if f, err = fr.load(path); err != nil {
			tracer().Infof("cannot open font %s: %v", path, err)
			return nil, err
		}
		fr.fonts[path] = f
		tracer().Infof("font registry caches font %s from %s", f.Fontname, path)
	}
	fr.refcnt++
	var once sync.Once
	return f.PrepareCase(func() {
		once.Do(func() {
			fr.Lock()
			defer fr.Unlock()
			fr.unref()
		})
	}), nil
}

// LogFontList is a helper function to dump the list of known fonts
// in a registry to the trace-file (log-level Info).
func (fr *Registry) LogFontList() {
	fr.Lock()
	defer fr.Unlock()
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	tracer().Infof("--- registered fonts (%d references) ---", fr.refcnt)
	paths := make([]string, 0, len(fr.fonts))
	for k := range fr.fonts {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	for _, k := range paths {
		tracer().Infof("font [%s] = %v", k, fr.fonts[k].Fontname)
	}
	tracer().Infof("------------------------")
	tracer().SetTraceLevel(level)
}
