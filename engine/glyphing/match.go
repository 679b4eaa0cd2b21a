package glyphing

import (
	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/locate/resources"
	"github.com/npillmayer/glyphset/core/parameters"
	"github.com/npillmayer/glyphset/engine/glyphing/glyphstore"
	"github.com/npillmayer/glyphset/engine/glyphing/pattern"
	"golang.org/x/image/math/fixed"
)

// Matcher creates font handles from font patterns.
type Matcher struct {
	db     FontDB
	opener FaceOpener
	store  glyphstore.Store
	regs   *parameters.RasterRegisters
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithRegisters sets the registers holding defaults for pixel size,
// resolution and default family, as well as tuning parameters for strike
// selection and metrics. If not set, default registers are used.
func WithRegisters(regs *parameters.RasterRegisters) MatcherOption {
	return func(m *Matcher) {
		if regs != nil {
			m.regs = regs
		}
	}
}

// NewMatcher creates a matcher which looks up fonts in db, opens them with
// opener and creates handles bound to store.
func NewMatcher(db FontDB, opener FaceOpener, store glyphstore.Store, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		db:     db,
		opener: opener,
		store:  store,
		regs:   parameters.NewRasterRegisters(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// candidate is a sized face found for a pattern entry.
type candidate struct {
	face       Face
	family     string
	pixelSize  float64
	strikeSize float64
}

// Match finds the first font described by a comma separated list of font
// patterns, followed by the default font, and creates a handle for it.
//
// An entry which does not state a size is requested at the pixel size of
// the preceding entry (initially register P_PIXELSIZE). An entry naming a
// family is only satisfied by a font of exactly this family.
// subpixelBits is the number of bits for sub-pixel phases of outline fonts,
// at most 6.
//
// If no font can be found, Match returns a core.EMISSING error. If creating
// the glyph stores fails, a core.ECONNECTION error is returned.
func (m *Matcher) Match(subpixelBits int, patterns string) (*Handle, error) {
	if lc, ok := m.opener.(interface{ Initialized() bool }); ok && !lc.Initialized() {
		return nil, core.Error(core.EINVALID, "font library not initialized")
	}
	entries := append(pattern.SplitList(patterns), "")
	pixelSize := m.regs.F(parameters.P_PIXELSIZE)
	for _, entry := range entries {
		var c candidate
		var ok bool
		if c, pixelSize, ok = m.tryEntry(entry, pixelSize); !ok {
			continue
		}
		if c.strikeSize != 0 && c.strikeSize != c.pixelSize {
			tracer().Infof("font '%s:pixelsize=%.2f' (scaled from pixelsize=%.2f) found",
				c.family, c.pixelSize, c.strikeSize)
		} else {
			tracer().Infof("font '%s:pixelsize=%.2f' found", c.family, c.pixelSize)
		}
		h, err := newHandle(c.face, m.store, c.family, c.pixelSize, c.strikeSize, subpixelBits, m.regs)
		if err != nil {
			c.face.Close()
			return nil, err
		}
		return h, nil
	}
	tracer().Errorf("no matching font found for '%s'", patterns)
	return nil, core.Error(core.EMISSING, "no matching font for '%s'", patterns)
}

// tryEntry evaluates a single pattern entry. It returns the pixel size to be
// used as a default by the next entry.
func (m *Matcher) tryEntry(entry string, pixelSize float64) (candidate, float64, bool) {
	var q resources.Query
	requested := ""
	if entry == "" {
		tracer().Debugf("looking for default font")
		q = resources.Query{Family: m.regs.S(parameters.P_DEFAULTFAMILY), PixelSize: pixelSize}
	} else {
		tracer().Debugf("looking for font: %s", entry)
		p, err := pattern.Parse(entry)
		if err != nil {
			tracer().Infof("skipping font pattern: %v", err)
			return candidate{}, pixelSize, false
		}
		if !p.HasSize() {
			p.SetFloat(pattern.PropPixelSize, pixelSize)
		}
		p = p.Substitute(m.regs)
		pixelSize = p.PixelSize()
		requested = p.Family
		q = resources.Query{
			Family:    p.Family,
			Style:     p.Style(),
			Weight:    p.Weight(),
			PixelSize: pixelSize,
		}
	}
	match, ok := m.db.Match(q)
	if !ok {
		tracer().Infof("no font found for '%s'", entry)
		return candidate{}, pixelSize, false
	}
	if requested != "" && requested != match.Family {
		tracer().Infof("font family %q requested, but found %q", requested, match.Family)
		return candidate{}, pixelSize, false
	}
	if match.Path == "" {
		tracer().Infof("found font %s without a file", match.Family)
		return candidate{}, pixelSize, false
	}
	face, err := m.opener.Open(match.Path)
	if err != nil {
		tracer().Infof("cannot open font file %s: %v", match.Path, err)
		return candidate{}, pixelSize, false
	}
	c := candidate{face: face, family: match.Family, pixelSize: pixelSize}
	if !face.Scalable() {
		strikes := face.Strikes()
		maxdev := m.regs.F(parameters.P_MAXDEVIATION)
		best, deviation := selectStrike(strikes, pixelSize, maxdev)
		if best < 0 {
			tracer().Infof("font %s has neither outlines nor bitmap strikes", match.Path)
			face.Close()
			return candidate{}, pixelSize, false
		}
		if err := face.SelectStrike(best); err != nil {
			tracer().Infof("cannot select best matching font size: %v", err)
			face.Close()
			return candidate{}, pixelSize, false
		}
		c.strikeSize = strikes[best]
		if deviation <= maxdev {
			c.pixelSize = c.strikeSize
		}
	} else if err := face.SetPixelSize(fixed.Int26_6(64 * pixelSize)); err != nil {
		tracer().Infof("cannot set desired font size: %v", err)
		face.Close()
		return candidate{}, pixelSize, false
	}
	return c, pixelSize, true
}
