/*
Package parameters holds the registers steering font matching and glyph
rasterization.

Registers may be grouped: values pushed inside a group shadow the base
values until the group is closed again. This lets a client try out different
settings for a single match without disturbing global defaults.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parameters

import (
	"strconv"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'glyphset.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("glyphset.glyphs")
}

// RasterParameter is a key for a register.
type RasterParameter int

//go:generate stringer -type=RasterParameter
const (
	none           RasterParameter = iota
	P_DEFAULTFAMILY                // family to use if no pattern matches (string)
	P_PIXELSIZE                    // pixel size used when a pattern states no size (float64)
	P_POINTSIZE                    // point size assumed when a pattern states no size (float64)
	P_DPI                          // resolution for converting point sizes (float64)
	P_MAXDEVIATION                 // max relative deviation of a bitmap strike to be used unscaled (float64)
	P_SUBPIXELBITS                 // number of bits for horizontal sub-pixel phases (int)
	P_BBOXRATIO                    // bbox height / claimed height ratio considered degenerate (float64)
	P_STOPPER
)

// Configuration keys for the registers, see FromConfig.
var configKeys = map[RasterParameter]string{
	P_DEFAULTFAMILY: "default-family",
	P_PIXELSIZE:     "pixelsize",
	P_POINTSIZE:     "pointsize",
	P_DPI:           "dpi",
	P_MAXDEVIATION:  "max-unscaled-deviation",
	P_SUBPIXELBITS:  "subpixel-bits",
	P_BBOXRATIO:     "bbox-height-ratio",
}

type parameterGroup struct {
	params map[RasterParameter]interface{}
	level  int
	next   *parameterGroup
}

// RasterRegisters is a set of registers with support for grouping.
type RasterRegisters struct {
	base       [P_STOPPER]interface{}
	groups     *parameterGroup
	grouplevel int
}

// ----------------------------------------------------------------------

// NewRasterRegisters creates a register set initialized to default values.
func NewRasterRegisters() *RasterRegisters {
	regs := &RasterRegisters{}
	initParameters(&regs.base)
	return regs
}

func initParameters(p *[P_STOPPER]interface{}) {
	p[P_DEFAULTFAMILY] = "sans" // a string
	p[P_PIXELSIZE] = 16.0       // pixels
	p[P_POINTSIZE] = 12.0       // points
	p[P_DPI] = 96.0             // dots per inch
	p[P_MAXDEVIATION] = 0.1     // relative
	p[P_SUBPIXELBITS] = 2       // 4 phases
	p[P_BBOXRATIO] = 2.0        // relative
}

// FromConfig creates a register set and overrides defaults with values found
// in a configuration. Values which do not parse are logged and ignored.
func FromConfig(conf schuko.Configuration) *RasterRegisters {
	regs := NewRasterRegisters()
	if conf == nil {
		return regs
	}
	for key, confkey := range configKeys {
		s := conf.GetString(confkey)
		if s == "" {
			continue
		}
		switch regs.base[key].(type) {
		case string:
			regs.base[key] = s
		case int:
			if n, err := strconv.Atoi(s); err == nil {
				regs.base[key] = n
			} else {
				tracer().Errorf("configuration value %s=%q is not an integer", confkey, s)
			}
		case float64:
			if x, err := strconv.ParseFloat(s, 64); err == nil {
				regs.base[key] = x
			} else {
				tracer().Errorf("configuration value %s=%q is not numeric", confkey, s)
			}
		}
	}
	return regs
}

// Begingroup opens a new group. Values pushed from now on will be dropped
// with the matching Endgroup.
func (regs *RasterRegisters) Begingroup() {
	regs.grouplevel++
}

// Endgroup closes the innermost group.
func (regs *RasterRegisters) Endgroup() {
	if regs.grouplevel > 0 {
		if regs.groups != nil && regs.groups.level == regs.grouplevel {
			regs.groups = regs.groups.next
		}
		regs.grouplevel--
	}
}

// Push sets a register value within the current group.
func (regs *RasterRegisters) Push(key RasterParameter, value interface{}) {
	if regs.grouplevel > 0 {
		var g *parameterGroup
		if regs.groups == nil || regs.groups.level < regs.grouplevel {
			g = &parameterGroup{
				params: make(map[RasterParameter]interface{}),
				level:  regs.grouplevel,
				next:   regs.groups,
			}
			regs.groups = g
		} else {
			g = regs.groups
		}
		g.params[key] = value
	} else {
		regs.base[key] = value
	}
}

// Get returns the current value of a register.
func (regs *RasterRegisters) Get(key RasterParameter) interface{} {
	if key <= none || key >= P_STOPPER {
		panic("parameter key outside range of raster parameters")
	}
	var value interface{}
	if regs.grouplevel > 0 {
		for g := regs.groups; g != nil; g = g.next {
			if value = g.params[key]; value != nil {
				break
			}
		}
	}
	if value == nil {
		value = regs.base[key]
	}
	return value
}

// S returns a string register.
func (regs *RasterRegisters) S(key RasterParameter) string {
	return regs.Get(key).(string)
}

// N returns an integer register.
func (regs *RasterRegisters) N(key RasterParameter) int {
	return regs.Get(key).(int)
}

// F returns a numeric register. Integer values are converted.
func (regs *RasterRegisters) F(key RasterParameter) float64 {
	switch v := regs.Get(key).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	panic("raster parameter is not numeric")
}
