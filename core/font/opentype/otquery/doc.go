/*
Package otquery queries metrics and other information from OpenType fonts.

Package otquery knows about the various tables contained in OpenType fonts and
which ones to address for queries. Clients of this package are font databases
(asking for family names and styles) and glyph rasterizers (asking for global
metrics and bitmap strikes).

# Status

No font collections nor variable fonts are supported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'glyphset.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphset.fonts")
}
