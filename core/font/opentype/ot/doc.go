/*
Package ot provides access to OpenType font tables needed for glyph rasterization.

Intended audience for this package are glyph rasterizers and font matchers,
i.e. clients that need to know about a font's global metrics, its naming,
its character map and, above all, about embedded bitmap strikes.

Package `ot` will not interpret every table of a font, but rather expose the
tables to the client. Tables which are of interest for rasterization get a
semantic Go type: 'head', 'hhea', 'maxp', 'name', 'cmap', and the bitmap
location tables 'EBLC' and 'CBLC'. Every other table is accessible as a
generic table holding its binary data:

	os2 := otf.Table(ot.T("OS/2"))
	xAvgCharWidth := os2.Binary()[2:4]

Outlines are not handled here; golang.org/x/image/font/sfnt does a fine job
for that. It has no notion of bitmap-only fonts, however, and it does not
expose bitmap strike information. A font consisting of color bitmap strikes
only (think emoji fonts) will be rejected by sfnt, but is parsed by `ot`.

# Status

No font collections nor variable fonts are supported. Bitmap strikes with
index sub-table formats 1 to 5 are supported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

Parts of the cmap-routines follow golang.org/x/image/font/sfnt/cmap.go,
as those routines are not accessible through the sfnt package's API.

	Copyright 2017 The Go Authors. All rights reserved.
	Use of this source code is governed by a BSD-style
	license that can be found in the LICENSE file.
*/
package ot

import (
	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/schuko/tracing"
)

// Valuable resource:
// https://docs.microsoft.com/en-us/typography/opentype/spec/

// tracer writes to trace with key 'glyphset.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphset.fonts")
}

// errFontFormat produces user level errors for font parsing.
func errFontFormat(x string) error {
	return core.Error(core.EINVALID, "OpenType font format: %s", x)
}
