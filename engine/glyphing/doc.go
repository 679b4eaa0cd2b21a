/*
Package glyphing prepares fonts for compositing text on a display server.

A Matcher resolves a list of font patterns to a font file, opens it and sizes
it, resulting in a Handle. Handles render glyphs on request and upload them
to a remote glyph store (see package glyphstore), in batches which respect the
store's maximum request size. Each glyph is uploaded at most once per handle.

Glyphs are addressed by composite glyph ids: the low bits hold the glyph's
index in the font, the next bits a horizontal sub-pixel phase. Outline fonts
are rendered once per phase, shifted by a fraction of a pixel, which allows
for precise horizontal placement of glyphs. Bitmap fonts do not support
sub-pixel phases. If the bitmap strike of a bitmap font does not match the
requested size closely enough, glyph images are resampled with a box filter
(see package boxfilter).

Handles are not safe for concurrent use, with the exception of failure
notifications from the glyph store, which may arrive from any goroutine.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyphing

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'glyphset.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("glyphset.glyphs")
}
