/*
Package font is for typeface and font handling.

There is a certain confusion in the nomenclature of typesetting. We will
stick to the following definitions:

* A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

* A "scalable font" is a font file, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".
Despite its name, a ScalableFont may consist of bitmap strikes only.

* A "typecase" is a sized font, ready to produce glyph images.
The name is reminiscend on the wooden boxes of typesetters in the
aera of metal type. An example is "Helvetica regular 16px".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

Outlines are read by golang.org/x/image/font/sfnt and rasterized with
golang.org/x/image/vector. Bitmap strikes (gray 'EBDT' and color 'CBDT')
are decoded by this package, as sfnt does not support them.

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

----------------------------------------------------------------------

BSD License

Copyright (c) 2017-21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package font

import (
	"os"
	"sync"

	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font/opentype/ot"
	"github.com/npillmayer/glyphset/core/font/opentype/otquery"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'glyphset.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphset.fonts")
}

// ScalableFont is a parsed font file.
type ScalableFont struct {
	Fontname string
	Family   string
	Filepath string     // file path
	Binary   []byte     // raw data
	OT       *ot.Font   // tables for metrics, names and bitmap strikes
	SFNT     *sfnt.Font // outlines; nil for bitmap-only fonts
}

// Descriptor describes a font family as found by a font locator.
// Variants are style/weight names, e.g. "regular" or "700italic".
type Descriptor struct {
	Family   string
	Path     string
	Variants []string
}

// LoadOpenTypeFont loads and parses a font file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	if fontfile == FallbackFontPath {
		return FallbackFont(), nil
	}
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont parses a font from its binary data.
// Fonts without outlines are accepted, as long as they have bitmap strikes.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	if f.OT, err = ot.Parse(fbytes); err != nil {
		return nil, err
	}
	names := otquery.NameInfo(f.OT)
	f.Family = names["family"]
	f.Fontname = names["fullname"]
	if f.Fontname == "" {
		f.Fontname = f.Family
	}
	if otquery.HasOutlines(f.OT) {
		if f.SFNT, err = sfnt.Parse(fbytes); err != nil {
			return nil, core.WrapError(err, core.EINVALID, "cannot parse outlines of font %s", f.Fontname)
		}
	} else if strikes, _ := otquery.BitmapStrikes(f.OT); len(strikes) == 0 {
		return nil, core.Error(core.EINVALID, "font %s has neither outlines nor bitmaps", f.Fontname)
	}
	tracer().Debugf("parsed font %s, scalable=%v", f.Fontname, f.SFNT != nil)
	return f, nil
}

// --- Fallback font ---------------------------------------------------------

// FallbackFontPath is a pseudo file path denoting the fallback font.
// LoadOpenTypeFont will not touch the file system for it.
const FallbackFontPath = "<embedded>/GoRegular.ttf"

// FallbackFontFamily is the family name of the fallback font.
const FallbackFontFamily = "Go"

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

// fallbackFont is a font that is used if everything else failes.
// Currently we use Go Sans.
var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	gofont, err := ParseOpenTypeFont(goregular.TTF)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	gofont.Filepath = FallbackFontPath
	return gofont
}
