package resources

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/glyphset/core/font"
	"github.com/npillmayer/glyphset/core/font/fontregistry"
	"github.com/npillmayer/glyphset/core/font/opentype/ot"
	"github.com/npillmayer/glyphset/core/font/opentype/otquery"
)

// scanSystemFonts lists the fonts in the platform's font directories and
// reads their names. Fonts which cannot be parsed are skipped.
func scanSystemFonts() []font.Descriptor {
	return describeFontFiles(findfont.List())
}

func describeFontFiles(paths []string) []font.Descriptor {
	descs := make([]font.Descriptor, 0, len(paths))
	skipped := 0
	for _, path := range paths {
		if strings.HasSuffix(strings.ToLower(path), ".ttc") {
			skipped++
			continue
		}
		desc, ok := describeFontFile(path)
		if !ok {
			skipped++
			continue
		}
		descs = append(descs, desc)
	}
	tracer().Infof("found %d system fonts, skipped %d", len(descs), skipped)
	return descs
}

func describeFontFile(path string) (font.Descriptor, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		tracer().Debugf("cannot read font %s: %v", path, err)
		return font.Descriptor{}, false
	}
	otf, err := ot.Parse(data)
	if err != nil {
		tracer().Debugf("cannot parse font %s: %v", path, err)
		return font.Descriptor{}, false
	}
	names := otquery.NameInfo(otf)
	family, subfamily := names["family"], names["subfamily"]
	if family == "" { // take it from the file name
		base := filepath.Base(path)
		family, subfamily, _ = strings.Cut(strings.TrimSuffix(base, filepath.Ext(base)), "-")
	}
	return font.Descriptor{
		Family:   family,
		Path:     path,
		Variants: []string{fontregistry.NormalizeVariant(subfamily)},
	}, true
}
