package fontregistry

import (
	"path"
	"strconv"
	"strings"

	"github.com/npillmayer/glyphset/core/font"
	xfont "golang.org/x/image/font"
)

// MatchConfidence is a type for expressing the confidence level of font matching.
type MatchConfidence int

const (
	NoConfidence      MatchConfidence = 0
	LowConfidence     MatchConfidence = 2
	HighConfidence    MatchConfidence = 3
	PerfectConfidence MatchConfidence = 4
)

// NormalizeVariant turns a sub-family name as found in font files or
// fontconfig listings into a variant name, e.g. "Bold Italic" → "bolditalic".
// An empty sub-family is considered "regular".
func NormalizeVariant(subfamily string) string {
	v := strings.ToLower(subfamily)
	v = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(v)
	if v == "" {
		return "regular"
	}
	return v
}

// GuessStyleAndWeight trys to guess a font's style and weight from the
// font's file name or from a variant name.
func GuessStyleAndWeight(fontfilename string) (xfont.Style, xfont.Weight) {
	fontfilename = path.Base(fontfilename)
	ext := path.Ext(fontfilename)
	fontfilename = strings.ToLower(fontfilename[:len(fontfilename)-len(ext)])
	style, weight := xfont.StyleNormal, xfont.WeightNormal
	if strings.Contains(fontfilename, "italic") {
		style = xfont.StyleItalic
	} else if strings.Contains(fontfilename, "oblique") {
		style = xfont.StyleOblique
	}
	s := strings.Split(fontfilename, "-")
	if len(s) > 1 {
		switch s[len(s)-1] {
		case "light", "xlight":
			return style, xfont.WeightLight
		case "normal", "medium", "regular", "r":
			return style, xfont.WeightNormal
		case "bold", "b":
			return style, xfont.WeightBold
		case "xbold", "black":
			return style, xfont.WeightExtraBold
		}
	}
	switch {
	case strings.Contains(fontfilename, "extrabold"), strings.Contains(fontfilename, "black"):
		weight = xfont.WeightExtraBold
	case strings.Contains(fontfilename, "semibold"):
		weight = xfont.WeightSemiBold
	case strings.Contains(fontfilename, "bold"):
		weight = xfont.WeightBold
	case strings.Contains(fontfilename, "light"):
		weight = xfont.WeightLight
	}
	return style, weight
}

// Matches returns true if a font's filename contains pattern and indicators
// for a given style and weight.
func Matches(fontfilename, pattern string, style xfont.Style, weight xfont.Weight) bool {
	basename := path.Base(fontfilename)
	basename = basename[:len(basename)-len(path.Ext(basename))]
	basename = strings.ToLower(basename)
	if !strings.Contains(basename, strings.ToLower(pattern)) {
		return false
	}
	s, w := GuessStyleAndWeight(basename)
	return s == style && w == weight
}

// ClosestMatch scans a list of font desriptors for a family (compared
// case-insensitively) and returns the variant matching style and weight best.
// If no variant matches, returns `NoConfidence`.
func ClosestMatch(fdescs []font.Descriptor, family string, style xfont.Style,
	weight xfont.Weight) (match font.Descriptor, variant string, confidence MatchConfidence) {
	//
	best := NoConfidence
	for _, fdesc := range fdescs {
		if !strings.EqualFold(fdesc.Family, family) {
			continue
		}
		for _, v := range fdesc.Variants {
			s := MatchStyle(v, style)
			w := MatchWeight(v, weight)
			if s == NoConfidence || w == NoConfidence {
				continue
			}
			if s+w > best {
				best = s + w
				variant = v
				match = fdesc
			}
		}
	}
	confidence = best / 2
	return
}

// ---------------------------------------------------------------------------

// MatchStyle trys to match a font-variant to a given style.
func MatchStyle(variantName string, style xfont.Style) MatchConfidence {
	variantName = strings.ToLower(variantName)
	italic := strings.Contains(variantName, "italic")
	oblique := strings.Contains(variantName, "obliq")
	switch style {
	case xfont.StyleNormal:
		if italic || oblique {
			return NoConfidence
		}
		return PerfectConfidence
	case xfont.StyleItalic:
		if italic {
			return PerfectConfidence
		}
		if oblique {
			return HighConfidence
		}
		return LowConfidence
	case xfont.StyleOblique:
		if oblique {
			return PerfectConfidence
		}
		if italic {
			return HighConfidence
		}
		return LowConfidence
	}
	return NoConfidence
}

// MatchWeight trys to match a font-variant to a given weight.
func MatchWeight(variantName string, weight xfont.Weight) MatchConfidence {
	/* from https://pkg.go.dev/golang.org/x/image/font
	WeightThin       Weight = -3 // CSS font-weight value 100.
	WeightExtraLight Weight = -2 // CSS font-weight value 200.
	WeightLight      Weight = -1 // CSS font-weight value 300.
	WeightNormal     Weight = +0 // CSS font-weight value 400.
	WeightMedium     Weight = +1 // CSS font-weight value 500.
	WeightSemiBold   Weight = +2 // CSS font-weight value 600.
	WeightBold       Weight = +3 // CSS font-weight value 700.
	WeightExtraBold  Weight = +4 // CSS font-weight value 800.
	WeightBlack      Weight = +5 // CSS font-weight value 900.
	*/
	variantName = strings.ToLower(variantName)
	variantName = strings.NewReplacer("italic", "", "oblique", "").Replace(variantName)
	if variantName == "" {
		variantName = "regular"
	}
	if strconv.Itoa((int(weight)+4)*100) == variantName {
		return PerfectConfidence
	}
	switch variantName {
	case "regular", "400", "normal", "book", "roman", "text":
		switch weight {
		case xfont.WeightNormal:
			return PerfectConfidence
		case xfont.WeightMedium:
			return HighConfidence
		}
		return LowConfidence
	case "thin", "extralight", "light", "100", "200", "300":
		switch weight {
		case xfont.WeightThin, xfont.WeightExtraLight, xfont.WeightLight:
			return PerfectConfidence
		case xfont.WeightNormal, xfont.WeightMedium:
			return LowConfidence
		}
		return NoConfidence
	case "medium", "500":
		switch weight {
		case xfont.WeightMedium:
			return PerfectConfidence
		case xfont.WeightSemiBold:
			return HighConfidence
		case xfont.WeightNormal, xfont.WeightBold:
			return LowConfidence
		}
		return NoConfidence
	case "bold", "700":
		switch weight {
		case xfont.WeightBold:
			return PerfectConfidence
		case xfont.WeightSemiBold, xfont.WeightExtraBold:
			return HighConfidence
		}
		return LowConfidence
	case "semibold", "extrabold", "black", "600", "800", "900":
		switch weight {
		case xfont.WeightSemiBold, xfont.WeightExtraBold, xfont.WeightBlack:
			return HighConfidence
		case xfont.WeightBold:
			return HighConfidence
		}
		return LowConfidence
	}
	return LowConfidence
}
