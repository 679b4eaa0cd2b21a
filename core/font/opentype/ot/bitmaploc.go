package ot

import "fmt"

// BitmapLocTable represents an 'EBLC' or 'CBLC' table. Both share a common
// structure: a list of bitmap strikes, i.e. sets of glyph images prepared for a
// fixed pixel size, and for each strike an index into the glyph image data
// found in 'EBDT' or 'CBDT', respectively.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/eblc
// and https://docs.microsoft.com/en-us/typography/opentype/spec/cblc
type BitmapLocTable struct {
	tableBase
	Strikes []BitmapStrike
}

// BitmapStrike describes a set of glyph images for a fixed pixel size.
type BitmapStrike struct {
	PpemX, PpemY         uint8       // pixels per em
	BitDepth             uint8       // 1, 2, 4 or 8 for gray strikes, 32 for color
	StartGlyph, EndGlyph GlyphIndex  // range of glyphs covered
	Hori                 LineMetrics // horizontal line metrics
	subtables            []indexSubtable
}

// LineMetrics are the line metrics of a strike, in pixels.
type LineMetrics struct {
	Ascender, Descender int8 // descender is negative for descent below the baseline
	WidthMax            uint8
}

// GlyphMetrics are the horizontal metrics of a glyph image, in pixels.
type GlyphMetrics struct {
	Height, Width      uint8
	BearingX, BearingY int8 // offset of the left edge and top edge from the origin
	Advance            uint8
}

// GlyphLocation locates a glyph image within the bitmap data table.
type GlyphLocation struct {
	ImageFormat uint16       // image format, see the 'EBDT' specification
	Offset      uint32       // start of the image record within the data table
	Length      uint32       // length of the image record
	Metrics     GlyphMetrics // valid if HasMetrics is set
	HasMetrics  bool         // metrics are stored in the index, not with the image
}

type indexSubtable struct {
	first, last     GlyphIndex
	indexFormat     uint16
	imageFormat     uint16
	imageDataOffset uint32
	body            binarySegm // index data following the 8-byte header
}

const bitmapSizeRecordSize = 48

func parseBitmapLoc(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	t := &BitmapLocTable{tableBase: makeTableBase(tag, b, offset, size)}
	t.self = t
	numSizes, err := b.u32(4)
	if err != nil {
		return nil, errFontFormat(tag.String() + " header")
	}
	for i := 0; i < int(numSizes); i++ {
		rec, err := b.view(8+bitmapSizeRecordSize*i, bitmapSizeRecordSize)
		if err != nil {
			return nil, errFontFormat(tag.String() + " BitmapSize record")
		}
		strike := BitmapStrike{
			Hori: LineMetrics{
				Ascender:  int8(rec[16]),
				Descender: int8(rec[17]),
				WidthMax:  rec[18],
			},
			StartGlyph: GlyphIndex(u16(rec[40:])),
			EndGlyph:   GlyphIndex(u16(rec[42:])),
			PpemX:      rec[44],
			PpemY:      rec[45],
			BitDepth:   rec[46],
		}
		arrayOffset, count := int(u32(rec)), int(u32(rec[8:]))
		if strike.subtables, err = parseIndexSubtables(b, arrayOffset, count); err != nil {
			tracer().Errorf("%s strike %d: %v", tag, i, err)
			return nil, err
		}
		tracer().Debugf("%s strike %d at %dppem covers glyphs %d…%d", tag, i,
			strike.PpemY, strike.StartGlyph, strike.EndGlyph)
		t.Strikes = append(t.Strikes, strike)
	}
	return t, nil
}

// IndexSubTableArray: records of {firstGlyphIndex, lastGlyphIndex,
// additionalOffsetToIndexSubtable}, offsets relative to the array's start.
func parseIndexSubtables(b binarySegm, arrayOffset, count int) ([]indexSubtable, error) {
	array, err := b.tail(arrayOffset)
	if err != nil {
		return nil, errFontFormat("IndexSubTableArray offset")
	}
	subs := make([]indexSubtable, 0, count)
	for j := 0; j < count; j++ {
		rec, err := array.view(8*j, 8)
		if err != nil {
			return nil, errFontFormat("IndexSubTableArray record")
		}
		sub, err := array.tail(int(u32(rec[4:])))
		if err != nil || len(sub) < 8 {
			return nil, errFontFormat("IndexSubTable offset")
		}
		subs = append(subs, indexSubtable{
			first:           GlyphIndex(u16(rec)),
			last:            GlyphIndex(u16(rec[2:])),
			indexFormat:     u16(sub),
			imageFormat:     u16(sub[2:]),
			imageDataOffset: u32(sub[4:]),
			body:            sub[8:],
		})
	}
	return subs, nil
}

// Locate finds the image of glyph gid in a strike. If the strike does not
// contain an image for gid, false is returned.
func (s *BitmapStrike) Locate(gid GlyphIndex) (GlyphLocation, bool) {
	for _, sub := range s.subtables {
		if gid < sub.first || gid > sub.last {
			continue
		}
		loc, err := sub.locate(gid)
		if err != nil {
			tracer().Infof("glyph %d in strike %dppem: %v", gid, s.PpemY, err)
			return GlyphLocation{}, false
		}
		return loc, loc.Length > 0
	}
	return GlyphLocation{}, false
}

func (sub indexSubtable) locate(gid GlyphIndex) (GlyphLocation, error) {
	loc := GlyphLocation{ImageFormat: sub.imageFormat}
	inx := int(gid - sub.first)
	switch sub.indexFormat {
	case 1: // variable metrics glyphs with 4-byte offsets
		start, err1 := sub.body.u32(4 * inx)
		end, err2 := sub.body.u32(4 * (inx + 1))
		if err1 != nil || err2 != nil || end < start {
			return loc, errFontFormat("index format 1 offsets")
		}
		loc.Offset, loc.Length = sub.imageDataOffset+start, end-start
	case 2: // all glyphs have identical metrics
		imageSize, err := sub.body.u32(0)
		if err != nil {
			return loc, errFontFormat("index format 2 image size")
		}
		if loc.Metrics, err = bigMetrics(sub.body, 4); err != nil {
			return loc, err
		}
		loc.HasMetrics = true
		loc.Offset, loc.Length = sub.imageDataOffset+imageSize*uint32(inx), imageSize
	case 3: // variable metrics glyphs with 2-byte offsets
		start, err1 := sub.body.u16(2 * inx)
		end, err2 := sub.body.u16(2 * (inx + 1))
		if err1 != nil || err2 != nil || end < start {
			return loc, errFontFormat("index format 3 offsets")
		}
		loc.Offset, loc.Length = sub.imageDataOffset+uint32(start), uint32(end-start)
	case 4: // variable metrics glyphs with sparse glyph codes
		n, err := sub.body.u32(0)
		if err != nil {
			return loc, errFontFormat("index format 4 glyph count")
		}
		for k := 0; k < int(n); k++ {
			if GlyphIndex(sub.body.U16(4+4*k)) != gid {
				continue
			}
			start, end := sub.body.U16(4+4*k+2), sub.body.U16(4+4*(k+1)+2)
			if end < start {
				return loc, errFontFormat("index format 4 offsets")
			}
			loc.Offset, loc.Length = sub.imageDataOffset+uint32(start), uint32(end-start)
			return loc, nil
		}
	case 5: // constant metrics glyphs with sparse glyph codes
		imageSize, err := sub.body.u32(0)
		if err != nil {
			return loc, errFontFormat("index format 5 image size")
		}
		if loc.Metrics, err = bigMetrics(sub.body, 4); err != nil {
			return loc, err
		}
		loc.HasMetrics = true
		n := int(sub.body.U32(12))
		for k := 0; k < n; k++ {
			if GlyphIndex(sub.body.U16(16+2*k)) == gid {
				loc.Offset, loc.Length = sub.imageDataOffset+imageSize*uint32(k), imageSize
				return loc, nil
			}
		}
	default:
		return loc, errFontFormat(fmt.Sprintf("unsupported bitmap index format %d", sub.indexFormat))
	}
	return loc, nil
}

// SmallMetrics reads a SmallGlyphMetrics record (5 bytes) at offset at.
func SmallMetrics(b []byte, at int) (GlyphMetrics, error) {
	rec, err := binarySegm(b).view(at, 5)
	if err != nil {
		return GlyphMetrics{}, errFontFormat("small glyph metrics")
	}
	return GlyphMetrics{
		Height:   rec[0],
		Width:    rec[1],
		BearingX: int8(rec[2]),
		BearingY: int8(rec[3]),
		Advance:  rec[4],
	}, nil
}

// BigMetrics reads the horizontal part of a BigGlyphMetrics record (8 bytes)
// at offset at.
func BigMetrics(b []byte, at int) (GlyphMetrics, error) {
	return bigMetrics(binarySegm(b), at)
}

func bigMetrics(b binarySegm, at int) (GlyphMetrics, error) {
	if _, err := b.view(at, 8); err != nil {
		return GlyphMetrics{}, errFontFormat("big glyph metrics")
	}
	return SmallMetrics(b, at) // horizontal fields share the layout
}
