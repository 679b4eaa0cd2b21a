package font

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"

	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font/opentype/ot"
)

// loadStrikeGlyph decodes the image of glyph gid from the selected strike.
//
// Supported image formats (see the 'EBDT' and 'CBDT' specifications):
//
//	1   small metrics, byte-aligned gray
//	2   small metrics, bit-aligned gray
//	5   metrics in the index, bit-aligned gray
//	6   big metrics, byte-aligned gray
//	7   big metrics, bit-aligned gray
//	17  small metrics, PNG
//	18  big metrics, PNG
//	19  metrics in the index, PNG
func (tc *TypeCase) loadStrikeGlyph(gid uint32) (Bitmap, error) {
	s := &tc.strikes[tc.strike]
	loc, ok := s.Locate(ot.GlyphIndex(gid))
	if !ok {
		return Bitmap{}, core.Error(core.EMISSING, "glyph %d not present in strike %dppem", gid, s.PpemY)
	}
	end := uint64(loc.Offset) + uint64(loc.Length)
	if end > uint64(len(tc.strikeData)) {
		return Bitmap{}, core.Error(core.EINVALID, "image of glyph %d exceeds bitmap data", gid)
	}
	rec := tc.strikeData[loc.Offset:end]
	var m ot.GlyphMetrics
	var err error
	var data []byte
	switch loc.ImageFormat {
	case 1, 2, 17:
		m, err = ot.SmallMetrics(rec, 0)
		data = tail(rec, 5)
	case 6, 7, 18:
		m, err = ot.BigMetrics(rec, 0)
		data = tail(rec, 8)
	case 5, 19:
		m, data = loc.Metrics, rec
	default:
		return Bitmap{}, core.Error(core.EINVALID, "unsupported bitmap image format %d", loc.ImageFormat)
	}
	if err != nil {
		return Bitmap{}, err
	}
	bm := Bitmap{
		Left:  int(m.BearingX),
		Top:   int(m.BearingY),
		Width: int(m.Width),
		Rows:  int(m.Height),
	}
	switch loc.ImageFormat {
	case 1, 6:
		err = decodeGray(&bm, data, int(s.BitDepth), true)
	case 2, 5, 7:
		err = decodeGray(&bm, data, int(s.BitDepth), false)
	default:
		err = decodePNG(&bm, data)
	}
	return bm, err
}

func tail(b []byte, n int) []byte {
	if len(b) < n {
		return nil
	}
	return b[n:]
}

// decodeGray expands a gray image of 1, 2, 4 or 8 bits per pixel into one
// byte per pixel. Byte-aligned images start every row on a byte boundary,
// bit-aligned images are a continuous stream of bits.
func decodeGray(bm *Bitmap, data []byte, depth int, byteAligned bool) error {
	switch depth {
	case 1, 2, 4, 8:
	default:
		return core.Error(core.EINVALID, "unsupported bit depth %d of gray strike", depth)
	}
	bm.Mode = PixelModeGray
	bm.Pitch = bm.Width
	bm.Buffer = make([]byte, bm.Width*bm.Rows)
	rowBits := bm.Width * depth
	if byteAligned {
		rowBits = (rowBits + 7) &^ 7
	}
	if need := (rowBits*bm.Rows + 7) / 8; len(data) < need {
		return core.Error(core.EINVALID, "gray image needs %d bytes, has %d", need, len(data))
	}
	maxval := 1<<depth - 1
	for y := 0; y < bm.Rows; y++ {
		bit := y * rowBits
		for x := 0; x < bm.Width; x++ {
			b := data[bit>>3]
			shift := 8 - depth - bit&7
			v := int(b>>shift) & maxval
			bm.Buffer[y*bm.Pitch+x] = byte(v * 255 / maxval)
			bit += depth
		}
	}
	return nil
}

// decodePNG decodes a color glyph image, preceded by its length, into
// premultiplied BGRA.
func decodePNG(bm *Bitmap, data []byte) error {
	if len(data) < 4 {
		return core.Error(core.EINVALID, "PNG glyph image too short")
	}
	n := int(uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3]))
	if n > len(data)-4 {
		return core.Error(core.EINVALID, "PNG glyph image truncated")
	}
	img, err := png.Decode(bytes.NewReader(data[4 : 4+n]))
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot decode PNG glyph image")
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	for i := 0; i+3 < len(rgba.Pix); i += 4 {
		rgba.Pix[i], rgba.Pix[i+2] = rgba.Pix[i+2], rgba.Pix[i]
	}
	bm.Mode = PixelModeBGRA
	bm.Width, bm.Rows = b.Dx(), b.Dy()
	bm.Pitch = rgba.Stride
	bm.Buffer = rgba.Pix
	return nil
}
