/*
Package boxfilter resamples glyph bitmaps taken from fixed-size strikes to a
requested target size.

Every target pixel is computed from a small, center-weighted neighbourhood of
the source pixel it maps to. The neighbourhood size depends on the scale
factor (source size / target size): no filtering for a scale of 1, a 5×5
kernel for scales above 4 and a 3×3 kernel otherwise. Taps outside the source
bitmap are clamped to the nearest edge pixel.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package boxfilter

// Kernel is a square, normalized filter kernel.
type Kernel struct {
	Size    int     // 1, 3 or 5
	Weights []uint8 // Size×Size weights, row major
}

var (
	identity = Kernel{Size: 1, Weights: []uint8{1}}
	m3x3     = Kernel{Size: 3, Weights: []uint8{
		1, 2, 1,
		2, 3, 2,
		1, 2, 1,
	}}
	m5x5 = Kernel{Size: 5, Weights: []uint8{
		1, 2, 2, 2, 1,
		2, 2, 3, 2, 2,
		2, 3, 4, 3, 2,
		2, 2, 3, 2, 2,
		1, 2, 2, 2, 1,
	}}
)

// Select returns the kernel for a scale factor of source size / target size.
func Select(scale float64) Kernel {
	switch {
	case scale == 1:
		return identity
	case scale > 4:
		return m5x5
	}
	return m3x3
}

// Bitmap is a rectangle of pixels with Channels bytes per pixel.
// Rows are Stride bytes apart.
type Bitmap struct {
	Pix      []byte
	Width    int
	Height   int
	Stride   int
	Channels int
}

// Stride returns the row stride for a row of width pixels of bpp bytes each,
// rounded up to a multiple of 4.
func Stride(width, bpp int) int {
	return (width*bpp + 3) &^ 3
}

// New allocates a zeroed bitmap with a padded stride.
func New(width, height, channels int) Bitmap {
	stride := Stride(width, channels)
	return Bitmap{
		Pix:      make([]byte, stride*height),
		Width:    width,
		Height:   height,
		Stride:   stride,
		Channels: channels,
	}
}

func (b Bitmap) fetch(x, y, c int) uint8 {
	if x < 0 {
		x = 0
	}
	if x >= b.Width {
		x = b.Width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= b.Height {
		y = b.Height - 1
	}
	return b.Pix[b.Stride*y+b.Channels*x+c]
}

// Apply computes the filtered value of channel c of src around (x, y).
func (k Kernel) Apply(src Bitmap, x, y, c int) uint8 {
	var num, den uint32
	off := k.Size / 2
	for my := 0; my < k.Size; my++ {
		for mx := 0; mx < k.Size; mx++ {
			mv := uint32(k.Weights[k.Size*my+mx])
			den += mv
			num += mv * uint32(src.fetch(x+mx-off, y+my-off, c))
		}
	}
	return uint8((num + den/2) / den)
}

// sourcePos maps a target coordinate to the source coordinate at the center
// of its footprint.
func sourcePos(scale float64, v int) int {
	return int(uint(scale*float64(v) + scale/2))
}

// Gray resamples channel 0 of src into the single-channel bitmap dst.
// scale is source size / target size.
func Gray(dst, src Bitmap, scale float64) {
	if src.Width == 0 || src.Height == 0 {
		return
	}
	k := Select(scale)
	for y := 0; y < dst.Height; y++ {
		row := dst.Pix[y*dst.Stride:]
		sy := sourcePos(scale, y)
		for x := 0; x < dst.Width; x++ {
			row[x] = k.Apply(src, sourcePos(scale, x), sy, 0)
		}
	}
}

// Color resamples the 4-channel (BGRA) bitmap src into dst. The filtered
// alpha channel is written to the single-channel bitmap mask, while the alpha
// of dst is set to fully opaque.
func Color(dst, mask, src Bitmap, scale float64) {
	if src.Width == 0 || src.Height == 0 {
		return
	}
	k := Select(scale)
	for y := 0; y < dst.Height; y++ {
		row := dst.Pix[y*dst.Stride:]
		mrow := mask.Pix[y*mask.Stride:]
		sy := sourcePos(scale, y)
		for x := 0; x < dst.Width; x++ {
			sx := sourcePos(scale, x)
			for c := 0; c < 4; c++ {
				row[x*4+c] = k.Apply(src, sx, sy, c)
			}
			mrow[x] = row[x*4+3]
			row[x*4+3] = 0xff
		}
	}
}

// Copy copies the rows of src to dst without filtering. Both bitmaps must
// have the same number of channels.
func Copy(dst, src Bitmap) {
	n := dst.Width * dst.Channels
	if m := src.Width * src.Channels; m < n {
		n = m
	}
	for y := 0; y < dst.Height && y < src.Height; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+n], src.Pix[y*src.Stride:])
	}
}
