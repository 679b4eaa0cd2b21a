package font

import "golang.org/x/image/math/fixed"

// Fixed16 is a signed 16.16 fixed-point number.
type Fixed16 int32

// Fixed16FromFloat converts a float to 16.16, truncating.
func Fixed16FromFloat(x float64) Fixed16 {
	return Fixed16(x * 65536)
}

// Float returns f as a float64.
func (f Fixed16) Float() float64 {
	return float64(f) / 65536
}

// MulFix computes a*b/0x10000 with rounding. It is used to convert font
// units to 26.6 pixel values, given a scale factor of a sized font.
func MulFix(a int32, b Fixed16) fixed.Int26_6 {
	p := int64(a) * int64(b)
	if p < 0 {
		return -fixed.Int26_6((-p + 0x8000) >> 16)
	}
	return fixed.Int26_6((p + 0x8000) >> 16)
}

// scaleOf computes the factor to get from font units to 26.6 pixels.
func scaleOf(ppem fixed.Int26_6, upem uint16) Fixed16 {
	if upem == 0 {
		return 0
	}
	return Fixed16((int64(ppem) << 16) / int64(upem))
}
