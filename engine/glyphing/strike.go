package glyphing

import "math"

// selectStrike picks the bitmap strike to render a pixel size from. The
// strike with the smallest relative deviation from pixelSize is preferred,
// but as long as the best deviation exceeds maxdev, larger strikes win over
// smaller ones, as downsampling gives better results than upsampling.
// It returns -1 if there are no strikes.
func selectStrike(strikes []float64, pixelSize float64, maxdev float64) (best int, deviation float64) {
	best, deviation = -1, math.Inf(1)
	bestSize := 0.0
	for i, fpx := range strikes {
		var dev float64
		if fpx > pixelSize {
			dev = fpx/pixelSize - 1
		} else {
			dev = pixelSize/fpx - 1
		}
		if best < 0 || dev < deviation || (fpx > bestSize && deviation > maxdev) {
			best, deviation, bestSize = i, dev, fpx
		}
	}
	return
}
