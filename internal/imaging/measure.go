package imaging

import (
	"image"
	"math"
)

// BT.601 luma weights in 14-bit fixed point. They sum to 1<<lumaShift.
const (
	lumaR     = 4899
	lumaG     = 9617
	lumaB     = 1868
	lumaShift = 14
	lumaRound = 1 << (lumaShift - 1)
)

// Luma converts the grid to a single-channel 8-bit luminance image.
//
// Each output sample is computed from the R, G and B samples of the same
// pixel with the fixed ITU-R BT.601 weighting described in the package
// documentation. Alpha is ignored. The result has the same dimensions as the
// grid and its origin at (0,0).
func Luma(g *Grid) *image.Gray {
	src := g.Pix
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := dst.PixOffset(0, y)
		row := src.Pix[si : si+w*4]
		out := dst.Pix[di : di+w]
		for x := range out {
			p := row[x*4 : x*4+3 : x*4+3]
			out[x] = uint8((lumaR*uint32(p[0]) + lumaG*uint32(p[1]) + lumaB*uint32(p[2]) + lumaRound) >> lumaShift)
		}
	}

	return dst
}

// MeanBrightness returns the arithmetic mean of all samples in gray.
//
// The result is in [0, 255]. An empty image yields 0.
func MeanBrightness(gray *image.Gray) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	var sum uint64
	for y := 0; y < h; y++ {
		i := gray.PixOffset(b.Min.X, b.Min.Y+y)
		for _, v := range gray.Pix[i : i+w] {
			sum += uint64(v)
		}
	}

	return float64(sum) / float64(w*h)
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
