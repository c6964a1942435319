package imaging

import (
	"context"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor represents a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorFrequency is a quantized color and the share of pixels that fall in it.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // "#RRGGBB" (quantized)
	Percentage float64  `json:"percentage"` // 0-100, two decimals
	RGB        RGBColor `json:"rgb"`
	HSL        HSLColor `json:"hsl"`
}

// DominantColorsResult lists colors sorted by frequency, most common first.
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// DominantColors returns up to count of the most frequent colors in img.
//
// Each RGB component is quantized to a multiple of 16 before counting, so
// colors within the same 16-wide bucket per component are grouped together:
//
//	quantized = (original / 16) * 16
//
// Ties in frequency are broken by hex value so the output is deterministic.
// Alpha is ignored. A non-positive count returns an empty result.
func DominantColors(img *image.NRGBA, count int) *DominantColorsResult {
	if count <= 0 {
		return &DominantColorsResult{Colors: []ColorFrequency{}}
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	total := w * h
	if total == 0 {
		return &DominantColorsResult{Colors: []ColorFrequency{}}
	}

	counts := make(map[uint32]int)
	for y := 0; y < h; y++ {
		i := img.PixOffset(b.Min.X, b.Min.Y+y)
		row := img.Pix[i : i+w*4]
		for x := 0; x < w; x++ {
			r := row[x*4] &^ 0x0F
			g := row[x*4+1] &^ 0x0F
			bl := row[x*4+2] &^ 0x0F
			counts[uint32(r)<<16|uint32(g)<<8|uint32(bl)]++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for key, n := range counts {
		rgb := RGBColor{R: uint8(key >> 16), G: uint8(key >> 8), B: uint8(key)}
		c := colorful.Color{R: float64(rgb.R) / 255, G: float64(rgb.G) / 255, B: float64(rgb.B) / 255}
		hue, sat, light := c.Hsl()

		colors = append(colors, ColorFrequency{
			Hex:        strings.ToUpper(c.Hex()),
			Percentage: Round2(float64(n) / float64(total) * 100),
			RGB:        rgb,
			HSL: HSLColor{
				H: int(math.Round(hue)) % 360,
				S: int(math.Round(sat * 100)),
				L: int(math.Round(light * 100)),
			},
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if len(colors) > count {
		colors = colors[:count]
	}

	return &DominantColorsResult{Colors: colors}
}

// ColorStage reports the dominant colors of an upload.
//
// Large images are first shrunk to fit within ThumbnailSize pixels on each
// side, which bounds the cost of counting without changing the palette much.
type ColorStage struct {
	Count         int
	ThumbnailSize int
}

// NewColorStage returns a ColorStage with the default palette size of 5 and
// a 256 pixel thumbnail.
func NewColorStage() *ColorStage {
	return &ColorStage{Count: 5, ThumbnailSize: 256}
}

// Name implements the analysis stage contract.
func (s *ColorStage) Name() string { return "colors" }

// Analyze implements the analysis stage contract.
func (s *ColorStage) Analyze(ctx context.Context, g *Grid) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := g.Pix
	if s.ThumbnailSize > 0 {
		img = imaging.Fit(img, s.ThumbnailSize, s.ThumbnailSize, imaging.Box)
	}

	return DominantColors(img, s.Count), nil
}
