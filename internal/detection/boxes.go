package detection

import (
	"context"
	"image"
	"image/draw"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	imgutil "github.com/meditime/meditime-ai/internal/imaging"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive).
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Box is a candidate box-shaped object found in an image.
type Box struct {
	// Bounds is the bounding box in the coordinates of the analyzed image.
	Bounds Bounds `json:"bounds"`

	Width  int `json:"width"`
	Height int `json:"height"`
	Area   int `json:"area"`

	// Fill is the fraction of the bounding box covered by the object's
	// pixels. A solid axis-aligned box scores close to 1.0.
	Fill float64 `json:"fill"`
}

// BoxesResult contains all box candidates, largest first.
type BoxesResult struct {
	Boxes []Box `json:"boxes"`
	Count int   `json:"count"`

	// Threshold is the gray level used to separate objects from background.
	Threshold uint8 `json:"threshold"`
}

// BoxOptions tunes DetectBoxes.
type BoxOptions struct {
	// BlurRadius is the Gaussian blur radius applied before thresholding.
	// Zero disables blurring.
	BlurRadius float64

	// MinAreaFraction and MaxAreaFraction bound a candidate's bounding box
	// area relative to the whole image.
	MinAreaFraction float64
	MaxAreaFraction float64

	// MinFill is the lowest Fill a candidate may have.
	MinFill float64

	// MaxBoxes caps the number of results. Zero means no cap.
	MaxBoxes int
}

// DefaultBoxOptions returns options suited to a photo of a single package
// on a plain background.
func DefaultBoxOptions() BoxOptions {
	return BoxOptions{
		BlurRadius:      1.0,
		MinAreaFraction: 0.01,
		MaxAreaFraction: 0.95,
		MinFill:         0.6,
		MaxBoxes:        10,
	}
}

// DetectBoxes finds solid, roughly rectangular objects that stand out from
// the background.
//
// # Algorithm
//
//  1. Grayscale conversion and optional Gaussian blur (bild)
//  2. Global threshold at the mean gray level (bild segment.Threshold)
//  3. Foreground polarity: if the unblurred image border is mostly at or
//     above the threshold the objects are dark, otherwise they are light
//  4. 8-connected component labeling of object pixels
//  5. Filtering by bounding box area and fill ratio
//
// Only axis-aligned bounding boxes are reported. Objects touching each other
// merge into one component.
func DetectBoxes(img image.Image, opts BoxOptions) *BoxesResult {
	gray := asGray(effect.Grayscale(img))
	smooth := gray
	if opts.BlurRadius > 0 {
		smooth = asGray(effect.Grayscale(blur.Gaussian(gray, opts.BlurRadius)))
	}

	level := meanLevel(smooth)
	bin := segment.Threshold(smooth, level)

	b := bin.Bounds()
	w, h := b.Dx(), b.Dy()
	result := &BoxesResult{Boxes: []Box{}, Threshold: level}
	if w == 0 || h == 0 {
		return result
	}

	fg := foreground(gray, level)
	total := float64(w * h)
	for _, c := range components(bin, fg) {
		area := c.bounds.width() * c.bounds.height()
		frac := float64(area) / total
		if frac < opts.MinAreaFraction || frac > opts.MaxAreaFraction {
			continue
		}
		fill := float64(c.pixels) / float64(area)
		if fill < opts.MinFill {
			continue
		}
		result.Boxes = append(result.Boxes, Box{
			Bounds: Bounds{
				X1: c.bounds.X1 + b.Min.X,
				Y1: c.bounds.Y1 + b.Min.Y,
				X2: c.bounds.X2 + b.Min.X,
				Y2: c.bounds.Y2 + b.Min.Y,
			},
			Width:  c.bounds.width(),
			Height: c.bounds.height(),
			Area:   area,
			Fill:   math.Round(fill*1000) / 1000,
		})
	}

	sort.Slice(result.Boxes, func(i, j int) bool {
		bi, bj := result.Boxes[i], result.Boxes[j]
		if bi.Area != bj.Area {
			return bi.Area > bj.Area
		}
		if bi.Bounds.Y1 != bj.Bounds.Y1 {
			return bi.Bounds.Y1 < bj.Bounds.Y1
		}
		return bi.Bounds.X1 < bj.Bounds.X1
	})

	if opts.MaxBoxes > 0 && len(result.Boxes) > opts.MaxBoxes {
		result.Boxes = result.Boxes[:opts.MaxBoxes]
	}
	result.Count = len(result.Boxes)

	return result
}

func (b Bounds) width() int  { return b.X2 - b.X1 }
func (b Bounds) height() int { return b.Y2 - b.Y1 }

// asGray copies a bild grayscale result (R == G == B) into an *image.Gray.
func asGray(img *image.RGBA) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray
}

// meanLevel returns the rounded mean gray level, at least 1 so that a black
// image does not threshold to all-white objects.
func meanLevel(gray *image.Gray) uint8 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 1
	}

	var sum uint64
	for y := 0; y < h; y++ {
		i := gray.PixOffset(b.Min.X, b.Min.Y+y)
		for _, v := range gray.Pix[i : i+w] {
			sum += uint64(v)
		}
	}

	level := math.Round(float64(sum) / float64(w*h))
	if level < 1 {
		return 1
	}
	return uint8(level)
}

// foreground picks the object value of the thresholded image. The border of
// the unblurred gray image is taken as background: when most border pixels
// are at or above level, objects are the dark (0) pixels. Ties favor dark
// objects.
func foreground(gray *image.Gray, level uint8) uint8 {
	b := gray.Bounds()
	var light, border int
	count := func(x, y int) {
		border++
		if gray.GrayAt(x, y).Y >= level {
			light++
		}
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		count(x, b.Min.Y)
		if b.Dy() > 1 {
			count(x, b.Max.Y-1)
		}
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		count(b.Min.X, y)
		if b.Dx() > 1 {
			count(b.Max.X-1, y)
		}
	}

	if light*2 >= border {
		return 0
	}
	return 255
}

type component struct {
	bounds Bounds
	pixels int
}

// components labels 8-connected regions whose value equals fg.
// Bounds are relative to the image origin.
func components(bin *image.Gray, fg uint8) []component {
	b := bin.Bounds()
	w, h := b.Dx(), b.Dy()
	at := func(x, y int) uint8 { return bin.Pix[bin.PixOffset(b.Min.X+x, b.Min.Y+y)] }

	visited := make([]bool, w*h)
	var out []component
	var stack []int

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			if visited[sy*w+sx] || at(sx, sy) != fg {
				continue
			}

			c := component{bounds: Bounds{X1: sx, Y1: sy, X2: sx + 1, Y2: sy + 1}}
			visited[sy*w+sx] = true
			stack = append(stack[:0], sy*w+sx)

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				x, y := p%w, p/w
				c.pixels++
				c.bounds.X1 = min(c.bounds.X1, x)
				c.bounds.Y1 = min(c.bounds.Y1, y)
				c.bounds.X2 = max(c.bounds.X2, x+1)
				c.bounds.Y2 = max(c.bounds.Y2, y+1)

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := x+dx, y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						n := ny*w + nx
						if visited[n] || at(nx, ny) != fg {
							continue
						}
						visited[n] = true
						stack = append(stack, n)
					}
				}
			}

			out = append(out, c)
		}
	}

	return out
}

// BoxStage runs DetectBoxes as an analysis stage.
//
// Images larger than MaxSize on either side are analyzed on a downscaled copy
// and the boxes are mapped back to full-resolution coordinates.
type BoxStage struct {
	Options BoxOptions
	MaxSize int
}

// NewBoxStage returns a BoxStage with default options and a 512 pixel
// working size.
func NewBoxStage() *BoxStage {
	return &BoxStage{Options: DefaultBoxOptions(), MaxSize: 512}
}

// Name implements the analysis stage contract.
func (s *BoxStage) Name() string { return "boxes" }

// Analyze implements the analysis stage contract.
func (s *BoxStage) Analyze(ctx context.Context, g *imgutil.Grid) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := g.Pix
	work := src
	if s.MaxSize > 0 {
		work = imaging.Fit(src, s.MaxSize, s.MaxSize, imaging.Linear)
	}

	result := DetectBoxes(work, s.Options)

	sx := float64(src.Bounds().Dx()) / float64(work.Bounds().Dx())
	sy := float64(src.Bounds().Dy()) / float64(work.Bounds().Dy())
	if sx != 1 || sy != 1 {
		for i := range result.Boxes {
			box := &result.Boxes[i]
			box.Bounds = Bounds{
				X1: int(math.Floor(float64(box.Bounds.X1) * sx)),
				Y1: int(math.Floor(float64(box.Bounds.Y1) * sy)),
				X2: min(src.Bounds().Dx(), int(math.Ceil(float64(box.Bounds.X2)*sx))),
				Y2: min(src.Bounds().Dy(), int(math.Ceil(float64(box.Bounds.Y2)*sy))),
			}
			box.Width = box.Bounds.width()
			box.Height = box.Bounds.height()
			box.Area = box.Width * box.Height
		}
	}

	return result, nil
}
