package detection

import (
	"context"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	imgutil "github.com/meditime/meditime-ai/internal/imaging"
)

// SharpnessResult reports how much fine detail an image contains.
type SharpnessResult struct {
	// Score is the mean Sobel gradient magnitude over the image interior,
	// from 0 (flat) to 255.
	Score float64 `json:"score"`

	// Blurry is true when Score falls below the stage threshold.
	Blurry bool `json:"blurry"`
}

// Sharpness returns the mean Sobel gradient magnitude of img.
//
// The outermost row and column on each side are excluded so that padding at
// the image edge does not count as detail. Images smaller than 3x3 score 0.
func Sharpness(img image.Image) float64 {
	edges := effect.Sobel(effect.Grayscale(img))

	b := edges.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	var sum uint64
	for y := 1; y < h-1; y++ {
		i := edges.PixOffset(b.Min.X+1, b.Min.Y+y)
		row := edges.Pix[i : i+(w-2)*4]
		for x := 0; x < len(row); x += 4 {
			sum += uint64(row[x])
		}
	}

	return float64(sum) / float64((w-2)*(h-2))
}

// SharpnessStage scores image detail so that blurry photos can be rejected
// before OCR.
type SharpnessStage struct {
	// BlurThreshold is the score below which an image is reported blurry.
	BlurThreshold float64

	// MaxSize bounds the working resolution. Scores are only comparable
	// between images analyzed at the same working size.
	MaxSize int
}

// NewSharpnessStage returns a SharpnessStage with a threshold of 8 and a
// 1024 pixel working size.
func NewSharpnessStage() *SharpnessStage {
	return &SharpnessStage{BlurThreshold: 8, MaxSize: 1024}
}

// Name implements the analysis stage contract.
func (s *SharpnessStage) Name() string { return "sharpness" }

// Analyze implements the analysis stage contract.
func (s *SharpnessStage) Analyze(ctx context.Context, g *imgutil.Grid) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := g.Pix
	if s.MaxSize > 0 {
		img = imaging.Fit(img, s.MaxSize, s.MaxSize, imaging.Linear)
	}

	score := imgutil.Round2(Sharpness(img))
	return &SharpnessResult{Score: score, Blurry: score < s.BlurThreshold}, nil
}
