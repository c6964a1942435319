package detection

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/anthonynsimon/bild/blur"

	imgutil "github.com/meditime/meditime-ai/internal/imaging"
)

// createCheckerboard creates a black and white checkerboard with square cells.
func createCheckerboard(width, height, cell int) *image.RGBA {
	img := createTestImage(width, height, color.White)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestSharpness_Uniform(t *testing.T) {
	if got := Sharpness(createTestImage(50, 40, color.RGBA{90, 120, 200, 255})); got != 0 {
		t.Errorf("Sharpness of uniform image: got %v, want 0", got)
	}
}

func TestSharpness_TinyImage(t *testing.T) {
	if got := Sharpness(createCheckerboard(2, 2, 1)); got != 0 {
		t.Errorf("Sharpness of 2x2 image: got %v, want 0", got)
	}
}

func TestSharpness_BlurLowersScore(t *testing.T) {
	sharp := createCheckerboard(128, 128, 8)
	blurred := blur.Gaussian(sharp, 3)

	s1 := Sharpness(sharp)
	s2 := Sharpness(blurred)
	if s1 <= s2 {
		t.Errorf("sharp score %v should exceed blurred score %v", s1, s2)
	}
	if s1 <= 0 || s1 > 255 {
		t.Errorf("sharp score out of range: %v", s1)
	}
}

func TestSharpnessStage_Analyze(t *testing.T) {
	tests := []struct {
		name       string
		img        image.Image
		wantBlurry bool
	}{
		{"flat", createTestImage(64, 64, color.White), true},
		{"checkerboard", createCheckerboard(64, 64, 8), false},
	}

	stage := NewSharpnessStage()
	if stage.Name() != "sharpness" {
		t.Errorf("Name: got %q, want sharpness", stage.Name())
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := stage.Analyze(context.Background(), imgutil.FromImage(tt.img))
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			result, ok := out.(*SharpnessResult)
			if !ok {
				t.Fatalf("unexpected result type %T", out)
			}
			if result.Blurry != tt.wantBlurry {
				t.Errorf("Blurry: got %v (score %v), want %v", result.Blurry, result.Score, tt.wantBlurry)
			}
		})
	}
}
