//go:build tesseract

package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// createImageWithText renders text in black on white with basicfont.
func createImageWithText(text string) *image.RGBA {
	width := len(text)*7 + 40
	height := 40

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(20), Y: fixed.I(25)},
	}
	d.DrawString(text)
	return img
}

func TestAvailable_WithTag(t *testing.T) {
	if !Available() {
		t.Error("Available should be true with the tesseract tag")
	}
	t.Logf("Tesseract version: %s", Version())
}

func TestExtractText_RealText(t *testing.T) {
	img := createImageWithText("PARACETAMOL 500")

	result, err := ExtractText(context.Background(), img, DefaultOptions())
	if err != nil {
		if strings.Contains(err.Error(), "language") {
			t.Skip("English language data not installed")
		}
		t.Fatalf("ExtractText failed: %v", err)
	}

	t.Logf("Extracted text: %q", result.FullText)
	for i, w := range result.Words {
		t.Logf("  Word %d: %q (confidence: %.2f) %+v", i, w.Text, w.Confidence, w.Bounds)
		if w.Bounds.X2 > img.Bounds().Dx()+1 || w.Bounds.Y2 > img.Bounds().Dy()+1 {
			t.Errorf("word %q bounds %+v outside the %v image", w.Text, w.Bounds, img.Bounds())
		}
	}
}

func TestExtractTextFromRegion_AdjustsBounds(t *testing.T) {
	text := createImageWithText("TABLETS")
	canvas := image.NewRGBA(image.Rect(0, 0, 400, 200))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	at := image.Pt(150, 100)
	draw.Draw(canvas, text.Bounds().Add(at), text, image.Point{}, draw.Src)

	result, err := ExtractTextFromRegion(context.Background(), canvas, text.Bounds().Add(at), DefaultOptions())
	if err != nil {
		t.Fatalf("ExtractTextFromRegion failed: %v", err)
	}

	for _, w := range result.Words {
		if w.Bounds.X1 < at.X-1 || w.Bounds.Y1 < at.Y-1 {
			t.Errorf("word %q bounds %+v not offset by region origin %v", w.Text, w.Bounds, at)
		}
	}
}
