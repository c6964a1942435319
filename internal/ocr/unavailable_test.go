//go:build !tesseract

package ocr

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/meditime/meditime-ai/internal/detection"
	imgutil "github.com/meditime/meditime-ai/internal/imaging"
)

func TestAvailable_WithoutTag(t *testing.T) {
	if Available() {
		t.Error("Available should be false without the tesseract tag")
	}
	if Version() != "" {
		t.Errorf("Version: got %q, want empty", Version())
	}
}

func TestExtractText_Unavailable(t *testing.T) {
	_, err := ExtractText(context.Background(), image.NewNRGBA(image.Rect(0, 0, 10, 10)), DefaultOptions())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestStage_Unavailable(t *testing.T) {
	g := imgutil.FromImage(image.NewNRGBA(image.Rect(0, 0, 32, 32)))

	for _, s := range []*Stage{NewStage("eng"), {Options: DefaultOptions(), Boxes: detection.NewBoxStage()}} {
		if _, err := s.Analyze(context.Background(), g); !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	}
}
