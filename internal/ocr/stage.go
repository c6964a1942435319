package ocr

import (
	"context"
	"image"
	"strings"

	"github.com/meditime/meditime-ai/internal/detection"
	imgutil "github.com/meditime/meditime-ai/internal/imaging"
)

// Stage runs OCR as an analysis stage.
type Stage struct {
	Options Options

	// Boxes, when set, restricts recognition to the detected package
	// regions. The whole image is read when no box is found.
	Boxes *detection.BoxStage
}

// NewStage returns a whole-image OCR stage with default options for language.
func NewStage(language string) *Stage {
	opts := DefaultOptions()
	if language != "" {
		opts.Language = language
	}
	return &Stage{Options: opts}
}

// Name implements the analysis stage contract.
func (s *Stage) Name() string { return "ocr" }

// Analyze implements the analysis stage contract.
func (s *Stage) Analyze(ctx context.Context, g *imgutil.Grid) (any, error) {
	if s.Boxes == nil {
		return ExtractText(ctx, g.Pix, s.Options)
	}

	regions, err := s.regions(ctx, g)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return ExtractText(ctx, g.Pix, s.Options)
	}

	combined := &Result{Words: []Word{}}
	var texts []string
	for _, r := range regions {
		result, err := ExtractTextFromRegion(ctx, g.Pix, r, s.Options)
		if err != nil {
			return nil, err
		}
		combined.Language = result.Language
		combined.Words = append(combined.Words, result.Words...)
		if result.FullText != "" {
			texts = append(texts, result.FullText)
		}
	}
	combined.FullText = strings.Join(texts, "\n")
	return combined, nil
}

func (s *Stage) regions(ctx context.Context, g *imgutil.Grid) ([]image.Rectangle, error) {
	out, err := s.Boxes.Analyze(ctx, g)
	if err != nil {
		return nil, err
	}

	boxes := out.(*detection.BoxesResult).Boxes
	rects := make([]image.Rectangle, 0, len(boxes))
	for _, b := range boxes {
		rects = append(rects, image.Rect(b.Bounds.X1, b.Bounds.Y1, b.Bounds.X2, b.Bounds.Y2))
	}
	return rects, nil
}
