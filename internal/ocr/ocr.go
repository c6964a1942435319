package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrUnavailable is returned by every recognition call when the binary was
// built without Tesseract support.
var ErrUnavailable = errors.New("ocr: tesseract support not compiled in (build with -tags tesseract)")

// DefaultLanguage is the Tesseract language code used when none is set.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is a recognized word with its location and OCR confidence.
type Word struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this word in the analyzed image.
	Bounds Bounds `json:"bounds"`
}

// Result contains the text recognized in an image.
type Result struct {
	// FullText is all recognized text with surrounding whitespace trimmed.
	FullText string `json:"full_text"`

	// Words may be empty even when FullText is not.
	Words []Word `json:"words"`

	Language string `json:"language"`
}

// Options configures recognition.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "deu".
	// Several codes may be joined with "+".
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string

	// MinHeight is the height below which images are upscaled before
	// recognition. Zero disables upscaling.
	MinHeight int
}

// DefaultOptions returns English recognition with upscaling below 300 pixels.
func DefaultOptions() Options {
	return Options{Language: DefaultLanguage, MinHeight: 300}
}

func (o Options) languages() []string {
	if o.Language == "" {
		return []string{DefaultLanguage}
	}
	return strings.Split(o.Language, "+")
}

// ExtractText performs OCR on an entire image.
//
// Word bounds are reported in the coordinate space of img, including its
// bounds origin. An image without pixels yields an empty result.
func ExtractText(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Words: []Word{}, Language: strings.Join(opts.languages(), "+")}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return result, nil
	}

	src := image.Image(img)
	scale := 1.0
	if opts.MinHeight > 0 && b.Dy() < opts.MinHeight {
		scale = float64(opts.MinHeight) / float64(b.Dy())
		src = imaging.Resize(img, 0, opts.MinHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	text, words, err := recognize(buf.Bytes(), opts)
	if err != nil {
		return nil, err
	}

	result.FullText = strings.TrimSpace(text)
	result.Words = mapWords(words, scale, b.Min)
	return result, nil
}

// ExtractTextFromRegion performs OCR on the part of img inside r.
//
// r is clipped to the image. Word bounds are adjusted to the coordinates of
// img, not of the cropped region.
func ExtractTextFromRegion(ctx context.Context, img image.Image, r image.Rectangle, opts Options) (*Result, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return ExtractText(ctx, image.NewNRGBA(image.Rectangle{}), opts)
	}

	cropped := imaging.Crop(img, r)
	result, err := ExtractText(ctx, cropped, opts)
	if err != nil {
		return nil, err
	}

	for i := range result.Words {
		result.Words[i].Bounds = offset(result.Words[i].Bounds, r.Min)
	}
	return result, nil
}

// mapWords divides word bounds by scale, expanding them outward to whole
// pixels, then shifts them by origin. Empty words are dropped.
func mapWords(words []Word, scale float64, origin image.Point) []Word {
	out := make([]Word, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		if scale != 1 {
			w.Bounds = Bounds{
				X1: int(math.Floor(float64(w.Bounds.X1) / scale)),
				Y1: int(math.Floor(float64(w.Bounds.Y1) / scale)),
				X2: int(math.Ceil(float64(w.Bounds.X2) / scale)),
				Y2: int(math.Ceil(float64(w.Bounds.Y2) / scale)),
			}
		}
		w.Bounds = offset(w.Bounds, origin)
		out = append(out, w)
	}
	return out
}

func offset(b Bounds, p image.Point) Bounds {
	return Bounds{X1: b.X1 + p.X, Y1: b.Y1 + p.Y, X2: b.X2 + p.X, Y2: b.Y2 + p.Y}
}
