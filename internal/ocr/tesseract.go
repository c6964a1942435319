//go:build tesseract

package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Available reports whether Tesseract support is compiled in.
func Available() bool { return true }

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// recognize runs Tesseract on an encoded image and returns the full text and
// word boxes in the image's own pixel coordinates.
func recognize(data []byte, opts Options) (string, []Word, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			return "", nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}

	if err := client.SetLanguage(opts.languages()...); err != nil {
		return "", nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return "", nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Return just text if boxes fail
		return text, nil, nil
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, Word{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return text, words, nil
}
