package ingest

import (
	"errors"
	"fmt"

	"github.com/meditime/meditime-ai/internal/imaging"
)

// StatusOK is the status value of every successful result.
const StatusOK = "ok"

// InfoPlaceholder is the fixed info string attached to every result until
// box detection and OCR are enabled by default.
const InfoPlaceholder = "Ready for model integration (medication box detection/OCR will run here)."

// BrightnessResult is the measurement produced for one upload.
type BrightnessResult struct {
	Status         string  `json:"status"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	MeanBrightness float64 `json:"mean_brightness"`
	Info           string  `json:"info"`

	// Analysis holds stage outputs keyed by stage name. It is nil, and
	// omitted from JSON, when no stages are configured.
	Analysis map[string]any `json:"analysis,omitempty"`
}

// StageFailure is stored in BrightnessResult.Analysis in place of the output
// of a stage that returned an error.
type StageFailure struct {
	Error string `json:"error"`
}

// DecodeError reports that the uploaded bytes could not be decoded into an
// image. Detail is safe to show to clients.
type DecodeError struct {
	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return e.Detail
	}
	return decodePrefix + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

const decodePrefix = "image could not be decoded"

// newDecodeError classifies a decoder error into a client-facing detail.
func newDecodeError(err error) *DecodeError {
	detail := decodePrefix
	switch {
	case errors.Is(err, imaging.ErrEmptyInput):
		detail += ": upload is empty"
	case errors.Is(err, imaging.ErrUnknownFormat):
		detail += ": unrecognized image format"
	case errors.Is(err, imaging.ErrCorrupt):
		detail += ": corrupt or truncated image data"
	case errors.Is(err, imaging.ErrZeroSize):
		detail += ": image has no pixels"
	case errors.Is(err, imaging.ErrTooLarge):
		detail += fmt.Sprintf(": image has more than %d pixels", imaging.MaxPixels)
	}
	return &DecodeError{Detail: detail, Err: err}
}
