package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

var (
	// ErrEmptyInput is returned when Decode is given no bytes at all.
	ErrEmptyInput = errors.New("empty image data")

	// ErrUnknownFormat is returned when no registered decoder recognizes the
	// leading bytes of the input.
	ErrUnknownFormat = errors.New("unrecognized image format")

	// ErrCorrupt is returned when the format is recognized but the pixel data
	// cannot be decoded, typically because the input is truncated.
	ErrCorrupt = errors.New("corrupt or truncated image data")

	// ErrZeroSize is returned when the container declares an empty image.
	ErrZeroSize = errors.New("image has no pixels")

	// ErrTooLarge is returned when the container declares more than
	// MaxPixels pixels.
	ErrTooLarge = errors.New("image dimensions exceed the pixel limit")
)

// MaxPixels is the largest width*height Decode accepts. The check runs on the
// header alone, before any pixel buffer is allocated.
const MaxPixels = 1 << 30

// Grid is a decoded image held as an 8-bit pixel grid.
//
// Pix always has its origin at (0,0). Samples are stored in R, G, B, A order;
// measurements read R, G and B and ignore A.
type Grid struct {
	// Pix holds the decoded pixels.
	Pix *image.NRGBA

	// Format is the container format reported by the decoder that accepted
	// the input: "jpeg", "png", "gif", "bmp", "tiff" or "webp".
	Format string
}

// Width returns the grid width in pixels.
func (g *Grid) Width() int { return g.Pix.Bounds().Dx() }

// Height returns the grid height in pixels.
func (g *Grid) Height() int { return g.Pix.Bounds().Dy() }

// Decode turns an encoded image into a pixel grid.
//
// The container format is detected from the content of data. JPEG EXIF
// orientation is honored. The returned grid is owned by the caller and shares
// no memory with data.
//
// # Errors
//
//   - ErrEmptyInput if data has zero length
//   - ErrUnknownFormat if no registered decoder recognizes the data
//   - ErrCorrupt if the header is recognized but the pixels cannot be read
//   - ErrZeroSize if the image declares a zero width or height
//   - ErrTooLarge if the image declares more than MaxPixels pixels
func Decode(data []byte) (*Grid, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnknownFormat
		}
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrZeroSize
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	pix := imaging.Clone(img)
	if pix.Bounds().Empty() {
		return nil, ErrZeroSize
	}

	return &Grid{Pix: pix, Format: format}, nil
}

// FromImage wraps an already decoded image in a Grid.
//
// The pixels are copied, so later changes to img do not affect the grid.
// Format is reported as "memory".
func FromImage(img image.Image) *Grid {
	return &Grid{Pix: imaging.Clone(img), Format: "memory"}
}
