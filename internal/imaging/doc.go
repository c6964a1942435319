// Package imaging provides the pixel-level operations behind the ingestion
// pipeline: decoding uploaded bytes into a pixel grid, converting that grid to
// luma, averaging brightness, and summarizing colors.
//
// All operations work on in-memory data. Nothing in this package touches the
// filesystem or keeps state between calls, so every function is safe for
// concurrent use on distinct inputs.
//
// # Pixel Grid
//
// A decoded upload is represented by Grid. The grid always holds an
// *image.NRGBA with its origin at (0,0), X increasing rightward and Y
// increasing downward. Samples are 8-bit and stored in R, G, B order. The
// alpha channel is carried along but ignored by every measurement, which
// makes the grid behave as a 3-channel color image.
//
// # Format Detection
//
// Decode sniffs the container format from the leading bytes of the input.
// File names and extensions are never consulted. Registered formats:
//   - jpeg, png, gif (standard library)
//   - bmp, tiff, webp (golang.org/x/image)
//
// JPEG EXIF orientation is applied during decode, so Width and Height reflect
// the image as it is meant to be displayed.
//
// # Luma
//
// Luma uses the ITU-R BT.601 weights (0.299, 0.587, 0.114) in 14-bit fixed
// point:
//
//	Y = (4899*R + 9617*G + 1868*B + 8192) >> 14
//
// The weights sum to 1<<14, so black maps to 0 and white maps to exactly 255.
//
// # Error Handling
//
// Decode reports failures with the sentinel errors ErrEmptyInput,
// ErrUnknownFormat, ErrCorrupt, ErrZeroSize and ErrTooLarge. ErrCorrupt also
// wraps the decoder's own error. Use errors.Is to classify them.
//
// # Decompression Bombs
//
// A few hundred bytes of PNG can declare billions of pixels. Decode reads the
// header first and rejects anything above MaxPixels (2^30) before the pixel
// data is touched.
package imaging
