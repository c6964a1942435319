// Package ocr reads printed text from medication packaging using Tesseract.
//
// The engine is reached through gosseract/v2, which links against
// libtesseract with cgo. Because most deployments of the brightness service do
// not need OCR, the binding is only compiled with the "tesseract" build tag:
//
//	go build -tags tesseract ./cmd/meditime-ai
//
// Without the tag every recognition call fails with ErrUnavailable and
// Available reports false. The rest of the package (coordinate mapping, the
// analysis stage) is always built.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the build host and
// the server:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A non-standard tessdata directory can be selected with
// Options.TessdataPrefix.
//
// # Small Text
//
// Tesseract works best when capital letters are at least 20 pixels tall.
// ExtractText upscales images shorter than Options.MinHeight with a Lanczos
// filter before recognition and maps word boxes back to the caller's
// coordinates.
//
// # Error Handling
//
// If word-level bounding box extraction fails, ExtractText still returns the
// recognized text with an empty Words slice.
package ocr
