// Package detection locates medication boxes and judges photo quality.
//
// Both analyzers run as optional ingestion stages after the brightness
// measurement. They work on the decoded pixel grid and return plain structs
// that serialize directly into the response.
//
// # Box Detection
//
// DetectBoxes separates objects from a plain background with a global
// threshold and reports the bounding box of every solid connected region.
// It is a placeholder for a trained detector: it works for a single package
// photographed on a contrasting surface and nothing more.
//
// # Sharpness
//
// Sharpness averages the Sobel gradient magnitude. Motion blur and defocus
// both lower the score, which makes it a cheap gate in front of OCR.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Performance Considerations
//
// The stages downscale large uploads before analysis (see BoxStage.MaxSize
// and SharpnessStage.MaxSize). The filters themselves come from bild, which
// spreads work across GOMAXPROCS goroutines internally.
package detection
