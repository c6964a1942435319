// Package ingest turns an uploaded image into a brightness measurement.
//
// Processor.Process is the single entry point. It runs one synchronous pass:
//
//  1. Decode the bytes into a pixel grid (format sniffed from content)
//  2. Read width and height from the grid
//  3. Convert to BT.601 luma and average all samples
//  4. Round the mean to two decimals
//  5. Run any configured analysis stages
//
// A decode failure is reported as a *DecodeError and nothing else is
// returned. Decode is deterministic, so a failed input is never retried.
//
// # Analysis Stages
//
// Stages are the extension point for detection and OCR. Each stage receives
// the decoded grid after measurement and returns a JSON-serializable value
// stored under the stage name in BrightnessResult.Analysis. A failing stage
// does not fail the request; its entry carries the error message instead.
//
// # Concurrency
//
// A Processor holds only its immutable stage list. Process allocates
// everything it touches, so one Processor can serve concurrent requests.
package ingest
