//go:build !tesseract

package ocr

// Available reports whether Tesseract support is compiled in.
func Available() bool { return false }

// Version returns an empty string when Tesseract support is not compiled in.
func Version() string { return "" }

func recognize([]byte, Options) (string, []Word, error) {
	return "", nil, ErrUnavailable
}
