package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meditime/meditime-ai/internal/ingest"
	"github.com/meditime/meditime-ai/internal/ocr"
)

const (
	// StatusOK is the status field of every successful response.
	StatusOK = "ok"

	// StatusError is the status field of every error response.
	StatusError = "error"

	// RootMessage is the fixed body of the liveness check.
	RootMessage = "MediTime AI server is running."

	// uploadField is the preferred multipart field name for the image.
	uploadField = "file"
)

// RootResponse is the body of GET /.
type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every client or server error.
type ErrorResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string      `json:"status"`
	Stages       []StageInfo `json:"stages"`
	OCRAvailable bool        `json:"ocr_available"`
	OCRVersion   string      `json:"ocr_version,omitempty"`
}

// Handler serves the HTTP endpoints.
type Handler struct {
	proc      *ingest.Processor
	maxUpload int64
	metrics   *Metrics
	log       *zap.Logger
}

// NewHandler creates a Handler. metrics may be nil.
func NewHandler(proc *ingest.Processor, maxUpload int64, metrics *Metrics, log *zap.Logger) *Handler {
	return &Handler{
		proc:      proc,
		maxUpload: maxUpload,
		metrics:   metrics,
		log:       log,
	}
}

// Root answers the liveness check. It never touches the decoder.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, RootResponse{Status: StatusOK, Message: RootMessage})
}

// Health reports which analysis stages are configured.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       StatusOK,
		Stages:       DescribeStages(h.proc.StageNames()),
		OCRAvailable: ocr.Available(),
		OCRVersion:   ocr.Version(),
	})
}

// PredictImage measures an uploaded image.
func (h *Handler) PredictImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	data, filename, err := readUpload(c.Request)
	if err != nil {
		status, detail := http.StatusBadRequest, err.Error()
		var malformedErr *malformedError
		if errors.As(err, &malformedErr) {
			detail = "malformed multipart body"
		}
		if isTooLarge(err) {
			status = http.StatusRequestEntityTooLarge
			detail = fmt.Sprintf("upload exceeds the %d byte limit", h.maxUpload)
		}
		h.log.Info("Rejected upload",
			zap.String("request_id", requestIDFrom(c)),
			zap.Int("status", status),
			zap.Error(err))
		c.JSON(status, ErrorResponse{Status: StatusError, Detail: detail})
		return
	}

	result, err := h.proc.Process(c.Request.Context(), data)
	if err != nil {
		var decodeErr *ingest.DecodeError
		if errors.As(err, &decodeErr) {
			h.metrics.decodeFailed()
			h.log.Info("Image decode failed",
				zap.String("request_id", requestIDFrom(c)),
				zap.String("filename", filename),
				zap.Int("bytes", len(data)),
				zap.Error(decodeErr.Err))
			c.JSON(http.StatusBadRequest, ErrorResponse{Status: StatusError, Detail: decodeErr.Detail})
			return
		}

		h.log.Error("Failed to process image",
			zap.String("request_id", requestIDFrom(c)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Status: StatusError, Detail: "internal server error"})
		return
	}

	h.metrics.imageMeasured(result.MeanBrightness)
	c.JSON(http.StatusOK, result)
}

var (
	errNotMultipart = errors.New("request must be multipart/form-data")
	errMissingFile  = errors.New("no image file provided")
)

// readUpload streams the multipart body and returns the contents of the part
// named "file", or of the first file part when no such part exists.
func readUpload(r *http.Request) ([]byte, string, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", errNotMultipart
	}

	var (
		fallback     []byte
		fallbackName string
		haveFallback bool
	)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", malformed(err)
		}

		if part.FileName() == "" {
			part.Close()
			continue
		}

		if part.FormName() != uploadField && haveFallback {
			part.Close()
			continue
		}

		data, err := readPart(part)
		if err != nil {
			return nil, "", err
		}
		if part.FormName() == uploadField {
			return data, part.FileName(), nil
		}
		fallback, fallbackName, haveFallback = data, part.FileName(), true
	}

	if !haveFallback {
		return nil, "", errMissingFile
	}
	return fallback, fallbackName, nil
}

func readPart(part *multipart.Part) ([]byte, error) {
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return nil, malformed(err)
	}
	return data, nil
}

// malformedError marks a multipart body that could not be parsed. The cause
// is logged but not sent to the client.
type malformedError struct {
	err error
}

func (e *malformedError) Error() string { return "malformed multipart body: " + e.err.Error() }
func (e *malformedError) Unwrap() error { return e.err }

func malformed(err error) error {
	if isTooLarge(err) {
		return err
	}
	return &malformedError{err: err}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
