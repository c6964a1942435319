package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/meditime/meditime-ai/internal/imaging"
)

// Stage is an optional analyzer that runs on the decoded image after the
// brightness measurement.
//
// Implementations must not modify the grid and must be safe for concurrent
// use. The returned value is serialized to JSON as-is.
type Stage interface {
	// Name is the key the stage output is stored under.
	Name() string

	// Analyze inspects the decoded image.
	Analyze(ctx context.Context, img *imaging.Grid) (any, error)
}

// Processor measures uploaded images and runs the configured stages.
type Processor struct {
	stages []Stage
	log    *zap.Logger
}

// NewProcessor creates a Processor that runs stages in the given order.
// A nil logger is replaced with a no-op logger.
func NewProcessor(log *zap.Logger, stages ...Stage) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		stages: append([]Stage(nil), stages...),
		log:    log,
	}
}

// StageNames returns the names of the configured stages in run order.
func (p *Processor) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Process decodes data and measures it.
//
// The only error returned is a *DecodeError. Stage failures are recorded in
// the result and logged, and never turn a successful measurement into an
// error.
func (p *Processor) Process(ctx context.Context, data []byte) (*BrightnessResult, error) {
	grid, err := imaging.Decode(data)
	if err != nil {
		return nil, newDecodeError(err)
	}

	result := &BrightnessResult{
		Status:         StatusOK,
		Width:          grid.Width(),
		Height:         grid.Height(),
		MeanBrightness: imaging.Round2(imaging.MeanBrightness(imaging.Luma(grid))),
		Info:           InfoPlaceholder,
	}

	if len(p.stages) == 0 {
		return result, nil
	}

	result.Analysis = make(map[string]any, len(p.stages))
	for _, s := range p.stages {
		out, err := s.Analyze(ctx, grid)
		if err != nil {
			p.log.Warn("analysis stage failed",
				zap.String("stage", s.Name()),
				zap.String("format", grid.Format),
				zap.Error(err))
			result.Analysis[s.Name()] = StageFailure{Error: err.Error()}
			continue
		}
		result.Analysis[s.Name()] = out
	}

	return result, nil
}
