package server

import (
	"fmt"

	"github.com/meditime/meditime-ai/internal/config"
	"github.com/meditime/meditime-ai/internal/detection"
	"github.com/meditime/meditime-ai/internal/imaging"
	"github.com/meditime/meditime-ai/internal/ingest"
	"github.com/meditime/meditime-ai/internal/ocr"
)

// StageInfo describes an analysis stage.
type StageInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type stageDefinition struct {
	StageInfo
	build func(cfg config.AnalysisConfig) ingest.Stage
}

var stageDefinitions = []stageDefinition{
	{
		StageInfo: StageInfo{
			Name:        config.StageColors,
			Description: "Dominant colors of a thumbnail, quantized to 16 levels per channel, with hex, RGB, HSL and coverage.",
		},
		build: func(config.AnalysisConfig) ingest.Stage { return imaging.NewColorStage() },
	},
	{
		StageInfo: StageInfo{
			Name:        config.StageBoxes,
			Description: "Bounding boxes of solid objects that stand out from a plain background.",
		},
		build: func(config.AnalysisConfig) ingest.Stage { return detection.NewBoxStage() },
	},
	{
		StageInfo: StageInfo{
			Name:        config.StageSharpness,
			Description: "Mean Sobel gradient magnitude and a blurry flag.",
		},
		build: func(config.AnalysisConfig) ingest.Stage { return detection.NewSharpnessStage() },
	},
	{
		StageInfo: StageInfo{
			Name:        config.StageOCR,
			Description: "Printed text and word boxes recognized by Tesseract.",
		},
		build: func(cfg config.AnalysisConfig) ingest.Stage {
			s := ocr.NewStage(cfg.OCRLanguage)
			s.Options.TessdataPrefix = cfg.OCRTessdataPrefix
			if cfg.OCRPerBox {
				s.Boxes = detection.NewBoxStage()
			}
			return s
		},
	},
}

func findStage(name string) (stageDefinition, bool) {
	for _, d := range stageDefinitions {
		if d.Name == name {
			return d, true
		}
	}
	return stageDefinition{}, false
}

// BuildStages instantiates the stages named in cfg, in order.
func BuildStages(cfg config.AnalysisConfig) ([]ingest.Stage, error) {
	stages := make([]ingest.Stage, 0, len(cfg.Stages))
	for _, name := range cfg.Stages {
		d, ok := findStage(name)
		if !ok {
			return nil, fmt.Errorf("unknown analysis stage %q", name)
		}
		stages = append(stages, d.build(cfg))
	}
	return stages, nil
}

// DescribeStages returns the description of each named stage. Names without
// a definition are reported with an empty description.
func DescribeStages(names []string) []StageInfo {
	infos := make([]StageInfo, 0, len(names))
	for _, name := range names {
		d, _ := findStage(name)
		infos = append(infos, StageInfo{Name: name, Description: d.Description})
	}
	return infos
}
