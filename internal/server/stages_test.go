package server

import (
	"testing"

	"github.com/meditime/meditime-ai/internal/config"
	"github.com/meditime/meditime-ai/internal/detection"
	"github.com/meditime/meditime-ai/internal/ocr"
)

func TestBuildStages(t *testing.T) {
	stages, err := BuildStages(config.AnalysisConfig{Stages: config.KnownStages, OCRLanguage: "deu", OCRPerBox: true})
	if err != nil {
		t.Fatalf("BuildStages failed: %v", err)
	}
	if len(stages) != len(config.KnownStages) {
		t.Fatalf("expected %d stages, got %d", len(config.KnownStages), len(stages))
	}
	for i, s := range stages {
		if s.Name() != config.KnownStages[i] {
			t.Errorf("stage %d: got %q, want %q", i, s.Name(), config.KnownStages[i])
		}
	}

	ocrStage, ok := stages[3].(*ocr.Stage)
	if !ok {
		t.Fatalf("unexpected ocr stage type %T", stages[3])
	}
	if ocrStage.Options.Language != "deu" {
		t.Errorf("OCR language: got %q, want deu", ocrStage.Options.Language)
	}
	if _, ok := any(ocrStage.Boxes).(*detection.BoxStage); !ok || ocrStage.Boxes == nil {
		t.Error("per-box OCR should carry a box stage")
	}
}

func TestBuildStages_Unknown(t *testing.T) {
	if _, err := BuildStages(config.AnalysisConfig{Stages: []string{"colors", "faces"}}); err == nil {
		t.Error("expected error for unknown stage")
	}
}

func TestBuildStages_Empty(t *testing.T) {
	stages, err := BuildStages(config.AnalysisConfig{})
	if err != nil {
		t.Fatalf("BuildStages failed: %v", err)
	}
	if len(stages) != 0 {
		t.Errorf("expected no stages, got %d", len(stages))
	}
}

func TestStageDefinitions_MatchConfig(t *testing.T) {
	if len(stageDefinitions) != len(config.KnownStages) {
		t.Fatalf("%d definitions for %d known stages", len(stageDefinitions), len(config.KnownStages))
	}
	for _, name := range config.KnownStages {
		if _, ok := findStage(name); !ok {
			t.Errorf("no definition for %q", name)
		}
	}
}

func TestDescribeStages(t *testing.T) {
	infos := DescribeStages([]string{"sharpness", "custom"})
	if len(infos) != 2 {
		t.Fatalf("expected 2 infos, got %d", len(infos))
	}
	if infos[0].Description == "" {
		t.Error("sharpness should have a description")
	}
	if infos[1].Name != "custom" || infos[1].Description != "" {
		t.Errorf("unknown stage: got %+v", infos[1])
	}
}
