package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/meditime/meditime-ai/internal/config"
	"github.com/meditime/meditime-ai/internal/ingest"
	"github.com/meditime/meditime-ai/internal/logger"
	"github.com/meditime/meditime-ai/internal/ocr"
	"github.com/meditime/meditime-ai/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("meditime-ai %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Tesseract:  %t\n", ocr.Available())
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "meditime-ai: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting MediTime AI server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	stages, err := server.BuildStages(cfg.Analysis)
	if err != nil {
		return err
	}
	for _, s := range stages {
		if s.Name() == config.StageOCR && !ocr.Available() {
			log.Warn("OCR stage enabled but Tesseract support is not compiled in; it will report an error on every request")
		}
	}

	srv := server.New(cfg, log, ingest.NewProcessor(log, stages...))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down gracefully", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited")
	return nil
}

func printHelp() {
	fmt.Println("meditime-ai - image brightness service for the MediTime app")
	fmt.Println()
	fmt.Println("Usage: meditime-ai [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  SERVER_HOST=0.0.0.0            Listen host")
	fmt.Println("  SERVER_PORT=8000               Listen port")
	fmt.Println("  SERVER_READ_TIMEOUT=30s        HTTP read timeout")
	fmt.Println("  SERVER_WRITE_TIMEOUT=30s       HTTP write timeout")
	fmt.Println("  SHUTDOWN_TIMEOUT=10s           Graceful shutdown limit")
	fmt.Println("  MAX_UPLOAD_BYTES=10485760      Upload size limit")
	fmt.Println("  CORS_ALLOWED_ORIGINS=*         Comma separated origins")
	fmt.Println("  CORS_ALLOWED_METHODS=*         Comma separated methods")
	fmt.Println("  CORS_ALLOWED_HEADERS=*         Comma separated headers")
	fmt.Println("  METRICS_ENABLED=true           Serve /metrics")
	fmt.Println("  ANALYSIS_STAGES=               colors,boxes,sharpness,ocr")
	fmt.Println("  OCR_LANGUAGE=eng               Tesseract language code")
	fmt.Println("  OCR_TESSDATA_PREFIX=           Tesseract data directory")
	fmt.Println("  OCR_PER_BOX=false              OCR detected boxes only")
	fmt.Println("  LOG_LEVEL=info                 debug, info, warn, error")
	fmt.Println("  LOG_FORMAT=json                json or console")
	fmt.Println("  GIN_MODE=release               release, debug or test")
}
