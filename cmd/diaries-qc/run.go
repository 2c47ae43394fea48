package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"diaries-qc/common/database"
	logpkg "diaries-qc/common/logger"
	redispkg "diaries-qc/common/redis"
	"diaries-qc/internal/config"
	"diaries-qc/internal/export"
	"diaries-qc/internal/metrics"
	"diaries-qc/internal/models"
	"diaries-qc/internal/publish"
	"diaries-qc/internal/repository"
	"diaries-qc/internal/service"

	"go.uber.org/zap"
)

type runFlags struct {
	start, end, month, out string
	publish                bool
}

// resolveWindow --month wins over --start/--end; neither gives the trailing default window
func resolveWindow(f runFlags, today time.Time) (config.Window, error) {
	if f.month != "" {
		if f.start != "" || f.end != "" {
			return config.Window{}, fmt.Errorf("%w: --month cannot be combined with --start/--end", config.ErrInvalidWindow)
		}
		return config.ParseMonth(f.month, today)
	}
	return config.ParseWindow(f.start, f.end, today)
}

func loadReference(cfg *config.Config) (*config.Reference, error) {
	if cfg.QC.ReferenceFile != "" {
		return config.LoadReference(cfg.QC.ReferenceFile)
	}
	return config.DefaultReference()
}

func run(ctx context.Context, kind models.ReportKind, f runFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. configuration; everything here fails before any query runs
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	window, err := resolveWindow(f, time.Now())
	if err != nil {
		return err
	}
	ref, err := loadReference(cfg)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}
	if err := checkOutput(f.out); err != nil {
		return err
	}

	// 2. logger
	log, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "diaries-qc")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	// 3. database
	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return fmt.Errorf("%w: %w", repository.ErrSourceUnavailable, err)
	}
	defer database.Close(db)

	// 4. publisher (optional)
	var publisher service.ReportPublisher
	if f.publish || cfg.Publish.Enabled {
		rc := redispkg.NewRedisClient(&cfg.Redis)
		defer redispkg.Close(rc)
		if err := redispkg.Ping(ctx, rc); err != nil {
			log.Warn("Redis unavailable, report will not be published", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			publisher = publish.NewPublisher(publish.NewRedisKV(rc), cfg.Publish.TTL, log)
		}
	}

	// 5. evaluate
	m := metrics.New()
	svc := service.NewQualityService(
		repository.NewPostgresSource(db, log),
		ref,
		service.OptionsFromConfig(cfg),
		m,
		publisher,
		log,
	)
	report, runErr := svc.Run(ctx, window)

	// 6. metrics are pushed for failed runs too
	if err := m.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, string(kind)); err != nil {
		log.Warn("Failed to push metrics", zap.Error(err))
	}
	if runErr != nil {
		return runErr
	}

	// 7. output
	if err := writeOutput(report, kind, f.out, os.Stdout); err != nil {
		return err
	}
	log.Info("Report written",
		zap.String("kind", string(kind)),
		zap.String("window", window.String()),
		zap.String("out", f.out),
	)
	return nil
}

func checkOutput(path string) error {
	if path == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return nil
	}
	return fmt.Errorf("output %q needs a .csv or .xlsx extension", path)
}

// writeOutput writes one report shape to path, or CSV to stdout when path is empty
func writeOutput(report *models.Report, kind models.ReportKind, path string, stdout io.Writer) error {
	if path == "" {
		return export.WriteCSV(stdout, report, kind)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		data, err := export.BuildWorkbook(report, kind)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteCSV(file, report, kind); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
