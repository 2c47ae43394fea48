// Package publish stores finished reports in a key-value store for the field dashboard.
//
// Key layout:
//   - diaries-qc:<kind>:<start>:<end>  report rows for one window
//   - diaries-qc:<kind>:latest         the most recent run, whatever its window
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"diaries-qc/internal/dates"
	"diaries-qc/internal/models"

	"go.uber.org/zap"
)

const keyPrefix = "diaries-qc"

// Envelope value stored under each key
type Envelope struct {
	RunID       string            `json:"run_id"`
	Kind        models.ReportKind `json:"kind"`
	WindowStart string            `json:"window_start"`
	WindowEnd   string            `json:"window_end"`
	GeneratedAt time.Time         `json:"generated_at"`
	Rows        json.RawMessage   `json:"rows"`
}

// Publisher writes reports to a KV store
type Publisher struct {
	kv     KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewPublisher(kv KV, ttl time.Duration, logger *zap.Logger) *Publisher {
	return &Publisher{kv: kv, ttl: ttl, logger: logger}
}

// WindowKey key for one report shape over one window
func WindowKey(kind models.ReportKind, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, kind, dates.Format(start), dates.Format(end))
}

// LatestKey key of the most recent run for a report shape
func LatestKey(kind models.ReportKind) string {
	return fmt.Sprintf("%s:%s:latest", keyPrefix, kind)
}

// Publish stores every report shape under its window key and its latest key
func (p *Publisher) Publish(ctx context.Context, report *models.Report) error {
	for _, kind := range models.ReportKinds() {
		value, err := encode(report, kind)
		if err != nil {
			return err
		}
		for _, key := range []string{WindowKey(kind, report.WindowStart, report.WindowEnd), LatestKey(kind)} {
			if err := p.kv.Set(ctx, key, value, p.ttl); err != nil {
				return fmt.Errorf("failed to publish %s: %w", key, err)
			}
		}
		p.logger.Debug("Published report",
			zap.String("run_id", report.RunID),
			zap.String("kind", string(kind)),
			zap.Int("bytes", len(value)),
		)
	}
	p.logger.Info("Report published",
		zap.String("run_id", report.RunID),
		zap.Duration("ttl", p.ttl),
	)
	return nil
}

// Latest reads the most recent envelope for a report shape; ErrMiss when none was published
func (p *Publisher) Latest(ctx context.Context, kind models.ReportKind) (*Envelope, error) {
	raw, err := p.kv.Get(ctx, LatestKey(kind))
	if err != nil {
		if errors.Is(err, ErrMiss) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read %s: %w", LatestKey(kind), err)
	}
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", LatestKey(kind), err)
	}
	return &env, nil
}

func encode(report *models.Report, kind models.ReportKind) (string, error) {
	var rows any
	switch kind {
	case models.KindScorecard:
		rows = report.Scorecard
	case models.KindIssues:
		rows = report.Issues
	case models.KindRASummary:
		rows = report.RASummary
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s rows: %w", kind, err)
	}
	b, err := json.Marshal(Envelope{
		RunID:       report.RunID,
		Kind:        kind,
		WindowStart: dates.Format(report.WindowStart),
		WindowEnd:   dates.Format(report.WindowEnd),
		GeneratedAt: report.GeneratedAt,
		Rows:        rowsJSON,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode %s envelope: %w", kind, err)
	}
	return string(b), nil
}
