package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"nsepulse/internal/config"
	"nsepulse/internal/dataprocessing"
	"nsepulse/internal/delivery"
)

// SnapshotParams are the caller-supplied knobs for a snapshot analysis.
type SnapshotParams struct {
	// MinDelivery is the strict lower bound in percent. Symbols at or below
	// it are dropped.
	MinDelivery float64 `validate:"gte=0,lte=100"`
}

// SnapshotService filters exchange-wide daily deliverable-data reports.
type SnapshotService struct {
	cfg      config.AnalysisConfig
	logger   *slog.Logger
	metrics  *MetricsRecorder
	validate *validator.Validate
}

// NewSnapshotService creates a snapshot service.
func NewSnapshotService(cfg config.AnalysisConfig, logger *slog.Logger, metrics *MetricsRecorder) *SnapshotService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotService{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "snapshot_service")),
		metrics:  metrics,
		validate: validator.New(),
	}
}

// DefaultMinDelivery returns the configured fallback minimum.
func (s *SnapshotService) DefaultMinDelivery() float64 {
	return s.cfg.DefaultMinDelivery
}

// AnalyzeSnapshot parses a daily deliverable-data report and returns the
// high-delivery symbols grouped by series, non-equity series excluded.
func (s *SnapshotService) AnalyzeSnapshot(ctx context.Context, r io.Reader, params SnapshotParams) (*delivery.Snapshot, error) {
	start := time.Now()

	if err := s.validate.Struct(params); err != nil {
		if s.metrics != nil {
			s.metrics.RecordAnalysis("snapshot", "validation")
		}
		return nil, validationError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, date, err := dataprocessing.ParseSnapshot(r)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordAnalysis("snapshot", "parse")
			s.metrics.RecordParseError("snapshot")
		}
		return nil, err
	}

	snapshot := delivery.FilterSnapshot(rows, date, params.MinDelivery)

	if s.metrics != nil {
		s.metrics.RecordAnalysis("snapshot", "success")
		s.metrics.RecordDuration("snapshot", time.Since(start).Seconds())
	}

	s.logger.InfoContext(ctx, "snapshot analysis completed",
		slog.Time("report_date", date),
		slog.Float64("min_delivery", params.MinDelivery),
		slog.Int("input_symbols", len(rows)),
		slog.Int("retained_symbols", snapshot.TotalSymbols()),
		slog.Duration("duration", time.Since(start)),
	)

	return snapshot, nil
}
