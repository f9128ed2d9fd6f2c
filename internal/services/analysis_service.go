package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"nsepulse/internal/config"
	"nsepulse/internal/dataprocessing"
	"nsepulse/internal/delivery"
	apierrors "nsepulse/internal/errors"
)

// HistoricalParams are the caller-supplied knobs for a historical analysis.
type HistoricalParams struct {
	// Symbol labels the series in results and exports. Optional.
	Symbol string `validate:"omitempty,max=32"`

	// Threshold is the high-delivery cutoff in percent.
	Threshold float64 `validate:"gte=0,lte=100"`
}

// HistoricalResult is the full output of one historical analysis run.
type HistoricalResult struct {
	Symbol    string                     `json:"symbol,omitempty"`
	Threshold float64                    `json:"threshold"`
	Rows      []delivery.Row             `json:"rows"`
	Signals   []delivery.Signal          `json:"signals"`
	Price     *delivery.PriceCorrelation `json:"price_correlation,omitempty"`
	Summary   delivery.Summary           `json:"summary"`
}

// AnalysisService runs the delivery analysis pipelines over uploaded reports.
type AnalysisService struct {
	cfg      config.AnalysisConfig
	logger   *slog.Logger
	metrics  *MetricsRecorder
	validate *validator.Validate
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(cfg config.AnalysisConfig, logger *slog.Logger, metrics *MetricsRecorder) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "analysis_service")),
		metrics:  metrics,
		validate: validator.New(),
	}
}

// DefaultThreshold returns the configured fallback threshold.
func (s *AnalysisService) DefaultThreshold() float64 {
	return s.cfg.DefaultThreshold
}

// AnalyzeHistorical parses a per-symbol historical report and runs the full
// pipeline: volume analysis, pattern detection, signal detection, price
// correlation and the headline summary. format is "csv" or "xlsx".
func (s *AnalysisService) AnalyzeHistorical(ctx context.Context, r io.Reader, format string, params HistoricalParams) (*HistoricalResult, error) {
	start := time.Now()

	if err := s.validate.Struct(params); err != nil {
		s.recordFailure("historical", "validation")
		return nil, validationError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.parseHistorical(r, format)
	if err != nil {
		s.recordFailure("historical", "parse")
		if s.metrics != nil {
			s.metrics.RecordParseError("historical")
		}
		return nil, err
	}

	rows = delivery.AddVolumeAnalysis(rows)
	rows = delivery.DetectPatterns(rows, params.Threshold)
	signals := delivery.DetectSignals(rows, params.Threshold)
	price := delivery.AnalyzePriceCorrelation(rows, params.Threshold)
	summary := delivery.Summarize(rows, signals, params.Threshold)
	summary.Symbol = params.Symbol

	if s.metrics != nil {
		s.metrics.RecordAnalysis("historical", "success")
		s.metrics.RecordSignals(len(signals))
		s.metrics.RecordDuration("historical", time.Since(start).Seconds())
	}

	s.logger.InfoContext(ctx, "historical analysis completed",
		slog.String("symbol", params.Symbol),
		slog.Float64("threshold", params.Threshold),
		slog.Int("rows", len(rows)),
		slog.Int("signals", len(signals)),
		slog.Duration("duration", time.Since(start)),
	)

	return &HistoricalResult{
		Symbol:    params.Symbol,
		Threshold: params.Threshold,
		Rows:      rows,
		Signals:   signals,
		Price:     price,
		Summary:   summary,
	}, nil
}

func (s *AnalysisService) parseHistorical(r io.Reader, format string) ([]delivery.Row, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return dataprocessing.ParseHistorical(r)
	case "xlsx":
		return dataprocessing.ParseHistoricalXLSX(r)
	default:
		return nil, apierrors.ErrValidation("format", fmt.Sprintf("unsupported report format %q", format))
	}
}

func (s *AnalysisService) recordFailure(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAnalysis(kind, outcome)
	}
}

// validationError converts validator output to an APIError with per-field
// details.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	details := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
		})
	}
	return apierrors.NewValidationErrors(details)
}
