package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsepulse/internal/config"
	"nsepulse/internal/dataprocessing"
	apierrors "nsepulse/internal/errors"
)

const historicalFixture = `Date,% Dly Qt to Traded Qty,Total Traded Quantity,Deliverable Qty,Close
15-Jan-2024,70.0,1000,700,100.0
16-Jan-2024,95.0,1200,1140,102.0
17-Jan-2024,96.0,900,864,104.0
18-Jan-2024,60.0,1100,660,101.0
19-Jan-2024,97.0,1500,1455,108.0
`

func newAnalysisService(t *testing.T) *AnalysisService {
	t.Helper()
	cfg := config.Default().Analysis
	metrics := NewMetricsRecorderWith(prometheus.NewRegistry())
	return NewAnalysisService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
}

func TestAnalyzeHistorical(t *testing.T) {
	svc := newAnalysisService(t)

	result, err := svc.AnalyzeHistorical(context.Background(),
		strings.NewReader(historicalFixture), "csv",
		HistoricalParams{Symbol: "ALPHA", Threshold: 90})
	require.NoError(t, err)

	assert.Equal(t, "ALPHA", result.Symbol)
	assert.Len(t, result.Rows, 5)

	// 16-Jan is the first high-delivery day in an otherwise clean trailing
	// window; the later crossings share the window with it.
	require.Len(t, result.Signals, 1)
	assert.Equal(t, 16, result.Signals[0].Date.Day())

	require.NotNil(t, result.Price)
	assert.Equal(t, 3, result.Price.HighDeliveryDays)

	assert.Equal(t, "ALPHA", result.Summary.Symbol)
	assert.Equal(t, 1, result.Summary.SignalCount)
	assert.Equal(t, 2, result.Summary.MaxConsecutiveHighDays)
}

func TestAnalyzeHistoricalValidatesThreshold(t *testing.T) {
	svc := newAnalysisService(t)

	_, err := svc.AnalyzeHistorical(context.Background(),
		strings.NewReader(historicalFixture), "csv",
		HistoricalParams{Threshold: 150})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)
}

func TestAnalyzeHistoricalRejectsUnknownFormat(t *testing.T) {
	svc := newAnalysisService(t)

	_, err := svc.AnalyzeHistorical(context.Background(),
		strings.NewReader(historicalFixture), "pdf",
		HistoricalParams{Threshold: 90})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)
}

func TestAnalyzeHistoricalSurfacesParseErrors(t *testing.T) {
	svc := newAnalysisService(t)

	_, err := svc.AnalyzeHistorical(context.Background(),
		strings.NewReader("Date,% Dly Qt to Traded Qty\n"), "csv",
		HistoricalParams{Threshold: 90})
	require.ErrorIs(t, err, dataprocessing.ErrEmptyInput)
}

func TestAnalyzeHistoricalCancelledContext(t *testing.T) {
	svc := newAnalysisService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.AnalyzeHistorical(ctx,
		strings.NewReader(historicalFixture), "csv",
		HistoricalParams{Threshold: 90})
	require.ErrorIs(t, err, context.Canceled)
}
