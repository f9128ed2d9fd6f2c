package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsepulse/internal/config"
	"nsepulse/internal/services"
)

const historicalFixture = `Date,% Dly Qt to Traded Qty,Total Traded Quantity,Deliverable Qty,Close
15-Jan-2024,70.0,1000,700,100.0
16-Jan-2024,95.0,1200,1140,102.0
17-Jan-2024,96.0,900,864,104.0
18-Jan-2024,60.0,1100,660,101.0
19-Jan-2024,97.0,1500,1455,108.0
`

const snapshotFixture = `SYMBOL,SERIES,DATE1,DELIV_PER
ALPHA,EQ,15-Jan-2024,95.5
GAMMA,BE,15-Jan-2024,99.0
`

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default().Analysis
	metrics := services.NewMetricsRecorderWith(prometheus.NewRegistry())

	analysis := services.NewAnalysisService(cfg, logger, metrics)
	snapshot := services.NewSnapshotService(cfg, logger, metrics)
	handler := NewAnalysisHandler(analysis, snapshot, cfg.MaxUploadBytes, logger)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

// multipartUpload builds a multipart body with a "report" file plus extra
// form fields.
func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("report", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestAnalyzeHistoricalEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "alpha.csv", historicalFixture,
		map[string]string{"symbol": "ALPHA", "threshold": "90"})

	req := httptest.NewRequest(http.MethodPost, "/analysis/historical", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result services.HistoricalResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "ALPHA", result.Symbol)
	assert.Len(t, result.Rows, 5)
	assert.Len(t, result.Signals, 1)
}

func TestAnalyzeHistoricalMissingFile(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("threshold", "90"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analysis/historical", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "report")
}

func TestAnalyzeHistoricalBadThreshold(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "alpha.csv", historicalFixture,
		map[string]string{"threshold": "lots"})

	req := httptest.NewRequest(http.MethodPost, "/analysis/historical", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeHistoricalEmptyReport(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "alpha.csv",
		"Date,% Dly Qt to Traded Qty\n", nil)

	req := httptest.NewRequest(http.MethodPost, "/analysis/historical", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, "/errors/report/empty", problem["type"])
}

func TestAnalyzeSnapshotEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "daily.csv", snapshotFixture,
		map[string]string{"min_delivery": "90"})

	req := httptest.NewRequest(http.MethodPost, "/analysis/snapshot", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var snapshot map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))

	groups := snapshot["groups"].(map[string]any)
	assert.Contains(t, groups, "EQ")
	// GAMMA's BE series is non-equity and must be excluded.
	assert.NotContains(t, groups, "BE")
}
