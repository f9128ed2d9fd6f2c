package http

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "nsepulse/internal/errors"
	"nsepulse/internal/services"
)

// AnalysisHandler handles report upload and analysis HTTP requests
type AnalysisHandler struct {
	analysis     *services.AnalysisService
	snapshot     *services.SnapshotService
	maxUpload    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysis *services.AnalysisService, snapshot *services.SnapshotService, maxUpload int64, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysis:     analysis,
		snapshot:     snapshot,
		maxUpload:    maxUpload,
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
}

// RegisterRoutes registers the analysis routes
func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Route("/analysis", func(r chi.Router) {
		r.Post("/historical", h.AnalyzeHistorical)
		r.Post("/snapshot", h.AnalyzeSnapshot)
	})
}

// AnalyzeHistorical accepts a multipart upload of a per-symbol historical
// report and returns the enriched series, signals and summary.
func (h *AnalysisHandler) AnalyzeHistorical(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	file, header, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	threshold, ok := h.parseBound(w, r, "threshold", h.analysis.DefaultThreshold())
	if !ok {
		return
	}

	params := services.HistoricalParams{
		Symbol:    r.FormValue("symbol"),
		Threshold: threshold,
	}

	h.logger.InfoContext(ctx, "historical analysis requested",
		slog.String("filename", header.Filename),
		slog.String("symbol", params.Symbol),
		slog.Float64("threshold", params.Threshold),
	)

	result, err := h.analysis.AnalyzeHistorical(ctx, file, uploadFormat(header.Filename), params)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}

// AnalyzeSnapshot accepts a multipart upload of the exchange-wide daily
// deliverable-data report and returns the filtered snapshot.
func (h *AnalysisHandler) AnalyzeSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	file, header, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	minDelivery, ok := h.parseBound(w, r, "min_delivery", h.snapshot.DefaultMinDelivery())
	if !ok {
		return
	}

	h.logger.InfoContext(ctx, "snapshot analysis requested",
		slog.String("filename", header.Filename),
		slog.Float64("min_delivery", minDelivery),
	)

	snapshot, err := h.snapshot.AnalyzeSnapshot(ctx, file, services.SnapshotParams{MinDelivery: minDelivery})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, snapshot)
}

// openUpload extracts the "report" file from a multipart form, enforcing the
// upload size limit. Reports false after writing an error response.
func (h *AnalysisHandler) openUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
		} else {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		}
		return nil, nil, false
	}

	file, header, err := r.FormFile("report")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("report", "multipart file field \"report\" is required"))
		return nil, nil, false
	}
	return file, header, true
}

// parseBound reads an optional percentage form value, falling back to the
// configured default. Reports false after writing an error response.
func (h *AnalysisHandler) parseBound(w http.ResponseWriter, r *http.Request, field string, fallback float64) (float64, bool) {
	raw := r.FormValue(field)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(field, "must be a number"))
		return 0, false
	}
	return value, true
}

// uploadFormat derives the report format from the uploaded filename.
func uploadFormat(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return "xlsx"
	default:
		return "csv"
	}
}
