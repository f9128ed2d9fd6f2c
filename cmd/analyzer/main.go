package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"nsepulse/internal/config"
	"nsepulse/internal/dataprocessing"
	"nsepulse/internal/delivery"
	"nsepulse/internal/exporter"
	"nsepulse/internal/infrastructure"
)

func main() {
	inPath := flag.String("in", "", "input report file or directory of reports (.csv or .xlsx)")
	outDir := flag.String("out", "reports", "output directory for analysis results")
	threshold := flag.Float64("threshold", 0, "high-delivery threshold in percent (default from config)")
	minDelivery := flag.Float64("min-delivery", 0, "snapshot minimum delivery in percent (default from config)")
	snapshot := flag.Bool("snapshot", false, "treat input as exchange-wide daily deliverable-data reports")
	symbol := flag.String("symbol", "", "symbol label when analyzing a single historical report")
	sectorsPath := flag.String("sectors", "", "optional YAML file mapping symbol to sector")
	workers := flag.Int("workers", 4, "number of reports processed concurrently")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *inPath == "" {
		logger.Error("No input given, use -in to point at a report file or directory")
		os.Exit(1)
	}
	if *threshold == 0 {
		*threshold = cfg.Analysis.DefaultThreshold
	}
	if *minDelivery == 0 {
		*minDelivery = cfg.Analysis.DefaultMinDelivery
	}

	sectors, err := loadSectors(*sectorsPath)
	if err != nil {
		logger.Error("Failed to load sector map", "error", err, "path", *sectorsPath)
		os.Exit(1)
	}

	files, err := collectReportFiles(*inPath)
	if err != nil {
		logger.Error("Failed to collect report files", "error", err, "path", *inPath)
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Error("No report files found", "path", *inPath)
		os.Exit(1)
	}

	writer := exporter.NewCSVWriter(*outDir)
	ctx := infrastructure.ContextWithTraceID(context.Background())

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(*workers)

	for _, file := range files {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if *snapshot {
				return processSnapshot(ctx, logger, writer, file, *minDelivery)
			}
			return processHistorical(ctx, logger, writer, file, *symbol, *threshold, sectors)
		})
	}

	if err := group.Wait(); err != nil {
		logger.ErrorContext(ctx, "Analysis failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Analysis complete",
		"files", len(files),
		"output_dir", *outDir)
}

// processHistorical runs the full pipeline over one per-symbol report and
// writes the enriched series CSV plus a signals JSON next to it.
func processHistorical(ctx context.Context, logger *slog.Logger, writer *exporter.CSVWriter, file, symbol string, threshold float64, sectors map[string]string) error {
	rows, err := dataprocessing.ParseHistoricalFile(file)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	rows = delivery.AddVolumeAnalysis(rows)
	rows = delivery.DetectPatterns(rows, threshold)
	signals := delivery.DetectSignals(rows, threshold)
	price := delivery.AnalyzePriceCorrelation(rows, threshold)
	summary := delivery.Summarize(rows, signals, threshold)

	label := symbol
	if label == "" {
		label = symbolFromFilename(file)
	}
	summary.Symbol = label
	if rows[0].Symbol == "" {
		for i := range rows {
			rows[i].Symbol = label
		}
	}

	if err := writer.WriteSeries(label, rows); err != nil {
		return fmt.Errorf("%s: write series: %w", file, err)
	}
	if err := writer.WriteSignals(label, signals); err != nil {
		return fmt.Errorf("%s: write signals: %w", file, err)
	}

	attrs := []any{
		"file", file,
		"symbol", label,
		"rows", len(rows),
		"signals", len(signals),
		"max_high_streak", summary.MaxConsecutiveHighDays,
	}
	if price != nil && price.SuccessRate != nil {
		attrs = append(attrs, "success_rate", *price.SuccessRate)
	}
	if len(sectors) > 0 {
		if perf := delivery.SummarizeSector(rows, threshold, sectors); perf != nil {
			attrs = append(attrs, "sector", perf.Sector, "sector_avg_delivery", perf.AvgDelivery)
		}
	}
	logger.InfoContext(ctx, "Historical report analyzed", attrs...)
	return nil
}

// processSnapshot filters one exchange-wide daily report and writes the
// date-stamped snapshot CSV.
func processSnapshot(ctx context.Context, logger *slog.Logger, writer *exporter.CSVWriter, file string, minDelivery float64) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	defer f.Close()

	rows, date, err := dataprocessing.ParseSnapshot(f)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	snapshot := delivery.FilterSnapshot(rows, date, minDelivery)
	if err := writer.WriteSnapshot(snapshot); err != nil {
		return fmt.Errorf("%s: write snapshot: %w", file, err)
	}

	logger.InfoContext(ctx, "Snapshot analyzed",
		"file", file,
		"report_date", date.Format("2006-01-02"),
		"retained_symbols", snapshot.TotalSymbols())
	return nil
}

// collectReportFiles expands a file or directory argument into the list of
// report files to process, sorted for deterministic output.
func collectReportFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx":
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// symbolFromFilename derives a series label from the report filename.
func symbolFromFilename(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToUpper(base)
}

// loadSectors reads an optional symbol-to-sector YAML map.
func loadSectors(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sectors := make(map[string]string)
	if err := yaml.Unmarshal(data, &sectors); err != nil {
		return nil, err
	}
	return sectors, nil
}
