package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"nsepulse/internal/delivery"
)

const exportDateLayout = "02-Jan-2006"

var seriesHeaders = []string{
	"Date",
	"Delivery %",
	"Total Traded Quantity",
	"Deliverable Qty",
	"Close",
	"Volume 3M Avg",
	"Volume Ratio",
	"High Delivery",
	"Consecutive High Days",
	"Delivery Change",
	"Consecutive Increase Days",
	"Volume Multiple",
	"Price Change 5D %",
}

// WriteSeries writes an enriched per-symbol series to <symbol>_analysis.csv
// under the output directory. Undefined values export as empty cells.
func (w *CSVWriter) WriteSeries(symbol string, rows []delivery.Row) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Date.Format(exportDateLayout),
			fmtFloat(&row.DeliveryPct),
			fmtInt(row.TradedQty),
			fmtInt(row.DeliverableQty),
			fmtFloat(row.Close),
			fmtFloat(row.Volume3MAvg),
			fmtFloat(row.VolumeRatio),
			strconv.FormatBool(row.HighDelivery),
			strconv.Itoa(row.ConsecutiveHighDays),
			fmtFloat(row.DeliveryChange),
			strconv.Itoa(row.ConsecutiveIncreaseDays),
			fmtFloat(row.VolumeMultiple),
			fmtPct(row.PriceChange5D),
		})
	}
	return w.WriteSimpleCSV(symbol+"_analysis.csv", seriesHeaders, records)
}

// WriteSignals writes detected signals to <symbol>_signals.json under the
// output directory.
func (w *CSVWriter) WriteSignals(symbol string, signals []delivery.Signal) error {
	fullPath := w.resolvePath(symbol + "_signals.json")
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(signals, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal signals: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write signals file: %w", err)
	}
	return nil
}

// WriteSnapshot writes a filtered daily snapshot to a date-stamped CSV under
// the output directory, grouped by series with delivery descending.
func (w *CSVWriter) WriteSnapshot(snapshot *delivery.Snapshot) error {
	groups := make([]string, 0, len(snapshot.Groups))
	for series := range snapshot.Groups {
		groups = append(groups, series)
	}
	sort.Strings(groups)

	records := make([][]string, 0, snapshot.TotalSymbols())
	for _, series := range groups {
		for _, entry := range snapshot.Groups[series] {
			records = append(records, []string{
				series,
				entry.Symbol,
				fmtFloat(&entry.DeliveryPct),
			})
		}
	}

	name := fmt.Sprintf("snapshot_%s.csv", snapshot.Date.Format("2006-01-02"))
	return w.WriteSimpleCSV(name, []string{"Series", "Symbol", "Delivery %"}, records)
}

func fmtFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// fmtPct renders a fractional change as a percentage with two decimals.
func fmtPct(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v*100, 'f', 2, 64)
}

func fmtInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
