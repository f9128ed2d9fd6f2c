package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"nsepulse/internal/delivery"
)

// dateLayout is the date format used by NSE security-wise archive reports,
// e.g. "15-Jan-2024". Parsing is strict: any other format is a ParseError.
const dateLayout = "02-Jan-2006"

// Historical report column names as they appear in the NSE security-wise
// archive CSV. Matching trims whitespace and falls back to a lowercase
// comparison, but the names themselves are fixed.
const (
	colDate        = "Date"
	colDeliveryPct = "% Dly Qt to Traded Qty"
	colSymbol      = "Symbol"
	colTradedQty   = "Total Traded Quantity"
	colDeliverable = "Deliverable Qty"
	colClose       = "Close"
)

// historicalColumns holds the resolved header indices; -1 means absent.
type historicalColumns struct {
	date        int
	deliveryPct int
	symbol      int
	tradedQty   int
	deliverable int
	close       int
}

// ParseHistorical parses a per-symbol historical delivery report from CSV
// into a canonical series sorted ascending by date.
//
// Required columns: Date and the delivery-percentage column. Rows whose
// delivery field is empty or "-" are excluded (missing data is never coerced
// to zero); any other malformed date or numeric field is a ParseError naming
// the value. ErrEmptyInput is returned when nothing survives.
func ParseHistorical(r io.Reader) ([]delivery.Row, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return buildSeries(records)
}

// ParseHistoricalXLSX parses the xlsx variant of the historical report. The
// sheet containing the Date and delivery-percentage headers is located by
// scanning, since exchange exports are inconsistent about sheet names.
func ParseHistoricalXLSX(r io.Reader) ([]delivery.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		if cols := findHistoricalColumns(rows[0]); cols.date != -1 && cols.deliveryPct != -1 {
			slog.Debug("found historical data sheet",
				slog.String("sheet", sheet),
				slog.Int("rows", len(rows)))
			return buildSeries(rows)
		}
	}

	return nil, &MissingColumnError{Column: colDeliveryPct}
}

// ParseHistoricalFile dispatches on the file extension.
func ParseHistoricalFile(path string) ([]delivery.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ParseHistoricalXLSX(f)
	}
	return ParseHistorical(f)
}

func buildSeries(records [][]string) ([]delivery.Row, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	cols := findHistoricalColumns(records[0])
	if cols.date == -1 {
		return nil, &MissingColumnError{Column: colDate}
	}
	if cols.deliveryPct == -1 {
		return nil, &MissingColumnError{Column: colDeliveryPct}
	}

	rows := make([]delivery.Row, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2 // 1-based, after the header

		row, ok, err := parseHistoricalRecord(record, cols, line)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	return rows, nil
}

// parseHistoricalRecord parses one data record. ok is false when the record
// is skipped (blank line or missing delivery value).
func parseHistoricalRecord(record []string, cols historicalColumns, line int) (delivery.Row, bool, error) {
	if isBlankRecord(record) {
		return delivery.Row{}, false, nil
	}

	rawDelivery := cleanNumeric(cell(record, cols.deliveryPct))
	if rawDelivery == "" || rawDelivery == "-" {
		// Missing delivery data excludes the row, it never becomes zero.
		return delivery.Row{}, false, nil
	}
	deliveryPct, err := strconv.ParseFloat(rawDelivery, 64)
	if err != nil {
		return delivery.Row{}, false, &ParseError{
			Line: line, Column: colDeliveryPct, Value: cell(record, cols.deliveryPct), Err: err,
		}
	}

	rawDate := strings.TrimSpace(cell(record, cols.date))
	date, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return delivery.Row{}, false, &ParseError{
			Line: line, Column: colDate, Value: rawDate, Err: err,
		}
	}

	row := delivery.Row{
		Date:        date,
		DeliveryPct: deliveryPct,
		Symbol:      strings.TrimSpace(cell(record, cols.symbol)),
	}

	if row.TradedQty, err = parseOptionalInt(record, cols.tradedQty, colTradedQty, line); err != nil {
		return delivery.Row{}, false, err
	}
	if row.DeliverableQty, err = parseOptionalInt(record, cols.deliverable, colDeliverable, line); err != nil {
		return delivery.Row{}, false, err
	}
	if row.Close, err = parseOptionalFloat(record, cols.close, colClose, line); err != nil {
		return delivery.Row{}, false, err
	}

	return row, true, nil
}

func findHistoricalColumns(header []string) historicalColumns {
	cols := historicalColumns{
		date:        -1,
		deliveryPct: -1,
		symbol:      -1,
		tradedQty:   -1,
		deliverable: -1,
		close:       -1,
	}

	for i, name := range header {
		clean := cleanHeaderCell(name)
		switch clean {
		case colDate:
			cols.date = i
		case colDeliveryPct:
			cols.deliveryPct = i
		case colSymbol:
			cols.symbol = i
		case colTradedQty:
			cols.tradedQty = i
		case colDeliverable:
			cols.deliverable = i
		case colClose:
			cols.close = i
		default:
			switch strings.ToLower(clean) {
			case "date":
				cols.date = i
			case "% dly qt to traded qty":
				cols.deliveryPct = i
			case "symbol":
				cols.symbol = i
			case "total traded quantity", "traded qty":
				cols.tradedQty = i
			case "deliverable qty", "deliverable quantity":
				cols.deliverable = i
			case "close", "close price":
				cols.close = i
			}
		}
	}

	return cols
}

// readCSV reads all records, tolerating a UTF-8 BOM and ragged rows, both of
// which show up in exchange-produced files.
func readCSV(r io.Reader) ([][]string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return records, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlankRecord(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cleanHeaderCell(name string) string {
	clean := strings.TrimSpace(name)
	clean = strings.TrimPrefix(clean, "\uFEFF")
	return strings.TrimSpace(clean)
}

// cleanNumeric strips whitespace and thousands separators from a raw field.
func cleanNumeric(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
}

func parseOptionalInt(record []string, idx int, column string, line int) (*int64, error) {
	if idx == -1 {
		return nil, nil
	}
	raw := cleanNumeric(cell(record, idx))
	if raw == "" || raw == "-" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &ParseError{Line: line, Column: column, Value: cell(record, idx), Err: err}
	}
	return &v, nil
}

func parseOptionalFloat(record []string, idx int, column string, line int) (*float64, error) {
	if idx == -1 {
		return nil, nil
	}
	raw := cleanNumeric(cell(record, idx))
	if raw == "" || raw == "-" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &ParseError{Line: line, Column: column, Value: cell(record, idx), Err: err}
	}
	return &v, nil
}
