package dataprocessing

import (
	"io"
	"strconv"
	"strings"
	"time"

	"nsepulse/internal/delivery"
)

// Daily snapshot report column names (NSE security deliverable data).
const (
	colSeries      = "SERIES"
	colSnapSymbol  = "SYMBOL"
	colDelivPer    = "DELIV_PER"
	colSnapshotDay = "DATE1"
)

// ParseSnapshot parses the exchange-wide daily deliverable-data report into
// snapshot rows plus the report date, taken from the first data row of the
// unfiltered table.
//
// The DELIV_PER column uses the literal "-" placeholder for symbols without
// delivery data; those become nil, never zero, and the downstream filter
// drops them.
func ParseSnapshot(r io.Reader) ([]delivery.SnapshotRow, time.Time, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, time.Time{}, err
	}
	if len(records) == 0 {
		return nil, time.Time{}, ErrEmptyInput
	}

	cols := map[string]int{
		colSeries:      -1,
		colSnapSymbol:  -1,
		colDelivPer:    -1,
		colSnapshotDay: -1,
	}
	for i, name := range records[0] {
		clean := strings.ToUpper(cleanHeaderCell(name))
		if _, ok := cols[clean]; ok {
			cols[clean] = i
		}
	}
	for _, name := range []string{colSeries, colSnapSymbol, colDelivPer, colSnapshotDay} {
		if cols[name] == -1 {
			return nil, time.Time{}, &MissingColumnError{Column: name}
		}
	}

	var snapshotDate time.Time
	rows := make([]delivery.SnapshotRow, 0, len(records)-1)

	for i, record := range records[1:] {
		line := i + 2
		if isBlankRecord(record) {
			continue
		}

		if snapshotDate.IsZero() {
			rawDate := strings.TrimSpace(cell(record, cols[colSnapshotDay]))
			snapshotDate, err = time.Parse(dateLayout, rawDate)
			if err != nil {
				return nil, time.Time{}, &ParseError{
					Line: line, Column: colSnapshotDay, Value: rawDate, Err: err,
				}
			}
		}

		row := delivery.SnapshotRow{
			Series: strings.TrimSpace(cell(record, cols[colSeries])),
			Symbol: strings.TrimSpace(cell(record, cols[colSnapSymbol])),
		}

		raw := cleanNumeric(cell(record, cols[colDelivPer]))
		if raw != "" && raw != "-" {
			pct, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, time.Time{}, &ParseError{
					Line: line, Column: colDelivPer, Value: cell(record, cols[colDelivPer]), Err: err,
				}
			}
			row.DeliveryPct = &pct
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, time.Time{}, ErrEmptyInput
	}

	return rows, snapshotDate, nil
}
