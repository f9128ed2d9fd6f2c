package dataprocessing

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const snapshotCSV = `SYMBOL, SERIES, DATE1, DELIV_PER
ALPHA, EQ, 15-Jan-2024, 92.5
BETA, EQ, 15-Jan-2024, -
GAMMA, BE, 15-Jan-2024, 88.0
DELTA, EQ, 15-Jan-2024, 88.0
`

func TestParseSnapshot(t *testing.T) {
	rows, date, err := ParseSnapshot(strings.NewReader(snapshotCSV))
	if err != nil {
		t.Fatalf("ParseSnapshot: %v", err)
	}

	wantDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !date.Equal(wantDate) {
		t.Errorf("date = %v, want %v", date, wantDate)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4 (parsing keeps everything; filtering is separate)", len(rows))
	}

	if rows[0].Symbol != "ALPHA" || rows[0].Series != "EQ" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[0].DeliveryPct == nil || *rows[0].DeliveryPct != 92.5 {
		t.Errorf("row 0 delivery = %v, want 92.5", rows[0].DeliveryPct)
	}

	// The "-" placeholder is undefined, not zero.
	if rows[1].DeliveryPct != nil {
		t.Errorf("row 1 delivery = %v, want nil for the \"-\" placeholder", *rows[1].DeliveryPct)
	}
}

func TestParseSnapshotMissingColumns(t *testing.T) {
	csv := "SYMBOL,SERIES,DATE1\nALPHA,EQ,15-Jan-2024\n"
	_, _, err := ParseSnapshot(strings.NewReader(csv))

	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if mce.Column != "DELIV_PER" {
		t.Errorf("Column = %q, want DELIV_PER", mce.Column)
	}
}

func TestParseSnapshotBadDeliveryValue(t *testing.T) {
	csv := "SYMBOL,SERIES,DATE1,DELIV_PER\nALPHA,EQ,15-Jan-2024,n/a\n"
	_, _, err := ParseSnapshot(strings.NewReader(csv))

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Column != "DELIV_PER" || pe.Value != "n/a" {
		t.Errorf("ParseError = %+v", pe)
	}
}

func TestParseSnapshotEmpty(t *testing.T) {
	csv := "SYMBOL,SERIES,DATE1,DELIV_PER\n"
	_, _, err := ParseSnapshot(strings.NewReader(csv))
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
