package dataprocessing

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const historicalCSV = `Symbol, Date ,% Dly Qt to Traded Qty,Total Traded Quantity,Deliverable Qty,Close
ALPHA,16-Jan-2024,92.50,"1,200",1110,105.5
ALPHA,15-Jan-2024, 88.25 ,1000,882,100.0
ALPHA,17-Jan-2024,95.00,900,855,110.0
`

func TestParseHistorical(t *testing.T) {
	rows, err := ParseHistorical(strings.NewReader(historicalCSV))
	if err != nil {
		t.Fatalf("ParseHistorical: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	// Sorted ascending by date regardless of input order.
	want := []time.Time{
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
	}
	for i := range rows {
		if !rows[i].Date.Equal(want[i]) {
			t.Errorf("row %d: date = %v, want %v", i, rows[i].Date, want[i])
		}
	}

	first := rows[0]
	if first.Symbol != "ALPHA" {
		t.Errorf("Symbol = %q, want ALPHA", first.Symbol)
	}
	if first.DeliveryPct != 88.25 {
		t.Errorf("DeliveryPct = %v, want 88.25 (whitespace must be trimmed)", first.DeliveryPct)
	}

	// Thousands separator stripped from the quoted quantity.
	second := rows[1]
	if second.TradedQty == nil || *second.TradedQty != 1200 {
		t.Errorf("TradedQty = %v, want 1200", second.TradedQty)
	}
	if second.DeliverableQty == nil || *second.DeliverableQty != 1110 {
		t.Errorf("DeliverableQty = %v, want 1110", second.DeliverableQty)
	}
	if second.Close == nil || *second.Close != 105.5 {
		t.Errorf("Close = %v, want 105.5", second.Close)
	}
}

func TestParseHistoricalOptionalColumnsAbsent(t *testing.T) {
	csv := "Date,% Dly Qt to Traded Qty\n15-Jan-2024,90.5\n16-Jan-2024,91.0\n"
	rows, err := ParseHistorical(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseHistorical: %v", err)
	}
	for i, row := range rows {
		if row.TradedQty != nil || row.DeliverableQty != nil || row.Close != nil {
			t.Errorf("row %d: optional fields should be nil when columns are absent", i)
		}
	}
}

func TestParseHistoricalErrors(t *testing.T) {
	tests := []struct {
		name        string
		csv         string
		wantParse   bool
		wantColumn  string
		wantValue   string
		wantMissing string
		wantEmpty   bool
	}{
		{
			name:       "malformed_date",
			csv:        "Date,% Dly Qt to Traded Qty\n2024-01-15,90.5\n",
			wantParse:  true,
			wantColumn: "Date",
			wantValue:  "2024-01-15",
		},
		{
			name:       "non_numeric_delivery",
			csv:        "Date,% Dly Qt to Traded Qty\n15-Jan-2024,abc\n",
			wantParse:  true,
			wantColumn: "% Dly Qt to Traded Qty",
			wantValue:  "abc",
		},
		{
			name:       "non_numeric_quantity",
			csv:        "Date,% Dly Qt to Traded Qty,Total Traded Quantity\n15-Jan-2024,90.5,many\n",
			wantParse:  true,
			wantColumn: "Total Traded Quantity",
			wantValue:  "many",
		},
		{
			name:        "missing_date_column",
			csv:         "Symbol,% Dly Qt to Traded Qty\nALPHA,90.5\n",
			wantMissing: "Date",
		},
		{
			name:        "missing_delivery_column",
			csv:         "Date,Close\n15-Jan-2024,100\n",
			wantMissing: "% Dly Qt to Traded Qty",
		},
		{
			name:      "header_only",
			csv:       "Date,% Dly Qt to Traded Qty\n",
			wantEmpty: true,
		},
		{
			name:      "all_rows_missing_delivery",
			csv:       "Date,% Dly Qt to Traded Qty\n15-Jan-2024,-\n16-Jan-2024,\n",
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHistorical(strings.NewReader(tt.csv))
			if err == nil {
				t.Fatal("expected an error")
			}

			switch {
			case tt.wantParse:
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("expected ParseError, got %T: %v", err, err)
				}
				if pe.Column != tt.wantColumn {
					t.Errorf("Column = %q, want %q", pe.Column, tt.wantColumn)
				}
				if pe.Value != tt.wantValue {
					t.Errorf("Value = %q, want %q", pe.Value, tt.wantValue)
				}
			case tt.wantMissing != "":
				var mce *MissingColumnError
				if !errors.As(err, &mce) {
					t.Fatalf("expected MissingColumnError, got %T: %v", err, err)
				}
				if mce.Column != tt.wantMissing {
					t.Errorf("Column = %q, want %q", mce.Column, tt.wantMissing)
				}
			case tt.wantEmpty:
				if !errors.Is(err, ErrEmptyInput) {
					t.Fatalf("expected ErrEmptyInput, got %v", err)
				}
			}
		})
	}
}

func TestParseHistoricalSkipsMissingDeliveryRows(t *testing.T) {
	csv := "Date,% Dly Qt to Traded Qty\n15-Jan-2024,-\n16-Jan-2024,90.5\n17-Jan-2024,\n"
	rows, err := ParseHistorical(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseHistorical: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (missing delivery excluded, never zeroed)", len(rows))
	}
	if rows[0].DeliveryPct != 90.5 {
		t.Errorf("DeliveryPct = %v, want 90.5", rows[0].DeliveryPct)
	}
}

func TestParseHistoricalBOM(t *testing.T) {
	csv := "\xef\xbb\xbfDate,% Dly Qt to Traded Qty\n15-Jan-2024,90.5\n"
	rows, err := ParseHistorical(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseHistorical with BOM: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}
