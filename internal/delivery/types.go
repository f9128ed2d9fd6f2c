package delivery

import (
	"time"
)

// Row represents one trading day for one symbol in the historical series.
// Input fields are populated by the dataprocessing parser; derived fields are
// filled in by AddVolumeAnalysis, DetectPatterns and AnalyzePriceCorrelation.
//
// Optional values use pointers: nil means "not available" and is never
// interchangeable with zero.
type Row struct {
	Date        time.Time `json:"date"`
	Symbol      string    `json:"symbol,omitempty"`
	DeliveryPct float64   `json:"delivery_pct"`

	TradedQty      *int64   `json:"traded_qty,omitempty"`
	DeliverableQty *int64   `json:"deliverable_qty,omitempty"`
	Close          *float64 `json:"close,omitempty"`

	// Derived by AddVolumeAnalysis.
	Volume3MAvg         *float64 `json:"volume_3m_avg,omitempty"`
	VolumeRatio         *float64 `json:"volume_ratio,omitempty"`
	DeliveryToTradedPct *float64 `json:"delivery_to_traded_pct,omitempty"`
	AvgVolume           *float64 `json:"avg_volume,omitempty"`
	VolumeMultiple      *float64 `json:"volume_multiple,omitempty"`

	// Derived by DetectPatterns.
	HighDelivery            bool     `json:"high_delivery"`
	ConsecutiveHighDays     int      `json:"consecutive_high_days"`
	DeliveryChange          *float64 `json:"delivery_change,omitempty"`
	Increasing              bool     `json:"increasing"`
	ConsecutiveIncreaseDays int      `json:"consecutive_increase_days"`

	// Derived by AnalyzePriceCorrelation.
	PriceChange5D *float64 `json:"price_change_5d,omitempty"`
}

// HasVolumeData reports whether both quantity fields are present on this row.
func (r Row) HasVolumeData() bool {
	return r.TradedQty != nil && r.DeliverableQty != nil
}

// Signal is a fresh-crossing event: a high-delivery day that is the only one
// within the trailing 90 calendar days. Signals are immutable once emitted
// and are collected in ascending date order.
type Signal struct {
	Date        time.Time `json:"date"`
	DeliveryPct float64   `json:"delivery_pct"`

	// PreviousAvg is the mean delivery percentage over all rows in the
	// trailing 90-calendar-day window, including the signal day itself.
	PreviousAvg float64 `json:"previous_avg"`

	// Volume context, attached only when volume analysis ran on the series.
	VolumeMultiple      *float64 `json:"volume_multiple,omitempty"`
	DeliveryToTradedPct *float64 `json:"delivery_to_traded_pct,omitempty"`
}

// PriceCorrelation measures how high-delivery days relate to forward 5-day
// price movement. A nil *PriceCorrelation means the analysis was skipped
// (no close prices); nil inner fields mean it ran but the restricted set had
// no defined observations.
type PriceCorrelation struct {
	// Correlation is the mean 5-day forward price change over high-delivery
	// days with a defined change. Nil when no such day exists.
	Correlation *float64 `json:"correlation"`

	// SuccessRate is the fraction of those defined observations with a
	// positive change. Nil when no observation is defined.
	SuccessRate *float64 `json:"success_rate"`

	HighDeliveryDays int `json:"high_delivery_days"`
	Samples          int `json:"samples"`
}

// SnapshotRow is one symbol in the exchange-wide daily deliverable-data
// report. DeliveryPct is nil when the report carried the "-" placeholder.
type SnapshotRow struct {
	Series      string   `json:"series"`
	Symbol      string   `json:"symbol"`
	DeliveryPct *float64 `json:"delivery_pct"`
}

// SnapshotEntry is a symbol retained by the snapshot filter.
type SnapshotEntry struct {
	Symbol      string  `json:"symbol"`
	DeliveryPct float64 `json:"delivery_pct"`
}

// Snapshot is the filtered daily report, grouped by series code. Each group
// is sorted by delivery percentage descending.
type Snapshot struct {
	Date   time.Time                  `json:"date"`
	Groups map[string][]SnapshotEntry `json:"groups"`
}

// TotalSymbols returns the number of symbols across all groups.
func (s *Snapshot) TotalSymbols() int {
	total := 0
	for _, entries := range s.Groups {
		total += len(entries)
	}
	return total
}

// SectorPerformance summarizes a symbol's series against its sector.
type SectorPerformance struct {
	Symbol           string  `json:"symbol"`
	Sector           string  `json:"sector"`
	AvgDelivery      float64 `json:"avg_delivery"`
	HighDeliveryDays int     `json:"high_delivery_days"`
}

// FirstCross marks a series whose delivery percentage exceeded the threshold
// on exactly one day, i.e. a first-ever crossing within the uploaded history.
type FirstCross struct {
	Date        time.Time `json:"date"`
	DeliveryPct float64   `json:"delivery_pct"`
}

// Summary aggregates headline figures for a fully analyzed series.
type Summary struct {
	Symbol    string    `json:"symbol,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// Days is the calendar span of the series in days.
	Days int `json:"days"`

	SignalCount                int `json:"signal_count"`
	MaxConsecutiveHighDays     int `json:"max_consecutive_high_days"`
	MaxConsecutiveIncreaseDays int `json:"max_consecutive_increase_days"`

	// AvgSignalVolumeMultiple is the mean volume multiple across signal
	// days, when volume analysis ran and at least one signal carries it.
	AvgSignalVolumeMultiple *float64 `json:"avg_signal_volume_multiple,omitempty"`

	FirstCross *FirstCross `json:"first_cross,omitempty"`
}
