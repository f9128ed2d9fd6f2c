// Package delivery implements the delivery-percentage analysis engine for
// NSE equity reports.
//
// Delivery percentage is the fraction of traded quantity actually transferred
// to demat accounts rather than squared off intraday, and serves as a proxy
// for genuine (non-speculative) buying interest. The package operates on a
// single symbol's historical time series, sorted ascending by date, and
// provides:
//
//   - Volume analysis: rolling 90-observation average traded volume, volume
//     ratio, series-wide volume multiple and delivery-to-traded ratio
//     (AddVolumeAnalysis)
//   - Pattern detection: high-delivery flags and run-length streak counters
//     for consecutive high-delivery days and consecutive days of increasing
//     delivery (DetectPatterns)
//   - Signal detection: "fresh crossing" events where a high-delivery day is
//     the only one within the trailing 90 calendar days (DetectSignals)
//   - Price correlation: forward 5-day price change averaged over
//     high-delivery days, with a success rate (AnalyzePriceCorrelation)
//   - Daily snapshot filtering: cross-sectional filtering and grouping of the
//     exchange-wide deliverable-data report (FilterSnapshot)
//
// Two different 90-unit windows coexist deliberately: the volume rolling
// average uses 90 observations (rows), while the signal lookback uses 90
// calendar days. Trading calendars have gaps, so these are not equivalent.
//
// All transforms are pure functions over in-memory rows; there is no shared
// state between analyses. Derived values that cannot be computed (first-row
// delivery change, 5-day change without 5 days of history, ratios with a zero
// denominator) are represented as nil pointers, never as zero values.
package delivery
