// Package dataprocessing parses NSE delivery reports into the canonical
// types consumed by the delivery analysis engine.
//
// Two report shapes are supported: the per-symbol security-wise archive
// (historical series, CSV or xlsx) and the exchange-wide daily security
// deliverable data report (cross-sectional snapshot, CSV). Parsing is
// strict: malformed dates and numbers surface as ParseError with the
// offending value, column and line, while genuinely missing values (empty
// cells, the "-" placeholder) are represented as absent rather than zero.
package dataprocessing
