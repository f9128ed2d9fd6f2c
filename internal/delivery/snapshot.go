package delivery

import (
	"regexp"
	"sort"
	"time"
)

// nonEquitySeries matches exchange series codes for non-equity instruments:
// government bonds and securities, bond/debenture series, warrant and
// preference series, mutual fund units, T-bills and sovereign gold bonds.
// The match is anchored: this is an exact-match deny list, not a substring
// filter, so an equity code like "EQ" is never caught by accident.
var nonEquitySeries = regexp.MustCompile(`^(GB|GS|BE|BO|BL|W[0-9A-Z]|K[0-9A-Z]|MF|ME|TB|SG)$`)

// IsExcludedSeries reports whether a series code belongs to the non-equity
// exclusion set.
func IsExcludedSeries(code string) bool {
	return nonEquitySeries.MatchString(code)
}

// FilterSnapshot applies the daily snapshot pipeline to a parsed
// cross-sectional report:
//
//   - rows whose series code matches the non-equity exclusion set are dropped
//   - rows with an undefined delivery percentage are dropped
//   - rows with delivery percentage not strictly greater than minDelivery
//     are dropped
//
// Survivors are grouped by series code, each group sorted by delivery
// percentage descending. The snapshot date is the caller-supplied report
// date, taken from the first row of the original unfiltered table.
func FilterSnapshot(rows []SnapshotRow, date time.Time, minDelivery float64) *Snapshot {
	groups := make(map[string][]SnapshotEntry)

	for _, row := range rows {
		if IsExcludedSeries(row.Series) {
			continue
		}
		if row.DeliveryPct == nil || *row.DeliveryPct <= minDelivery {
			continue
		}
		groups[row.Series] = append(groups[row.Series], SnapshotEntry{
			Symbol:      row.Symbol,
			DeliveryPct: *row.DeliveryPct,
		})
	}

	for series := range groups {
		entries := groups[series]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].DeliveryPct > entries[j].DeliveryPct
		})
	}

	return &Snapshot{Date: date, Groups: groups}
}
