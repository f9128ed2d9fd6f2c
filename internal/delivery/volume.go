package delivery

// volumeWindow is the rolling window for the traded-quantity moving average.
// This is a window of observations (rows), not calendar days; the signal
// lookback in signals.go is calendar-based. The asymmetry is intentional.
const volumeWindow = 90

// AddVolumeAnalysis derives the volume metrics for a series sorted ascending
// by date. It modifies rows in place and returns the same slice.
//
// The analysis applies only when the series carries both traded and
// deliverable quantities; otherwise it is a no-op and every volume field
// stays nil. Downstream consumers must treat nil as "not available", never
// as zero.
func AddVolumeAnalysis(rows []Row) []Row {
	if !hasVolumeColumns(rows) {
		return rows
	}

	// Series-wide average traded quantity, broadcast to every row.
	var total float64
	var count int
	for i := range rows {
		if rows[i].TradedQty != nil {
			total += float64(*rows[i].TradedQty)
			count++
		}
	}
	var avgVolume float64
	if count > 0 {
		avgVolume = total / float64(count)
	}

	// Rolling mean over the trailing volumeWindow rows with a minimum of one
	// observation: the window shrinks at the start of the series instead of
	// leaving the first rows undefined. A missing quantity occupies a window
	// slot but contributes no observation; a literal zero is an observation.
	type slot struct {
		traded float64
		ok     bool
	}
	window := make([]slot, 0, volumeWindow+1)
	var windowSum float64
	var windowObs int

	for i := range rows {
		s := slot{}
		if rows[i].TradedQty != nil {
			s = slot{traded: float64(*rows[i].TradedQty), ok: true}
		}
		window = append(window, s)
		if s.ok {
			windowSum += s.traded
			windowObs++
		}
		if len(window) > volumeWindow {
			if window[0].ok {
				windowSum -= window[0].traded
				windowObs--
			}
			window = window[1:]
		}

		if !s.ok {
			// Gap row: its own derived fields stay nil.
			continue
		}

		if windowObs > 0 {
			avg3m := windowSum / float64(windowObs)
			rows[i].Volume3MAvg = &avg3m
			if avg3m > 0 {
				ratio := s.traded / avg3m
				rows[i].VolumeRatio = &ratio
			}
		}

		if rows[i].DeliverableQty != nil && s.traded > 0 {
			// Zero traded quantity leaves the ratio undefined rather than
			// raising a division error; partial results remain useful.
			dt := float64(*rows[i].DeliverableQty) / s.traded * 100
			rows[i].DeliveryToTradedPct = &dt
		}

		if count > 0 {
			av := avgVolume
			rows[i].AvgVolume = &av
			if avgVolume > 0 {
				mult := s.traded / avgVolume
				rows[i].VolumeMultiple = &mult
			}
		}
	}

	return rows
}

// hasVolumeColumns reports whether the series carries volume data at all.
// A single row with both quantities is enough: per-row gaps degrade to nil
// derived fields rather than disabling the whole analysis.
func hasVolumeColumns(rows []Row) bool {
	for i := range rows {
		if rows[i].HasVolumeData() {
			return true
		}
	}
	return false
}
