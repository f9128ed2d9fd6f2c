package delivery

// signalLookbackDays is the signal exclusivity window in calendar days.
// Unlike the volume rolling average (90 observations), this window is
// calendar-date-based because trading calendars have gaps.
const signalLookbackDays = 90

// DetectSignals scans a series sorted ascending by date and emits a Signal
// for every fresh crossing: a row whose delivery percentage exceeds the
// threshold and which is the ONLY such row within the trailing 90 calendar
// days, inclusive of the row's own date.
//
// A sustained run of high-delivery days therefore produces at most one
// signal; repeat crossings inside the window are suppressed. Each signal
// carries the mean delivery percentage over every row in the window (not
// just high-delivery ones) and, when volume analysis ran, the row's volume
// multiple and delivery-to-traded ratio.
//
// Signals come out in input order, which is ascending by date.
func DetectSignals(rows []Row, threshold float64) []Signal {
	var signals []Signal

	// Two-pointer scan: both the row index and the window start only move
	// forward, so the window sum and high-delivery count are maintained in a
	// single pass.
	lo := 0
	var windowSum float64
	var highCount int

	for i := range rows {
		windowSum += rows[i].DeliveryPct
		if rows[i].DeliveryPct > threshold {
			highCount++
		}

		cutoff := rows[i].Date.AddDate(0, 0, -signalLookbackDays)
		for lo < i && rows[lo].Date.Before(cutoff) {
			windowSum -= rows[lo].DeliveryPct
			if rows[lo].DeliveryPct > threshold {
				highCount--
			}
			lo++
		}

		if rows[i].DeliveryPct <= threshold || highCount != 1 {
			continue
		}

		sig := Signal{
			Date:        rows[i].Date,
			DeliveryPct: rows[i].DeliveryPct,
			PreviousAvg: windowSum / float64(i-lo+1),
		}
		if rows[i].VolumeMultiple != nil {
			v := *rows[i].VolumeMultiple
			sig.VolumeMultiple = &v
		}
		if rows[i].DeliveryToTradedPct != nil {
			v := *rows[i].DeliveryToTradedPct
			sig.DeliveryToTradedPct = &v
		}
		signals = append(signals, sig)
	}

	return signals
}
