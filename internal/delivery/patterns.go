package delivery

// DetectPatterns computes the high-delivery flag and both streak counters for
// a series sorted ascending by date. It modifies rows in place and returns
// the same slice.
//
// Streaks are run-length counters: a counter restarts at 1 whenever the
// underlying flag changes value from the previous row (the first row always
// starts a run of length 1) and increments by 1 while the flag repeats.
// The first row's delivery change is undefined and counts as not-increasing,
// so an increasing streak can never extend across it.
//
// Re-running DetectPatterns with the same threshold is idempotent.
func DetectPatterns(rows []Row, threshold float64) []Row {
	var prevHigh, prevIncreasing bool

	for i := range rows {
		high := rows[i].DeliveryPct > threshold
		rows[i].HighDelivery = high
		if i == 0 || high != prevHigh {
			rows[i].ConsecutiveHighDays = 1
		} else {
			rows[i].ConsecutiveHighDays = rows[i-1].ConsecutiveHighDays + 1
		}
		prevHigh = high

		if i == 0 {
			rows[i].DeliveryChange = nil
			rows[i].Increasing = false
			rows[i].ConsecutiveIncreaseDays = 1
			prevIncreasing = false
			continue
		}

		change := rows[i].DeliveryPct - rows[i-1].DeliveryPct
		rows[i].DeliveryChange = &change
		increasing := change > 0
		rows[i].Increasing = increasing
		if increasing != prevIncreasing {
			rows[i].ConsecutiveIncreaseDays = 1
		} else {
			rows[i].ConsecutiveIncreaseDays = rows[i-1].ConsecutiveIncreaseDays + 1
		}
		prevIncreasing = increasing
	}

	return rows
}
