package delivery

// Summarize aggregates headline figures for a series that has already been
// through DetectPatterns, plus its detected signals. The threshold must be
// the one the patterns were computed with.
func Summarize(rows []Row, signals []Signal, threshold float64) Summary {
	var s Summary
	if len(rows) == 0 {
		return s
	}

	s.Symbol = rows[0].Symbol
	s.StartDate = rows[0].Date
	s.EndDate = rows[len(rows)-1].Date
	s.Days = int(s.EndDate.Sub(s.StartDate).Hours() / 24)
	s.SignalCount = len(signals)

	highDays := 0
	var lastHigh *Row
	for i := range rows {
		// Only runs of the matching flag count; a long run of ordinary days
		// is not a high-delivery streak.
		if rows[i].HighDelivery && rows[i].ConsecutiveHighDays > s.MaxConsecutiveHighDays {
			s.MaxConsecutiveHighDays = rows[i].ConsecutiveHighDays
		}
		if rows[i].Increasing && rows[i].ConsecutiveIncreaseDays > s.MaxConsecutiveIncreaseDays {
			s.MaxConsecutiveIncreaseDays = rows[i].ConsecutiveIncreaseDays
		}
		if rows[i].DeliveryPct > threshold {
			highDays++
			lastHigh = &rows[i]
		}
	}

	// Exactly one high-delivery day in the whole history means the symbol
	// crossed the threshold for the first time.
	if highDays == 1 && lastHigh != nil {
		s.FirstCross = &FirstCross{Date: lastHigh.Date, DeliveryPct: lastHigh.DeliveryPct}
	}

	var multSum float64
	multCount := 0
	for _, sig := range signals {
		if sig.VolumeMultiple != nil {
			multSum += *sig.VolumeMultiple
			multCount++
		}
	}
	if multCount > 0 {
		avg := multSum / float64(multCount)
		s.AvgSignalVolumeMultiple = &avg
	}

	return s
}
