package delivery

// priceChangeHorizon is the forward horizon, in rows, for the price change
// used by the correlation analysis.
const priceChangeHorizon = 5

// AnalyzePriceCorrelation measures how high-delivery days relate to 5-day
// price movement. It fills in PriceChange5D on each row (in place) and
// returns the aggregate over high-delivery days.
//
// The analysis requires close prices: when the series carries none, it
// returns nil, which callers must treat as "skipped", distinct from a
// computed result whose inner fields are nil because the restricted set had
// no defined observations (e.g. a series shorter than six rows).
func AnalyzePriceCorrelation(rows []Row, threshold float64) *PriceCorrelation {
	if !hasCloseColumn(rows) {
		return nil
	}

	for i := range rows {
		if i < priceChangeHorizon {
			continue
		}
		cur, base := rows[i].Close, rows[i-priceChangeHorizon].Close
		if cur == nil || base == nil || *base == 0 {
			continue
		}
		change := *cur / *base - 1
		rows[i].PriceChange5D = &change
	}

	result := &PriceCorrelation{}
	var sum float64
	var positives int
	for i := range rows {
		if rows[i].DeliveryPct <= threshold {
			continue
		}
		result.HighDeliveryDays++
		if rows[i].PriceChange5D == nil {
			continue
		}
		result.Samples++
		sum += *rows[i].PriceChange5D
		if *rows[i].PriceChange5D > 0 {
			positives++
		}
	}

	// Both aggregates stay nil when no high-delivery day has a defined
	// change; an undefined rate is not a zero rate.
	if result.Samples > 0 {
		corr := sum / float64(result.Samples)
		rate := float64(positives) / float64(result.Samples)
		result.Correlation = &corr
		result.SuccessRate = &rate
	}

	return result
}

func hasCloseColumn(rows []Row) bool {
	for i := range rows {
		if rows[i].Close != nil {
			return true
		}
	}
	return false
}
