package delivery

// UnknownSector is reported when a symbol has no entry in the sector map.
const UnknownSector = "Unknown"

// SummarizeSector resolves a symbol's sector from the caller-supplied map and
// summarizes the series against it: the series-wide average delivery
// percentage and the number of days above the threshold. Returns nil for an
// empty series or when the series carries no symbol.
func SummarizeSector(rows []Row, threshold float64, sectors map[string]string) *SectorPerformance {
	if len(rows) == 0 || rows[0].Symbol == "" {
		return nil
	}

	symbol := rows[0].Symbol
	sector, ok := sectors[symbol]
	if !ok {
		sector = UnknownSector
	}

	var sum float64
	highDays := 0
	for i := range rows {
		sum += rows[i].DeliveryPct
		if rows[i].DeliveryPct > threshold {
			highDays++
		}
	}

	return &SectorPerformance{
		Symbol:           symbol,
		Sector:           sector,
		AvgDelivery:      sum / float64(len(rows)),
		HighDeliveryDays: highDays,
	}
}
