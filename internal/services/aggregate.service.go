package services

import "diskpanel/internal/models"

// Summarize adds up used and free space across records. It is the only place
// totals are computed, so the summary text and the aggregate chart always
// agree. An empty input yields zero totals.
func Summarize(records []models.VolumeRecord) models.SummaryTotals {
	var totals models.SummaryTotals
	for _, r := range records {
		totals.TotalUsedGB += r.UsedGB
		totals.TotalFreeGB += r.FreeGB
	}
	return totals
}
