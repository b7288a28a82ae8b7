// src/analytics/drawdown.go
package analytics

import (
	"sort"

	"github.com/username/deriverse/backend/src/models"
)

// DrawdownSeries emits, per trade in timestamp order, the deficit of
// cumulative PnL below its running peak. Values are always <= 0 and the
// sample at the peak itself is exactly 0. The scan is order-dependent by
// construction, so the input is copied and sorted rather than mutated.
func DrawdownSeries(trades []models.Trade) []models.DrawdownPoint {
	if len(trades) == 0 {
		return []models.DrawdownPoint{}
	}

	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	points := make([]models.DrawdownPoint, 0, len(sorted))
	var cumulativePnl, maxPnl float64
	for _, t := range sorted {
		cumulativePnl += t.PnL
		if cumulativePnl > maxPnl {
			maxPnl = cumulativePnl
		}
		points = append(points, models.DrawdownPoint{
			Timestamp: t.Timestamp,
			Drawdown:  cumulativePnl - maxPnl,
		})
	}
	return points
}
