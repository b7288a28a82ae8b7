// src/analytics/calculations.go
package analytics

import (
	"github.com/username/deriverse/backend/src/models"
)

// Pure portfolio calculations. Everything in this package is side-effect-free
// and linear in the number of trades, so callers recompute per request
// instead of caching.

// CalculateTotalPnl sums realized PnL over the set. Empty input yields 0.
func CalculateTotalPnl(trades []models.Trade) float64 {
	var sum float64
	for _, t := range trades {
		sum += t.PnL
	}
	return sum
}

// CalculateWinRate returns the winning percentage in [0,100]. A trade wins
// when its PnL is strictly positive. Empty input yields 0, not NaN.
func CalculateWinRate(trades []models.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(trades)) * 100
}

// CalculateNotionalVolume sums size*entryPrice over the set. The headline
// volume metric uses this; PortfolioStats.TotalVolume sums raw size instead,
// and the two are deliberately distinct operations.
func CalculateNotionalVolume(trades []models.Trade) float64 {
	var sum float64
	for _, t := range trades {
		sum += t.Size * t.EntryPrice
	}
	return sum
}

// CalculateStats derives the full PortfolioStats snapshot. Every field of the
// empty-input result is its documented zero default.
func CalculateStats(trades []models.Trade) models.PortfolioStats {
	if len(trades) == 0 {
		return models.PortfolioStats{}
	}

	stats := models.PortfolioStats{
		TotalPnl:   CalculateTotalPnl(trades),
		TradeCount: len(trades),
		WinRate:    CalculateWinRate(trades),
	}

	var (
		winSum, lossSum   float64
		winCount, lossCnt int
		totalDuration     float64
	)

	stats.LargestGain = trades[0].PnL
	stats.LargestLoss = trades[0].PnL

	for _, t := range trades {
		stats.TotalVolume += t.Size
		stats.TotalFees += t.Fees
		totalDuration += float64(t.Duration)

		if t.PnL > 0 {
			winSum += t.PnL
			winCount++
		} else {
			lossSum += t.PnL
			lossCnt++
		}

		if t.PnL > stats.LargestGain {
			stats.LargestGain = t.PnL
		}
		if t.PnL < stats.LargestLoss {
			stats.LargestLoss = t.PnL
		}

		switch t.Side {
		case models.SideLong:
			stats.LongShortRatio.Long++
		case models.SideShort:
			stats.LongShortRatio.Short++
		}
	}

	stats.AverageDuration = totalDuration / float64(len(trades))
	if winCount > 0 {
		stats.AverageWin = winSum / float64(winCount)
	}
	if lossCnt > 0 {
		stats.AverageLoss = lossSum / float64(lossCnt)
	}
	return stats
}
