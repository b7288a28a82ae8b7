// src/analytics/health.go
package analytics

import (
	"math"

	"github.com/username/deriverse/backend/src/models"
)

// assumedStartingCapital anchors the drawdown sub-score. It is a documented
// constant, not a configuration knob: the score grades loss size relative to
// a nominal $10,000 account.
const assumedStartingCapital = 10000.0

// CalculateHealthScore blends three step-function sub-scores into the 0-100
// composite. The thresholds are deliberately coarse steps; do not smooth
// them.
//
// Weights: 30% win rate, 40% risk/reward, 30% drawdown resilience. The grade
// table defines an F, but the sub-score floors put the minimum composite at
// 40 (grade D), so F is unreachable. Kept as-is; a regression test pins it.
func CalculateHealthScore(stats models.PortfolioStats) models.HealthScore {
	// 1. Win rate score. The 40-65% band scores best: higher usually means
	// profits taken too early, lower means the strategy needs a high R:R.
	wr := stats.WinRate
	var winRateScore int
	switch {
	case wr >= 40 && wr <= 65:
		winRateScore = 100
	case wr > 65:
		winRateScore = 80
	case wr >= 30:
		winRateScore = 70
	default:
		winRateScore = 40
	}

	// 2. Risk/reward score: average win vs average loss.
	avgLoss := math.Abs(stats.AverageLoss)
	if avgLoss == 0 {
		avgLoss = 1 // avoid division by zero
	}
	rrRatio := stats.AverageWin / avgLoss

	var rrScore int
	switch {
	case rrRatio >= 2.0:
		rrScore = 100
	case rrRatio >= 1.5:
		rrScore = 90
	case rrRatio >= 1.0:
		rrScore = 70
	default:
		rrScore = 50
	}

	// 3. Drawdown score: largest single loss relative to assumed capital.
	estimatedDrawdown := math.Abs(stats.LargestLoss) / assumedStartingCapital

	var riskScore int
	switch {
	case estimatedDrawdown < 0.05:
		riskScore = 100
	case estimatedDrawdown < 0.10:
		riskScore = 80
	case estimatedDrawdown < 0.20:
		riskScore = 60
	default:
		riskScore = 40
	}

	total := int(math.Round(
		float64(winRateScore)*0.3 + float64(rrScore)*0.4 + float64(riskScore)*0.3,
	))

	grade := "F"
	switch {
	case total >= 90:
		grade = "A+"
	case total >= 80:
		grade = "A"
	case total >= 70:
		grade = "B"
	case total >= 60:
		grade = "C"
	default:
		grade = "D"
	}

	return models.HealthScore{
		Score:        total,
		Grade:        grade,
		WinRateScore: winRateScore,
		RiskReward:   rrRatio,
		RiskScore:    riskScore,
		RRScore:      rrScore,
	}
}
