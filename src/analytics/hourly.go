// src/analytics/hourly.go
package analytics

import (
	"github.com/username/deriverse/backend/src/models"
)

// HourlyBuckets partitions trades into 24 hour-of-day buckets. All 24 are
// always present, empty ones included, so the chart keeps a continuous axis.
func HourlyBuckets(trades []models.Trade) []models.HourlyBucket {
	buckets := make([]models.HourlyBucket, 24)
	for i := range buckets {
		buckets[i].Hour = i
	}

	for _, t := range trades {
		h := t.Time().Local().Hour()
		buckets[h].PnL += t.PnL
		buckets[h].Count++
	}

	for i := range buckets {
		if buckets[i].Count > 0 {
			buckets[i].AvgPnL = buckets[i].PnL / float64(buckets[i].Count)
		}
	}
	return buckets
}
