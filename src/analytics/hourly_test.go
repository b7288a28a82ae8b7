// src/analytics/hourly_test.go
package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/deriverse/backend/src/models"
)

func tradeAtHour(hour int, pnl float64) models.Trade {
	ts := time.Date(2024, 3, 15, hour, 30, 0, 0, time.Local)
	return models.Trade{Timestamp: ts.UnixMilli(), PnL: pnl}
}

func TestHourlyBuckets_Always24(t *testing.T) {
	buckets := HourlyBuckets(nil)
	require.Len(t, buckets, 24)
	for i, b := range buckets {
		assert.Equal(t, i, b.Hour)
		assert.Equal(t, 0, b.Count)
		assert.Equal(t, 0.0, b.AvgPnL)
	}
}

func TestHourlyBuckets_Aggregation(t *testing.T) {
	trades := []models.Trade{
		tradeAtHour(9, 100),
		tradeAtHour(9, -40),
		tradeAtHour(14, 25),
	}

	buckets := HourlyBuckets(trades)
	require.Len(t, buckets, 24)

	assert.Equal(t, 2, buckets[9].Count)
	assert.Equal(t, 60.0, buckets[9].PnL)
	assert.Equal(t, 30.0, buckets[9].AvgPnL)
	assert.Equal(t, 1, buckets[14].Count)
	assert.Equal(t, 25.0, buckets[14].AvgPnL)
	assert.Equal(t, 0, buckets[3].Count)
}

func TestHourlyBuckets_CountConservation(t *testing.T) {
	var trades []models.Trade
	for i := 0; i < 100; i++ {
		trades = append(trades, tradeAtHour(i%24, float64(i)))
	}

	total := 0
	for _, b := range HourlyBuckets(trades) {
		total += b.Count
	}
	assert.Equal(t, len(trades), total)
}
