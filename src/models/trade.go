// src/models/trade.go
package models

import "time"

// Side of a trade.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// OrderType of the entry order.
type OrderType string

const (
	OrderMarket OrderType = "market"
	OrderLimit  OrderType = "limit"
)

// TradeStatus marks a record as open or closed. An empty status means closed;
// older payloads omit the field entirely.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "open"
	StatusClosed TradeStatus = "closed"
)

// Trade is the atomic unit of trading activity consumed by the analytics
// layer: a closed trade, an open position, or a resting order. Records are
// immutable once constructed; each acquisition cycle builds a fresh slice.
type Trade struct {
	ID         string      `json:"id"`
	Timestamp  int64       `json:"timestamp"` // Unix epoch, milliseconds
	Symbol     string      `json:"symbol"`    // e.g. "SOL-PERP"
	Side       Side        `json:"side"`
	OrderType  OrderType   `json:"orderType"`
	EntryPrice float64     `json:"entryPrice"`
	ExitPrice  *float64    `json:"exitPrice"` // nil while the position is open
	Size       float64     `json:"size"`
	PnL        float64     `json:"pnl"`  // realized, quote currency
	Fees       float64     `json:"fees"` // quote currency
	Duration   int64       `json:"duration"` // seconds held, 0 if unknown/open
	Status     TradeStatus `json:"status,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

// IsOpen reports whether the record represents a live position or order.
func (t Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

// Time returns the record timestamp as a time.Time.
func (t Trade) Time() time.Time {
	return time.UnixMilli(t.Timestamp)
}

// LongShortRatio carries the long/short trade counts.
type LongShortRatio struct {
	Long  int `json:"long"`
	Short int `json:"short"`
}

// PortfolioStats is the aggregate snapshot derived from a trade set. It is
// recomputed from scratch on every read; nothing here is persisted.
type PortfolioStats struct {
	TotalPnl        float64        `json:"totalPnl"`
	TotalVolume     float64        `json:"totalVolume"`
	TotalFees       float64        `json:"totalFees"`
	TradeCount      int            `json:"tradeCount"`
	WinRate         float64        `json:"winRate"` // percent
	AverageDuration float64        `json:"averageDuration"`
	LongShortRatio  LongShortRatio `json:"longShortRatio"`
	LargestGain     float64        `json:"largestGain"`
	LargestLoss     float64        `json:"largestLoss"`
	AverageWin      float64        `json:"averageWin"`
	AverageLoss     float64        `json:"averageLoss"`
}

// DateRange is an inclusive timestamp filter. A nil From disables the filter;
// a nil To collapses the range to the From day, matching the frontend picker.
type DateRange struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// Contains reports whether ts falls inside the range, inclusive on both ends.
func (r DateRange) Contains(ts time.Time) bool {
	if r.From == nil {
		return true
	}
	end := r.To
	if end == nil {
		end = r.From
	}
	return !ts.Before(*r.From) && !ts.After(*end)
}

// DrawdownPoint is one sample of the drawdown series.
type DrawdownPoint struct {
	Timestamp int64   `json:"timestamp"`
	Drawdown  float64 `json:"drawdown"` // always <= 0
}

// HourlyBucket aggregates performance for one hour of the day.
type HourlyBucket struct {
	Hour   int     `json:"hour"` // 0-23
	PnL    float64 `json:"pnl"`
	Count  int     `json:"count"`
	AvgPnL float64 `json:"avgPnl"`
}

// HealthScore is the composite 0-100 trading health metric.
type HealthScore struct {
	Score         int     `json:"score"`
	Grade         string  `json:"grade"`
	WinRateScore  int     `json:"winRateScore"`
	RiskReward    float64 `json:"riskReward"`
	RiskScore     int     `json:"riskScore"`
	RRScore       int     `json:"rrScore"`
}
