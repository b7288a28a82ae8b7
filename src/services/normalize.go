// src/services/normalize.go
package services

import (
	"fmt"
	"math"
	"time"

	"github.com/username/deriverse/backend/src/deriverse"
	"github.com/username/deriverse/backend/src/models"
)

// The engine reports account state in four heterogeneous shapes. Each shape
// is its own variant with its own normalization into a Trade record, instead
// of one function probing fields. The engine cannot recover historical fill
// times, so every live record carries a best-effort "now" timestamp.
type sourceRecord interface {
	normalize(now time.Time) models.Trade
}

// perpPositionSource: a non-zero net perp position becomes a single open
// "position" record per instrument. Entry price is approximated as
// |cost / size| since the engine only stores the aggregate cost.
type perpPositionSource struct {
	pos    deriverse.PerpPosition
	symbol string
}

func (s perpPositionSource) normalize(now time.Time) models.Trade {
	size := s.pos.Perps
	divisor := size
	if divisor == 0 {
		divisor = 1
	}
	side := models.SideLong
	if size < 0 {
		side = models.SideShort
	}
	return models.Trade{
		ID:         fmt.Sprintf("pos-%d-%d", s.pos.InstrID, s.pos.ClientID),
		Timestamp:  now.UnixMilli(),
		Symbol:     s.symbol,
		Side:       side,
		OrderType:  models.OrderMarket,
		EntryPrice: math.Abs(s.pos.Cost / divisor),
		ExitPrice:  nil,
		Size:       math.Abs(size),
		PnL:        s.pos.Result / deriverse.QuoteDecimals,
		Fees:       s.pos.Fees / deriverse.QuoteDecimals,
		Duration:   0,
		Status:     models.StatusOpen,
	}
}

// perpOrderSource: a resting perp order becomes an open record with zero
// realized result. Bids map to long, asks to short.
type perpOrderSource struct {
	instrID int
	side    deriverse.OrderSide
	order   deriverse.OrderEntry
	symbol  string
}

func (s perpOrderSource) normalize(now time.Time) models.Trade {
	return normalizeOrder(now, s.instrID, s.side, s.order, s.symbol, "bid", "ask")
}

// spotOrderSource: same as a perp order, SPOT-prefixed symbol.
type spotOrderSource struct {
	instrID int
	side    deriverse.OrderSide
	order   deriverse.OrderEntry
}

func (s spotOrderSource) normalize(now time.Time) models.Trade {
	symbol := fmt.Sprintf("SPOT-%d", s.instrID)
	return normalizeOrder(now, s.instrID, s.side, s.order, symbol, "spot-bid", "spot-ask")
}

func normalizeOrder(now time.Time, instrID int, side deriverse.OrderSide, order deriverse.OrderEntry, symbol, bidTag, askTag string) models.Trade {
	tag := bidTag
	tradeSide := models.SideLong
	if side == deriverse.Ask {
		tag = askTag
		tradeSide = models.SideShort
	}
	return models.Trade{
		ID:         fmt.Sprintf("%d-%s-%d", instrID, tag, order.OrderID),
		Timestamp:  now.UnixMilli(),
		Symbol:     symbol,
		Side:       tradeSide,
		OrderType:  models.OrderLimit,
		EntryPrice: order.Price,
		ExitPrice:  nil,
		Size:       order.Quantity,
		PnL:        0,
		Fees:       0,
		Duration:   0,
		Status:     models.StatusOpen,
	}
}

// depositSource: when an account holds a quote balance but no positions or
// orders, one informational closed record represents the deposit, so the
// consumer never sees "has account but zero records" while money sits there.
type depositSource struct {
	tokenID int
	amount  float64 // raw units
}

func (s depositSource) normalize(now time.Time) models.Trade {
	one := 1.0
	return models.Trade{
		ID:         fmt.Sprintf("dep-%d", s.tokenID),
		Timestamp:  now.UnixMilli(),
		Symbol:     "USDC Deposit",
		Side:       models.SideLong,
		OrderType:  models.OrderMarket,
		EntryPrice: 1,
		ExitPrice:  &one,
		Size:       s.amount / deriverse.QuoteDecimals,
		PnL:        0,
		Fees:       0,
		Duration:   0,
		Status:     models.StatusClosed,
		Notes:      "Deposit Balance",
	}
}

func normalizeAll(sources []sourceRecord, now time.Time) []models.Trade {
	trades := make([]models.Trade, 0, len(sources))
	for _, s := range sources {
		trades = append(trades, s.normalize(now))
	}
	return trades
}
