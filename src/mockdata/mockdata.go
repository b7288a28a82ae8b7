// src/mockdata/mockdata.go
package mockdata

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/username/deriverse/backend/src/models"
)

// Demo dataset generator. It authors a month-long narrative arc — a learning
// phase of mixed small results, a winning streak, an overconfidence drawdown
// with one outsized loss, and a disciplined recovery — then layers seeded
// random filler trades underneath for older history. The dashboard falls back
// to this set whenever live acquisition cannot produce records.

var symbols = []string{
	"SOL-PERP",
	"BTC-PERP",
	"ETH-PERP",
	"JUP-PERP",
	"BONK-PERP",
}

var basePrices = map[string]float64{
	"SOL-PERP":  98.5,
	"BTC-PERP":  43200,
	"ETH-PERP":  2450,
	"JUP-PERP":  0.85,
	"BONK-PERP": 0.000012,
}

// defaultSeed makes the default dataset reproducible across restarts so the
// demo dashboard always tells the same story.
const defaultSeed = 1337

// Generator produces the synthetic trade set. The narrative PnL figures are
// authored constants; the seeded rng only jitters entry prices and times of
// day and drives the filler batch.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// New returns a generator anchored at the current time with the fixed
// default seed.
func New() *Generator {
	return NewAt(defaultSeed, time.Now())
}

// NewAt returns a generator with an explicit seed and anchor time. Tests use
// this to pin the dataset completely.
func NewAt(seed int64, now time.Time) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), now: now}
}

// Narrative returns the authored story-arc trades, most recent first.
func (g *Generator) Narrative() []models.Trade {
	var trades []models.Trade

	add := func(daysAgo float64, symbol string, side models.Side, orderType models.OrderType, sizeMult, pnl, durationHours float64) {
		trades = append(trades, g.makeTrade(len(trades), daysAgo, symbol, side, orderType, sizeMult, pnl, durationHours))
	}

	// Week 1: learning phase (mixed results, small positions)
	add(27, "SOL-PERP", models.SideLong, models.OrderMarket, 0.5, 45, 5)
	add(26, "SOL-PERP", models.SideShort, models.OrderLimit, 0.3, -25, 3)
	add(25, "ETH-PERP", models.SideLong, models.OrderMarket, 0.2, 30, 2)
	add(24, "BTC-PERP", models.SideLong, models.OrderLimit, 0.1, -15, 1)
	add(23, "SOL-PERP", models.SideShort, models.OrderMarket, 0.4, 35, 4)

	// Week 2: building confidence (winning streak)
	add(20, "SOL-PERP", models.SideLong, models.OrderLimit, 1.2, 120, 8)
	add(19, "ETH-PERP", models.SideLong, models.OrderMarket, 0.8, 95, 6)
	add(18, "BTC-PERP", models.SideLong, models.OrderLimit, 0.5, 85, 4)
	add(17, "JUP-PERP", models.SideLong, models.OrderMarket, 2.0, 150, 12)
	add(16, "SOL-PERP", models.SideShort, models.OrderLimit, 1.5, 110, 10)

	// Week 3: overconfidence (big loss, drawdown event)
	add(15, "SOL-PERP", models.SideLong, models.OrderMarket, 3.0, 75, 15)
	add(14, "BTC-PERP", models.SideLong, models.OrderLimit, 2.5, -450, 20) // overleveraged
	add(13, "ETH-PERP", models.SideShort, models.OrderMarket, 1.0, -120, 8)
	add(12, "SOL-PERP", models.SideLong, models.OrderMarket, 0.8, -65, 5)

	// Week 4: recovery and risk management (smaller positions, steady gains)
	add(10, "SOL-PERP", models.SideLong, models.OrderLimit, 0.6, 55, 6)
	add(9, "ETH-PERP", models.SideShort, models.OrderLimit, 0.5, 45, 4)
	add(8, "BTC-PERP", models.SideLong, models.OrderLimit, 0.4, 60, 5)
	add(7, "JUP-PERP", models.SideLong, models.OrderMarket, 1.0, 80, 8)
	add(6, "SOL-PERP", models.SideShort, models.OrderLimit, 0.7, -30, 3)
	add(5, "BONK-PERP", models.SideLong, models.OrderMarket, 5.0, 95, 10)

	// Current week: consistent performance
	add(4, "SOL-PERP", models.SideLong, models.OrderLimit, 1.0, 85, 7)
	add(3, "ETH-PERP", models.SideLong, models.OrderMarket, 0.6, 50, 5)
	add(2, "BTC-PERP", models.SideShort, models.OrderLimit, 0.5, 65, 4)
	add(1, "SOL-PERP", models.SideLong, models.OrderLimit, 0.8, 70, 6)
	add(0.5, "JUP-PERP", models.SideShort, models.OrderMarket, 1.2, -25, 2)

	reverse(trades) // most recent first
	return trades
}

// Trades returns the narrative arc plus fillerCount randomized older trades,
// most recent first. Filler wins ~55% of the time with magnitudes in
// [+20,+80] / [-10,-50] and sits 28+ days back so it never disturbs the arc.
func (g *Generator) Trades(fillerCount int) []models.Trade {
	trades := g.Narrative()

	var filler []models.Trade
	for i := 0; i < fillerCount; i++ {
		daysAgo := 28 + float64(i)*0.5
		symbol := symbols[g.rng.Intn(len(symbols))]
		side := models.SideLong
		if g.rng.Float64() > 0.5 {
			side = models.SideShort
		}
		orderType := models.OrderMarket
		if g.rng.Float64() > 0.6 {
			orderType = models.OrderLimit
		}
		var pnl float64
		if g.rng.Float64() > 0.45 {
			pnl = g.rng.Float64()*60 + 20
		} else {
			pnl = -(g.rng.Float64()*40 + 10)
		}
		filler = append(filler, g.makeTrade(
			len(trades)+len(filler),
			daysAgo,
			symbol,
			side,
			orderType,
			g.rng.Float64()*0.8+0.2,
			pnl,
			g.rng.Float64()*10+1,
		))
	}

	reverse(filler)
	return append(trades, filler...)
}

func (g *Generator) makeTrade(index int, daysAgo float64, symbol string, side models.Side, orderType models.OrderType, sizeMult, pnl, durationHours float64) models.Trade {
	basePrice, ok := basePrices[symbol]
	if !ok {
		basePrice = 100
	}

	size := sizeMult * 100
	entryPrice := basePrice * (1 + (g.rng.Float64()*0.02 - 0.01)) // +/-1% variance

	pnlPercent := pnl / size
	var exitPrice float64
	if side == models.SideLong {
		exitPrice = entryPrice * (1 + pnlPercent)
	} else {
		exitPrice = entryPrice * (1 - pnlPercent)
	}

	// Randomize time of day (+/-12h) so trades don't all land at the same hour
	timeVariance := time.Duration((g.rng.Float64()*24 - 12) * float64(time.Hour))
	timestamp := g.now.Add(-time.Duration(daysAgo*24*float64(time.Hour))).Add(timeVariance)

	notes := ""
	if pnl > 100 {
		notes = "Strong momentum"
	} else if pnl < -100 {
		notes = "Cut loss"
	}

	return models.Trade{
		ID:         fmt.Sprintf("trade-%d", index+1),
		Timestamp:  timestamp.UnixMilli(),
		Symbol:     symbol,
		Side:       side,
		OrderType:  orderType,
		EntryPrice: entryPrice,
		ExitPrice:  &exitPrice,
		Size:       size,
		PnL:        pnl,
		Fees:       size * 0.0005, // 0.05%, realistic for perps
		Duration:   int64(durationHours * 3600),
		Status:     models.StatusClosed,
		Notes:      notes,
	}
}

func reverse(trades []models.Trade) {
	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}
}

// Symbols returns the instrument set the generator draws from.
func Symbols() []string {
	out := make([]string, len(symbols))
	copy(out, symbols)
	return out
}
