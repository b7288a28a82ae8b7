// src/services/acquisition.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/deriverse/backend/src/deriverse"
	"github.com/username/deriverse/backend/src/logger"
	"github.com/username/deriverse/backend/src/mockdata"
	"github.com/username/deriverse/backend/src/models"
)

// Source identifies where a resolved trade set came from.
type Source string

const (
	SourceLive   Source = "live"
	SourceMock   Source = "mock"
	SourceGlobal Source = "global"
)

// AcquisitionResult is the terminal state of one fetch cycle. Acquisition
// always resolves to a trade set — possibly synthetic — plus a mode flag; it
// never propagates an error to the caller. Diagnostic carries the
// human-readable reason whenever the mock fallback was taken, and Err keeps
// the raw cause for display.
type AcquisitionResult struct {
	Trades     []models.Trade
	Source     Source
	IsMock     bool
	Diagnostic string
	Err        error
}

// AccountSampler is the optional global-market capability of an engine.
type AccountSampler interface {
	SampleProgramAccounts(ctx context.Context, limit int) ([]string, error)
}

const instrumentCacheKey = "instrument-headers"

// AcquisitionService coordinates calls against the external engine, applies
// the timeout/fallback policy, and normalizes the heterogeneous source shapes
// into Trade records.
type AcquisitionService struct {
	holder        *deriverse.Holder
	instrumentTTL *cache.Cache
	timeout       time.Duration
	fillerTrades  int
	sampleLimit   int
}

func NewAcquisitionService(holder *deriverse.Holder, instrumentTTL *cache.Cache, timeout time.Duration, fillerTrades, sampleLimit int) *AcquisitionService {
	return &AcquisitionService{
		holder:        holder,
		instrumentTTL: instrumentTTL,
		timeout:       timeout,
		fillerTrades:  fillerTrades,
		sampleLimit:   sampleLimit,
	}
}

// mockSet builds a fresh synthetic dataset. Deterministic seed, anchored at
// the current time, always non-empty.
func (s *AcquisitionService) mockSet() []models.Trade {
	return mockdata.New().Trades(s.fillerTrades)
}

func (s *AcquisitionService) fallback(diagnostic string, err error) AcquisitionResult {
	if err != nil {
		logger.L.Warn("Acquisition falling back to simulated data", "reason", diagnostic, "error", err)
	} else {
		logger.L.Info("Acquisition using simulated data", "reason", diagnostic)
	}
	return AcquisitionResult{
		Trades:     s.mockSet(),
		Source:     SourceMock,
		IsMock:     true,
		Diagnostic: diagnostic,
		Err:        err,
	}
}

// FetchUserTrades runs one personal-mode acquisition cycle:
// Loading -> {LiveSuccess, MockFallback}. Every failure kind — missing
// wallet, binding incompatibility, retrieval error, timeout, empty result,
// unexpected panic — lands in the mock fallback with its own diagnostic.
func (s *AcquisitionService) FetchUserTrades(ctx context.Context, wallet string, forceMock bool) AcquisitionResult {
	if forceMock {
		return s.fallback("simulated data enabled in settings", nil)
	}
	if wallet == "" {
		return s.fallback("no wallet connected", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	trades, err := s.fetchLive(ctx, wallet)
	if err != nil {
		switch {
		case errors.Is(err, deriverse.ErrNoAccount):
			return s.fallback("no Deriverse account found for wallet", err)
		case errors.Is(err, deriverse.ErrIncompatibleLayout):
			// The account exists; only its layout defeated us. Keep that
			// diagnostic distinct from plain absence.
			return s.fallback("account detected, compatibility degraded (engine version mismatch)", err)
		default:
			return s.fallback("live fetch failed", err)
		}
	}
	if len(trades) == 0 {
		return s.fallback("live source returned no records", nil)
	}

	logger.L.Info("Live acquisition succeeded", "wallet", wallet, "records", len(trades))
	return AcquisitionResult{Trades: trades, Source: SourceLive}
}

// fetchLive is the only place engine errors and panics can originate; both
// are converted to plain errors here so the orchestrator boundary holds.
func (s *AcquisitionService) fetchLive(ctx context.Context, wallet string) (trades []models.Trade, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.L.Error("Recovered panic during live acquisition", "panic", r)
			err = fmt.Errorf("live acquisition panicked: %v", r)
			trades = nil
		}
	}()

	engine, err := s.holder.Engine()
	if err != nil {
		return nil, fmt.Errorf("engine initialization: %w", err)
	}

	if err := engine.BindIdentity(ctx, wallet); err != nil {
		return nil, err
	}

	snapshot, err := engine.GetAccountSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("account snapshot: %w", err)
	}

	symbols := s.instrumentSymbols(ctx, engine)
	now := time.Now()

	var sources []sourceRecord
	for _, pos := range snapshot.PerpPositions {
		if pos.Perps != 0 {
			sources = append(sources, perpPositionSource{pos: pos, symbol: symbols(pos.InstrID)})
		}
		for _, side := range []deriverse.OrderSide{deriverse.Bid, deriverse.Ask} {
			orders, err := engine.GetOpenOrders(ctx, pos.InstrID, side)
			if err != nil {
				// One instrument's book failing should not sink the cycle.
				logger.L.Warn("Skipping open orders for instrument", "instrId", pos.InstrID, "error", err)
				continue
			}
			for _, order := range orders {
				sources = append(sources, perpOrderSource{
					instrID: pos.InstrID,
					side:    side,
					order:   order,
					symbol:  symbols(pos.InstrID),
				})
			}
		}
	}
	for _, pos := range snapshot.SpotPositions {
		for _, side := range []deriverse.OrderSide{deriverse.Bid, deriverse.Ask} {
			orders, err := engine.GetOpenOrders(ctx, pos.InstrID, side)
			if err != nil {
				logger.L.Warn("Skipping spot orders for instrument", "instrId", pos.InstrID, "error", err)
				continue
			}
			for _, order := range orders {
				sources = append(sources, spotOrderSource{instrID: pos.InstrID, side: side, order: order})
			}
		}
	}

	// No positions or orders, but deposited funds: surface the deposit so the
	// account doesn't read as empty.
	if len(sources) == 0 {
		for _, balance := range snapshot.TokenBalances {
			if balance.TokenID == deriverse.UsdcTokenID && balance.Amount > 0 {
				sources = append(sources, depositSource{tokenID: balance.TokenID, amount: balance.Amount})
			}
		}
	}

	return normalizeAll(sources, now), nil
}

// instrumentSymbols returns a resolver over the (cached) instrument headers.
// Header retrieval failing only costs us display names, never the cycle.
func (s *AcquisitionService) instrumentSymbols(ctx context.Context, engine deriverse.Engine) func(int) string {
	var headers map[int]deriverse.InstrumentHeader
	if cached, ok := s.instrumentTTL.Get(instrumentCacheKey); ok {
		headers = cached.(map[int]deriverse.InstrumentHeader)
	} else {
		fetched, err := engine.ListInstruments(ctx)
		if err != nil {
			logger.L.Warn("Instrument header fetch failed; using generic symbols", "error", err)
		} else {
			headers = fetched
			s.instrumentTTL.Set(instrumentCacheKey, fetched, cache.DefaultExpiration)
		}
	}
	return func(instrID int) string {
		if header, ok := headers[instrID]; ok && header.Symbol != "" {
			return header.Symbol
		}
		return fmt.Sprintf("PERP-%d", instrID)
	}
}

// FetchGlobalTrades samples program-owned accounts and derives a market
// activity set from them. No identity binding is involved. Until per-account
// decode lands, the records are simulated from the sampled accounts.
func (s *AcquisitionService) FetchGlobalTrades(ctx context.Context) AcquisitionResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	engine, err := s.holder.Engine()
	if err != nil {
		return s.fallback("engine initialization failed", err)
	}

	sampler, ok := engine.(AccountSampler)
	if !ok {
		return s.fallback("global sampling unsupported by engine", nil)
	}

	pubkeys, err := sampler.SampleProgramAccounts(ctx, s.sampleLimit)
	if err != nil {
		return s.fallback("global market fetch failed", err)
	}
	if len(pubkeys) == 0 {
		return s.fallback("no program accounts found", nil)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()
	trades := make([]models.Trade, 0, len(pubkeys))
	for _, pubkey := range pubkeys {
		symbol := "SOL-PERP"
		if rng.Float64() > 0.5 {
			symbol = "BTC-PERP"
		}
		side := models.SideLong
		if rng.Float64() > 0.5 {
			side = models.SideShort
		}
		orderType := models.OrderMarket
		if rng.Float64() > 0.8 {
			orderType = models.OrderLimit
		}
		entry := 100 + rng.Float64()*1000
		exit := 100 + rng.Float64()*1000
		trades = append(trades, models.Trade{
			ID:         pubkey,
			Timestamp:  now.Add(-time.Duration(rng.Float64() * 24 * float64(time.Hour))).UnixMilli(),
			Symbol:     symbol,
			Side:       side,
			OrderType:  orderType,
			EntryPrice: entry,
			ExitPrice:  &exit,
			Size:       1000 + rng.Float64()*5000,
			PnL:        rng.Float64()*100 - 50,
			Fees:       1.5,
			Duration:   int64(rng.Float64() * 3600),
		})
	}

	logger.L.Info("Global acquisition succeeded", "records", len(trades))
	return AcquisitionResult{Trades: trades, Source: SourceGlobal}
}
