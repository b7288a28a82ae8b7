// src/services/viewstate_test.go
package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/deriverse/backend/src/deriverse"
	"github.com/username/deriverse/backend/src/models"
)

// gatedEngine blocks inside BindIdentity until released, so a test can park
// one refresh mid-flight while a newer one overtakes it.
type gatedEngine struct {
	fakeEngine
	entered chan struct{}
	release chan struct{}
}

func (g *gatedEngine) BindIdentity(ctx context.Context, wallet string) error {
	g.entered <- struct{}{}
	<-g.release
	return deriverse.ErrNoAccount
}

func newTestViewState(engine deriverse.Engine, useMockData bool) *ViewState {
	return NewViewState(newTestService(engine), useMockData)
}

func seedTrades(v *ViewState, trades []models.Trade) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.allTrades = trades
	v.isLoading = false
	v.recomputeLocked()
}

func tradeAt(id, symbol string, ts time.Time) models.Trade {
	return models.Trade{
		ID:         id,
		Timestamp:  ts.UnixMilli(),
		Symbol:     symbol,
		Side:       models.SideLong,
		OrderType:  models.OrderMarket,
		EntryPrice: 100,
		Size:       1,
		Status:     models.StatusClosed,
	}
}

func TestNewViewState_Defaults(t *testing.T) {
	v := newTestViewState(&fakeEngine{}, false)

	assert.Equal(t, "All", v.Filters().Symbol)
	status := v.Status()
	assert.Equal(t, ViewPersonal, status.ViewMode)
	assert.True(t, status.IsLoading, "loading until the first refresh lands")
}

func TestRefresh_ForcedMockResolvesState(t *testing.T) {
	v := newTestViewState(&fakeEngine{}, true)

	v.Refresh(context.Background(), "Wallet")

	status := v.Status()
	assert.Equal(t, SourceMock, status.Source)
	assert.True(t, status.IsMock)
	assert.False(t, status.IsLoading)
	assert.Equal(t, "simulated data enabled in settings", status.Diagnostic)
	assert.NotEmpty(t, v.AllTrades())
	assert.Equal(t, "Wallet", v.Wallet())
}

func TestRefresh_StaleResultIsDiscarded(t *testing.T) {
	engine := &gatedEngine{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	v := newTestViewState(engine, false)

	done := make(chan struct{})
	go func() {
		defer close(done)
		v.Refresh(context.Background(), "SlowWallet")
	}()
	<-engine.entered // the slow refresh is now parked inside the engine

	// A newer trigger lands while the first is still in flight.
	v.SetUseMockData(true)
	v.Refresh(context.Background(), "FastWallet")

	close(engine.release)
	<-done

	// The slow result (a no-account fallback) must not overwrite the newer one.
	status := v.Status()
	assert.Equal(t, "simulated data enabled in settings", status.Diagnostic)
	assert.False(t, status.IsLoading)
	assert.Empty(t, status.LastError)
}

func TestRefresh_ConcurrentTriggersAlwaysSettle(t *testing.T) {
	v := newTestViewState(&fakeEngine{}, true)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.Refresh(context.Background(), "Wallet")
		}()
	}
	wg.Wait()

	// Whichever trigger holds the newest token runs its loading flip last and
	// applies; no interleaving may leave the state stuck loading.
	status := v.Status()
	assert.False(t, status.IsLoading)
	assert.Equal(t, SourceMock, status.Source)
	assert.NotEmpty(t, v.AllTrades())
}

func TestRefresh_GlobalModeUsesSampler(t *testing.T) {
	v := newTestViewState(&fakeEngine{sampled: []string{"Acc1", "Acc2"}}, false)
	v.SetViewMode(ViewGlobal)

	v.Refresh(context.Background(), "")

	status := v.Status()
	assert.Equal(t, SourceGlobal, status.Source)
	assert.Equal(t, ViewGlobal, status.ViewMode)
	assert.False(t, status.IsMock)
	assert.Len(t, v.AllTrades(), 2)
}

func TestSetViewMode_DoesNotFetch(t *testing.T) {
	v := newTestViewState(&fakeEngine{}, false)

	v.SetViewMode(ViewGlobal)

	status := v.Status()
	assert.Equal(t, ViewGlobal, status.ViewMode)
	assert.Empty(t, status.Source, "no acquisition ran yet")
	assert.Empty(t, v.AllTrades())
}

func TestSymbolFilter_Recompute(t *testing.T) {
	now := time.Now()
	v := newTestViewState(&fakeEngine{}, false)
	seedTrades(v, []models.Trade{
		tradeAt("a", "SOL-PERP", now),
		tradeAt("b", "BTC-PERP", now),
		tradeAt("c", "SOL-PERP", now),
	})

	v.SetSymbolFilter("SOL-PERP")
	require.Len(t, v.FilteredTrades(), 2)
	for _, tr := range v.FilteredTrades() {
		assert.Equal(t, "SOL-PERP", tr.Symbol)
	}

	// Empty resets to the sentinel and restores the full view.
	v.SetSymbolFilter("")
	assert.Equal(t, "All", v.Filters().Symbol)
	assert.Len(t, v.FilteredTrades(), 3)
}

func TestDateRangeFilter_InclusiveBounds(t *testing.T) {
	base := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	v := newTestViewState(&fakeEngine{}, false)
	seedTrades(v, []models.Trade{
		tradeAt("before", "SOL-PERP", base.Add(-48*time.Hour)),
		tradeAt("from", "SOL-PERP", base),
		tradeAt("inside", "SOL-PERP", base.Add(12*time.Hour)),
		tradeAt("to", "SOL-PERP", base.Add(24*time.Hour)),
		tradeAt("after", "SOL-PERP", base.Add(72*time.Hour)),
	})

	from := base
	to := base.Add(24 * time.Hour)
	v.SetDateRangeFilter(models.DateRange{From: &from, To: &to})

	filtered := v.FilteredTrades()
	require.Len(t, filtered, 3)
	ids := []string{filtered[0].ID, filtered[1].ID, filtered[2].ID}
	assert.Equal(t, []string{"from", "inside", "to"}, ids)
}

func TestDateRangeFilter_NilToCollapsesToFrom(t *testing.T) {
	base := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	v := newTestViewState(&fakeEngine{}, false)
	seedTrades(v, []models.Trade{
		tradeAt("exact", "SOL-PERP", base),
		tradeAt("later", "SOL-PERP", base.Add(time.Hour)),
	})

	from := base
	v.SetDateRangeFilter(models.DateRange{From: &from})

	filtered := v.FilteredTrades()
	require.Len(t, filtered, 1)
	assert.Equal(t, "exact", filtered[0].ID)
}

func TestFiltering_NeverMutatesAllTrades(t *testing.T) {
	now := time.Now()
	v := newTestViewState(&fakeEngine{}, false)
	seedTrades(v, []models.Trade{
		tradeAt("a", "SOL-PERP", now),
		tradeAt("b", "BTC-PERP", now),
	})

	v.SetSymbolFilter("SOL-PERP")

	all := v.AllTrades()
	require.Len(t, all, 2)

	// Returned slices are copies; writing through them cannot reach the state.
	all[0].Symbol = "MUTATED"
	assert.Equal(t, "SOL-PERP", v.AllTrades()[0].Symbol)
}

func TestSetUseMockData_TakesEffectOnNextRefresh(t *testing.T) {
	v := newTestViewState(&fakeEngine{bindErr: deriverse.ErrNoAccount}, false)

	v.Refresh(context.Background(), "Wallet")
	assert.Contains(t, v.Status().Diagnostic, "no Deriverse account")
	assert.False(t, v.UseMockData())

	v.SetUseMockData(true)
	v.Refresh(context.Background(), "Wallet")
	assert.Equal(t, "simulated data enabled in settings", v.Status().Diagnostic)
	assert.Empty(t, v.Status().LastError)
}
