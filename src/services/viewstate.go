// src/services/viewstate.go
package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/username/deriverse/backend/src/models"
)

// ViewMode selects the acquisition policy: personal binds the connected
// wallet, global samples program-wide activity.
type ViewMode string

const (
	ViewPersonal ViewMode = "personal"
	ViewGlobal   ViewMode = "global"
)

// Filters is the user-chosen view filter state. Symbol "All" disables the
// symbol filter.
type Filters struct {
	Symbol    string           `json:"symbol"`
	DateRange models.DateRange `json:"dateRange"`
}

// Status is the acquisition status surfaced to the dashboard.
type Status struct {
	Source     Source   `json:"source"`
	ViewMode   ViewMode `json:"viewMode"`
	IsMock     bool     `json:"isMock"`
	IsLoading  bool     `json:"isLoading"`
	Diagnostic string   `json:"diagnostic,omitempty"`
	LastError  string   `json:"lastError,omitempty"`
}

// ViewState holds the active trade set, the acquisition mode, and the filter
// state, and recomputes the filtered view whenever any of them change. A
// monotonically increasing request token guards against a superseded fetch
// applying its result late: the latest trigger wins, stale results are
// dropped rather than cancelled mid-flight.
type ViewState struct {
	acquisition *AcquisitionService

	token atomic.Uint64

	mu          sync.RWMutex
	allTrades   []models.Trade
	filtered    []models.Trade
	filters     Filters
	viewMode    ViewMode
	useMockData bool
	wallet      string
	source      Source
	isMock      bool
	isLoading   bool
	diagnostic  string
	lastError   error
}

func NewViewState(acquisition *AcquisitionService, useMockData bool) *ViewState {
	return &ViewState{
		acquisition: acquisition,
		viewMode:    ViewPersonal,
		filters:     Filters{Symbol: "All"},
		useMockData: useMockData,
		isLoading:   true,
	}
}

// Refresh runs one acquisition cycle for the given wallet and makes its
// result the active set, unless a newer trigger superseded this one while the
// fetch was in flight.
func (v *ViewState) Refresh(ctx context.Context, wallet string) {
	v.mu.Lock()
	// Allocated under the lock so the loading flip happens in token order; a
	// superseded trigger can never mark the state loading after the newest one
	// already settled it.
	token := v.token.Add(1)
	v.wallet = wallet
	v.isLoading = true
	v.lastError = nil
	mode := v.viewMode
	forceMock := v.useMockData
	v.mu.Unlock()

	var result AcquisitionResult
	if mode == ViewGlobal {
		result = v.acquisition.FetchGlobalTrades(ctx)
	} else {
		result = v.acquisition.FetchUserTrades(ctx, wallet, forceMock)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.token.Load() {
		// A newer trigger owns the state now; this result is stale.
		return
	}
	v.allTrades = result.Trades
	v.source = result.Source
	v.isMock = result.IsMock
	v.diagnostic = result.Diagnostic
	v.lastError = result.Err
	v.isLoading = false
	v.recomputeLocked()
}

// SetSymbolFilter updates the symbol filter and recomputes the view.
func (v *ViewState) SetSymbolFilter(symbol string) {
	if symbol == "" {
		symbol = "All"
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filters.Symbol = symbol
	v.recomputeLocked()
}

// SetDateRangeFilter updates the date range filter and recomputes the view.
func (v *ViewState) SetDateRangeFilter(dateRange models.DateRange) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filters.DateRange = dateRange
	v.recomputeLocked()
}

// SetViewMode switches between personal and global acquisition. The caller
// re-triggers Refresh afterwards; switching modes by itself does not fetch.
func (v *ViewState) SetViewMode(mode ViewMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewMode = mode
}

// SetUseMockData toggles the forced-simulated-data preference.
func (v *ViewState) SetUseMockData(use bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.useMockData = use
}

// Wallet returns the wallet of the most recent refresh trigger.
func (v *ViewState) Wallet() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.wallet
}

// UseMockData reports the forced-simulated-data preference.
func (v *ViewState) UseMockData() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.useMockData
}

// recomputeLocked rebuilds the filtered view from the unfiltered set. Callers
// hold v.mu. Filtering never mutates allTrades.
func (v *ViewState) recomputeLocked() {
	filtered := make([]models.Trade, 0, len(v.allTrades))
	for _, t := range v.allTrades {
		if v.filters.Symbol != "All" && t.Symbol != v.filters.Symbol {
			continue
		}
		if !v.filters.DateRange.Contains(t.Time()) {
			continue
		}
		filtered = append(filtered, t)
	}
	v.filtered = filtered
}

// FilteredTrades returns a copy of the active filtered set.
func (v *ViewState) FilteredTrades() []models.Trade {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.Trade, len(v.filtered))
	copy(out, v.filtered)
	return out
}

// AllTrades returns a copy of the unfiltered set.
func (v *ViewState) AllTrades() []models.Trade {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.Trade, len(v.allTrades))
	copy(out, v.allTrades)
	return out
}

// Filters returns the current filter state.
func (v *ViewState) Filters() Filters {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filters
}

// Status returns the acquisition status snapshot.
func (v *ViewState) Status() Status {
	v.mu.RLock()
	defer v.mu.RUnlock()
	status := Status{
		Source:     v.source,
		ViewMode:   v.viewMode,
		IsMock:     v.isMock,
		IsLoading:  v.isLoading,
		Diagnostic: v.diagnostic,
	}
	if v.lastError != nil {
		status.LastError = v.lastError.Error()
	}
	return status
}
