// src/deriverse/engine.go
package deriverse

import (
	"context"
	"errors"
)

// Engine is the capability set this backend consumes from the Deriverse
// trading engine. The wire protocol and account layout behind it belong to
// the engine; callers only see these four operations and the error kinds
// below.
type Engine interface {
	// BindIdentity resolves the on-chain account for a wallet address and
	// loads its state into the engine. It fails with ErrNoAccount when the
	// wallet has no Deriverse account and with ErrIncompatibleLayout when an
	// account exists but its binary layout does not match the configured
	// engine version.
	BindIdentity(ctx context.Context, wallet string) error

	// ListInstruments returns the instrument headers keyed by instrument id.
	ListInstruments(ctx context.Context) (map[int]InstrumentHeader, error)

	// GetAccountSnapshot returns the bound account's positions and balances.
	GetAccountSnapshot(ctx context.Context) (AccountSnapshot, error)

	// GetOpenOrders returns the bound account's resting orders on one side of
	// an instrument's book.
	GetOpenOrders(ctx context.Context, instrID int, side OrderSide) ([]OrderEntry, error)
}

// Error kinds at the acquisition boundary. Each maps deterministically to a
// mock-fallback transition in the orchestrator; none of them ever reaches the
// presentation layer as a fault.
var (
	// ErrNoAccount: the wallet has no Deriverse account. A valid fallback
	// trigger, not a failure.
	ErrNoAccount = errors.New("deriverse: no account found for wallet")

	// ErrIncompatibleLayout: an account exists but its data does not decode
	// under the configured engine version (e.g. a devnet redeploy changed the
	// binary layout). Distinct from ErrNoAccount so the UI can say "account
	// detected, compatibility degraded" instead of "no account".
	ErrIncompatibleLayout = errors.New("deriverse: account layout incompatible with engine version")
)

// OrderSide identifies one side of an order book.
type OrderSide int

const (
	Bid OrderSide = iota
	Ask
)

// InstrumentHeader is the public header of one instrument.
type InstrumentHeader struct {
	Symbol     string
	LastPrice  float64
	BestBid    float64
	BestAsk    float64
	AssetID    int
	CurrencyID int
}

// PerpPosition is the per-instrument perp state of a bound account. Perps is
// the signed net position size; Cost is the aggregate entry cost in quote
// units, so |Cost/Perps| approximates the entry price.
type PerpPosition struct {
	InstrID   int
	ClientID  int64
	Perps     float64
	Cost      float64
	Result    float64 // realized result, raw quote units
	Fees      float64 // raw quote units
	BidsCount int
	AsksCount int
}

// SpotPosition is the per-instrument spot state of a bound account.
type SpotPosition struct {
	InstrID   int
	Quantity  float64
	BidsCount int
	AsksCount int
}

// TokenBalance is one deposited token balance, raw units.
type TokenBalance struct {
	TokenID int
	Amount  float64
}

// AccountSnapshot is everything the engine exposes about a bound account.
type AccountSnapshot struct {
	ClientID      int64
	SpotPositions []SpotPosition
	PerpPositions []PerpPosition
	TokenBalances []TokenBalance
}

// OrderEntry is one resting order.
type OrderEntry struct {
	OrderID  uint64
	Price    float64
	Quantity float64
}

// QuoteDecimals converts raw USDC-denominated engine units to currency units.
const QuoteDecimals = 1_000_000

// UsdcTokenID is the quote token id on the current devnet deployment.
const UsdcTokenID = 1
