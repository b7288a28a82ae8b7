// src/deriverse/decode_test.go
package deriverse

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildClientAccount assembles a minimal client account buffer: one USDC
// balance and one perp position holding a single bid.
func buildClientAccount(t *testing.T) []byte {
	t.Helper()

	buf := make([]byte, 0, 256)
	appendU64 := func(v uint64) {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		buf = append(buf, b[:]...)
	}
	appendU32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	appendU16 := func(v uint16) {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], v)
		buf = append(buf, b[:]...)
	}

	appendU64(0xdeadbeef) // discriminator
	appendU64(42)         // client id
	appendU16(1)          // token count
	appendU16(1)          // perp count
	appendU32(0)          // reserved

	// token balance: 250 USDC raw
	appendU32(UsdcTokenID)
	appendU64(250_000_000)

	// perp block: instr 3, net +1.5, cost 150, result +12.5 raw, fees 300000 raw
	appendU32(3)
	appendU32(0) // padding to the 8-byte perps field
	appendU64(uint64(int64(1_500_000)))
	appendU64(uint64(int64(150_000_000)))
	appendU64(uint64(int64(12_500_000)))
	appendU64(300_000)
	appendU16(1) // bids
	appendU16(0) // asks
	appendU32(0) // trailing block padding

	// one bid order: id 77, price 98.5, qty 1.5
	appendU64(77)
	appendU64(98_500_000)
	appendU64(1_500_000)

	return buf
}

func TestDecodeClientAccount(t *testing.T) {
	snapshot, orders, err := decodeClientAccount(buildClientAccount(t))
	require.NoError(t, err)

	assert.Equal(t, int64(42), snapshot.ClientID)

	require.Len(t, snapshot.TokenBalances, 1)
	assert.Equal(t, UsdcTokenID, snapshot.TokenBalances[0].TokenID)
	assert.Equal(t, 250_000_000.0, snapshot.TokenBalances[0].Amount)

	require.Len(t, snapshot.PerpPositions, 1)
	pos := snapshot.PerpPositions[0]
	assert.Equal(t, 3, pos.InstrID)
	assert.InDelta(t, 1.5, pos.Perps, 1e-9)
	assert.InDelta(t, 150.0, pos.Cost, 1e-9)
	assert.Equal(t, 1, pos.BidsCount)
	assert.Equal(t, 0, pos.AsksCount)

	bids := orders[3][Bid]
	require.Len(t, bids, 1)
	assert.Equal(t, uint64(77), bids[0].OrderID)
	assert.InDelta(t, 98.5, bids[0].Price, 1e-9)
	assert.InDelta(t, 1.5, bids[0].Quantity, 1e-9)
}

func TestDecodeClientAccount_Truncated(t *testing.T) {
	_, _, err := decodeClientAccount(make([]byte, 10))
	assert.Error(t, err)
}

func TestDecodeClientAccount_OrderRegionOutOfRange(t *testing.T) {
	buf := buildClientAccount(t)
	// Chop the order entry off; the perp block still promises one bid.
	_, _, err := decodeClientAccount(buf[:len(buf)-orderEntrySize])
	assert.Error(t, err)
}

func TestMinClientAccountSize_VersionGate(t *testing.T) {
	assert.Equal(t, 1000, minClientAccountSize(12))
	assert.Equal(t, 344, minClientAccountSize(6))
}
