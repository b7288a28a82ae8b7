// src/deriverse/decode.go
package deriverse

import (
	"encoding/binary"
	"fmt"
)

// Binary layout of the client account under the current devnet deployment.
// The full structure belongs to the engine; this file only reads the slices
// the dashboard needs (balances, perp positions, resting orders). All
// integers are little-endian, all quote amounts raw 1e6 units.
//
// layout (version >= 12):
//   [0:8)    discriminator
//   [8:16)   client id, i64
//   [16:18)  token balance count, u16
//   [18:20)  perp position count, u16
//   [20:24)  reserved
//   then tokenCount  x { token id u32, amount u64 }
//   then perpCount   x perp block (see below)
const (
	clientHeaderSize = 24
	tokenEntrySize   = 12
	perpBlockSize    = 48
	orderEntrySize   = 24

	// instrumentAccountSize gates the getProgramAccounts dataSize filter for
	// instrument headers.
	instrumentAccountSize = 120
)

// minClientAccountSize is the smallest client account the given layout
// version can decode. Accounts below it were written by an older deployment
// and are classified as an incompatible layout, not as absent.
func minClientAccountSize(version int) int {
	if version >= 12 {
		return 1000
	}
	return 344
}

func decodeClientAccount(data []byte) (*AccountSnapshot, map[int]map[OrderSide][]OrderEntry, error) {
	if len(data) < clientHeaderSize {
		return nil, nil, fmt.Errorf("client account truncated: %d bytes", len(data))
	}

	snapshot := &AccountSnapshot{
		ClientID: int64(binary.LittleEndian.Uint64(data[8:16])),
	}
	tokenCount := int(binary.LittleEndian.Uint16(data[16:18]))
	perpCount := int(binary.LittleEndian.Uint16(data[18:20]))

	offset := clientHeaderSize
	for i := 0; i < tokenCount; i++ {
		if offset+tokenEntrySize > len(data) {
			return nil, nil, fmt.Errorf("token entry %d out of range", i)
		}
		snapshot.TokenBalances = append(snapshot.TokenBalances, TokenBalance{
			TokenID: int(binary.LittleEndian.Uint32(data[offset : offset+4])),
			Amount:  float64(binary.LittleEndian.Uint64(data[offset+4 : offset+12])),
		})
		offset += tokenEntrySize
	}

	orders := make(map[int]map[OrderSide][]OrderEntry)
	for i := 0; i < perpCount; i++ {
		if offset+perpBlockSize > len(data) {
			return nil, nil, fmt.Errorf("perp block %d out of range", i)
		}
		pos := PerpPosition{
			InstrID:   int(binary.LittleEndian.Uint32(data[offset : offset+4])),
			ClientID:  snapshot.ClientID,
			Perps:     float64(int64(binary.LittleEndian.Uint64(data[offset+8:offset+16]))) / QuoteDecimals,
			Cost:      float64(int64(binary.LittleEndian.Uint64(data[offset+16:offset+24]))) / QuoteDecimals,
			Result:    float64(int64(binary.LittleEndian.Uint64(data[offset+24 : offset+32]))),
			Fees:      float64(binary.LittleEndian.Uint64(data[offset+32 : offset+40])),
			BidsCount: int(binary.LittleEndian.Uint16(data[offset+40 : offset+42])),
			AsksCount: int(binary.LittleEndian.Uint16(data[offset+42 : offset+44])),
		}
		offset += perpBlockSize

		book := map[OrderSide][]OrderEntry{}
		for _, side := range []struct {
			side  OrderSide
			count int
		}{{Bid, pos.BidsCount}, {Ask, pos.AsksCount}} {
			for n := 0; n < side.count; n++ {
				if offset+orderEntrySize > len(data) {
					return nil, nil, fmt.Errorf("order entry out of range (instr %d)", pos.InstrID)
				}
				book[side.side] = append(book[side.side], OrderEntry{
					OrderID:  binary.LittleEndian.Uint64(data[offset : offset+8]),
					Price:    float64(binary.LittleEndian.Uint64(data[offset+8:offset+16])) / QuoteDecimals,
					Quantity: float64(binary.LittleEndian.Uint64(data[offset+16:offset+24])) / QuoteDecimals,
				})
				offset += orderEntrySize
			}
		}

		snapshot.PerpPositions = append(snapshot.PerpPositions, pos)
		orders[pos.InstrID] = book
	}

	return snapshot, orders, nil
}

func decodeInstrumentHeader(data []byte) (int, InstrumentHeader, error) {
	if len(data) < instrumentAccountSize {
		return 0, InstrumentHeader{}, fmt.Errorf("instrument account truncated: %d bytes", len(data))
	}
	id := int(binary.LittleEndian.Uint32(data[8:12]))
	header := InstrumentHeader{
		AssetID:    int(binary.LittleEndian.Uint32(data[12:16])),
		CurrencyID: int(binary.LittleEndian.Uint32(data[16:20])),
		LastPrice:  float64(binary.LittleEndian.Uint64(data[24:32])) / QuoteDecimals,
		BestBid:    float64(binary.LittleEndian.Uint64(data[32:40])) / QuoteDecimals,
		BestAsk:    float64(binary.LittleEndian.Uint64(data[40:48])) / QuoteDecimals,
	}
	header.Symbol = fmt.Sprintf("PERP-%d", id)
	return id, header, nil
}
