// src/deriverse/client.go
package deriverse

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/username/deriverse/backend/src/logger"
)

// Client is the concrete Engine backed by a Solana JSON-RPC endpoint. It
// locates the wallet's program account with memcmp filters (anchor
// discriminator offset first, offset 0 as a fallback — some older accounts
// sit at non-standard addresses) and decodes it under the configured layout
// version.
type Client struct {
	endpoint  string
	programID string
	version   int

	httpClient *http.Client

	mu       sync.Mutex
	snapshot *AccountSnapshot
	orders   map[int]map[OrderSide][]OrderEntry
}

// NewClient builds an unbound client. Binding an identity is a separate,
// fallible step.
func NewClient(endpoint, programID string, version int) *Client {
	return &Client{
		endpoint:  endpoint,
		programID: programID,
		version:   version,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// --- JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type accountValue struct {
	Data  []string `json:"data"` // [base64 payload, "base64"]
	Owner string   `json:"owner"`
}

type getAccountInfoResult struct {
	Value *accountValue `json:"value"`
}

type programAccount struct {
	Pubkey  string       `json:"pubkey"`
	Account accountValue `json:"account"`
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc %s: unexpected status %d", method, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rpc %s: reading body: %w", method, err)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("rpc %s: decoding envelope: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("rpc %s: %d %s", method, envelope.Error.Code, envelope.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("rpc %s: decoding result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) getProgramAccounts(ctx context.Context, filters []any, dataSliceLen *int) ([]programAccount, error) {
	cfg := map[string]any{"encoding": "base64"}
	if len(filters) > 0 {
		cfg["filters"] = filters
	}
	if dataSliceLen != nil {
		cfg["dataSlice"] = map[string]int{"offset": 0, "length": *dataSliceLen}
	}

	var accounts []programAccount
	err := c.call(ctx, "getProgramAccounts", []any{c.programID, cfg}, &accounts)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func memcmpFilter(offset int, base58Bytes string) map[string]any {
	return map[string]any{
		"memcmp": map[string]any{
			"offset": offset,
			"bytes":  base58Bytes,
		},
	}
}

// --- Engine implementation ---

// anchorDiscriminatorSize is the standard 8-byte account discriminator; the
// owner key follows it in every known layout version.
const anchorDiscriminatorSize = 8

// BindIdentity locates and decodes the wallet's client account. The search
// runs memcmp at the discriminator offset first, then offset 0 for pre-anchor
// accounts.
func (c *Client) BindIdentity(ctx context.Context, wallet string) error {
	account, err := c.findClientAccount(ctx, wallet)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrNoAccount
	}

	if len(account.Account.Data) == 0 {
		return fmt.Errorf("deriverse: account %s returned no data payload", account.Pubkey)
	}
	data, err := base64.StdEncoding.DecodeString(account.Account.Data[0])
	if err != nil {
		return fmt.Errorf("deriverse: decoding account data: %w", err)
	}

	// Undersized data means the account predates the configured layout
	// version. The account is real — report degraded compatibility, not
	// absence.
	if len(data) < minClientAccountSize(c.version) {
		logger.L.Warn("Deriverse account smaller than configured layout",
			"pubkey", account.Pubkey, "size", len(data), "version", c.version)
		return ErrIncompatibleLayout
	}

	snapshot, orders, err := decodeClientAccount(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIncompatibleLayout, err)
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.orders = orders
	c.mu.Unlock()
	return nil
}

func (c *Client) findClientAccount(ctx context.Context, wallet string) (*programAccount, error) {
	for _, offset := range []int{anchorDiscriminatorSize, 0} {
		accounts, err := c.getProgramAccounts(ctx, []any{memcmpFilter(offset, wallet)}, nil)
		if err != nil {
			return nil, err
		}
		if len(accounts) > 0 {
			return &accounts[0], nil
		}
	}
	return nil, nil
}

// ListInstruments fetches the program's instrument header accounts.
func (c *Client) ListInstruments(ctx context.Context) (map[int]InstrumentHeader, error) {
	accounts, err := c.getProgramAccounts(ctx, []any{
		map[string]any{"dataSize": instrumentAccountSize},
	}, nil)
	if err != nil {
		return nil, err
	}

	headers := make(map[int]InstrumentHeader, len(accounts))
	for _, acc := range accounts {
		if len(acc.Account.Data) == 0 {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(acc.Account.Data[0])
		if err != nil {
			continue
		}
		id, header, err := decodeInstrumentHeader(data)
		if err != nil {
			logger.L.Debug("Skipping undecodable instrument account", "pubkey", acc.Pubkey, "error", err)
			continue
		}
		headers[id] = header
	}
	return headers, nil
}

// GetAccountSnapshot returns the state decoded at bind time.
func (c *Client) GetAccountSnapshot(ctx context.Context) (AccountSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return AccountSnapshot{}, ErrNoAccount
	}
	return *c.snapshot, nil
}

// GetOpenOrders returns the bound account's resting orders for one book side.
func (c *Client) GetOpenOrders(ctx context.Context, instrID int, side OrderSide) ([]OrderEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.orders == nil {
		return nil, ErrNoAccount
	}
	entries := c.orders[instrID][side]
	out := make([]OrderEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// SampleProgramAccounts lists up to limit program-owned accounts, data
// omitted. Global market mode uses this to derive a broad activity sample
// without binding any identity.
func (c *Client) SampleProgramAccounts(ctx context.Context, limit int) ([]string, error) {
	zero := 0
	accounts, err := c.getProgramAccounts(ctx, nil, &zero)
	if err != nil {
		return nil, err
	}
	if len(accounts) > limit {
		accounts = accounts[:limit]
	}
	pubkeys := make([]string, len(accounts))
	for i, acc := range accounts {
		pubkeys[i] = acc.Pubkey
	}
	return pubkeys, nil
}
