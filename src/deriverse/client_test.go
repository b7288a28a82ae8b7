// src/deriverse/client_test.go
package deriverse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/deriverse/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// rpcStub answers every getProgramAccounts call with the given result.
func rpcStub(t *testing.T, result any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getProgramAccounts", req.Method)

		raw, err := json.Marshal(result)
		require.NoError(t, err)
		json.NewEncoder(w).Encode(rpcResponse{Result: raw})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestBindIdentity_NoMatchingAccounts(t *testing.T) {
	server := rpcStub(t, []programAccount{})
	client := NewClient(server.URL, "Program111", 12)

	err := client.BindIdentity(context.Background(), "Wallet111")

	assert.ErrorIs(t, err, ErrNoAccount)
}

func TestBindIdentity_EmptyDataPayloadIsErrorNotPanic(t *testing.T) {
	// A nonconforming node can answer with an account carrying no data tuple.
	server := rpcStub(t, []programAccount{
		{Pubkey: "Acc111", Account: accountValue{Data: []string{}}},
	})
	client := NewClient(server.URL, "Program111", 12)

	var err error
	assert.NotPanics(t, func() {
		err = client.BindIdentity(context.Background(), "Wallet111")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data payload")
}

func TestBindIdentity_UndersizedAccountIsIncompatible(t *testing.T) {
	// 16 raw bytes of valid base64: a real account, too small for version 12.
	server := rpcStub(t, []programAccount{
		{Pubkey: "Acc111", Account: accountValue{Data: []string{"AAAAAAAAAAAAAAAAAAAAAA==", "base64"}}},
	})
	client := NewClient(server.URL, "Program111", 12)

	err := client.BindIdentity(context.Background(), "Wallet111")

	assert.ErrorIs(t, err, ErrIncompatibleLayout)
}
