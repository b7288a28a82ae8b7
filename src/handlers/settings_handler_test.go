// src/handlers/settings_handler_test.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/deriverse/backend/src/database"
	"github.com/username/deriverse/backend/src/deriverse"
	"github.com/username/deriverse/backend/src/models"
	"github.com/username/deriverse/backend/src/services"
	_ "modernc.org/sqlite"
)

func newSettingsRouter(t *testing.T) (*chi.Mux, *services.ViewState) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		db.Close()
	})

	holder := deriverse.NewHolder(func() (deriverse.Engine, error) { return nullEngine{}, nil })
	acquisition := services.NewAcquisitionService(holder, cache.New(time.Minute, time.Minute), time.Second, 5, 50)
	viewState := services.NewViewState(acquisition, false)

	settings := NewSettingsHandler(viewState)

	r := chi.NewRouter()
	r.Get("/api/settings", settings.HandleGetSettings)
	r.Put("/api/settings", settings.HandleUpdateSettings)
	return r, viewState
}

func TestSettings_RoundTrip(t *testing.T) {
	router, viewState := newSettingsRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/settings",
		`{"useMockData":true,"customRpcEndpoint":"https://rpc.example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, viewState.UseMockData())

	// The toggle persists through the store, not just the in-memory state.
	stored, err := models.GetSetting(database.DB, models.SettingUseMockData)
	require.NoError(t, err)
	assert.Equal(t, "true", stored)

	rec = doJSON(t, router, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		UseMockData       bool   `json:"useMockData"`
		CustomRPCEndpoint string `json:"customRpcEndpoint"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, payload.UseMockData)
	assert.Equal(t, "https://rpc.example.com", payload.CustomRPCEndpoint)
}

func TestSettings_GetDefaultsWhenUnset(t *testing.T) {
	router, _ := newSettingsRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		UseMockData       bool   `json:"useMockData"`
		CustomRPCEndpoint string `json:"customRpcEndpoint"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.False(t, payload.UseMockData)
	assert.Equal(t, "", payload.CustomRPCEndpoint)
}

func TestSettings_RejectsMalformedBody(t *testing.T) {
	router, _ := newSettingsRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/settings", "not-json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
