// src/handlers/settings_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/username/deriverse/backend/src/database"
	"github.com/username/deriverse/backend/src/logger"
	"github.com/username/deriverse/backend/src/models"
	"github.com/username/deriverse/backend/src/services"
	"github.com/username/deriverse/backend/src/utils"
)

// SettingsHandler persists the two dashboard preferences: the forced
// simulated-data toggle and a custom RPC endpoint. The endpoint takes effect
// on the next restart — the engine handle is created once per process and
// never rebuilt.
type SettingsHandler struct {
	viewState *services.ViewState
}

func NewSettingsHandler(viewState *services.ViewState) *SettingsHandler {
	return &SettingsHandler{viewState: viewState}
}

type settingsPayload struct {
	UseMockData       bool   `json:"useMockData"`
	CustomRPCEndpoint string `json:"customRpcEndpoint"`
}

func (h *SettingsHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	endpoint, err := models.GetSetting(database.DB, models.SettingCustomEndpoint)
	if err != nil {
		utils.SendJSONError(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, settingsPayload{
		UseMockData:       h.viewState.UseMockData(),
		CustomRPCEndpoint: endpoint,
	}, http.StatusOK)
}

func (h *SettingsHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := models.SetSetting(database.DB, models.SettingUseMockData, strconv.FormatBool(req.UseMockData)); err != nil {
		utils.SendJSONError(w, "failed to persist settings", http.StatusInternalServerError)
		return
	}
	if err := models.SetSetting(database.DB, models.SettingCustomEndpoint, req.CustomRPCEndpoint); err != nil {
		utils.SendJSONError(w, "failed to persist settings", http.StatusInternalServerError)
		return
	}

	h.viewState.SetUseMockData(req.UseMockData)
	logger.FromContext(r.Context()).Info("Settings updated", "useMockData", req.UseMockData)

	// Toggling the mock preference changes the acquisition policy, so it
	// re-triggers a fetch for the current wallet.
	h.viewState.Refresh(r.Context(), h.viewState.Wallet())
	utils.SendJSON(w, req, http.StatusOK)
}
