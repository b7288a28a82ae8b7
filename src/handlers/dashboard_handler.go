// src/handlers/dashboard_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/username/deriverse/backend/src/analytics"
	"github.com/username/deriverse/backend/src/logger"
	"github.com/username/deriverse/backend/src/models"
	"github.com/username/deriverse/backend/src/services"
	"github.com/username/deriverse/backend/src/utils"
)

// DashboardHandler serves the analytics surface the frontend renders. Every
// metric is derived fresh from the controller's filtered set; acquisition
// failures never turn these reads into errors — the status endpoint carries
// the fallback annotation instead.
type DashboardHandler struct {
	viewState *services.ViewState
}

func NewDashboardHandler(viewState *services.ViewState) *DashboardHandler {
	return &DashboardHandler{viewState: viewState}
}

func (h *DashboardHandler) HandleGetTrades(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.viewState.FilteredTrades(), http.StatusOK)
}

func (h *DashboardHandler) HandleGetAllTrades(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.viewState.AllTrades(), http.StatusOK)
}

func (h *DashboardHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, analytics.CalculateStats(h.viewState.FilteredTrades()), http.StatusOK)
}

func (h *DashboardHandler) HandleGetDrawdown(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, analytics.DrawdownSeries(h.viewState.FilteredTrades()), http.StatusOK)
}

func (h *DashboardHandler) HandleGetHourlyPerformance(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, analytics.HourlyBuckets(h.viewState.FilteredTrades()), http.StatusOK)
}

func (h *DashboardHandler) HandleGetHealthScore(w http.ResponseWriter, r *http.Request) {
	stats := analytics.CalculateStats(h.viewState.FilteredTrades())
	utils.SendJSON(w, analytics.CalculateHealthScore(stats), http.StatusOK)
}

func (h *DashboardHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, h.viewState.Status(), http.StatusOK)
}

type refreshRequest struct {
	Wallet string `json:"wallet"`
}

// HandleRefresh triggers an acquisition cycle. An empty wallet is a valid
// trigger (it resolves to the mock fallback), so the body is optional.
func (h *DashboardHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.Body != nil {
		// Tolerate an empty body; a bad one is still a client error.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
			utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	if req.Wallet == "" {
		req.Wallet = h.viewState.Wallet()
	}

	logger.FromContext(r.Context()).Info("Refresh triggered", "wallet", req.Wallet)
	h.viewState.Refresh(r.Context(), req.Wallet)
	utils.SendJSON(w, h.viewState.Status(), http.StatusOK)
}

type filtersRequest struct {
	Symbol string `json:"symbol"`
	From   string `json:"from"` // RFC3339, empty clears
	To     string `json:"to"`
}

func (h *DashboardHandler) HandleUpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var dateRange models.DateRange
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			utils.SendJSONError(w, "invalid 'from' date, expected RFC3339", http.StatusBadRequest)
			return
		}
		dateRange.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			utils.SendJSONError(w, "invalid 'to' date, expected RFC3339", http.StatusBadRequest)
			return
		}
		dateRange.To = &to
	}

	h.viewState.SetSymbolFilter(req.Symbol)
	h.viewState.SetDateRangeFilter(dateRange)
	utils.SendJSON(w, h.viewState.Filters(), http.StatusOK)
}

type viewModeRequest struct {
	ViewMode string `json:"viewMode"`
}

// HandleUpdateViewMode switches personal/global mode and re-triggers
// acquisition under the new policy.
func (h *DashboardHandler) HandleUpdateViewMode(w http.ResponseWriter, r *http.Request) {
	var req viewModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch services.ViewMode(req.ViewMode) {
	case services.ViewPersonal, services.ViewGlobal:
	default:
		utils.SendJSONError(w, "viewMode must be 'personal' or 'global'", http.StatusBadRequest)
		return
	}

	h.viewState.SetViewMode(services.ViewMode(req.ViewMode))
	h.viewState.Refresh(r.Context(), h.viewState.Wallet())
	utils.SendJSON(w, h.viewState.Status(), http.StatusOK)
}
