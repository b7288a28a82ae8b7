package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/deriverse/backend/src/config"
	"github.com/username/deriverse/backend/src/database"
	"github.com/username/deriverse/backend/src/deriverse"
	"github.com/username/deriverse/backend/src/handlers"
	"github.com/username/deriverse/backend/src/logger"
	"github.com/username/deriverse/backend/src/models"
	"github.com/username/deriverse/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter *rate.Limiter

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{}
	for _, origin := range config.Cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Deriverse analytics backend starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	limiter = rate.NewLimiter(rate.Every(config.Cfg.RateLimitInterval), config.Cfg.RateLimitBurst)

	// A custom endpoint saved in settings overrides the configured one. The
	// engine handle is created once per process, so endpoint changes only
	// apply after a restart.
	rpcEndpoint := config.Cfg.RPCEndpoint
	if custom, err := models.GetSetting(database.DB, models.SettingCustomEndpoint); err == nil && custom != "" {
		logger.L.Info("Using custom RPC endpoint from settings", "endpoint", custom)
		rpcEndpoint = custom
	}

	useMockData := false
	if saved, err := models.GetSetting(database.DB, models.SettingUseMockData); err == nil && saved == "true" {
		useMockData = true
	}

	engineHolder := deriverse.NewHolder(func() (deriverse.Engine, error) {
		logger.L.Info("Creating Deriverse engine handle",
			"endpoint", rpcEndpoint, "programId", config.Cfg.ProgramID, "version", config.Cfg.EngineVersion)
		return deriverse.NewClient(rpcEndpoint, config.Cfg.ProgramID, config.Cfg.EngineVersion), nil
	})

	instrumentCache := cache.New(config.Cfg.InstrumentCacheTTL, 10*time.Minute)

	acquisitionService := services.NewAcquisitionService(
		engineHolder,
		instrumentCache,
		config.Cfg.AcquisitionTimeout,
		config.Cfg.MockFillerTrades,
		config.Cfg.GlobalSampleLimit,
	)
	viewState := services.NewViewState(acquisitionService, useMockData)

	dashboardHandler := handlers.NewDashboardHandler(viewState)
	settingsHandler := handlers.NewSettingsHandler(viewState)

	// Warm the dashboard: resolve an initial trade set (mock until a wallet
	// refresh arrives) so the first page load never renders empty.
	go viewState.Refresh(context.Background(), "")

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Deriverse analytics backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/trades", dashboardHandler.HandleGetTrades)
		r.Get("/trades/all", dashboardHandler.HandleGetAllTrades)
		r.Get("/stats", dashboardHandler.HandleGetStats)
		r.Get("/drawdown", dashboardHandler.HandleGetDrawdown)
		r.Get("/hourly-performance", dashboardHandler.HandleGetHourlyPerformance)
		r.Get("/health-score", dashboardHandler.HandleGetHealthScore)
		r.Get("/status", dashboardHandler.HandleGetStatus)

		r.Post("/refresh", dashboardHandler.HandleRefresh)
		r.Put("/filters", dashboardHandler.HandleUpdateFilters)
		r.Put("/view-mode", dashboardHandler.HandleUpdateViewMode)

		r.Get("/settings", settingsHandler.HandleGetSettings)
		r.Put("/settings", settingsHandler.HandleUpdateSettings)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
