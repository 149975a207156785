package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/tradelens/backend/src/analytics"
	"github.com/username/tradelens/backend/src/config"
	"github.com/username/tradelens/backend/src/database"
	"github.com/username/tradelens/backend/src/handlers"
	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/model"
	"github.com/username/tradelens/backend/src/security"
	"github.com/username/tradelens/backend/src/services"
	"golang.org/x/time/rate"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

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
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000":    true,
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
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

// sessionCleanupLoop purges expired sessions hourly.
func sessionCleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		if err := model.DeleteExpiredSessions(database.DB); err != nil {
			logger.L.Warn("Expired session cleanup failed", "error", err)
		}
	}
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("TradeLens backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	handlers.InitializeGoogleOAuthConfig()

	authService := security.NewAuthService(config.Cfg.JWTSecret)
	mfaService := services.NewMFAService()
	priceService := services.NewPriceService()

	statsProcessor := analytics.NewStatsProcessor()
	calendarProcessor := analytics.NewCalendarProcessor()
	analyticsService := services.NewAnalyticsService(statsProcessor, calendarProcessor, reportCache)
	portfolioService := services.NewPortfolioService(priceService)
	prefsStore := model.NewPreferencesStore(database.DB)

	visionService, err := services.NewVisionService(context.Background())
	if err != nil {
		logger.L.Warn("Vision service unavailable, statement import disabled", "error", err)
	}

	userHandler := handlers.NewUserHandler(authService, mfaService, reportCache)
	tradeHandler := handlers.NewTradeHandler(analyticsService, prefsStore)
	assetHandler := handlers.NewAssetHandler(visionService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	watchlistHandler := handlers.NewWatchlistHandler(authService, priceService)
	quoteHandler := handlers.NewQuoteHandler(priceService)
	prefsHandler := handlers.NewPreferencesHandler(prefsStore)

	go sessionCleanupLoop()

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "TradeLens Backend is running"})
	})

	// WebSocket endpoint sits outside the /api CSRF group; it authenticates
	// via token query parameter on upgrade.
	r.Get("/ws/watchlist", watchlistHandler.HandleWatchlistStream)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Get("/auth/csrf", handlers.GetCSRFToken)
			r.Get("/auth/google/login", userHandler.HandleGoogleLogin)
			r.Get("/auth/google/callback", userHandler.HandleGoogleCallback)
			r.Get("/quotes", quoteHandler.HandleGetQuotes)
		})

		// Auth routes (CSRF protected)
		r.Group(func(r chi.Router) {
			r.Use(handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey))
			r.Post("/auth/login", userHandler.LoginUserHandler)
			r.Post("/auth/register", userHandler.RegisterUserHandler)
			r.Post("/auth/refresh", userHandler.RefreshTokenHandler)
			r.With(userHandler.AuthMiddleware).Post("/auth/logout", userHandler.LogoutUserHandler)
		})

		// Protected routes (auth + CSRF)
		r.Group(func(r chi.Router) {
			r.Use(handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey))
			r.Use(userHandler.AuthMiddleware)

			r.Get("/user/profile", userHandler.HandleGetProfile)
			r.Post("/user/change-password", userHandler.ChangePasswordHandler)
			r.Get("/user/mfa/setup", userHandler.HandleSetupMFA)
			r.Post("/user/mfa/enable", userHandler.HandleActivateMFA)

			r.Get("/trades", tradeHandler.HandleListTrades)
			r.Post("/trades", tradeHandler.HandleCreateTrade)
			r.Put("/trades/{id}", tradeHandler.HandleUpdateTrade)
			r.Delete("/trades/{id}", tradeHandler.HandleDeleteTrade)
			r.Get("/trades/analytics", tradeHandler.HandleGetAnalytics)
			r.Get("/trades/calendar", tradeHandler.HandleGetCalendar)
			r.Get("/trades/calendar/export", tradeHandler.HandleExportCalendarCSV)
			r.Get("/trades/export", tradeHandler.HandleExportTradesCSV)

			r.Get("/assets", assetHandler.HandleListAssets)
			r.Post("/assets", assetHandler.HandleCreateAsset)
			r.Put("/assets/{id}", assetHandler.HandleUpdateAsset)
			r.Delete("/assets/{id}", assetHandler.HandleDeleteAsset)
			r.Get("/portfolio/value", portfolioHandler.HandleGetValuation)
			r.Post("/import/statement", assetHandler.HandleImportStatement)

			r.Get("/watchlist", watchlistHandler.HandleListWatchlist)
			r.Post("/watchlist", watchlistHandler.HandleAddWatchlistItem)
			r.Delete("/watchlist/{id}", watchlistHandler.HandleDeleteWatchlistItem)

			r.Get("/preferences", prefsHandler.HandleGetPreferences)
			r.Put("/preferences", prefsHandler.HandleSavePreferences)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
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
