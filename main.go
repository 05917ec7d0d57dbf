package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/rentfolio/backend/src/config"
	"github.com/username/rentfolio/backend/src/database"
	"github.com/username/rentfolio/backend/src/handlers"
	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/oplog"
	"github.com/username/rentfolio/backend/src/security"
	"github.com/username/rentfolio/backend/src/services"
	"github.com/username/rentfolio/backend/src/storage"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func newObjectStore() storage.ObjectStore {
	switch config.Cfg.StorageProvider {
	case "gcs":
		logger.L.Info("Using GCS report storage", "bucket", config.Cfg.GCSBucket)
		return storage.NewGCSStore(config.Cfg.GCSBucket)
	default:
		logger.L.Info("Using local report storage", "path", config.Cfg.LocalStoragePath)
		return storage.NewLocalStore(config.Cfg.LocalStoragePath, config.Cfg.PublicBaseURL)
	}
}

func newOpsLogSink() oplog.Sink {
	if config.Cfg.NotionAPIKey != "" && config.Cfg.NotionLogsDBID != "" {
		logger.L.Info("Using Notion operational log sink")
		return oplog.NewNotionSink(config.Cfg.NotionAPIKey, config.Cfg.NotionLogsDBID)
	}
	logger.L.Info("Notion not configured, operational events go to the application log")
	return &oplog.SlogSink{Logger: logger.L}
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Rentfolio backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing review session cache...", "ttl", config.Cfg.ReviewSessionTTL)
	reviewSessions := cache.New(config.Cfg.ReviewSessionTTL, 2*config.Cfg.ReviewSessionTTL)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	objectStore := newObjectStore()
	opsLogSink := newOpsLogSink()
	mailer := services.NewReportMailer()

	uploadService := services.NewUploadService(reviewSessions, config.Cfg.ReviewSessionTTL)
	reviewService := services.NewReviewService(reviewSessions)
	reportService := services.NewReportService(objectStore)
	batchService := services.NewBatchService(reportService, mailer, opsLogSink,
		config.Cfg.ReportBatchSize, config.Cfg.OpsLogFirstNErr)

	uploadHandler := handlers.NewUploadHandler(uploadService)
	reviewHandler := handlers.NewReviewHandler(uploadService, reviewService)
	reportHandler := handlers.NewReportHandler(reportService)
	cronHandler := handlers.NewCronHandler(batchService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	applyAuth := func(handler http.HandlerFunc) http.Handler {
		return handlers.AuthMiddleware(authService, handler)
	}

	apiRouter.Handle("POST /api/upload", applyAuth(uploadHandler.HandleUpload))
	apiRouter.Handle("GET /api/upload/review/{sessionID}", applyAuth(reviewHandler.HandleGetReviewSession))
	apiRouter.Handle("POST /api/upload/review", applyAuth(reviewHandler.HandleSubmitReview))
	apiRouter.Handle("POST /api/reports/generate", applyAuth(reportHandler.HandleGenerateReport))
	apiRouter.Handle("GET /api/cron/monthly-reports",
		handlers.CronAuthMiddleware(config.Cfg.CronSecret, http.HandlerFunc(cronHandler.HandleMonthlyReports)))

	rootMux.Handle("/api/", apiRouter)

	if config.Cfg.StorageProvider == "local" {
		rootMux.Handle("GET /reports/",
			http.StripPrefix("/reports/", http.FileServer(http.Dir(config.Cfg.LocalStoragePath))))
	}

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Rentfolio Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
