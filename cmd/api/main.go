package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Dahbi-Dev/Excel-easy/config"
	entryHandler "github.com/Dahbi-Dev/Excel-easy/internal/handler/entry"
	exportHandler "github.com/Dahbi-Dev/Excel-easy/internal/handler/export"
	gateHandler "github.com/Dahbi-Dev/Excel-easy/internal/handler/gate"
	"github.com/Dahbi-Dev/Excel-easy/internal/handler/health"
	"github.com/Dahbi-Dev/Excel-easy/internal/handler/record"
	"github.com/Dahbi-Dev/Excel-easy/internal/middleware"
	"github.com/Dahbi-Dev/Excel-easy/internal/repository"
	"github.com/Dahbi-Dev/Excel-easy/internal/repository/encrypted"
	"github.com/Dahbi-Dev/Excel-easy/internal/repository/memory"
	"github.com/Dahbi-Dev/Excel-easy/internal/repository/redis"
	"github.com/Dahbi-Dev/Excel-easy/internal/repository/sqlstore"
	"github.com/Dahbi-Dev/Excel-easy/internal/router"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/export"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/gate"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/importer"
	"github.com/Dahbi-Dev/Excel-easy/internal/workspace"
	"github.com/Dahbi-Dev/Excel-easy/pkg/auth"
	"github.com/Dahbi-Dev/Excel-easy/pkg/logger"
	"github.com/Dahbi-Dev/Excel-easy/pkg/metrics"
	"github.com/Dahbi-Dev/Excel-easy/pkg/security"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Log.JSON,
	})
	log.Logger = appLog.Zerolog()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(cfg.Monitoring.Namespace)
	if err := appMetrics.Register(registry); err != nil {
		appLog.Fatal(err, "failed to register metrics")
	}

	// Key-value store
	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		appLog.Fatal(err, "failed to open store", "driver", cfg.Store.Driver)
	}
	defer store.Close()

	// Services
	tokens, err := auth.NewJWTService(cfg.Session.Secret, cfg.Session.Expiry)
	if err != nil {
		appLog.Fatal(err, "failed to initialise workspace tokens")
	}
	importSvc := importer.NewService(appLog, appMetrics)
	gateSvc := gate.NewService(security.NewBcryptHasher(0), cfg.Gate.PasswordHash, appLog)
	workspaces := workspace.NewManager(store, importSvc, gateSvc, workspace.Options{
		AutosaveDelay: cfg.Entry.AutosaveDelay,
		IdleTimeout:   cfg.Session.IdleTimeout,
	}, appLog, appMetrics)

	var mailer *export.Mailer
	if cfg.Mail.Enabled {
		mailer = export.NewMailer(cfg.ToMailConfig(), appLog, appMetrics)
	}

	// Middleware
	session := middleware.NewSessionMiddleware(tokens, workspaces, middleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		Expiry:     cfg.Session.Expiry,
		Secure:     cfg.Session.Secure,
	})

	// Handlers
	var gatherer prometheus.Gatherer = registry
	if !cfg.Monitoring.PrometheusEnabled {
		gatherer = prometheus.NewRegistry()
	}
	healthH := health.NewHandler(store, gatherer)
	protected := []router.Handler{
		record.NewHandler(),
		entryHandler.NewHandler(),
		exportHandler.NewHandler(mailer, appLog, appMetrics),
	}

	// Setup router
	r, err := router.NewRouter(session, healthH, gateHandler.NewHandler(), protected, router.RouterConfig{
		Mode:             cfg.Server.Mode,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		CORSConfig: middleware.CORSConfig{
			AllowOrigins:     cfg.Security.AllowedOrigins,
			AllowMethods:     cfg.Security.AllowedMethods,
			AllowHeaders:     cfg.Security.AllowedHeaders,
			AllowCredentials: true,
			MaxAge:           86400,
		},
		SizeLimit: middleware.SizeLimitConfig{
			MaxBodySize:   1 << 20,
			MaxUploadSize: cfg.Import.MaxUploadSize,
		},
		Security: middleware.SecurityConfig{
			HSTS:       cfg.Session.Secure,
			HSTSMaxAge: 31536000,
			NoStore:    true,
		},
		MetricsPrefix: cfg.Monitoring.Namespace + "_http",
		Registerer:    registry,
	})
	if err != nil {
		appLog.Fatal(err, "failed to build router")
	}

	// Create server
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("store", cfg.Store.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	workspaces.Close(shutdownCtx)

	log.Info().Msg("server exited properly")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.KVStore, error) {
	store, err := openBackend(ctx, cfg)
	if err != nil || cfg.Store.EncryptionKey == "" {
		return store, err
	}
	enc, err := security.NewAESEncryptorFromHex(cfg.Store.EncryptionKey)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("store encryption key: %w", err)
	}
	return encrypted.NewStore(store, enc), nil
}

func openBackend(ctx context.Context, cfg *config.Config) (repository.KVStore, error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case config.StoreRedis:
		return redis.NewStore(ctx, cfg.ToRedisConfig())
	case config.StorePostgres, config.StoreSQLite:
		db, err := sqlstore.NewDB(cfg.ToSQLConfig())
		if err != nil {
			return nil, err
		}
		s, err := sqlstore.NewStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return s, nil
	default:
		return memory.NewStore(), nil
	}
}
