package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/judyrop/storefront/api"
	"github.com/judyrop/storefront/auth"
	"github.com/judyrop/storefront/catalog"
	"github.com/judyrop/storefront/config"
	"github.com/judyrop/storefront/logging"
	"github.com/judyrop/storefront/metrics"
	"github.com/judyrop/storefront/orders"
	"github.com/judyrop/storefront/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	db, err := store.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := store.Migrate(db); err != nil {
		return err
	}
	s := store.New(db)

	var cache catalog.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("Redis unreachable, catalog cache disabled")
		} else {
			cache = catalog.NewRedisCache(rdb, "storefront:", cfg.CacheTTL)
			log.WithField("addr", cfg.RedisAddr).Info("Catalog cache enabled")
		}
	}

	var identity auth.IdentityVerifier
	if cfg.OIDCEnabled() {
		v, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			return err
		}
		identity = v
		log.WithField("issuer", cfg.OIDCIssuer).Info("OIDC login enabled")
	}

	m := metrics.New()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	authSvc := auth.NewService(s.Users, auth.NewPasswordHasher(bcrypt.DefaultCost), tokens, identity)
	catalogSvc := catalog.NewService(s, cache, log)
	ordersSvc := orders.NewService(s, m)

	if cfg.AdminEmail != "" {
		if _, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
		log.WithField("email", cfg.AdminEmail).Info("Admin account ready")
	}
	if cfg.SeedCatalog {
		seeded, err := s.SeedCatalog(ctx)
		if err != nil {
			return err
		}
		if seeded {
			log.Info("Seeded demo catalog")
		}
	}

	router := api.SetupRouter(api.Deps{
		Catalog:        catalogSvc,
		Orders:         ordersSvc,
		Auth:           authSvc,
		DB:             s,
		Metrics:        m,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins(),
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateBurst:  cfg.AuthRateBurst,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server stopped cleanly")
	return nil
}
