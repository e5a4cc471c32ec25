package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/content-marketplace/internal/cache"
	"github.com/magabrotheeeer/content-marketplace/internal/config"
	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/migrations"
	"github.com/magabrotheeeer/content-marketplace/internal/services/accessgate"
	authservice "github.com/magabrotheeeer/content-marketplace/internal/services/auth"
	contentservice "github.com/magabrotheeeer/content-marketplace/internal/services/content"
	"github.com/magabrotheeeer/content-marketplace/internal/services/entitlement"
	identityservice "github.com/magabrotheeeer/content-marketplace/internal/services/identity"
	"github.com/magabrotheeeer/content-marketplace/internal/services/onboarding"
	"github.com/magabrotheeeer/content-marketplace/internal/services/review"
	"github.com/magabrotheeeer/content-marketplace/internal/services/subscription"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/blob"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-приложение маркетплейса.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New подключает хранилища, применяет миграции, создаёт владельца платформы и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	blobs, err := blob.New(ctx, cfg.S3)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("blob store not initialized: %w", err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	gate := accessgate.New(db, logger)

	authService := authservice.NewService(db, jwtMaker, logger)
	if cfg.OwnerUsername != "" {
		if _, err = authService.EnsureOwner(ctx, cfg.OwnerEmail, cfg.OwnerUsername, cfg.OwnerPassword); err != nil {
			logger.Error("failed to bootstrap owner account", sl.Err(err))
		}
	}

	services := Services{
		Auth:          authService,
		Onboarding:    onboarding.NewTracker(db, logger),
		Identity:      identityservice.NewPipeline(gate, db, blobs, logger),
		Content:       contentservice.NewService(db, gate, blobs, logger),
		Entitlements:  entitlement.NewService(db, cfg.PurchaseWindow, logger),
		Subscriptions: subscription.NewService(db, cacheRedis, gate, cfg.TiersTTL, logger),
		Reviews:       review.NewConsole(db, gate, blobs, cfg.PresignTTL, logger),
		DB:            db.DB,
		Tokens:        jwtMaker,
		Limiter:       middlewarectx.NewUserLimiter(cfg.UploadsPerMinute, cfg.Burst),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services, RouteOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		WebhookSecret:  cfg.WebhookSecret,
	})
	if cfg.WebhookSecret == "" {
		logger.Warn("payment webhook secret is empty, callbacks will be rejected")
	}

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis client", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
