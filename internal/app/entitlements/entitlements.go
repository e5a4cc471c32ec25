// Package entitlements собирает gRPC-приложение проверки доступа к контенту для внутренних сервисов.
package entitlements

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/magabrotheeeer/content-marketplace/internal/config"
	"github.com/magabrotheeeer/content-marketplace/internal/grpc/server"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/services/entitlement"
	"github.com/magabrotheeeer/content-marketplace/internal/storage/repository"
)

type App struct {
	grpcServer *grpc.Server
	listener   net.Listener
	db         *repository.Storage
	logger     *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}

	resolver := entitlement.NewService(db, cfg.PurchaseWindow, logger)

	lis, err := net.Listen("tcp", cfg.AddressGRPC)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		grpcServer: server.New(resolver, logger),
		listener:   lis,
		db:         db,
		logger:     logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("entitlements gRPC service listening", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	select {
	case <-ctx.Done():
		a.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
