// Package server реализует gRPC-сервер проверки доступа к контенту.
//
// EntitlementsServer отвечает другим сервисам платформы, есть ли у пользователя
// доступ к единице контента, вычисляя его по текущим покупкам и подпискам.
package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/content-marketplace/internal/grpc/entitlementspb"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/apperr"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// Resolver описывает проверку доступа.
type Resolver interface {
	CanAccess(ctx context.Context, userID, contentID string) (*models.AccessDecision, error)
}

// EntitlementsServer реализует entitlementspb.EntitlementsServer.
type EntitlementsServer struct {
	resolver Resolver
	log      *slog.Logger
}

// NewEntitlementsServer создает новый экземпляр EntitlementsServer.
func NewEntitlementsServer(resolver Resolver, logger *slog.Logger) *EntitlementsServer {
	return &EntitlementsServer{
		resolver: resolver,
		log:      logger,
	}
}

// CanAccess проверяет доступ пользователя к контенту.
func (s *EntitlementsServer) CanAccess(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	fields := req.GetFields()
	userID := fields[entitlementspb.FieldUserID].GetStringValue()
	contentID := fields[entitlementspb.FieldContentID].GetStringValue()
	if userID == "" || contentID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id and content_id are required")
	}

	decision, err := s.resolver.CanAccess(ctx, userID, contentID)
	if err != nil {
		s.log.Error("CanAccess failed",
			sl.UserID(userID),
			slog.String("content_id", contentID),
			sl.Err(err),
		)
		return nil, status.Error(codeOf(err), apperr.Message(err))
	}
	return wrapperspb.Bool(decision.Allowed), nil
}

func codeOf(err error) codes.Code {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return codes.InvalidArgument
	case apperr.KindAuthorization:
		return codes.PermissionDenied
	case apperr.KindNotFound:
		return codes.NotFound
	case apperr.KindConflict, apperr.KindStorageConflict:
		return codes.FailedPrecondition
	case apperr.KindRemoteService:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// LoggingInterceptor пишет в лог метод, код ответа и длительность вызова.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("grpc request",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

// New создаёт grpc.Server с сервисом проверки доступа и стандартным health-сервисом.
func New(resolver Resolver, log *slog.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(log)))
	entitlementspb.RegisterEntitlementsServer(srv, NewEntitlementsServer(resolver, log))

	hs := health.NewServer()
	hs.SetServingStatus(entitlementspb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}
