// Package marketplace собирает HTTP-приложение маркетплейса: хранилища, сервисы и маршруты.
package marketplace

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/admin/decide"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/admin/document"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/admin/history"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/admin/reviews"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/content/access"
	contentcreate "github.com/magabrotheeeer/content-marketplace/internal/http/handlers/content/create"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/health"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/library"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/onboarding/identity"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/onboarding/progress"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/onboarding/step"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/payment/callback"
	sublist "github.com/magabrotheeeer/content-marketplace/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/subscription/subscribe"
	tierlist "github.com/magabrotheeeer/content-marketplace/internal/http/handlers/tier/list"
	"github.com/magabrotheeeer/content-marketplace/internal/http/handlers/tier/save"
	"github.com/magabrotheeeer/content-marketplace/internal/http/middlewarectx"
)

// AuthService регистрация и вход.
type AuthService interface {
	register.Service
	login.Service
}

// OnboardingService прогресс онбординга и отметка шагов.
type OnboardingService interface {
	progress.Service
	step.Service
}

// EntitlementService проверка доступа, библиотека и приём платёжных callback.
type EntitlementService interface {
	access.Service
	library.Service
	callback.Service
}

// SubscriptionService подписки и тарифы.
type SubscriptionService interface {
	subscribe.Service
	status.Service
	sublist.Service
	save.Service
	tierlist.Service
}

// ReviewService консоль модерации.
type ReviewService interface {
	reviews.Service
	decide.Service
	history.Service
	document.Service
}

// Services набор зависимостей, из которых строятся обработчики.
type Services struct {
	Auth          AuthService
	Onboarding    OnboardingService
	Identity      identity.Service
	Content       contentcreate.Service
	Entitlements  EntitlementService
	Subscriptions SubscriptionService
	Reviews       ReviewService
	DB            health.Pinger
	Tokens        middlewarectx.TokenParser
	Limiter       *middlewarectx.UserLimiter
}

// RouteOptions параметры маршрутов, приходящие из конфига.
type RouteOptions struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	WebhookSecret  string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services, opts RouteOptions) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", callback.SignatureHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/creators/{id}/tiers", tierlist.New(logger, s.Subscriptions).ServeHTTP)

		// Webhook платёжного провайдера проверяется подписью, а не JWT
		r.Post("/payments/callback", callback.New(logger, s.Entitlements, opts.WebhookSecret).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Tokens, logger))

			r.Get("/onboarding", progress.New(logger, s.Onboarding).ServeHTTP)
			r.Post("/onboarding/{step}", step.New(logger, s.Onboarding).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(s.Limiter, logger))
				r.Post("/onboarding/identity", identity.New(logger, s.Identity, opts.MaxUploadBytes).ServeHTTP)
				r.Post("/content", contentcreate.New(logger, s.Content, opts.MaxUploadBytes).ServeHTTP)
			})

			r.Get("/content/{id}/access", access.New(logger, s.Entitlements).ServeHTTP)
			r.Get("/library", library.New(logger, s.Entitlements).ServeHTTP)

			r.Post("/subscriptions", subscribe.New(logger, s.Subscriptions).ServeHTTP)
			r.Get("/subscriptions", sublist.New(logger, s.Subscriptions).ServeHTTP)
			r.Post("/subscriptions/{id}/{action}", status.New(logger, s.Subscriptions).ServeHTTP)

			tiers := save.New(logger, s.Subscriptions)
			r.Post("/tiers", tiers.ServeHTTP)
			r.Put("/tiers/{id}", tiers.ServeHTTP)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/reviews", reviews.New(logger, s.Reviews).ServeHTTP)
				r.Post("/reviews/{progressID}", decide.New(logger, s.Reviews).ServeHTTP)
				r.Get("/reviews/{progressID}/history", history.New(logger, s.Reviews).ServeHTTP)
				r.Get("/documents", document.New(logger, s.Reviews).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, s.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
