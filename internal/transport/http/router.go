package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nitrmart-api/internal/application/auth"
	"github.com/nitrmart-api/internal/application/media"
	"github.com/nitrmart-api/internal/application/notification"
	"github.com/nitrmart-api/internal/application/otp"
	"github.com/nitrmart-api/internal/application/product"
	"github.com/nitrmart-api/internal/application/user"
	"github.com/nitrmart-api/internal/config"
	"github.com/nitrmart-api/internal/transport/http/handler"
	appmiddleware "github.com/nitrmart-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         UserRepository
	OTPRepo          OTPRepository
	ProductRepo      ProductRepository
	ProductImageRepo ProductImageRepository
	Revocations      RevocationStore
	ObjectStore      ObjectStore
	Mailer           Mailer
	JWTProvider      TokenProvider

	// Optional. Nil disables SMS delivery and Google sign-in respectively.
	SMSSender      SMSSender
	GoogleVerifier GoogleVerifier
}

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background work such as the rate limiter sweeper.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, on the sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10, cfg.TrustedProxies)

	notifSvc := notification.NewService(notification.ServiceDeps{
		Mailer:  deps.Mailer,
		SMS:     deps.SMSSender,
		AppName: cfg.MailFromName,
	})
	otpSvc := otp.NewService(otp.ServiceDeps{
		OTPRepo:     deps.OTPRepo,
		UserRepo:    deps.UserRepo,
		Notifier:    notifSvc,
		TTL:         cfg.OTPTTL,
		EmailDomain: cfg.InstitutionDomain,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:    deps.UserRepo,
		OTP:         otpSvc,
		EmailDomain: cfg.InstitutionDomain,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		Tokens:      deps.JWTProvider,
		Revocations: deps.Revocations,
		Google:      deps.GoogleVerifier,
		EmailDomain: cfg.InstitutionDomain,
	})
	productSvc := product.NewService(product.ServiceDeps{
		ProductRepo: deps.ProductRepo,
		ImageRepo:   deps.ProductImageRepo,
		Media:       media.NewService(deps.ObjectStore),
		UserRepo:    deps.UserRepo,
	})

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(otpSvc, userSvc)
	userH := handler.NewUserHandler(userSvc)
	tokenH := handler.NewTokenHandler(authSvc)
	resetH := handler.NewPasswordResetHandler(userSvc)
	productH := handler.NewProductHandler(productSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Route("/users", func(r chi.Router) {
			// Public
			r.Group(func(r chi.Router) {
				r.Use(sensitiveRL.Limit)
				r.Post("/", userH.Create)
				r.Post("/send-otp", otpH.Send)
				r.Post("/verify-otp", otpH.Verify)
				r.Post("/check-email", userH.CheckEmail)
				r.Post("/password-reset/request", resetH.Request)
				r.Post("/password-reset/confirm", resetH.Confirm)
				r.Post("/token", tokenH.Obtain)
				r.Post("/token/google", tokenH.Google)
			})
			r.Post("/token/refresh", tokenH.Refresh)
			r.Post("/token/logout", tokenH.Logout)

			// Authenticated
			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.With(appmiddleware.RequireElevated).Get("/", userH.List)
				r.Get("/me", userH.Me)
				r.Put("/me", userH.UpdateMe)
				r.Get("/{id}", userH.Get)
				r.Put("/{id}", userH.Update)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productH.List)
			r.Get("/categories", productH.Categories)
			r.Get("/{id}", productH.Get)

			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Post("/", productH.Create)
				r.Put("/{id}", productH.Update)
				r.Delete("/{id}", productH.Delete)
			})
		})
	})

	return r
}
