package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/application/auth"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/application/booking"
	facilityapp "github.com/suvendukungfu/Quick-Court-sub001/internal/application/facility"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/application/otp"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/config"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/domain"
	"github.com/suvendukungfu/Quick-Court-sub001/internal/transport/http/handler"
	appmiddleware "github.com/suvendukungfu/Quick-Court-sub001/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	// Any origin is allowed; OPTIONS preflight short-circuits inside the
	// cors handler before any business logic runs.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(otp.Deps{
		OTPRepo:     deps.OTPRepo,
		UserRepo:    deps.UserRepo,
		SMSSender:   deps.SMSSender,
		Expiry:      cfg.OTPExpiry,
		MaxAttempts: cfg.OTPMaxAttempts,
	})
	authDeps := auth.Deps{
		UserRepo: deps.UserRepo,
		OTPSvc:   otpSvc,
	}
	// Assigning a nil *Provider directly would produce a typed-nil TokenSigner
	// that passes the service's nil check.
	if deps.JWTProvider != nil {
		authDeps.Signer = deps.JWTProvider
	}
	authSvc := auth.NewService(authDeps)
	facilitySvc := facilityapp.NewService(deps.FacilityRepo, deps.CourtRepo, deps.PhotoStore)
	bookingSvc := booking.NewService(booking.Deps{
		BookingRepo:  deps.BookingRepo,
		CourtRepo:    deps.CourtRepo,
		FacilityRepo: deps.FacilityRepo,
		UserRepo:     deps.UserRepo,
		Mailer:       deps.Mailer,
	})

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(otpSvc)
	authH := handler.NewAuthHandler(authSvc)
	facilityH := handler.NewFacilityHandler(facilitySvc)
	bookingH := handler.NewBookingHandler(bookingSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/signup", authH.Signup)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/otp/request", authH.RequestOTP)
		r.With(sensitiveRL.Limit).Post("/auth/otp/verify", otpH.Verify)
		r.Get("/facilities", facilityH.List)
		r.Get("/facilities/{id}", facilityH.Get)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/bookings", bookingH.Create)
			r.Get("/bookings", bookingH.ListMine)
			r.Put("/bookings/{slotID}/cancel", bookingH.Cancel)

			// Owner-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleOwner, domain.RoleAdmin))

				r.Post("/facilities", facilityH.Create)
				r.Get("/facilities/owned", facilityH.ListOwned)
				r.Put("/facilities/{id}", facilityH.Update)
				r.Delete("/facilities/{id}", facilityH.Delete)
				r.Post("/facilities/{id}/photo", facilityH.UploadPhoto)
				r.Post("/facilities/{id}/courts", facilityH.AddCourt)
				r.Get("/facilities/{id}/stats", bookingH.FacilityStats)
			})

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Put("/facilities/{id}/status", facilityH.SetStatus)
			})
		})
	})

	return r
}
