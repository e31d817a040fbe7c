package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/haulbook/haulbook-backend-go/internal/config"
	"github.com/haulbook/haulbook-backend-go/internal/handler/http/middleware"
	"github.com/haulbook/haulbook-backend-go/internal/observability"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/jwt"
)

func NewRouter(
	logger *slog.Logger,
	cfg *config.Config,
	JWTService jwt.Service,
	metrics *observability.Metrics,
	paymentMethodHandler PaymentMethodHandler,
	payrollHandler PayrollHandler,
	paystubHandler PaystubHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))
	r.Use(metrics.Middleware)

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window))

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/employees/{employeeId}", func(r chi.Router) {
				r.Get("/payment-method", paymentMethodHandler.Resolve)
				r.Get("/payment-methods", paymentMethodHandler.ListHistory)
				r.Post("/payment-methods", paymentMethodHandler.CreateHistory)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/", payrollHandler.ListPayrolls)
				r.Post("/aggregate", payrollHandler.Aggregate)

				r.Route("/fuel", func(r chi.Router) {
					r.Post("/import", payrollHandler.ImportFuel)
					r.Patch("/{integrationId}", payrollHandler.SetFuelInclusion)
				})

				r.Route("/loads/{loadId}", func(r chi.Router) {
					r.Post("/move", payrollHandler.MoveLoad)
					r.Get("/moves", payrollHandler.ListLoadMoves)
				})

				r.Route("/weeks", func(r chi.Router) {
					r.Get("/lock", payrollHandler.GetWeekLockStatus)
					r.Get("/{year}/{week}/export", payrollHandler.ExportWeek)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Post("/lock", payrollHandler.SetWeekLock)
					})
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPayroll)
					r.Get("/paystub", paystubHandler.GetByPayroll)
				})
			})

			r.Route("/paystubs", func(r chi.Router) {
				r.Get("/", paystubHandler.ListForWeek)
				r.Post("/", paystubHandler.Generate)
				r.Post("/week", paystubHandler.GenerateForWeek)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", paystubHandler.Get)
					r.Post("/approve", paystubHandler.Approve)
					r.Post("/paid", paystubHandler.MarkPaid)
				})
			})
		})
	})
	return r
}
