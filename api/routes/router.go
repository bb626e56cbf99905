package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nilecommerce/admin-service/api/controllers"
	"github.com/nilecommerce/admin-service/api/middleware"
	"github.com/nilecommerce/admin-service/internal/auth"
	"github.com/nilecommerce/admin-service/internal/dashboard"
	"github.com/nilecommerce/admin-service/internal/merchants"
	"github.com/nilecommerce/admin-service/internal/orders"
	"github.com/nilecommerce/admin-service/pkg/config"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

// RateLimiterStore is the redis surface the auth rate limiter needs.
type RateLimiterStore = middleware.RateLimiterStore

// Deps bundles everything the router wires together.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Auth      auth.Service
	Merchants merchants.Service
	Orders    orders.Service
	Dashboard dashboard.Service

	RateLimiter RateLimiterStore
	Pingers     map[string]controllers.Pinger
	Gatherer    prometheus.Gatherer
}

// NewRouter assembles the admin API surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.RateLimiter, logg)).
			Post("/register", controllers.Register(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).
			Post("/login", controllers.Login(deps.Auth, logg))
		r.Post("/forgot-password", controllers.ForgotPassword(deps.Auth, logg))
		r.Post("/reset-password", controllers.ResetPassword(deps.Auth, logg))
		r.Post("/verify-email", controllers.VerifyEmail(deps.Auth, logg))
		r.Post("/resend-verification", controllers.ResendVerification(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/change-password", controllers.ChangePassword(deps.Auth, logg))
			r.Get("/profile", controllers.Profile(deps.Auth, logg))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/merchants", func(r chi.Router) {
			r.Get("/", controllers.ListStores(deps.Merchants, logg))
			r.Get("/stats", controllers.MerchantStats(deps.Merchants, logg))
			r.Get("/{storeId}", controllers.GetStore(deps.Merchants, logg))
			r.Delete("/{storeId}", controllers.DeleteStore(deps.Merchants, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/stats", controllers.OrderStatsSummary(deps.Orders, logg))
			r.Get("/merchant/{merchantId}", controllers.MerchantOrders(deps.Orders, logg))
			r.Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(deps.Orders, logg))
			r.Put("/{orderId}", controllers.UpdateOrderStatus(deps.Orders, logg))
			r.Delete("/{orderId}", controllers.CancelOrder(deps.Orders, logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Put("/stats", controllers.RecordDashboardStat(deps.Dashboard, logg))
			r.Put("/failed-order-reasons", controllers.RecordFailedOrderReason(deps.Dashboard, logg))
			r.Get("/stats", controllers.WeeklySummary(deps.Dashboard, logg))
			r.Get("/month-orders-trends", controllers.MonthlyTrend(deps.Dashboard, logg))
			r.Get("/failed-order-reasons", controllers.FailureBreakdown(deps.Dashboard, logg))
		})
	})

	return r
}
