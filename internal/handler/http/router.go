package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// NewRouter creates a chi router with all storefront routes registered.
// Favorites and orders require a bearer token; the recently-viewed list only
// needs a device ID.
func NewRouter(
	favorites *service.FavoritesManager,
	recency *service.RecencyService,
	orders *service.OrderService,
	validateToken middleware.TokenValidator,
	healthHandler *health.Handler,
	logger *slog.Logger,
	rateRPS, rateBurst int,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RateLimit(rateRPS, rateBurst, logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	favoritesHandler := NewFavoritesHandler(favorites, logger)
	recentHandler := NewRecentHandler(recency, logger)
	ordersHandler := NewOrdersHandler(orders, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/favorites", func(r chi.Router) {
			r.Use(middleware.Auth(validateToken))

			r.Get("/", favoritesHandler.List)
			r.Post("/refresh", favoritesHandler.Refresh)
			r.Get("/{productID}", favoritesHandler.Membership)
			r.Post("/{productID}/toggle", favoritesHandler.Toggle)
		})

		r.With(middleware.Auth(validateToken)).Post("/session/end", favoritesHandler.EndSession)

		r.Route("/recent", func(r chi.Router) {
			r.Use(middleware.RequireDeviceID)

			r.Get("/", recentHandler.List)
			r.Post("/", recentHandler.RecordView)
			r.Delete("/", recentHandler.Clear)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.Auth(validateToken))

			r.Post("/", ordersHandler.Create)
			r.Get("/", ordersHandler.List)
			r.Get("/{orderID}", ordersHandler.GetByID)
			r.Get("/reference/{reference}", ordersHandler.GetByReference)
		})
	})

	return r
}

// ContentTypeJSON sets the response content type for API routes.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
