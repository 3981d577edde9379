package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/supermarketlabs/catalog-backend/api/controllers"
	"github.com/supermarketlabs/catalog-backend/api/middleware"
	authsvc "github.com/supermarketlabs/catalog-backend/internal/auth"
	"github.com/supermarketlabs/catalog-backend/internal/authz"
	productsvc "github.com/supermarketlabs/catalog-backend/internal/products"
	usersvc "github.com/supermarketlabs/catalog-backend/internal/users"
	"github.com/supermarketlabs/catalog-backend/pkg/config"
	"github.com/supermarketlabs/catalog-backend/pkg/logger"
	"github.com/supermarketlabs/catalog-backend/pkg/metrics"
	"github.com/supermarketlabs/catalog-backend/pkg/redis"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	Gate        *authz.Gate
	AuthService authsvc.Service
	UserService usersvc.Service
	Products    productsvc.Service
	HTTPMetrics *metrics.HTTPMetrics
	MetricsHTTP http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    redisPinger(deps.Redis),
		}))
	})

	metricsHandler := deps.MetricsHTTP
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.Login(deps.AuthService, logg))
	})

	r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
		Post("/api/v1/users", controllers.RegisterUser(deps.UserService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", controllers.GetUser(deps.UserService, logg))
			r.Put("/", controllers.UpdateUser(deps.UserService, logg))
			r.Delete("/", controllers.DeleteUser(deps.UserService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(deps.Products, deps.Gate, logg))
			r.Get("/", controllers.ListProducts(deps.Products, deps.Gate, logg))
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", controllers.GetProduct(deps.Products, deps.Gate, logg))
				r.Put("/", controllers.UpdateProduct(deps.Products, deps.Gate, logg))
				r.Delete("/", controllers.DeleteProduct(deps.Products, deps.Gate, logg))
				r.Post("/stock/increase", controllers.IncreaseStock(deps.Products, deps.Gate, logg))
				r.Post("/stock/decrease", controllers.DecreaseStock(deps.Products, deps.Gate, logg))
			})
		})
	})

	return r
}

// redisPinger avoids handing a typed-nil pointer to the health check map.
func redisPinger(client *redis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}
