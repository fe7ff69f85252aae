package http

import (
	"context"
	"net/http"
	"time"

	_ "github.com/DRSN-tech/shop-backend/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// HealthChecker проверяет доступность зависимости для /healthz.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// UseCases набор usecase, которые обслуживает HTTP API.
type UseCases struct {
	Auth    usecase.AuthUC
	Catalog usecase.CatalogUC
	Cart    usecase.CartUC
	Order   usecase.OrderUC
}

type Router struct {
	router   *chi.Mux
	logger   logger.Logger
	tokens   TokenParser
	metrics  *Metrics
	gatherer prometheus.Gatherer
	health   HealthChecker
}

func NewRouter(
	router *chi.Mux,
	logger logger.Logger,
	tokens TokenParser,
	metrics *Metrics,
	gatherer prometheus.Gatherer,
	health HealthChecker,
) *Router {
	return &Router{
		router:   router,
		logger:   logger,
		tokens:   tokens,
		metrics:  metrics,
		gatherer: gatherer,
		health:   health,
	}
}

func (r *Router) Init(uc UseCases, maxImageSize int64) {
	r.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(r.logger),
		middleware.Recoverer,
		r.metrics.Middleware,
	)

	r.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, e.ErrRouteNotFound)
	})
	r.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusMethodNotAllowed, NewErrorResponse("Method not allowed"))
	})

	r.router.Get("/healthz", r.healthz)
	r.router.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	authenticate := Authenticate(r.tokens)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerAuthRoutes(v1, NewAuthHandler(uc.Auth, r.logger), authenticate)
		registerCategoryRoutes(v1, NewCategoryHandler(uc.Catalog, r.logger), authenticate)
		registerProductRoutes(v1, NewProductHandler(uc.Catalog, r.logger, maxImageSize), authenticate)
		registerCartRoutes(v1, NewCartHandler(uc.Cart, r.logger), authenticate)
		registerOrderRoutes(v1, NewOrderHandler(uc.Order, r.logger), authenticate)
	})
}

func (r *Router) healthz(w http.ResponseWriter, req *http.Request) {
	if r.health != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		if err := r.health.Ping(ctx); err != nil {
			r.logger.Warnf("health check failed: %v", err)
			WriteSuccess(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerAuthRoutes(router chi.Router, h *AuthHandler, authenticate func(http.Handler) http.Handler) {
	router.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", h.register)
		ar.Post("/login", h.login)
		ar.With(authenticate).Get("/me", h.me)
	})
}

func registerCategoryRoutes(router chi.Router, h *CategoryHandler, authenticate func(http.Handler) http.Handler) {
	router.Route("/categories", func(cr chi.Router) {
		cr.Get("/", h.listCategories)
		cr.Get("/{id}", h.getCategory)

		cr.Group(func(admin chi.Router) {
			admin.Use(authenticate, AdminOnly)
			admin.Post("/", h.createCategory)
			admin.Put("/{id}", h.updateCategory)
			admin.Delete("/{id}", h.deleteCategory)
		})
	})
}

func registerProductRoutes(router chi.Router, h *ProductHandler, authenticate func(http.Handler) http.Handler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Get("/{id}", h.getProduct)

		pr.Group(func(admin chi.Router) {
			admin.Use(authenticate, AdminOnly)
			admin.Post("/", h.createProduct)
			admin.Put("/{id}", h.updateProduct)
			admin.Delete("/{id}", h.deleteProduct)
			admin.Post("/{id}/image", h.uploadImage)
		})
	})
}

func registerCartRoutes(router chi.Router, h *CartHandler, authenticate func(http.Handler) http.Handler) {
	router.Route("/cart", func(cr chi.Router) {
		cr.Use(authenticate)
		cr.Get("/", h.getCart)
		cr.Post("/", h.addItem)
		cr.Delete("/", h.clearCart)
		cr.Put("/{id}", h.updateItem)
		cr.Delete("/{id}", h.removeItem)
	})
}

func registerOrderRoutes(router chi.Router, h *OrderHandler, authenticate func(http.Handler) http.Handler) {
	router.Route("/orders", func(or chi.Router) {
		or.Use(authenticate)
		or.Get("/", h.listOrders)
		or.Get("/{id}", h.getOrder)
		or.Post("/", h.checkout)
		or.With(AdminOnly).Put("/{id}/status", h.updateStatus)
	})
}
