// Package httpapi публикует сервисы заказов как REST API на gin.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/dto"
	"github.com/vladislavdragonenkov/orderline/internal/metrics"
)

// DefaultCORSOrigin: адрес dev-сервера дашборда.
const DefaultCORSOrigin = "http://localhost:5173"

// ArticleService: операции над артикулами, нужные обработчикам.
type ArticleService interface {
	ListArticles(ctx context.Context) ([]dto.ArticleDto, error)
	GetArticle(ctx context.Context, id int64) (mo.Option[dto.ArticleDto], error)
	CreateArticle(ctx context.Context, in *dto.ArticleDto) (dto.ArticleDto, error)
	UpdateArticle(ctx context.Context, in *dto.ArticleDto) error
	DeleteArticle(ctx context.Context, id int64) error
}

// OrderService: операции над заказами, нужные обработчикам.
type OrderService interface {
	ListOrders(ctx context.Context) ([]dto.OrderDto, error)
	GetOrder(ctx context.Context, id int64) (mo.Option[dto.OrderDto], error)
	CreateOrder(ctx context.Context, in *dto.OrderDto) (dto.OrderDto, error)
	UpdateOrder(ctx context.Context, id int64, in *dto.OrderDto) error
	DeleteOrder(ctx context.Context, id int64) (bool, error)
}

// OrderLineService: операции над позициями, нужные обработчикам.
type OrderLineService interface {
	ListOrderLines(ctx context.Context) ([]dto.OrderLineDto, error)
	GetOrderLine(ctx context.Context, id int64) (mo.Option[dto.OrderLineDto], error)
	CreateOrderLine(ctx context.Context, in *dto.OrderLineDto) (dto.OrderLineDto, error)
	UpdateOrderLine(ctx context.Context, id int64, in *dto.OrderLineDto) error
	DeleteOrderLine(ctx context.Context, id int64) error
}

// Services собирает сервисы, которые обслуживает роутер.
type Services struct {
	Articles   ArticleService
	Orders     OrderService
	OrderLines OrderLineService
}

type routerConfig struct {
	logger      *log.Entry
	metrics     *metrics.HTTPMetrics
	idempotency domain.IdempotencyRepository
	corsOrigin  string
}

// Option настраивает роутер.
type Option func(*routerConfig)

// WithLogger задаёт logger для access-лога и ошибок.
func WithLogger(logger *log.Entry) Option {
	return func(c *routerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics включает метрики запросов.
func WithMetrics(m *metrics.HTTPMetrics) Option {
	return func(c *routerConfig) { c.metrics = m }
}

// WithIdempotency включает обработку заголовка Idempotency-Key на POST.
func WithIdempotency(repo domain.IdempotencyRepository) Option {
	return func(c *routerConfig) { c.idempotency = repo }
}

// WithCORSOrigin задаёт разрешённый origin; пустая строка отключает CORS.
func WithCORSOrigin(origin string) Option {
	return func(c *routerConfig) { c.corsOrigin = origin }
}

type handler struct {
	Services
	logger *log.Entry
}

// NewRouter собирает gin-движок с маршрутами /api/Article, /api/Order и /api/OrderLine.
func NewRouter(services Services, opts ...Option) *gin.Engine {
	cfg := routerConfig{
		logger:     log.WithField("component", "http-api"),
		corsOrigin: DefaultCORSOrigin,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &handler{Services: services, logger: cfg.logger}

	router := gin.New()
	router.Use(
		requestID(),
		recovery(cfg.logger),
		accessLog(cfg.logger),
		observe(cfg.metrics),
		corsMiddleware(cfg.corsOrigin),
	)
	router.NoRoute(func(c *gin.Context) {
		writeMessage(c, http.StatusNotFound, "route not found")
	})

	api := router.Group("/api")
	if cfg.idempotency != nil {
		api.Use(idempotent(cfg.idempotency, cfg.logger))
	}

	articles := api.Group("/Article")
	articles.GET("", h.listArticles)
	articles.GET("/:id", h.getArticle)
	articles.POST("", h.createArticle)
	articles.PUT("/:id", h.updateArticle)
	articles.DELETE("/:id", h.deleteArticle)

	orders := api.Group("/Order")
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)
	orders.POST("", h.createOrder)
	orders.PUT("/:id", h.updateOrder)
	orders.DELETE("/:id", h.deleteOrder)

	lines := api.Group("/OrderLine")
	lines.GET("", h.listOrderLines)
	lines.GET("/:id", h.getOrderLine)
	lines.POST("", h.createOrderLine)
	lines.PUT("/:id", h.updateOrderLine)
	lines.DELETE("/:id", h.deleteOrderLine)

	return router
}
