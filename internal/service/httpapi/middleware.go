package httpapi

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderline/internal/metrics"
)

const (
	headerRequestID = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID берёт X-Request-ID клиента или генерирует UUID и кладёт его в контекст запроса.
func requestID() gin.HandlerFunc {
	return requestid.New(
		requestid.WithGenerator(uuid.NewString),
		requestid.WithHandler(func(c *gin.Context, id string) {
			c.Set(requestIDKey, id)
		}),
	)
}

// recovery превращает панику обработчика в 500 и пишет её в лог.
func recovery(logger *log.Entry) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.WithFields(log.Fields{
			"panic":      recovered,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(requestIDKey),
		}).Error("handler panicked")
		writeMessage(c, http.StatusInternalServerError, msgInternal)
	})
}

func accessLog(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      c.FullPath(),
			"status":     status,
			"latency_ms": time.Since(started).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(requestIDKey),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("http request")
		case status >= http.StatusBadRequest:
			entry.Warn("http request")
		default:
			entry.Info("http request")
		}
	}
}

// observe пишет метрики по шаблону маршрута, а не по фактическому пути.
func observe(m *metrics.HTTPMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		started := time.Now()
		m.Started()
		c.Next()
		m.Finished(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(started))
	}
}

func corsConfig(origin string) cors.Config {
	return cors.Config{
		AllowOrigins:  []string{origin},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", headerIdempotencyKey, headerRequestID},
		ExposeHeaders: []string{"Location", headerRequestID, headerReplayed},
		MaxAge:        12 * time.Hour,
	}
}

// ValidateCORSOrigin проверяет origin так же, как это сделает CORS-middleware при сборке роутера.
func ValidateCORSOrigin(origin string) error {
	if origin == "" {
		return nil
	}
	return corsConfig(origin).Validate()
}

// corsMiddleware разрешает запросы дашборда с origin; чужой origin получает 403,
// preflight завершается здесь же с 204.
func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return cors.New(corsConfig(origin))
}
