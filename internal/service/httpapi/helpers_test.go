package httpapi_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
	"github.com/vladislavdragonenkov/orderline/internal/service/httpapi"
	"github.com/vladislavdragonenkov/orderline/internal/service/ordering"
	"github.com/vladislavdragonenkov/orderline/internal/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router      http.Handler
	idempotency domain.IdempotencyRepository
	hook        *logtest.Hook
}

func newTestAPI(t *testing.T, opts ...httpapi.Option) testAPI {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	entry := logger.WithField("component", "http-api-test")

	store := memory.NewStore()
	clock := ordering.WithClock(func() time.Time { return time.Date(2024, 12, 20, 11, 53, 58, 0, time.UTC) })
	services := httpapi.Services{
		Articles:   ordering.NewArticleService(memory.NewArticleRepository(store), ordering.WithLogger(entry)),
		Orders:     ordering.NewOrderService(memory.NewOrderRepository(store), ordering.WithLogger(entry), clock),
		OrderLines: ordering.NewOrderLineService(memory.NewOrderLineRepository(store), ordering.WithLogger(entry)),
	}

	idem := memory.NewIdempotencyRepository()
	opts = append([]httpapi.Option{httpapi.WithLogger(entry), httpapi.WithIdempotency(idem)}, opts...)
	return testAPI{
		router:      httpapi.NewRouter(services, opts...),
		idempotency: idem,
		hook:        hook,
	}
}

func quietEntry() *log.Entry {
	logger, _ := logtest.NewNullLogger()
	return logger.WithField("component", "http-api-test")
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func (a testAPI) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}
