package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

const (
	msgInternal          = "internal error"
	msgNoOrderLines      = "No order lines found."
	msgArticleIDMismatch = "Article ID mismatch."
	msgOrderIDMismatch   = "Order ID mismatch."
)

var errInvalidID = errors.New("id must be a positive integer")

type errorBody struct {
	Error string `json:"error"`
}

func writeMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: message})
}

// writeError переводит ошибку сервиса в HTTP-ответ. Неклассифицированные ошибки
// логируются, клиент видит только "internal error".
func (h *handler) writeError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		writeMessage(c, http.StatusNotFound, notFoundMessage(err))
	case domain.IsInvalidArgument(err):
		writeMessage(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(requestIDKey),
		}).Error("request failed")
		writeMessage(c, http.StatusInternalServerError, msgInternal)
	}
}

// notFoundMessage отдаёт фиксированный текст без обёрток.
func notFoundMessage(err error) string {
	for _, sentinel := range []error{domain.ErrOrderNotFound, domain.ErrArticleNotFound, domain.ErrOrderLineNotFound} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// pathID разбирает :id; всё, кроме положительного целого, даёт 400.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(c, http.StatusBadRequest, errInvalidID.Error())
		return 0, false
	}
	return id, true
}

// bindJSON читает тело; пустое или битое тело даёт 400.
func bindJSON[T any](c *gin.Context) (*T, bool) {
	var in T
	if err := c.ShouldBindJSON(&in); err != nil {
		writeMessage(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return nil, false
	}
	return &in, true
}

func location(c *gin.Context, entity string, id int64) {
	c.Header("Location", fmt.Sprintf("/api/%s/%d", entity, id))
}
