package httpapi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderline/internal/domain"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 255

	msgKeyReused      = "Idempotency-Key was already used with a different request"
	msgKeyProcessing  = "request with this Idempotency-Key is still processing"
	msgKeyTooLong     = "Idempotency-Key is too long"
	msgReplayNotReady = "stored response for Idempotency-Key is unavailable"
)

// storedResponse: то, что сохраняется для повторов: тело и Location.
type storedResponse struct {
	Location string          `json:"location,omitempty"`
	Body     json.RawMessage `json:"body,omitempty"`
}

// recorder копирует тело ответа, пока оно уходит клиенту.
type recorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// idempotent сохраняет первый ответ на POST с Idempotency-Key и повторяет его
// для запросов с тем же ключом и телом. 5xx сохраняется как failed и тоже повторяется.
func idempotent(repo domain.IdempotencyRepository, logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(headerIdempotencyKey))
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			writeMessage(c, http.StatusBadRequest, msgKeyTooLong)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			writeMessage(c, http.StatusBadRequest, "invalid request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		entry := logger.WithFields(log.Fields{
			"idempotency_key": key,
			"request_id":      c.GetString(requestIDKey),
		})

		ctx := c.Request.Context()
		record, err := repo.CreateProcessing(ctx, key, requestHash(c.Request, body), time.Now().UTC().Add(domain.DefaultIdempotencyTTL))
		if err != nil {
			replay(c, entry, record, err)
			return
		}

		rec := &recorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		stored, err := json.Marshal(storedResponse{
			Location: rec.Header().Get("Location"),
			Body:     json.RawMessage(bytes.TrimSpace(rec.body.Bytes())),
		})
		if err != nil {
			entry.WithError(err).Warn("encode idempotent response failed")
			stored = nil
		}

		saveCtx := context.WithoutCancel(ctx)
		if status >= http.StatusInternalServerError {
			err = repo.MarkFailed(saveCtx, key, stored, status)
		} else {
			err = repo.MarkDone(saveCtx, key, stored, status)
		}
		if err != nil {
			entry.WithError(err).Warn("store idempotent response failed")
		}
	}
}

func replay(c *gin.Context, entry *log.Entry, record domain.IdempotencyRecord, createErr error) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		writeMessage(c, http.StatusConflict, msgKeyReused)
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		if record.Status == domain.IdempotencyStatusProcessing {
			writeMessage(c, http.StatusConflict, msgKeyProcessing)
			return
		}

		var stored storedResponse
		if record.HTTPStatus == 0 || json.Unmarshal(record.ResponseBody, &stored) != nil {
			entry.WithField("status", record.Status).Warn("stored idempotent response is unusable")
			writeMessage(c, http.StatusInternalServerError, msgReplayNotReady)
			return
		}

		c.Header(headerReplayed, "true")
		if stored.Location != "" {
			c.Header("Location", stored.Location)
		}
		if len(stored.Body) == 0 {
			c.AbortWithStatus(record.HTTPStatus)
			return
		}
		c.Abort()
		c.Data(record.HTTPStatus, "application/json; charset=utf-8", stored.Body)
	default:
		entry.WithError(createErr).Error("create idempotency record failed")
		writeMessage(c, http.StatusInternalServerError, msgInternal)
	}
}

// requestHash связывает ключ с методом, путём и телом запроса.
func requestHash(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method))
	h.Write([]byte{0})
	h.Write([]byte(r.URL.Path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
