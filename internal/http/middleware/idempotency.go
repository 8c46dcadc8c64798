package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ZiyadBin/rain-system/internal/utils"
)

const (
	idempotencyHeader  = "Idempotency-Key"
	idempotencyLockTTL = 10 * time.Second
	idempotencyTTL     = 24 * time.Hour
	processingMarker   = "PROCESSING"
)

// IdempotencyStore remembers responses by key.
type IdempotencyStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Reserve claims key for an in-flight request; false means someone else holds it.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Complete(ctx context.Context, key, body string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// RedisIdempotency keeps keys in Redis with SETNX locks.
type RedisIdempotency struct {
	Client *redis.Client
}

func (r RedisIdempotency) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r RedisIdempotency) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.Client.SetNX(ctx, key, processingMarker, ttl).Result()
}

func (r RedisIdempotency) Complete(ctx context.Context, key, body string, ttl time.Duration) error {
	return r.Client.Set(ctx, key, body, ttl).Err()
}

func (r RedisIdempotency) Release(ctx context.Context, key string) error {
	return r.Client.Del(ctx, key).Err()
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays protection for POSTs carrying an Idempotency-Key header, so a
// double-clicked create or promote is answered with 409 instead of running twice.
// A nil store disables it; store errors let the request through.
func Idempotency(st IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(idempotencyHeader))
		if st == nil || key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		idemKey := fmt.Sprintf("idempotency:%s:%s", c.FullPath(), key)

		val, found, err := st.Get(ctx, idemKey)
		if err != nil {
			utils.LogFailure(GetRequestID(c), "http", "idempotency_get", err)
			c.Next()
			return
		}
		if found {
			c.Header("X-Idempotency-Hit", "true")
			if val == processingMarker {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"success": false, "error": "concurrent request", "code": "conflict"})
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success":           false,
				"error":             "request already processed",
				"code":              "conflict",
				"original_response": rawJSON(val),
			})
			return
		}

		acquired, err := st.Reserve(ctx, idemKey, idempotencyLockTTL)
		if err != nil {
			utils.LogFailure(GetRequestID(c), "http", "idempotency_reserve", err)
			c.Next()
			return
		}
		if !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"success": false, "error": "concurrent request", "code": "conflict"})
			return
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		// Server errors release the key so the client may retry.
		if c.Writer.Status() >= http.StatusInternalServerError {
			if err := st.Release(context.WithoutCancel(ctx), idemKey); err != nil {
				utils.LogFailure(GetRequestID(c), "http", "idempotency_release", err)
			}
			return
		}
		if err := st.Complete(context.WithoutCancel(ctx), idemKey, w.body.String(), idempotencyTTL); err != nil {
			utils.LogFailure(GetRequestID(c), "http", "idempotency_complete", err, zap.String("key", key))
		}
	}
}

type rawJSON string

func (r rawJSON) MarshalJSON() ([]byte, error) {
	if strings.TrimSpace(string(r)) == "" {
		return []byte("null"), nil
	}
	return []byte(r), nil
}
