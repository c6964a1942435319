package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meditime/meditime-ai/internal/config"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	// maxRequestIDLen bounds client-supplied ids echoed into logs.
	maxRequestIDLen = 128
)

// requestID assigns every request an id, reusing the client's X-Request-ID
// when it is present and printable.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// requestLogger writes one access log line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("Request handled",
			zap.String("request_id", requestIDFrom(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()))
	}
}

// recovery turns handler panics into a 500 in the error shape. The panic
// value is logged, never returned.
func recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, err any) {
		log.Error("Recovered from panic",
			zap.String("request_id", requestIDFrom(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", err),
			zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			ErrorResponse{Status: StatusError, Detail: "internal server error"})
	})
}

// corsMiddleware applies the configured CORS policy. Credentials are only
// allowed for an explicit origin list.
func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  cfg.AllowedHeaders,
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if cfg.AllowAll() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	return cors.New(corsConfig)
}
