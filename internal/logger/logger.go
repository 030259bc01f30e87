package logger

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const requestIDKey = "request_id"

var (
	global *zap.Logger
	once   sync.Once
)

// Init builds the process-wide logger. Debug mode uses a colored console
// encoder; otherwise JSON with ISO8601 timestamps.
func Init(debug bool) {
	once.Do(func() {
		var cfg zap.Config
		if debug {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			cfg = zap.NewProductionConfig()
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		}

		l, err := cfg.Build()
		if err != nil {
			panic("logger init: " + err.Error())
		}
		global = l
	})
}

// Get returns the shared logger. Before Init it returns a no-op logger,
// which keeps tests quiet without any setup.
func Get() *zap.Logger {
	if global == nil {
		return zap.NewNop()
	}
	return global
}

// RequestIDMiddleware tags each request with an ID, honoring an inbound
// X-Request-ID header so IDs survive the CDN hop.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Sync flushes buffered entries. Called from main on shutdown.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
