package timeout

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// TimeoutConfig holds timeout configuration
type TimeoutConfig struct {
	Default time.Duration
	// RPC bounds a whole history fetch or view call, all pages included.
	RPC    time.Duration
	Wallet time.Duration
	Redis  time.Duration
	HTTP   time.Duration
}

// DefaultTimeoutConfig returns default timeout configuration
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Default: 30 * time.Second,
		RPC:     20 * time.Second,
		Wallet:  2 * time.Minute,
		Redis:   2 * time.Second,
		HTTP:    30 * time.Second,
	}
}

// WithTimeout creates a context with timeout
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// GinMiddleware attaches a deadline to every request context. Handlers
// observe it through c.Request.Context().
func GinMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
