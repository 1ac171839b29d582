package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/quangdang46/zapshop/shared/logging"
	"github.com/quangdang46/zapshop/shared/monitoring"
)

// PanicHandler handles panic recovery
type PanicHandler struct {
	logger       *logging.Logger
	onPanic      func(recovered interface{}, stack []byte)
	logStack     bool
	returnErrors bool
}

// Option configures PanicHandler
type Option func(*PanicHandler)

// WithLogger sets the logger panics are written to
func WithLogger(logger *logging.Logger) Option {
	return func(ph *PanicHandler) {
		ph.logger = logger
	}
}

// WithPanicCallback sets a callback for when panic occurs
func WithPanicCallback(fn func(recovered interface{}, stack []byte)) Option {
	return func(ph *PanicHandler) {
		ph.onPanic = fn
	}
}

// WithStackLogging enables stack trace logging
func WithStackLogging(enabled bool) Option {
	return func(ph *PanicHandler) {
		ph.logStack = enabled
	}
}

// WithErrorReturn includes the panic value in the response body
func WithErrorReturn(enabled bool) Option {
	return func(ph *PanicHandler) {
		ph.returnErrors = enabled
	}
}

// NewPanicHandler creates a new panic handler
func NewPanicHandler(opts ...Option) *PanicHandler {
	ph := &PanicHandler{
		logger:   logging.Default(),
		logStack: true,
	}
	for _, opt := range opts {
		opt(ph)
	}
	return ph
}

// GinMiddleware recovers handler panics into a JSON 500.
func (ph *PanicHandler) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				ph.handle(rec, map[string]string{
					"method": c.Request.Method,
					"route":  c.FullPath(),
				})

				msg := "internal server error"
				if ph.returnErrors {
					msg = fmt.Sprintf("internal server error: %v", rec)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
			}
		}()
		c.Next()
	}
}

// SafeGo runs fn in a goroutine that cannot crash the process.
func (ph *PanicHandler) SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ph.handle(rec, map[string]string{"goroutine": name})
			}
		}()
		fn()
	}()
}

func (ph *PanicHandler) handle(recovered interface{}, tags map[string]string) {
	stack := debug.Stack()

	log := ph.logger.WithField("panic", fmt.Sprint(recovered))
	for k, v := range tags {
		log = log.WithField(k, v)
	}
	if ph.logStack {
		log = log.WithField("stack", string(stack))
	}
	log.Error("recovered from panic")

	if ph.onPanic != nil {
		ph.onPanic(recovered, stack)
	}

	monitoring.CapturePanic(recovered, tags)
}
