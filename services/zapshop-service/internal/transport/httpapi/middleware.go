package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quangdang46/zapshop/shared/logging"
)

// RequestContext propagates X-Request-ID and X-Correlation-ID into the
// request context, minting ids the caller did not send.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(logging.RequestIDHeader)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		correlationID := c.GetHeader(logging.CorrelationHeader)
		if correlationID == "" {
			correlationID = logging.GenerateCorrelationID()
		}

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithCorrelationID(ctx, correlationID)
		if account := c.Param("account"); account != "" {
			ctx = logging.WithAccount(ctx, account)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Header(logging.RequestIDHeader, requestID)
		c.Header(logging.CorrelationHeader, correlationID)
		c.Next()
	}
}

// AccessLog writes one line per request.
func AccessLog(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		logger.WithContext(c.Request.Context()).Performance("http_request", time.Since(start), map[string]interface{}{
			"method": c.Request.Method,
			"route":  route,
			"status": c.Writer.Status(),
		})
	}
}
