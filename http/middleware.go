// Package http provides the admin HTTP surface onto a running
// runtime: worker/service introspection, runcmd dispatch, and
// whole-runtime broadcast, plus the request logging middleware every
// route runs behind.
package http

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// LoggerMiddleware logs every request's method, URI, status, latency
// and client IP through the standard logrus logger once the handler
// chain completes.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		log.WithFields(log.Fields{
			"req_method": c.Request.Method,
			"req_uri":    path,
			"client_ip":  c.ClientIP(),
			"latency":    time.Since(start),
		}).Infof("status=%d", c.Writer.Status())
	}
}
