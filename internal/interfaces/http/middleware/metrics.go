package middleware

import (
	"github.com/gin-gonic/gin"
)

// HTTPObserver records request counts and latency.
type HTTPObserver interface {
	HTTPStarted() func(method, route string, status int)
}

// Metrics observes every request under its route template so that ids in
// paths do not explode label cardinality.
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := observer.HTTPStarted()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		done(c.Request.Method, route, c.Writer.Status())
	}
}
