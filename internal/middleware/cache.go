package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl sets the Cache-Control header on every response.
func CacheControl(directive string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", directive)
		c.Next()
	}
}

// NoStore keeps job status out of every cache; it changes while a run progresses.
func NoStore() gin.HandlerFunc {
	return CacheControl("no-store")
}

// PrivateMaxAge lets the browser reuse a finished document, which never
// changes once written.
func PrivateMaxAge(maxAgeSeconds int) gin.HandlerFunc {
	return CacheControl(fmt.Sprintf("private, max-age=%d", maxAgeSeconds))
}
