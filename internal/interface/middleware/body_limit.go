package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultBodyLimit caps JSON request bodies.
const DefaultBodyLimit int64 = 1 << 20

// BodyLimit rejects request bodies larger than n bytes once they are read.
func BodyLimit(n int64) gin.HandlerFunc {
	if n <= 0 {
		n = DefaultBodyLimit
	}
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
