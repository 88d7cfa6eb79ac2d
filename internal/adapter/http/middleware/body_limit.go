package middleware

import (
	"net/http"

	"queued-ledger/pkg/apperror"
	"queued-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaxBodySize rejects requests whose declared Content-Length exceeds
// maxBytes and caps the body reader for the rest, so a handler reading past
// the limit gets an error instead of the bytes.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, apperror.ErrPayloadTooLarge(maxBytes))
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
