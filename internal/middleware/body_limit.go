package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/studypath/studypath-api/pkg/errors"
	"github.com/studypath/studypath-api/pkg/response"
)

// BodyLimit caps request bodies at max bytes. Requests that declare a larger
// Content-Length are rejected up front; the rest fail on read.
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > max {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}
