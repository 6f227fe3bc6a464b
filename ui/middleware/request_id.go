package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dummycoder/domain/core"
)

// RequestIDHeader carries the per-request identifier in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID assigns every request an ID, reusing a well-formed one sent by the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseRequestID(c.GetHeader(RequestIDHeader))
		if err != nil {
			id = core.NewRequestID()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id.String())
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID, or a fresh one if the
// middleware was not installed.
func GetRequestID(c *gin.Context) core.RequestID {
	if v, ok := c.Get(requestIDKey); ok {
		if id, ok := v.(core.RequestID); ok {
			return id
		}
	}
	return core.NewRequestID()
}

// LimitUploadSize caps the request body so oversized uploads fail while parsing.
func LimitUploadSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			log.Printf("[LimitUploadSize] rejecting %d byte request (limit %d)", c.Request.ContentLength, maxBytes)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "upload exceeds size limit",
				"code":  "UPLOAD_TOO_LARGE",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
