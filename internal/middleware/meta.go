package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey  = "response_meta"
	requestStartKey  = "request_start"
	processingTimeMs = "processing_time_ms"
)

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetMeta records a metadata entry for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	existing, _ := c.Get(responseMetaKey)
	meta, ok := existing.(map[string]interface{})
	if !ok {
		meta = make(map[string]interface{})
		c.Set(responseMetaKey, meta)
	}
	meta[key] = value
}

// ExtractMeta returns the metadata recorded so far with the elapsed processing time.
// It returns nil when WithResponseMeta is not installed and nothing was recorded.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	value, _ := c.Get(responseMetaKey)
	stored, _ := value.(map[string]interface{})
	startValue, _ := c.Get(requestStartKey)
	start, timed := startValue.(time.Time)
	if stored == nil && !timed {
		return nil
	}
	meta := make(map[string]interface{}, len(stored)+1)
	for k, v := range stored {
		meta[k] = v
	}
	if timed {
		meta[processingTimeMs] = time.Since(start).Milliseconds()
	}
	return meta
}
