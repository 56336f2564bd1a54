package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/examplanner-api/pkg/middleware/requestid"
)

const responseMetaKey = "response_meta"

// ResponseMeta is the meta block rendered into the response envelope.
type ResponseMeta map[string]interface{}

// WithResponseMeta seeds each request with a meta block. Must run after the
// request id middleware so the id can be echoed.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := ResponseMeta{}
		if id := requestid.Value(c); id != "" {
			meta["request_id"] = id
		}
		c.Set(responseMetaKey, meta)
		c.Next()
	}
}

// SetMeta records one meta entry for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	metaFor(c)[key] = value
}

// SetCacheHit reports whether the payload was served from the allotment cache,
// both in meta and in the X-Cache header.
func SetCacheHit(c *gin.Context, hit bool) {
	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	SetMeta(c, "cache_hit", hit)
}

// ExtractMeta returns the meta block, or nil when nothing was recorded.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	raw, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	meta, ok := raw.(ResponseMeta)
	if !ok || len(meta) == 0 {
		return nil
	}
	return meta
}

func metaFor(c *gin.Context) ResponseMeta {
	if raw, ok := c.Get(responseMetaKey); ok {
		if meta, ok := raw.(ResponseMeta); ok {
			return meta
		}
	}
	meta := ResponseMeta{}
	c.Set(responseMetaKey, meta)
	return meta
}
