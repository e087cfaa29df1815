package cache

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware caches successful JSON GET responses keyed by request URI.
func (c *Cache) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}

		key := ctx.Request.URL.RequestURI()
		if cached, found := c.Read(key); found {
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, contentTypeFor(cached), cached)
			ctx.Abort()
			return
		}

		ctx.Header("X-Cache", "MISS")

		writer := &responseWriter{
			ResponseWriter: ctx.Writer,
			body:           bytes.NewBuffer(nil),
		}
		ctx.Writer = writer

		ctx.Next()

		if ctx.Writer.Status() == http.StatusOK &&
			strings.HasPrefix(ctx.Writer.Header().Get("Content-Type"), "application/json") {
			if err := c.Write(key, writer.body.Bytes()); err != nil {
				ctx.Error(err)
			}
		}
	}
}

func contentTypeFor(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return "application/json; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}
