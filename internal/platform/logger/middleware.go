package logger

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// slowRequest marks requests logged at warn level.
const slowRequest = 10 * time.Second

// Middleware logs every request through the global zap logger.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestURL := c.Request.URL.String()

		c.Next()

		duration := time.Since(start)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("url", requestURL),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("size", c.Writer.Size()),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration", duration.Milliseconds()),
		}

		fn := zap.L().Info
		if duration > slowRequest {
			fn = zap.L().Warn
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			fn = zap.L().Error
		}

		fn(fmt.Sprintf("%s %s (%d) in %s", c.Request.Method, requestURL, c.Writer.Status(), duration), fields...)
	}
}

// Recovery returns a middleware that recovers from panics and writes a 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// A broken connection is not worth a stack trace.
				var brokenPipe bool
				if ne, ok := err.(*net.OpError); ok {
					if se, ok := ne.Err.(*os.SyscallError); ok {
						msg := strings.ToLower(se.Error())
						if strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer") {
							brokenPipe = true
						}
					}
				}

				zap.L().Error("panic recovered",
					zap.Any("error", err),
					zap.Stack("stack"),
					zap.String("method", c.Request.Method),
					zap.String("url", c.Request.URL.String()),
				)

				if brokenPipe {
					c.Abort()
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
