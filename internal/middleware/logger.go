package middleware

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger writes one zerolog line per request in place of gin's text logger.
func RequestLogger() gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    io.Discard,
		SkipPaths: []string{"/health", "/metrics"},
		Formatter: func(p gin.LogFormatterParams) string {
			var ev *zerolog.Event
			switch {
			case p.StatusCode >= 500:
				ev = log.Error()
			case p.StatusCode >= 400:
				ev = log.Warn()
			default:
				ev = log.Info()
			}
			reqID, _ := p.Keys[response.ContextKeyRequestID].(string)
			ev.Str("request_id", reqID).
				Str("client_ip", p.ClientIP).
				Str("method", p.Method).
				Str("path", p.Path).
				Int("status", p.StatusCode).
				Dur("latency", p.Latency).
				Str("error", p.ErrorMessage).
				Msg("http_request")
			return ""
		},
	})
}
