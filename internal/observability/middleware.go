package observability

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionKey is the gin context key handlers set to the session id they
// served or created, so request lines can be joined with session logs.
const SessionKey = "csmacd.session"

// RouteGroup collapses a matched route to its first segment, so "/sessions",
// "/sessions/latest" and "/sessions/:id" all report as "sessions". Unmatched
// requests report as "unmatched" to keep label cardinality bounded.
func RouteGroup(fullPath string) string {
	p := strings.Trim(fullPath, "/")
	if fullPath == "" {
		return "unmatched"
	}
	if p == "" {
		return "root"
	}
	group, _, _ := strings.Cut(p, "/")
	return group
}

// RequestLogger logs one line per request, tagged with server and, for
// session routes, the session id.
func RequestLogger(logger zerolog.Logger, server string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		event := logger.Info()
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}
		if id := c.GetString(SessionKey); id != "" {
			event = event.Str("session", id)
		}

		event.
			Str("server", server).
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("report_request")
	}
}

// RequestMetricsMiddleware records request counts and latency per server and
// route group.
func RequestMetricsMiddleware(server string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		RecordHTTPRequest(server, c.Request.Method, RouteGroup(c.FullPath()), c.Writer.Status(), time.Since(start))
	}
}
