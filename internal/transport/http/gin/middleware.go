package httpgin

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/access"
	"github.com/kirinyoku/eventease/internal/domain"
	"github.com/kirinyoku/eventease/internal/service"
	"github.com/kirinyoku/eventease/internal/session"
)

const sessionCookie = "ee_session"

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Set("request_id", reqID)

		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"If-None-Match",
			"X-Timezone",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"ETag",
			"Cache-Control",
			"Location",
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	return cors.New(cfg)
}

func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		reqID, _ := c.Get("request_id")

		attrs := []any{
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("ip", c.ClientIP()),
			slog.String("ua", c.Request.UserAgent()),
			slog.Any("request_id", reqID),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", c.Writer.Size()),
		}

		if sess, ok := session.FromContext(c.Request.Context()); ok {
			attrs = append(attrs, slog.String("user_id", sess.UserID.String()))
		}

		if len(c.Errors) > 0 {
			logger.Error("http", slog.Group("http", attrs...))
		} else {
			logger.Info("http", slog.Group("http", attrs...))
		}
	}
}

// SessionMiddleware resolves the tab's session from the bearer token, or
// from the browser-session cookie for plain navigations, and stores it in
// the request context. A token that resolves to nothing leaves the
// request anonymous.
func SessionMiddleware(sessions service.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := requestToken(c)
		if token != "" {
			if sess, ok := sessions.Get(c.Request.Context(), token); ok {
				c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), sess, token))
			}
		}

		c.Next()
	}
}

func requestToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie
	}

	return ""
}

// Guard checks every request against the route table.
func Guard(table *access.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		d := table.Check(c.Request.URL.Path, currentSession(c))
		if d.Allow {
			c.Next()
			return
		}

		if wantsJSON(c) {
			status := http.StatusForbidden
			msg := "forbidden"
			if d.RedirectTo == access.PathLogin {
				status = http.StatusUnauthorized
				msg = "login required"
			}
			c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, RedirectTo: d.RedirectTo})
			return
		}

		c.Redirect(http.StatusSeeOther, d.RedirectTo)
		c.Abort()
	}
}

func currentSession(c *gin.Context) *domain.Session {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok {
		return nil
	}
	return &sess
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
