package http

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// createCORSMiddleware returns nil when CORS is disabled. Once enabled, pages
// served from a loopback origin (http://localhost:5173, http://127.0.0.1,
// http://[::1]:3000) may always call the API; allowOriginsStr adds further
// origins, typically the webview origin of the app shell.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	extra := make(map[string]struct{})
	for _, origin := range parseOrigins(allowOriginsStr) {
		normalized, ok := normalizeOrigin(origin)
		if !ok {
			logger.Warn("ignoring invalid CORS origin", slog.String("origin", origin))
			continue
		}
		extra[normalized] = struct{}{}
	}

	logger.Info("CORS enabled for loopback origins", slog.Int("extra_origin_count", len(extra)))

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if isLoopbackOrigin(origin) {
				return true
			}
			normalized, ok := normalizeOrigin(origin)
			if !ok {
				return false
			}
			_, allowed := extra[normalized]
			return allowed
		},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowHeaders:     []string{"Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func parseOrigins(originsStr string) []string {
	var origins []string
	for part := range strings.SplitSeq(originsStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// normalizeOrigin accepts scheme://host[:port] with no path, query or user
// info and returns it lowercased.
func normalizeOrigin(origin string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" || u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return "", false
	}
	if u.Path != "" && u.Path != "/" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}

func isLoopbackOrigin(origin string) bool {
	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
