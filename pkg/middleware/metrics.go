package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventbook/pkg/metrics"
)

func HTTPMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			path := routeLabel(r.URL.Path)
			m.HTTPRequestsTotal.WithLabelValues(
				r.Method, path, strconv.Itoa(wrapped.statusCode),
			).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, path).
				Observe(time.Since(start).Seconds())
		})
	}
}

// routeLabel collapses dynamic path segments to their route placeholders so
// the path label stays bounded; raw document IDs would mint a new label
// value per request.
func routeLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 3 || segments[0] != "api" {
		return path
	}

	switch segments[1] {
	case "events":
		if len(segments) == 3 {
			switch segments[2] {
			case "filters", "upcoming":
				return path
			}
			return "/api/events/:id"
		}
		if len(segments) == 4 && segments[2] == "admin" {
			return "/api/events/admin/:adminId"
		}
	case "bookings":
		if len(segments) == 3 && segments[2] != "history" {
			return "/api/bookings/:eventId"
		}
	}

	return path
}
