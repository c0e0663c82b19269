package httpserver

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"hotel_reservations/internal/adapters/observability"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// record runs next and reports the final status (200 when nothing was
// written explicitly) and the body size.
func record(next http.Handler, w http.ResponseWriter, r *http.Request) (status, bytes int) {
	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	next.ServeHTTP(ww, r)
	status = ww.Status()
	if status == 0 {
		status = http.StatusOK
	}
	return status, ww.BytesWritten()
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status, _ := record(next, w, r)
		observability.ObserveHTTP(routeOf(r), r.Method, status, time.Since(start))
	})
}

// Logger writes one access line per request. It sits after RealIP, so
// RemoteAddr already carries the forwarded client address.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			status, n := record(next, w, r)
			ev := l.Info()
			if status >= http.StatusInternalServerError {
				ev = l.Warn()
			}
			ev.Str("route", routeOf(r)).
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Int("status", status).
				Int("bytes", n).
				Dur("duration", time.Since(start)).
				Str("remote", clientHost(r.RemoteAddr)).
				Msg("http_request")
		})
	}
}

// routeOf returns the chi route pattern, or the raw path when none matched.
func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func clientHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}
