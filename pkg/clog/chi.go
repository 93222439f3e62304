package clog

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// URL parameters that are promoted to the shared task and staff attributes,
// so an access line and the engine's own log lines can be joined on them.
var chiParamAttributes = map[string]string{
	"taskID":  TaskAttributeKey,
	"staffID": StaffAttributeKey,
}

type chiConfig struct {
	filter func(r *http.Request) bool
}

type ChiOption func(*chiConfig)

// WithChiFilter skips the access log line for requests the filter rejects.
func WithChiFilter(filter func(r *http.Request) bool) ChiOption {
	return func(cfg *chiConfig) {
		cfg.filter = filter
	}
}

// SlogChiMiddleware writes one access line per request. The line carries the
// matched route pattern rather than the raw path, which keeps task and staff
// IDs out of the route label.
func SlogChiMiddleware(opts ...ChiOption) func(http.Handler) http.Handler {
	var cfg chiConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := ContextWithSlog(r.Context())
			attrs := map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			}
			if id := middleware.GetReqID(ctx); id != "" {
				attrs["request_id"] = id
			}
			AddAttributes(ctx, attrs)

			next.ServeHTTP(ww, r.WithContext(ctx))

			if cfg.filter != nil && !cfg.filter(r) {
				return
			}
			if rctx := chi.RouteContext(ctx); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					AddAttribute(ctx, "route", pattern)
				}
				for i, key := range rctx.URLParams.Keys {
					if attr, ok := chiParamAttributes[key]; ok && i < len(rctx.URLParams.Values) {
						AddAttribute(ctx, attr, rctx.URLParams.Values[i])
					}
				}
			}
			status := ww.Status()
			AddAttributes(ctx, map[string]any{
				"status":        status,
				"bytes_written": ww.BytesWritten(),
				"duration":      time.Since(start),
			})
			slog.Log(ctx, HTTPStatusToLevel(status).Level(), http.StatusText(status))
		})
	}
}
