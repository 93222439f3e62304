package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/housekeeping/internal/config"
	"github.com/kazz187/housekeeping/internal/engine"
	"github.com/kazz187/housekeeping/internal/metrics"
	"github.com/kazz187/housekeeping/internal/query"
	"github.com/kazz187/housekeeping/pkg/cerr"
	"github.com/kazz187/housekeeping/pkg/clog"
)

type Server struct {
	mu      sync.Mutex
	server  *http.Server
	closed  bool
	env     *config.Env
	engine  *engine.Engine
	query   *query.Service
	metrics *metrics.Metrics
}

func NewServer(env *config.Env, eng *engine.Engine, q *query.Service, m *metrics.Metrics) *Server {
	return &Server{
		env:     env,
		engine:  eng,
		query:   q,
		metrics: m,
	}
}

// Handler builds the full HTTP handler tree: the JSON API under /api,
// health endpoints and prometheus metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			middleware.RequestID,
			clog.SlogChiMiddleware(clog.WithChiFilter(func(r *http.Request) bool {
				return r.Method != http.MethodOptions
			})),
			cerr.NewConvertConnectErrorChiMiddleware(),
		)
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.listTasks)
			r.Post("/", s.createTask)
			r.Post("/auto-assign", s.autoAssign)
			r.Post("/auto-generate", s.autoGenerate)
			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", s.getTask)
				r.Post("/start", s.startTask)
				r.Post("/complete", s.completeTask)
				r.Post("/exception", s.reportException)
				r.Put("/priority", s.setPriority)
				r.Put("/notes", s.setNotes)
			})
		})
		r.Route("/staff", func(r chi.Router) {
			r.Get("/", s.listStaff)
			r.Route("/{staffID}", func(r chi.Router) {
				r.Get("/", s.getStaff)
				r.Put("/status", s.setStaffStatus)
				r.Get("/tasks", s.listStaffTasks)
			})
		})
		r.Get("/history", s.listHistory)
		r.Get("/summary", s.summary)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.Unimplemented, "method not allowed", nil)
		})
	})

	mux := http.NewServeMux()

	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker(), connect.WithInterceptors(s.interceptors()...)))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(mux), &http2.Server{})
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of every
// request, so cancelling it cancels in-flight lock waits as well.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.env.Addr()
	slog.Info("starting server", "addr", addr)

	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	s.server = srv
	s.mu.Unlock()

	return srv.ListenAndServe()
}

// Shutdown stops the server. A later ListenAndServe returns http.ErrServerClosed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) interceptors() []connect.Interceptor {
	return []connect.Interceptor{
		clog.NewSlogConnectInterceptor(clog.WithConnectFilter(clog.DefaultConnectHealthCheckFilter)),
		cerr.NewConvertConnectErrorInterceptor(),
	}
}
