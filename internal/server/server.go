// Package server serves a packaged site under its deployment base path.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/metrics"
)

// BuildStatus reports the state of the most recent rebuild in the dev loop.
type BuildStatus interface {
	GetStatus() (hasError bool, err error, hasGoodBuild bool)
}

// Options configures a Server.
type Options struct {
	// Root is the directory holding the published files.
	Root string
	// Deployment supplies the base path and the fallback page.
	Deployment deploy.Config
	Host       string
	Port       int

	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
	Recorder       metrics.Recorder

	// BuildStatus is set by the dev loop; pages report rebuild failures.
	BuildStatus BuildStatus
	Logger      *slog.Logger
}

// Server is the HTTP runtime for packaged sites.
type Server struct {
	opts     Options
	logger   *slog.Logger
	recorder metrics.Recorder
	handler  http.Handler

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

// New constructs a Server and its router.
func New(opts Options) *Server {
	s := &Server{opts: opts, logger: opts.Logger, recorder: opts.Recorder}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.recorder == nil {
		s.recorder = metrics.NoopRecorder{}
	}
	s.handler = s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.opts.MetricsHandler != nil {
		path := s.opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, s.opts.MetricsHandler)
	}

	site := s.siteHandler()
	base := s.opts.Deployment.BasePath
	if base == "" {
		r.Handle("/*", site)
		return r
	}
	r.Get(base, func(w http.ResponseWriter, req *http.Request) {
		target := base + "/"
		if req.URL.RawQuery != "" {
			target += "?" + req.URL.RawQuery
		}
		http.Redirect(w, req, target, http.StatusMovedPermanently)
	})
	r.Handle(base+"/*", http.StripPrefix(base, site))
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, fmt.Sprintf("404 page not found (site is served under %s/)", base), http.StatusNotFound)
	})
	return r
}

// requestLogger logs method, path, status, duration and request id, and
// feeds the request metrics.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		s.recorder.ObserveHTTPRequest(r.Method, status, duration)
		s.logger.Debug("HTTP request",
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(status),
			slog.Duration("duration", duration),
			logfields.RequestID(middleware.GetReqID(r.Context())),
			logfields.RemoteAddr(r.RemoteAddr))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !s.ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not_ready"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

// ready reports whether there is a build to serve.
func (s *Server) ready() bool {
	if s.opts.BuildStatus != nil {
		if _, _, good := s.opts.BuildStatus.GetStatus(); !good {
			return false
		}
	}
	info, err := os.Stat(s.opts.Root)
	return err == nil && info.IsDir()
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return errors.RuntimeError("failed to bind HTTP listener").WithCause(err).WithContext("addr", addr).Build()
	}
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.mu.Lock()
	s.srv, s.listener = srv, ln
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", logfields.Error(err))
		}
	}()
	s.logger.Info("Serving site",
		slog.String("addr", "http://"+ln.Addr().String()+s.opts.Deployment.URL("/")),
		logfields.Path(s.opts.Root),
		logfields.BasePath(s.opts.Deployment.BasePath))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return errors.RuntimeError("HTTP server shutdown failed").WithCause(err).Build()
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Run starts the server and blocks until ctx is done, then shuts down
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}
