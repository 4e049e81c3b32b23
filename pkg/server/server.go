package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/noisegraph/pkg/cache"
)

// DefaultSVGTTL is how long rendered SVGs are kept in the cache.
const DefaultSVGTTL = time.Hour

// Server serves one [Session].
type Server struct {
	sess    *Session
	cache   cache.Cache
	log     *log.Logger
	metrics http.Handler
	svgTTL  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithCache sets the cache rendered SVGs are stored in.
func WithCache(c cache.Cache) Option {
	return func(s *Server) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithSVGTTL overrides [DefaultSVGTTL].
func WithSVGTTL(ttl time.Duration) Option {
	return func(s *Server) { s.svgTTL = ttl }
}

// New creates a server for sess.
func New(sess *Session, opts ...Option) *Server {
	s := &Server{
		sess:   sess,
		cache:  cache.NewNullCache(),
		log:    log.Default(),
		svgTTL: DefaultSVGTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = cache.Instrument(s.cache, "svg")
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/session", s.getSession)

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.listNodes)
		r.Route("/{node}", func(r chi.Router) {
			r.Get("/", s.getNode)
			r.Put("/params", s.setParams)
			r.Post("/dirty", s.markDirty)
			r.Get("/image.png", s.getImage)
		})
	})
	r.Route("/links", func(r chi.Router) {
		r.Get("/", s.listLinks)
		r.Post("/", s.connect)
		r.Delete("/{link}", s.disconnect)
	})
	r.Post("/tick", s.tick)
	r.Get("/graph.dot", s.getDOT)
	r.Get("/graph.svg", s.getSVG)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr, "session", s.sess.ID)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
