package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rustyeddy/fxgate/metrics"
	"github.com/rustyeddy/fxgate/trade"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server. Zero values are usable.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// AllowedOrigins limits CORS. Empty allows every origin.
	AllowedOrigins []string
}

// Server exposes the orchestrator over JSON/HTTP.
type Server struct {
	orch    *trade.Orchestrator
	router  *mux.Router
	log     *zap.Logger
	metrics *metrics.Metrics
	handler http.Handler
	started time.Time
}

func New(orch *trade.Orchestrator, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	s := &Server{
		orch:    orch,
		router:  mux.NewRouter(),
		log:     opts.Logger,
		metrics: opts.Metrics,
		started: time.Now(),
	}
	s.setupRoutes()

	var c *cors.Cors
	if len(opts.AllowedOrigins) == 0 {
		c = cors.AllowAll()
	} else {
		c = cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		})
	}
	s.handler = c.Handler(s.router)

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestID, s.accessLog)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/balance", s.handleBalance).Methods(http.MethodGet)
	api.HandleFunc("/positions", s.handlePositions).Methods(http.MethodGet)
	api.HandleFunc("/close-position", s.handleClosePosition).Methods(http.MethodPost)
	api.HandleFunc("/trade", s.handleTrade).Methods(http.MethodPost)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
}

// ServeHTTP makes Server an http.Handler (CORS included).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
