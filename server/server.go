package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"connect4/meta"
	"connect4/searcher"
	"connect4/store"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

// MoveRecorder receives every served move.
type MoveRecorder interface {
	RecordMove(ctx context.Context, m store.Move) error
}

type Option func(s *Server)

// WithStore logs served moves to recorder.
func WithStore(recorder MoveRecorder) Option {
	return func(s *Server) {
		s.store = recorder
	}
}

// WithSeed gives every request's engine the same seed, making responses
// reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Server) {
		s.seed = &seed
	}
}

// Server answers move requests. Each request gets its own engine, so requests
// never share a tree or a random generator.
type Server struct {
	config meta.Config
	store  MoveRecorder
	seed   *uint64
	server *http.Server
}

func New(config meta.Config, options ...Option) *Server {
	s := &Server{config: config}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Server) newEngine() *searcher.MCTS {
	options := []searcher.Option{
		searcher.WithExplorationRate(s.config.Search.ExplorationRate),
		searcher.WithMetrics(),
	}
	if s.seed != nil {
		options = append(options, searcher.WithSeed(*s.seed))
	}
	return searcher.NewMCTS(options...)
}

// Handler returns the routes wrapped in the server's middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /move", s.handleMove)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if dir := s.config.Server.StaticDir; dir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(dir)))
	}
	return corsMiddleware(loggingMiddleware(mux))
}

// corsMiddleware lets a front end served from another origin call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
		log.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("starting move server on %s", addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return errors.Wrap(err, "server failed")
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("shutting down move server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}
	log.Info().Msg("move server stopped")
	return nil
}
