// Package devserver is an in-memory implementation of the ministagram HTTP API. It
// backs the client's tests and lets the CLI be used without the real backend.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ministagram/internal/config"
	"ministagram/internal/logger"
)

// Options configures a Server. Zero values pick usable defaults.
type Options struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	Now        func() time.Time
	Logger     *zap.Logger
}

// Server holds the store and serves the API.
type Server struct {
	store  *Store
	tokens *tokenIssuer
	log    *zap.Logger
}

func New(opts Options) *Server {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev-secret"
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		store:  NewStore(opts.Now, opts.BcryptCost),
		tokens: &tokenIssuer{secret: []byte(opts.JWTSecret), ttl: opts.TokenTTL, now: opts.Now},
		log:    logger.OrNop(opts.Logger).Named("DevServer"),
	}
}

// Store exposes the backing state, mostly for seeding in tests.
func (s *Server) Store() *Store { return s.store }

// IssueToken signs an access token for userID without a login round trip.
func (s *Server) IssueToken(userID int64) (string, error) {
	return s.tokens.issue(userID)
}

// Run serves the API on cfg.DevServerPort until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	srv := New(Options{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  time.Duration(cfg.AccessTokenMaxAge) * time.Second,
		Logger:    log,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.DevServerPort,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		srv.log.Info("listening", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dev server: %w", err)
	case <-ctx.Done():
	}

	srv.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dev server shutdown: %w", err)
	}
	return nil
}
