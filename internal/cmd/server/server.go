// Package server runs the contacts HTTP API process: it opens the store,
// installs tracing, serves the Gin router and shuts down gracefully when
// the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-contacts-backend/internal/config"
	httpapi "github.com/tbourn/go-contacts-backend/internal/http"
	"github.com/tbourn/go-contacts-backend/internal/observability"
	"github.com/tbourn/go-contacts-backend/internal/repo"
)

const shutdownTimeout = 10 * time.Second

// Run serves until ctx is done or the listener fails. ready, when non-nil,
// receives the bound address once the server accepts connections.
func Run(ctx context.Context, cfg config.Config, version string, ready chan<- string) error {
	gin.SetMode(cfg.GinMode)

	backend, _, err := repo.ParseURI(cfg.StoreURI)
	if err != nil {
		return err
	}
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Info{
		Version:      version,
		StoreBackend: backend,
	})
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	st, err := repo.Open(ctx, cfg.StoreURI, repo.Options{Tracing: cfg.OTEL.Enabled})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(sctx); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()
	log.Info().Str("backend", st.Backend).Msg("store ready")

	r := gin.New()
	httpapi.RegisterRoutes(r, st, cfg)

	srv := &http.Server{
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr(), err)
	}
	log.Info().Str("addr", ln.Addr().String()).Str("api", cfg.APIBasePath).Msg("http server listening")
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
