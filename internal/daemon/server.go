// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	adminReadTimeout  = 10 * time.Second
	adminWriteTimeout = 30 * time.Second
	adminIdleTimeout  = 60 * time.Second
)

// adminServer runs the admin HTTP surface until its context ends.
type adminServer struct {
	addr            string
	handler         http.Handler
	shutdownTimeout time.Duration
	logger          zerolog.Logger

	// ready receives the bound address once listening.
	ready chan net.Addr
}

func newAdminServer(addr string, handler http.Handler, shutdownTimeout time.Duration, logger zerolog.Logger) *adminServer {
	return &adminServer{
		addr:            addr,
		handler:         handler,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
		ready:           make(chan net.Addr, 1),
	}
}

// Run listens, serves and shuts down gracefully when ctx is cancelled.
func (s *adminServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: admin %s: %v", ErrServerStartFailed, s.addr, err)
	}
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       adminReadTimeout,
		ReadHeaderTimeout: adminReadTimeout / 2,
		WriteTimeout:      adminWriteTimeout,
		IdleTimeout:       adminIdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("admin server listening")
		errChan <- srv.Serve(ln)
	}()
	s.ready <- ln.Addr()

	select {
	case err := <-errChan:
		s.logger.Error().Err(err).Str("event", "admin.server.failed").Msg("admin server failed")
		return fmt.Errorf("admin server: %w", err)
	case <-ctx.Done():
	}

	// Use a detached-but-bounded context so shutdown can complete even if parent is canceled.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("admin server shutdown: %w", err)
	}
	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin server: %w", err)
	}
	s.logger.Info().Msg("admin server stopped")
	return nil
}
