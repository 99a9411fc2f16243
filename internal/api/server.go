package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wonny/valuescreen/pkg/logger"
)

// shutdownTimeout bounds how long in-flight screens may finish after the
// serve context is cancelled
const shutdownTimeout = 30 * time.Second

// Server serves the router until its context is cancelled
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// New creates a server for handler
func New(handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute, // 티커 수에 비례해 오래 걸림
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
	}
}

// Listen opens the TCP listener for port ("0" picks a free port)
func Listen(port string) (net.Listener, error) {
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("listen on port %s: %w", port, err)
	}
	return ln, nil
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests. A clean shutdown returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := s.logger.WithField("addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()
	log.Info("API server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	log.Info("API server stopped")
	return nil
}
