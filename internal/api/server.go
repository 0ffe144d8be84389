// Package api hosts the stockboard HTTP handler and a gRPC health service
// side by side, and shuts both down together.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service reported by the gRPC health server.
const ServiceName = "stockboard"

// DefaultShutdownTimeout bounds how long in-flight HTTP requests may take to
// finish once shutdown starts.
const DefaultShutdownTimeout = 5 * time.Second

// Server is the main API server that hosts the HTTP and gRPC endpoints.
type Server struct {
	httpAddr string
	grpcAddr string // empty disables gRPC
	handler  http.Handler
	log      *slog.Logger

	ShutdownTimeout time.Duration
}

// NewServer creates a Server. An empty grpcAddr runs HTTP only.
func NewServer(httpAddr, grpcAddr string, handler http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		httpAddr:        httpAddr,
		grpcAddr:        grpcAddr,
		handler:         handler,
		log:             log,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// ListenAndServe opens the configured listeners and serves until ctx is
// cancelled or a listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpLn, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpAddr, err)
	}
	var grpcLn net.Listener
	if s.grpcAddr != "" {
		grpcLn, err = net.Listen("tcp", s.grpcAddr)
		if err != nil {
			httpLn.Close()
			return fmt.Errorf("listening on %s: %w", s.grpcAddr, err)
		}
	}
	return s.Serve(ctx, httpLn, grpcLn)
}

// Serve serves HTTP on httpLn and, when grpcLn is non-nil, the gRPC health
// service on grpcLn. It blocks until ctx is cancelled or either server
// fails, then shuts both down gracefully.
func (s *Server) Serve(ctx context.Context, httpLn, grpcLn net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{Handler: s.handler}
	g.Go(func() error {
		s.log.Info("HTTP server listening", "addr", httpLn.Addr().String())
		if err := httpServer.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	var (
		grpcServer *grpc.Server
		healthSrv  *health.Server
	)
	if grpcLn != nil {
		grpcServer = grpc.NewServer()
		healthSrv = health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthSrv)
		healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

		g.Go(func() error {
			s.log.Info("gRPC server listening", "addr", grpcLn.Addr().String())
			if err := grpcServer.Serve(grpcLn); err != nil {
				return fmt.Errorf("gRPC server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down server")

		if healthSrv != nil {
			healthSrv.Shutdown()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("shutdown error", "error", err)
		}
		if grpcServer != nil {
			grpcServer.GracefulStop()
		}
		return nil
	})

	return g.Wait()
}
