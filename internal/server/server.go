// Package server runs the HTTP and optional gRPC listeners until a signal
// arrives, then shuts everything down in order.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/internal/kernel"
	grpcserver "github.com/shashiranjanraj/sweetshop/pkg/grpc"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Start serves k until SIGINT or SIGTERM.
func Start(k *kernel.Kernel) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Run(ctx, k)
}

// Run serves k until ctx is cancelled or a listener fails.
func Run(ctx context.Context, k *kernel.Kernel) error {
	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, loop := range k.Background() {
		g.Go(func() error {
			loop(gctx)
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("http: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if port := config.GRPCPort(); port != "" {
		gs := grpcserver.NewServer(k.Store)
		g.Go(func() error {
			lis, err := net.Listen("tcp", ":"+port)
			if err != nil {
				return err
			}
			logger.Info("grpc: listening", "addr", lis.Addr().String())
			if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			gs.GracefulStop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("http: shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err := g.Wait()

	cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if cerr := k.Close(cctx); cerr != nil && err == nil {
		err = cerr
	}
	logger.Info("server: stopped")
	return err
}
