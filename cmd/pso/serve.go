package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/internal/psod"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run API over gRPC and HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("grpc-addr") {
				cfg.Server.GRPCAddr, _ = f.GetString("grpc-addr")
			}
			if f.Changed("http-addr") {
				cfg.Server.HTTPAddr, _ = f.GetString("http-addr")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg.Server)
		},
	}
	cmd.Flags().String("grpc-addr", ":50051", "gRPC listen address")
	cmd.Flags().String("http-addr", ":8080", "HTTP listen address")
	return cmd
}

// serve runs both servers until ctx is done or one of them fails, then
// shuts down gracefully and cancels in-flight runs.
func serve(ctx context.Context, cfg config.ServerConfig) error {
	store := psod.NewRunStore()
	executor := psod.NewRunExecutor(store)
	executor.SetMaxRuns(cfg.MaxRuns)
	executor.SetLimits(psod.RunLimits{
		MaxParticles:   cfg.MaxParticles,
		MaxDimensions:  cfg.MaxDimensions,
		MaxGenerations: cfg.MaxGenerations,
	})
	notifier := psod.NewNotifier()
	cb := cfg.CallbackBackoff
	notifier.SetBackoff(utils.BackoffFromConfig(cb.Type, cb.BaseMs, cb.MaxMs), cb.MaxRetries)
	executor.SetNotifier(notifier)

	grpcServer := grpc.NewServer()
	psod.RegisterSwarmServiceServer(grpcServer, psod.NewSwarmGRPCServer(store, executor))

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen for gRPC", "addr", cfg.GRPCAddr, "error", err)
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           psod.NewHTTPServer(store, executor).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		return grpcServer.Serve(grpcLis)
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		executor.StopAll()
		grpcServer.GracefulStop()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
		notifier.Wait()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
