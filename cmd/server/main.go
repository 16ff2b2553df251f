package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/devghori1264/aerophoenix/razord/internal/api"
	"github.com/devghori1264/aerophoenix/razord/internal/commands"
	"github.com/devghori1264/aerophoenix/razord/internal/config"
	natsclient "github.com/devghori1264/aerophoenix/razord/internal/nats"
	"github.com/devghori1264/aerophoenix/razord/internal/policy"
	"github.com/devghori1264/aerophoenix/razord/internal/server"
	"github.com/devghori1264/aerophoenix/razord/internal/storage"
	"github.com/devghori1264/aerophoenix/razord/internal/telemetry"
)

func main() {
	var configPath string
	root := &cobra.Command{
		Use:           "razord",
		Short:         "Node lifecycle control plane",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to razord.yaml")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "razord:", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Type == "memory" {
		return storage.NewMemoryStore(), nil
	}
	return storage.NewBadgerStore(cfg.Storage.Path)
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := telemetry.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Enabled, os.Stdout)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	// Create storage
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if cfg.Storage.Fixtures != "" {
		n, err := storage.LoadFixtures(ctx, store, cfg.Storage.Fixtures)
		if err != nil {
			return err
		}
		logger.Info("fixtures loaded", zap.Int("added", n), zap.String("path", cfg.Storage.Fixtures))
	}

	opts := []commands.Option{commands.WithLogger(logger.Named("commands"))}
	if cfg.NATS.URL != "" {
		pub, err := natsclient.NewPublisher(cfg.NATS.URL, logger.Named("nats"))
		if err != nil {
			// events are best effort; commands still run without them
			logger.Warn("nats unavailable, events disabled", zap.Error(err))
		} else {
			defer pub.Close()
			opts = append(opts, commands.WithPublisher(pub))
		}
	}

	registry := commands.NewRegistry(commands.NewReinstallNode(store))
	dispatcher := commands.NewDispatcher(registry, store, opts...)
	srv := server.New(dispatcher, store, policy.NewCatalog(cfg.Tasks...), logger.Named("server"))

	// Start gRPC health server
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.GRPCAddr, err)
	}
	grpcServer := grpc.NewServer()
	srv.RegisterGRPC(grpcServer)
	go func() {
		logger.Info("gRPC health listening", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := api.NewMetrics(reg)

	var creds *api.Credentials
	if cfg.Auth.Enabled {
		creds = &api.Credentials{Username: cfg.Auth.Username, Password: cfg.Auth.Password}
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: api.NewHTTPHandler(srv, metrics, creds, logger.Named("http")),
	}
	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http listen", zap.Error(err))
		}
	}()

	metricsMux := http.NewServeMux()
	api.RegisterMetrics(metricsMux, reg)
	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: metricsMux}
	go func() {
		logger.Info("Prometheus metrics available", zap.String("addr", cfg.Server.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	srv.Shutdown()
	grpcServer.GracefulStop()
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(sctx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}
	if err := metricsServer.Shutdown(sctx); err != nil {
		logger.Warn("metrics server shutdown", zap.Error(err))
	}
	if err := shutdownTracing(sctx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}
