package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/joseph-ayodele/orders-intake/internal/common"
	"github.com/joseph-ayodele/orders-intake/internal/export"
	"github.com/joseph-ayodele/orders-intake/internal/extract"
	"github.com/joseph-ayodele/orders-intake/internal/match"
	"github.com/joseph-ayodele/orders-intake/internal/orders"
	repo "github.com/joseph-ayodele/orders-intake/internal/repository"
	"github.com/joseph-ayodele/orders-intake/internal/server"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := common.LoadConfig()
			logger := newLogger(cfg.Server.Debug)
			if err := cfg.Validate(); err != nil {
				logger.Error("invalid configuration", "error", err)
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, migrate, logger)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create missing tables before serving")
	return cmd
}

func serve(ctx context.Context, cfg *common.Config, migrate bool, logger *slog.Logger) error {
	store, err := repo.Open(ctx, dbConfig(cfg), logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return err
	}
	defer store.Close(logger)

	if err := store.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		return err
	}
	if migrate {
		if err := repo.Migrate(ctx, store, logger); err != nil {
			return err
		}
	}

	ping := func(ctx context.Context) error { return store.HealthCheck(ctx, 2*time.Second, logger) }

	httpClient := &http.Client{}
	orderRepo := repo.NewOrderRepository(store, logger)
	srv := server.NewServer(server.Deps{
		Extractor: extract.NewClient(extract.Config{URL: cfg.Extraction.URL, Timeout: cfg.Extraction.Timeout}, httpClient, logger),
		Matcher:   match.NewClient(match.Config{BaseURL: cfg.Matching.BaseURL, Timeout: cfg.Matching.Timeout}, httpClient, logger),
		Orders:    orders.NewService(orderRepo, logger),
		Exporter:  export.NewService(orderRepo, logger),
		Ping:      ping,
	}, server.Options{
		AllowedOrigin:     cfg.Server.AllowedOrigin,
		MaxUploadBytes:    cfg.Server.MaxUploadBytes,
		DefaultMatchLimit: cfg.Matching.DefaultLimit,
	}, logger)

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	var grpcServer *grpc.Server
	if cfg.Server.GRPCHealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCHealthAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCHealthAddr, "error", err)
			return err
		}
		grpcServer = grpc.NewServer()
		healthSvc := server.NewHealthService(ping, 15*time.Second, logger)
		healthSvc.Register(grpcServer)
		go healthSvc.Run(ctx)

		logger.Info("grpc health listening", "addr", cfg.Server.GRPCHealthAddr)
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	logger.Info("orders-intake listening", "addr", cfg.Server.HTTPAddr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	return serveErr
}
