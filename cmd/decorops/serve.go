package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"decorops/internal/access"
	"decorops/internal/cache"
	"decorops/internal/models"
	"decorops/internal/server"
	"decorops/internal/storage/sqlite"
	"decorops/internal/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and dashboard",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "HTTP listen address (overrides server.address)")
	serveCmd.Flags().String("static", "", "directory with the built frontend (overrides server.static_dir)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Address = addr
	}
	if dir, _ := cmd.Flags().GetString("static"); dir != "" {
		cfg.Server.StaticDir = dir
	}

	logger.Info("decorops starting",
		zap.String("environment", cfg.Environment),
		zap.String("dataservice", cfg.DataService.BaseURL),
	)

	store, err := sqlite.Open(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}
	defer store.Close()

	transitions, err := workflow.ParseTransitionPolicy(cfg.Workflow.Transitions)
	if err != nil {
		return err
	}

	client := newDataClient()
	board := workflow.NewBoard(client, logger,
		workflow.WithJournal(store),
		workflow.WithTransitionPolicy(transitions),
	)

	loadCtx, cancelLoad := context.WithTimeout(cmd.Context(), cfg.DataService.Timeout)
	board.Load(loadCtx, client)
	cancelLoad()

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancelPing := context.WithTimeout(cmd.Context(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unavailable; catalogue reads go straight to the data service", zap.Error(err))
		}
		cancelPing()
	}

	srv := server.New(server.Deps{
		Board:     board,
		Data:      client,
		Catalogue: cache.NewCatalog(client, rdb, cfg.Redis.TTL, logger),
		Activity:  store,
		Policy:    access.DefaultPolicy(),
		Auth:      server.NewAuthenticator(cfg.Auth.JWTSecret, models.Role(cfg.Auth.DefaultRole)),
		StaticDir: cfg.Server.StaticDir,
	}, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}
