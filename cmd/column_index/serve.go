package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-column-index/api"
	"github.com/gcbaptista/go-column-index/config"
	"github.com/gcbaptista/go-column-index/internal/engine"
	"github.com/gcbaptista/go-column-index/internal/logging"
	"github.com/gcbaptista/go-column-index/internal/metrics"
)

const (
	shutdownTimeout = 15 * time.Second
	maxRequestBody  = 32 << 20
)

type serveFlags struct {
	configPath string
	port       int
	dataDir    string
	backend    string
	logLevel   string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Example: `  column_index serve                          # port 8080, ./data, memory backend
  column_index serve --port 9000 --backend sqlite
  column_index serve --config /etc/column_index.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadServeConfig(cmd, flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to the YAML configuration (default ./"+config.DefaultConfigFile+" if present)")
	cmd.Flags().IntVar(&flags.port, "port", 0, "Port to run the server on")
	cmd.Flags().StringVar(&flags.dataDir, "data-dir", "", "Directory to store the database")
	cmd.Flags().StringVar(&flags.backend, "backend", "", "Posting storage: memory or sqlite")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	return cmd
}

// loadServeConfig reads the configuration file and applies the flags the
// user set on top of it.
func loadServeConfig(cmd *cobra.Command, flags serveFlags) (*config.ServerConfig, error) {
	cfg, err := config.LoadServerConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("port") {
		cfg.Port = flags.port
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = flags.dataDir
	}
	if cmd.Flags().Changed("backend") {
		cfg.Storage.Backend = flags.backend
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServer(ctx context.Context, cfg *config.ServerConfig) error {
	logging.Setup(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	db, err := engine.Open(engine.Options{
		DataDir:            cfg.DataDir,
		Backend:            cfg.Storage.Backend,
		TokenizerCacheSize: cfg.Storage.TokenizerCacheSize,
		PersistOnClose:     cfg.Storage.PersistOnShutdown,
		JobWorkers:         engine.DefaultOptions().JobWorkers,
		Metrics:            metrics.New(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("database_close_failed", slog.String("error", err.Error()))
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestLoggingMiddleware())
	router.Use(api.CORSMiddleware())
	router.Use(api.RequestSizeLimitMiddleware(maxRequestBody))
	api.SetupRoutes(router, db)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting",
			slog.Int("port", cfg.Port),
			slog.String("data_dir", cfg.DataDir),
			slog.String("backend", cfg.Storage.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
