package handlers

import (
	"blogforge/internal/authoring"
	"blogforge/internal/config"
	"blogforge/internal/logger"
	"blogforge/internal/server"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port    int
		host    string
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the blogforge HTTP API.

The server provides:
  • POST /api/v1/ai/content-ideas and the other AI endpoints
  • CRUD for saved research content ideas under /api/projects/{projectId}
  • GET /health for liveness checks

Requests are authenticated with keys from server.api_keys, sent as
"Authorization: Bearer <key>" or "X-API-Key: <key>".

Examples:
  # Start server on default port 8080
  blogforge serve

  # Start on custom port and bring the schema up to date first
  blogforge serve --port 3000 --migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host, migrate)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")

	return cmd
}

func runServe(ctx context.Context, port int, host string, migrate bool) error {
	log := logger.Get()
	log.Info("Starting HTTP server")

	cfg := config.Get()

	// Override server config from flags if provided
	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	log.Info("Connecting to database", "driver", cfg.Database.Driver)
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	pipeline, client, err := newPipeline(ctx, store)
	if err != nil {
		return err
	}

	srv := server.New(store, pipeline, authoring.NewAuthor(client), serverCfg)

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive our signal or an error from server
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Duration(serverCfg.ShutdownTimeout, 30*time.Second))
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed, forcing close", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
