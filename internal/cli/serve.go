package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/agentbridge/agentbridge/internal/agentforce/config"
	"github.com/agentbridge/agentbridge/internal/bridge/server"
)

// newServeCmd creates the serve command that runs the bridge HTTP server
// until interrupted.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the agentbridge HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			return runServer(ctx)
		},
	}
}

func runServer(ctx context.Context) error {
	slog := log.With().Str("state", "init").Logger()

	if config.Config().ServerPort == "" {
		return fmt.Errorf("server port not defined")
	}

	serverErrors, shutdownServer, err := createBridgeServer(ctx)
	if err != nil {
		return fmt.Errorf("creating bridge server: %w", err)
	}

	// Channel to listen for an interrupt or terminate signal from the OS.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Wait forever until shutdown
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		shutdownServer()
	}

	slog.Info().Msg("server stopped")
	return nil
}

func createBridgeServer(ctx context.Context) (chan error, func(), error) {
	slog := log.With().Str("state", "init").Logger()
	s, err := server.CreateNewServer()
	if err != nil {
		return nil, nil, fmt.Errorf("creating server: %w", err)
	}
	s.MountHandlers()

	srv := &http.Server{
		Addr:              ":" + config.Config().ServerPort,
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)

	// Start the service listening for requests.
	go func() {
		slog.Info().Str("port", config.Config().ServerPort).Msg("server started")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := func() {
		// Give outstanding requests 5 seconds to complete and initiate the shutdown.
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error().Err(err).Msg("could not stop server gracefully")
			if err := srv.Close(); err != nil {
				slog.Error().Err(err).Msg("could not stop server")
			}
		}
	}

	return serverErrors, shutdown, nil
}
