package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/chatsts/internal/api"
	"github.com/darmiel/chatsts/internal/audit"
	"github.com/darmiel/chatsts/internal/service"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the STS server",
	Long: `Starts the HTTP server exposing POST /sts.

The signing secret must be configured (JWT_SECRET or CHATSTS_TOKEN_SECRET),
the server refuses to start without one.`,
	Example: `  JWT_SECRET=... JWT_ISSUER=cs-1234 chatsts serve --addr :3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		auditor, err := audit.New(cfg.Audit)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close auditor")
			}
		}()

		svc, err := f.BuildService(cfg, service.WithAuditor(auditor))
		if err != nil {
			return err
		}
		srv := api.NewServer(svc, cfg.CORS, cfg.RateLimit)

		server := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		serveErr := make(chan error, 1)
		go func() {
			log.Info().
				Str("issuer", cfg.Token.Issuer).
				Str("audience", cfg.Token.Audience).
				Int64("lifetime", cfg.Token.Lifetime).
				Str("client_policy", svc.Policy()).
				Strs("cors_origins", cfg.CORS.AllowedOrigins).
				Msgf("Starting STS on %s...", cfg.Server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case err := <-serveErr:
			if err != nil {
				return fmt.Errorf("server crashed: %w", err)
			}
		case <-ctx.Done():
		}
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (default :3000)")
	bindFlag(serveCmd.Flags(), "server.addr", "addr")
}
