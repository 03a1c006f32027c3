package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"diskpanel/internal/logging"
	"diskpanel/internal/routes"
	"diskpanel/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log := logging.With("serve")

		capability, err := services.NewCapability(cfg.DataSource.Mode)
		if err != nil {
			return err
		}
		if capability == nil {
			log.Warn().Msg("No volume capability selected, serving sample data")
		} else {
			log.Info().Str("capability", capability.Name()).Bool("available", capability.Available()).Msg("Volume capability selected")
		}

		if cfg.Session.Secret == "" {
			log.Warn().Msg("session.secret is empty, using a random secret for this run")
		}

		gin.SetMode(gin.ReleaseMode)

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())

		app, err := routes.NewServer(cfg, capability, registry)
		if err != nil {
			return fmt.Errorf("failed to build server: %w", err)
		}

		srv := &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           app.Engine,
			ReadHeaderTimeout: 10 * time.Second,
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("address", cfg.Server.Address).Msg("Dashboard listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-stop:
		}

		log.Info().Msg("Shutting down server...")
		app.Hub.CloseAll()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}

		log.Info().Msg("Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "localhost:8080", "Address to listen on")
	serveCmd.Flags().Float64("rate-limit", 100, "Requests per second allowed per client IP")
	serveCmd.Flags().Int("rate-burst", 200, "Burst size for the per-IP rate limiter")
	serveCmd.Flags().StringSlice("allow-ip", nil, "Restrict access to these client IPs (repeatable)")
	serveCmd.Flags().Duration("session-ttl", 15*time.Minute, "Lifetime of dashboard sort sessions")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
	viper.BindPFlag("server.rate_limit", serveCmd.Flags().Lookup("rate-limit"))
	viper.BindPFlag("server.rate_burst", serveCmd.Flags().Lookup("rate-burst"))
	viper.BindPFlag("server.allowed_ips", serveCmd.Flags().Lookup("allow-ip"))
	viper.BindPFlag("session.ttl", serveCmd.Flags().Lookup("session-ttl"))
}
