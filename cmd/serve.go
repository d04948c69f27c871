package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vqhuy-dev/webaudit-cli/internal/api"
	"github.com/vqhuy-dev/webaudit-cli/internal/audit"
	"github.com/vqhuy-dev/webaudit-cli/internal/checker"
)

// cliAuditService adapts the orchestrator to the API surface. Each
// request gets its own enabled-check set; the orchestrator itself is
// reusable across runs.
type cliAuditService struct {
	orchestrator *audit.Orchestrator
}

func (s *cliAuditService) RunAudit(ctx context.Context, domain string, checks []string) (*audit.Report, error) {
	if len(checks) == 0 {
		checks = allCheckIDs
	}
	enabled := make(map[string]bool, len(checks))
	for _, id := range checks {
		enabled[id] = true
	}
	return s.orchestrator.Run(ctx, domain, enabled)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run webaudit as a REST API service",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		rateLimit, _ := cmd.Flags().GetInt("api-rate-limit")
		rateBurst, _ := cmd.Flags().GetInt("api-rate-burst")
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

		zapLogger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = zapLogger.Sync() }()

		client := checker.NewClient(checker.ClientConfig{
			Timeout:   time.Duration(viper.GetInt("timeout_secs")) * time.Second,
			RateLimit: viper.GetInt("rate_limit"),
			UserAgent: viper.GetString("user_agent"),
		})
		tlsAPI := viper.GetString("tls_api_endpoint")
		if tlsAPI == "" {
			tlsAPI = defaultTLSAPIEndpoint
		}
		orchestrator := audit.New(audit.Config{
			Client:       client,
			Resolver:     checker.NewResolver(viper.GetString("doh_endpoint")),
			TLSAPIURL:    tlsAPI,
			CheckTimeout: time.Duration(viper.GetInt("timeout_secs")) * time.Second,
			Logger:       zapLogger.Sugar(),
		})

		server := api.NewServer(api.Config{
			Audits:    &cliAuditService{orchestrator: orchestrator},
			Logger:    zapLogger,
			RateLimit: rateLimit,
			RateBurst: rateBurst,
		})

		httpServer := &http.Server{
			Addr:         addr,
			Handler:      server,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute, // audits run synchronously
			IdleTimeout:  120 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("%s API server listening on %s\n", colorInfo("→"), addr)
			fmt.Printf("%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			fmt.Printf("\n%s Received %v, shutting down...\n", colorWarn("→"), sig)
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				_ = httpServer.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Int("api-rate-limit", 5, "API requests per second (0 disables)")
	serveCmd.Flags().Int("api-rate-burst", 10, "API request burst size")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
}
