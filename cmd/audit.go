package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vqhuy-dev/webaudit-cli/internal/audit"
	"github.com/vqhuy-dev/webaudit-cli/internal/checker"
)

const defaultTLSAPIEndpoint = "https://api.ssllabs.com/api/v3/analyze"

// allCheckIDs is the declaration-order default for --checks. Topology
// is always enabled regardless of the flag.
var allCheckIDs = []string{
	checker.CheckTopology,
	checker.CheckRobots,
	checker.CheckAnalytics,
	checker.CheckSSL,
	checker.CheckMeta,
	checker.CheckContent,
}

var auditCmd = &cobra.Command{
	Use:   "audit <domain>",
	Short: "Run the audit battery against a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		checks, _ := cmd.Flags().GetStringSlice("checks")
		jsonPath, _ := cmd.Flags().GetString("json")
		markdownPath, _ := cmd.Flags().GetString("markdown")
		pdfPath, _ := cmd.Flags().GetString("pdf")
		noProgress, _ := cmd.Flags().GetBool("no-progress")

		enabled := make(map[string]bool, len(checks))
		for _, id := range checks {
			enabled[id] = true
		}

		client := checker.NewClient(checker.ClientConfig{
			Timeout:   time.Duration(viper.GetInt("timeout_secs")) * time.Second,
			RateLimit: viper.GetInt("rate_limit"),
			UserAgent: viper.GetString("user_agent"),
		})
		resolver := checker.NewResolver(viper.GetString("doh_endpoint"))

		tlsAPI := viper.GetString("tls_api_endpoint")
		if tlsAPI == "" {
			tlsAPI = defaultTLSAPIEndpoint
		}

		cfg := audit.Config{
			Client:       client,
			Resolver:     resolver,
			TLSAPIURL:    tlsAPI,
			CheckTimeout: time.Duration(viper.GetInt("timeout_secs")) * time.Second,
			Logger:       logger,
		}

		orchestrator := audit.New(cfg)
		if !noProgress {
			printer := newChecklistPrinter(os.Stdout, orchestrator.Descriptors(enabled))
			cfg.Observer = printer
			orchestrator = audit.New(cfg)
			printer.print()
		}

		report, err := orchestrator.Run(cmd.Context(), args[0], enabled)
		if err != nil {
			return err
		}

		fmt.Println()
		renderReport(os.Stdout, report)

		if jsonPath != "" {
			if err := writeJSONReport(jsonPath, report); err != nil {
				return fmt.Errorf("write JSON report: %w", err)
			}
			fmt.Printf("%s %s\n", colorInfo("JSON report:"), jsonPath)
		}
		if markdownPath != "" {
			if err := writeMarkdownReport(markdownPath, report); err != nil {
				return fmt.Errorf("write Markdown report: %w", err)
			}
			fmt.Printf("%s %s\n", colorInfo("Markdown report:"), markdownPath)
		}
		if pdfPath != "" {
			if err := writePDFReport(pdfPath, report); err != nil {
				return fmt.Errorf("write PDF report: %w", err)
			}
			fmt.Printf("%s %s\n", colorInfo("PDF report:"), pdfPath)
		}

		return nil
	},
}

func init() {
	auditCmd.Flags().StringSlice("checks", allCheckIDs, "check ids to run (topology always runs)")
	auditCmd.Flags().String("json", "", "write the report as JSON to this file")
	auditCmd.Flags().String("markdown", "", "write the report as Markdown to this file")
	auditCmd.Flags().String("pdf", "", "write the report as PDF to this file")
	auditCmd.Flags().Bool("no-progress", false, "disable the live checklist")
}
