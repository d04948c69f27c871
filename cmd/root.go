package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string
var logger *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:   "webaudit",
	Short: "Audit a website's topology, SEO, tracking and compliance posture",
	Long: `webaudit runs a battery of independent probes against a live site:
URL/redirect topology, SSL posture, robots.txt, on-page SEO metadata,
analytics and consent-tool fingerprinting, and content-compliance
heuristics. Every probe is best-effort; one failing check never aborts
the audit.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".webaudit-cli")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("WEBAUDIT")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		verbose, _ := cmd.Flags().GetBool("verbose")
		var l *zap.Logger
		var err error
		if verbose {
			l, err = zap.NewDevelopment()
		} else {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
			l, err = cfg.Build()
		}
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l.Sugar()

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorError("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.webaudit-cli.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose (debug) logging")
	rootCmd.PersistentFlags().Int("timeout", 15, "per-check timeout in seconds")
	rootCmd.PersistentFlags().Int("rate-limit", 4, "outbound probe requests per second")
	rootCmd.PersistentFlags().String("user-agent", "", "override the probe User-Agent")

	bindConfigFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// bindConfigFlags maps the persistent flags onto their config-file keys
// so flag, env and YAML sources resolve through one viper lookup.
func bindConfigFlags(flags *pflag.FlagSet) {
	_ = viper.BindPFlag("timeout_secs", flags.Lookup("timeout"))
	_ = viper.BindPFlag("rate_limit", flags.Lookup("rate-limit"))
	_ = viper.BindPFlag("user_agent", flags.Lookup("user-agent"))
}
