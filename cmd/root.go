package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"folio/internal/app"
	"folio/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Portfolio tools, chat gateway and entry categorizer",
	Long: `Folio exposes a developer portfolio to language-model agents.

It runs an MCP tool server over the portfolio API, an SSE chat gateway
backed by a tool-calling agent, and a rule-based categorizer for
technology entries.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsApp(cmd) {
			return nil
		}

		cfg, err := config.LoadConfigFile(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		configureLogging(cfg)

		appInstance, err := app.NewApp(cfg, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if a, err := GetAppFromContext(cmd.Context()); err == nil {
			return a.Close()
		}
		return nil
	},
}

const offlineAnnotation = "offline"

// needsApp is false for help, shell completion and offline commands.
func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", cobra.ShellCompRequestCmd, "completion":
			return false
		}
	}
	return cmd.Annotations[offlineAnnotation] != "true"
}

func configureLogging(cfg *config.Config) {
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown log level %q, using info", cfg.Log.Level)
		log.SetLevel(log.InfoLevel)
	}
	if cfg.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stderr)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext returns the app stored by the root command.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	if ctx == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or ~/.config/folio/config.yaml)")

	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check portfolio API connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Checking portfolio API at %s...\n", appInstance.Config.Portfolio.APIURL)

		if err := appInstance.Store.Ping(ctx); err != nil {
			return fmt.Errorf("portfolio API ping failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Portfolio API reachable.")
		return nil
	},
}
