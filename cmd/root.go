// Package cmd provides the command-line interface for the talent API service.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"talentapi/bootstrap"
	"talentapi/config"
	"talentapi/version"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	envFile   string
	configDir string
	noColor   bool
}

// NewRootCmd builds the talentapi command tree. Running it without a
// subcommand serves the API until SIGINT or SIGTERM.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "talentapi",
		Short: "AI Talent Management System API",
		Long: `The API service for talent management system with AI.

Configuration is read from defaults, an optional config.yaml, a .env file and
the process environment (API_PORT, DB_HOST, REDIS_DB, ...). Flags win over all
of them.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			return loadEnvFile(opts.envFile, cmd.Flags().Changed("env-file"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, v, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", ".env", "Environment file loaded before the process environment is read")
	pf.StringVar(&opts.configDir, "config-dir", "", "Directory searched for config.yaml (default: . and ./config)")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	f := rootCmd.Flags()
	f.String("host", "", "Interface to bind (overrides API_HOST)")
	f.Int("port", 0, "Port to listen on (overrides API_PORT)")
	f.String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	_ = v.BindPFlag("api.host", f.Lookup("host"))
	_ = v.BindPFlag("api.port", f.Lookup("port"))
	_ = v.BindPFlag("log_level", f.Lookup("log-level"))

	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// serve runs the application until the command context is cancelled or a
// shutdown signal arrives
func serve(cmd *cobra.Command, v *viper.Viper, opts *rootOptions) error {
	cfg, logger, err := bootstrap.InitConfig(func() (*config.Config, error) {
		return loadConfig(v, opts)
	})
	if err != nil {
		return err
	}

	app, err := bootstrap.NewApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, cancel := bootstrap.SignalContext(cmd.Context(), app.Sugar)
	defer cancel()

	return app.Run(ctx)
}

// loadConfig reads configuration into v from the configured search path
func loadConfig(v *viper.Viper, opts *rootOptions) (*config.Config, error) {
	if opts.configDir != "" {
		return config.Load(v, opts.configDir)
	}
	return config.Load(v)
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing default file is not an error;
// a missing file named explicitly on the command line is.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
