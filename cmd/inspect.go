package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"talentapi/bootstrap"
	"talentapi/config"
	"talentapi/storage"
	"talentapi/version"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const defaultCheckTimeout = 5 * time.Second

// newConfigCmd creates the 'config' subcommand
func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the configuration the server would start with, as YAML, with credentials masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(viper.New(), opts)
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

func printConfig(w io.Writer, cfg *config.Config) error {
	out, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	headerColor.Fprintln(w, "# Effective configuration")
	_, err = w.Write(out)
	return err
}

// newCheckCmd creates the 'check' subcommand
func newCheckCmd(opts *rootOptions) *cobra.Command {
	var (
		all     bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to backing services",
		Long: `Ping the configured Postgres datastore and Redis cache store once and report
the result. Only enabled services are checked unless --all is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(viper.New(), opts)
			if err != nil {
				return err
			}
			if all {
				cfg.DB.Enabled = true
				cfg.Redis.Enabled = true
			}

			deps, err := bootstrap.InitDependencies(cfg, zap.NewNop().Sugar())
			if err != nil {
				return err
			}
			defer func() {
				for _, d := range deps {
					_ = d.Close()
				}
			}()

			if len(deps) == 0 {
				infoColor.Fprintln(cmd.OutOrStdout(), "No backing services enabled (set DB_ENABLED or REDIS_ENABLED, or pass --all)")
				return nil
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return checkDependencies(ctx, cmd.OutOrStdout(), deps, timeout, !opts.noColor)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Check every backing service, enabled or not")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultCheckTimeout, "Timeout per service")

	return cmd
}

// checkDependencies pings each dependency in turn and prints one line per
// result. It fails if any dependency is unreachable.
func checkDependencies(ctx context.Context, w io.Writer, deps []storage.Dependency, timeout time.Duration, progress bool) error {
	failed := 0
	for _, dep := range deps {
		var s *spinner.Spinner
		if progress {
			s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
			s.Suffix = fmt.Sprintf(" Checking %s at %s...", dep.Name(), dep.Addr())
			s.Start()
		}

		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := dep.Ping(pingCtx)
		cancel()

		if s != nil {
			s.Stop()
		}

		if err != nil {
			failed++
			errorColor.Fprintf(w, "✗ %s (%s)\n", dep.Name(), dep.Addr())
			fmt.Fprintln(w, bootstrap.ClassifyConnectionError(dep.Name(), err, dep.Addr()))
			continue
		}
		successColor.Fprintf(w, "✓ %s (%s)\n", dep.Name(), dep.Addr())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d services unreachable", failed, len(deps))
	}
	return nil
}

// newVersionCmd creates the 'version' subcommand
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			headerColor.Fprintln(w, "talentapi")
			fmt.Fprintf(w, "  Version:    %s\n", version.Version)
			fmt.Fprintf(w, "  Commit:     %s\n", version.Commit)
			fmt.Fprintf(w, "  Build time: %s\n", version.BuildTime)
		},
	}
}
