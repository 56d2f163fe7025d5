// Package cli implements the dbobjects command-line interface: previewing
// and applying lifecycle events from YAML or JSON files.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dbobjects/internal/app"
	"dbobjects/internal/config"
	"dbobjects/internal/declarative"
	"dbobjects/internal/domain"
	"dbobjects/internal/service"
)

var (
	version = "dev"
	commit  = "none"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitHasChanges = 2
)

// errPlanHasChanges signals a successful plan with pending changes when
// --detailed-exitcode is set.
var errPlanHasChanges = errors.New("plan has changes")

// Reconciler is the reconciliation surface the commands drive.
// Implemented by service.Dispatcher.
type Reconciler interface {
	PlanAll(ctx context.Context, events []*domain.Event) (*declarative.Plan, []*service.Reconciliation, error)
	Apply(ctx context.Context, rec *service.Reconciliation) (*domain.Response, error)
}

// ReconcilerFactory builds a Reconciler from the resolved configuration.
type ReconcilerFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Reconciler, error)

// DefaultReconcilerFactory wires the Data API and Secrets Manager clients.
func DefaultReconcilerFactory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Reconciler, error) {
	a, err := app.New(ctx, app.Deps{Cfg: cfg, Logger: logger})
	if err != nil {
		return nil, err
	}
	return a.Dispatcher, nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr, DefaultReconcilerFactory)
}

func run(args []string, stdout, stderr io.Writer, factory ReconcilerFactory) int {
	rootCmd := newRootCmd(factory)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errPlanHasChanges) {
			return exitHasChanges
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	output        string
	noColor       bool
	logLevel      string
	region        string
	pollInterval  time.Duration
	maxConcurrent int
	envFile       string
}

func newRootCmd(factory ReconcilerFactory) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "dbobjects",
		Short:         "Manage warehouse tables, users and grants from lifecycle events",
		Long:          "Preview and apply Create/Update/Delete lifecycle events against a Redshift workgroup or namespace.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'text' or 'json'", opts.output)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&opts.region, "region", "", "AWS region; overrides AWS_REGION")
	rootCmd.PersistentFlags().DurationVar(&opts.pollInterval, "poll-interval", 0, "Delay between statement status polls; overrides STATEMENT_POLL_INTERVAL")
	rootCmd.PersistentFlags().IntVar(&opts.maxConcurrent, "max-concurrent", 0, "Bound for concurrently running statements; overrides MAX_CONCURRENT_STATEMENTS")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file loaded before the environment is read")

	rootCmd.AddCommand(newVersionCmd(opts))
	rootCmd.AddCommand(newPlanCmd(opts, factory))
	rootCmd.AddCommand(newApplyCmd(opts, factory))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// resolveConfig applies precedence flag > env > default.
func (o *rootOptions) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("region") {
		cfg.AWSRegion = o.region
	}
	if flags.Changed("poll-interval") {
		if o.pollInterval <= 0 {
			return nil, fmt.Errorf("--poll-interval must be positive")
		}
		cfg.StatementPollInterval = o.pollInterval
	}
	if flags.Changed("max-concurrent") {
		if o.maxConcurrent <= 0 {
			return nil, fmt.Errorf("--max-concurrent must be positive")
		}
		cfg.MaxConcurrentStatements = o.maxConcurrent
	}
	return cfg, nil
}

// setup resolves configuration, installs the stderr logger and builds the reconciler.
func (o *rootOptions) setup(cmd *cobra.Command, factory ReconcilerFactory) (Reconciler, *slog.Logger, error) {
	cfg, err := o.resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
	r, err := factory(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return r, logger, nil
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
