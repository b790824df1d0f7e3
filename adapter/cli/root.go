package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskbrief/pkg/observability"
)

var (
	verbose bool
	logger  *slog.Logger
)

type commandStartKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskbrief",
	Short: "Taskbrief - tasks and a daily plan summary",
	Long: `Taskbrief keeps a personal list of tasks with a category, an urgency,
an estimated effort and a deadline, and asks a language model to turn
today's list into a work plan with suggestions.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctx := observability.WithCorrelationID(cmd.Context(), "")
		cmd.SetContext(contextWithStart(ctx, time.Now()))
		Logger().DebugContext(ctx, "command start", "command", cmd.CommandPath())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		started, ok := startFromContext(cmd.Context())
		if !ok {
			return
		}
		Logger().DebugContext(cmd.Context(), "command end",
			"command", cmd.CommandPath(),
			observability.DurationKey, time.Since(started).Milliseconds(),
		)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", Describe(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func contextWithStart(ctx context.Context, t time.Time) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, commandStartKey{}, t)
}

func startFromContext(ctx context.Context) (time.Time, bool) {
	if ctx == nil {
		return time.Time{}, false
	}
	t, ok := ctx.Value(commandStartKey{}).(time.Time)
	return t, ok
}
