/*
PURPOSE:
  Defines the root Cobra command for the jira-bridge CLI.
  The bridge is flat: `jira-bridge <command> [args...]`, no subcommands.

REQUIREMENTS:
  User-specified:
  - First positional argument is the command, the rest are its arguments.
  - Success prints JSON to stdout; failure prints one line to stderr.

  Implementation-discovered:
  - Interspersed flags are disabled so a JQL argument like "-project = X"
    is never eaten by pflag. Flags go before the command name.
  - Cobra's own error/usage printing is silenced; main owns stderr.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/jira-bridge/main.go
  - Calls: run() in run.go

ERROR HANDLING:
  - *CommandError for envelope failures (printed verbatim).
  - Any other error (config, flags) is printed with an "Erro: " prefix.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for global flags.
  - No package-level flag state: tests build fresh commands.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to newRootCmd().

RELATED FILES:
  - cmd/jira-bridge/main.go
  - internal/cli/run.go

MAINTENANCE:
  - Update the Long help when the command set changes.
*/

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daryltucker/jira-bridge/internal/config"
	"github.com/daryltucker/jira-bridge/internal/dispatch"
	"github.com/daryltucker/jira-bridge/internal/output"
)

// CommandError carries the message of an error envelope.
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

type options struct {
	getenv config.Getenv

	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile   string
	logLevel  string
	logFormat string
	verbose   bool
	format    string
}

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Getenv).ExecuteContext(ctx)
}

// ErrorMessage renders err the way it is printed on stderr.
func ErrorMessage(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Message
	}
	return "Erro: " + err.Error()
}

func newRootCmd(getenv config.Getenv) *cobra.Command {
	opts := &options{getenv: getenv}

	names := make([]string, 0, len(dispatch.Commands()))
	for _, c := range dispatch.Commands() {
		names = append(names, string(c))
	}

	cmd := &cobra.Command{
		Use:   "jira-bridge [flags] <command> [args...]",
		Short: "Run Jira REST API calls and print the JSON result",
		Long: `jira-bridge turns a small set of commands into authenticated Jira REST API
calls and prints the response as JSON.

Commands:
  get-issue <key>          fetch one issue
  search <jql>             search issues (at most 50 results)
  get-transitions <key>    list the transitions available for an issue
  get-changelog <key>      fetch an issue's change history
  test                     check the connection and show the current user

Configuration is read from MCP_CONFIG (JSON with a "jira" object), or from
JIRA_BASE_URL and JIRA_API_TOKEN, or from the file given with --config.`,
		Example: `  # Fetch an issue
  JIRA_BASE_URL=https://jira.example.com JIRA_API_TOKEN=... jira-bridge get-issue ABC-123

  # Search, output as YAML
  jira-bridge -o yaml search 'project = ABC AND status != Done'

  # Check credentials with debug logging on stderr
  jira-bridge -v test`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var out []string
			for _, n := range names {
				if strings.HasPrefix(n, toComplete) {
					out = append(out, n)
				}
			}
			return out, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "YAML config file used when no environment configuration is set")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", output.LogFormatText, fmt.Sprintf("log format (%s, %s)", output.LogFormatText, output.LogFormatJSON))
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "shorthand for --log-level debug")
	cmd.PersistentFlags().StringVarP(&opts.format, "output", "o", output.FormatJSON, fmt.Sprintf("result format (%s, %s)", output.FormatJSON, output.FormatYAML))
	cmd.Flags().SetInterspersed(false)

	return cmd
}
