/*
PURPOSE:
  Executes one bridge invocation: configure logging, resolve the connection,
  dispatch the command, print the result.

REQUIREMENTS:
  User-specified:
  - Configuration is resolved before any command runs; failure is fatal.
  - Envelope success goes to stdout, envelope error to stderr (via main).

  Implementation-discovered:
  - Logging is configured first so config resolution can log at debug.

ARCHITECTURE INTEGRATION:
  - Calls: internal/config, internal/jira, internal/dispatch, internal/output

ERROR HANDLING:
  - Returns *CommandError for error envelopes, plain errors otherwise.

IMPLEMENTATION RULES:
  - Logic: Logging -> Config -> Client -> Dispatch -> Output.

USAGE:
  jira-bridge get-issue ABC-1

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/jira-bridge/internal/config"
	"github.com/daryltucker/jira-bridge/internal/dispatch"
	"github.com/daryltucker/jira-bridge/internal/jira"
	"github.com/daryltucker/jira-bridge/internal/output"
)

func run(cmd *cobra.Command, opts *options, args []string) error {
	// 1. Logging
	level := opts.logLevel
	if opts.verbose {
		level = "debug"
	}
	if err := output.Configure(cmd.ErrOrStderr(), level, opts.logFormat); err != nil {
		return err
	}

	if len(args) == 0 {
		cmd.SetOut(cmd.ErrOrStderr())
		_ = cmd.Usage()
		return errors.New("command is required")
	}

	writer, err := output.NewPayloadWriter(cmd.OutOrStdout(), opts.format)
	if err != nil {
		return err
	}

	// 2. Config
	conn, err := config.Load(opts.getenv, opts.cfgFile)
	if err != nil {
		return err
	}

	// 3. Client
	client, err := jira.New(conn)
	if err != nil {
		return fmt.Errorf("failed to create jira client: %w", err)
	}

	// 4. Execution
	env := dispatch.Dispatch(cmd.Context(), client, args[0], args[1:])
	if env.Failed() {
		return &CommandError{Message: env.Message}
	}
	return writer.Write(env.Payload)
}
