/*
PURPOSE:
  Maps a command name and its positional arguments to one Jira call and
  wraps the outcome in a model.Envelope.

REQUIREMENTS:
  User-specified:
  - Five commands: get-issue, search, get-transitions, get-changelog, test.
  - Missing arguments and remote failures become error envelopes.
  - Unknown commands answer "Comando não reconhecido: <command>".

  Implementation-discovered:
  - The command set is closed; a table keyed by Command keeps it that way.
  - Downstream callers match on the exact message strings, keep them verbatim.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Calls: API (implemented by internal/jira.Client)

ERROR HANDLING:
  - Never returns a Go error and never panics: everything ends up in the
    envelope.

IMPLEMENTATION RULES:
  - No business logic in handlers beyond argument checks.

USAGE:
  env := dispatch.Dispatch(ctx, client, "get-issue", []string{"ABC-1"})

SELF-HEALING INSTRUCTIONS:
  - New command: add a constant, a handler and a row in handlers.

RELATED FILES:
  - internal/jira/client.go
  - internal/model/types.go

MAINTENANCE:
  - Update the CLI help text in internal/cli/root.go with new commands.
*/

package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/daryltucker/jira-bridge/internal/model"
	"github.com/daryltucker/jira-bridge/internal/output"
)

// Command is one of the recognised bridge commands.
type Command string

const (
	GetIssue       Command = "get-issue"
	Search         Command = "search"
	GetTransitions Command = "get-transitions"
	GetChangelog   Command = "get-changelog"
	Test           Command = "test"
)

// User-facing messages. Callers parse these, do not reword.
const (
	MsgIssueKeyRequired = "Issue key is required"
	MsgJQLRequired      = "JQL query is required"
	MsgConnected        = "Conexão estabelecida com sucesso!"
	msgUnknownCommand   = "Comando não reconhecido: %s"
)

// API is the subset of the Jira client the dispatcher needs.
type API interface {
	GetIssue(ctx context.Context, issueKey string) (any, error)
	SearchIssues(ctx context.Context, jql string) (any, error)
	GetIssueTransitions(ctx context.Context, issueKey string) (any, error)
	GetIssueChangelog(ctx context.Context, issueKey string) (any, error)
	GetMyself(ctx context.Context) (any, error)
}

type handler func(ctx context.Context, api API, args []string) (any, error)

var handlers = map[Command]handler{
	GetIssue: func(ctx context.Context, api API, args []string) (any, error) {
		key, err := firstArg(args, MsgIssueKeyRequired)
		if err != nil {
			return nil, err
		}
		return api.GetIssue(ctx, key)
	},
	Search: func(ctx context.Context, api API, args []string) (any, error) {
		jql, err := firstArg(args, MsgJQLRequired)
		if err != nil {
			return nil, err
		}
		return api.SearchIssues(ctx, jql)
	},
	GetTransitions: func(ctx context.Context, api API, args []string) (any, error) {
		key, err := firstArg(args, MsgIssueKeyRequired)
		if err != nil {
			return nil, err
		}
		return api.GetIssueTransitions(ctx, key)
	},
	GetChangelog: func(ctx context.Context, api API, args []string) (any, error) {
		key, err := firstArg(args, MsgIssueKeyRequired)
		if err != nil {
			return nil, err
		}
		return api.GetIssueChangelog(ctx, key)
	},
	Test: func(ctx context.Context, api API, _ []string) (any, error) {
		user, err := api.GetMyself(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"message": MsgConnected,
			"user":    user,
		}, nil
	},
}

// Commands returns the recognised command names in help order.
func Commands() []Command {
	return []Command{GetIssue, Search, GetTransitions, GetChangelog, Test}
}

// Dispatch runs the named command and reports the outcome as an Envelope.
func Dispatch(ctx context.Context, api API, name string, args []string) (env model.Envelope) {
	h, ok := handlers[Command(name)]
	if !ok {
		return model.Failure(fmt.Sprintf(msgUnknownCommand, name))
	}

	defer func() {
		if r := recover(); r != nil {
			output.Logger.Error("Command panicked", "command", name, "panic", r)
			env = model.Failure(fmt.Sprint(r))
		}
	}()

	output.Logger.Debug("Dispatching command", "command", name, "args", len(args))
	payload, err := h(ctx, api, args)
	if err != nil {
		output.Logger.Debug("Command failed", "command", name, "error", err)
		return model.Failure(err.Error())
	}
	return model.Success(payload)
}

func firstArg(args []string, missing string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", errors.New(missing)
	}
	return args[0], nil
}
