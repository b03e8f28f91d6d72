/*
PURPOSE:
  Defines the core data structures shared by the dispatcher and the CLI.
  The Envelope is the single contract every command handler returns.

REQUIREMENTS:
  User-specified:
  - Success carries an arbitrary JSON payload, forwarded verbatim.
  - Error carries a human-readable message only.

  Implementation-discovered:
  - Payloads are never inspected, so they stay `any` (map/slice/scalar).
  - The envelope itself is never serialized; only Payload or Message is printed.

ARCHITECTURE INTEGRATION:
  - Produced by: internal/dispatch
  - Consumed by: internal/cli, internal/output

ERROR HANDLING:
  - N/A. Errors are data here, not Go errors.

IMPLEMENTATION RULES:
  - Build envelopes through Success()/Failure(), never by hand.

USAGE:
  env := model.Success(issue)
  if env.Failed() { ... }

SELF-HEALING INSTRUCTIONS:
  - If a third outcome is ever needed, add a Kind constant and handle it in
    internal/cli/root.go.

RELATED FILES:
  - internal/dispatch/dispatch.go

MAINTENANCE:
  - Keep the payload untyped.
*/

package model

// Kind tags an Envelope as success or error.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Envelope is the outcome of one command invocation.
type Envelope struct {
	Kind    Kind
	Payload any
	Message string
}

// Success wraps a remote payload.
func Success(payload any) Envelope {
	return Envelope{Kind: KindSuccess, Payload: payload}
}

// Failure wraps an error message.
func Failure(message string) Envelope {
	return Envelope{Kind: KindError, Message: message}
}

// Failed reports whether the envelope carries an error.
func (e Envelope) Failed() bool {
	return e.Kind == KindError
}
