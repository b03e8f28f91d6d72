/*
PURPOSE:
  Writes a command's payload to stdout.
  JSON (two-space indent) is the contract; YAML is offered for humans.

REQUIREMENTS:
  User-specified:
  - Pretty-printed JSON, 2-space indent, on success.

  Implementation-discovered:
  - HTML escaping must stay off: issue descriptions are full of <, > and &.
  - yaml.v3 handles map[string]any / []any from encoding/json directly.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Consumes: model.Envelope payloads (untyped JSON values)

ERROR HANDLING:
  - Returns error on encode or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewPayloadWriter(os.Stdout, output.FormatJSON)
  w.Write(payload)

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Add new formats to NewPayloadWriter.
*/

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// Payload formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// PayloadWriter renders command payloads.
type PayloadWriter struct {
	w      io.Writer
	format string
	mu     sync.Mutex
}

// NewPayloadWriter creates a PayloadWriter for the given format.
func NewPayloadWriter(w io.Writer, format string) (*PayloadWriter, error) {
	switch format {
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatJSON, FormatYAML)
	}
	return &PayloadWriter{w: w, format: format}, nil
}

// Write renders a single payload followed by a newline.
func (pw *PayloadWriter) Write(v any) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.format == FormatYAML {
		enc := yaml.NewEncoder(pw.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode payload as yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(pw.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode payload as json: %w", err)
	}
	return nil
}
