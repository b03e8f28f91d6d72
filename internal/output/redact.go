/*
PURPOSE:
  Keeps credentials out of the logs.
  A slog ReplaceAttr hook that masks values stored under secret-looking keys.

REQUIREMENTS:
  User-specified:
  - The API token must never be logged in clear text.

  Implementation-discovered:
  - Matching on key names covers JIRA_API_TOKEN and Authorization alike.
  - Empty values stay visible so a missing token is still diagnosable.

ARCHITECTURE INTEGRATION:
  - Used by: internal/output/logger.go (NewLogger)

ERROR HANDLING:
  - N/A

IMPLEMENTATION RULES:
  - Redact whole values, never partially.

USAGE:
  slog.HandlerOptions{ReplaceAttr: redactAttr}

SELF-HEALING INSTRUCTIONS:
  - If a secret leaks, add its key fragment to sensitiveKeys.

RELATED FILES:
  - internal/output/logger.go

MAINTENANCE:
  - None.
*/

package output

import (
	"log/slog"
	"strings"
)

// sensitiveKeys are lower-case fragments of attribute keys whose values
// must not be logged.
var sensitiveKeys = []string{
	"token",
	"password",
	"secret",
	"credential",
	"authorization",
	"bearer",
}

const redactedValue = "***REDACTED***"

// IsSensitiveKey reports whether an attribute key names a secret.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// redactAttr is a slog ReplaceAttr hook; slog calls it for every non-group
// attribute, nested ones included. Empty values are kept so that
// "token not set" stays visible in diagnostics.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if !IsSensitiveKey(a.Key) {
		return a
	}
	if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
		return a
	}
	return slog.String(a.Key, redactedValue)
}
