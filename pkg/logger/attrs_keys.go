package logger

import (
	"log/slog"
	"strings"

	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
)

// Keys for log attributes.
const (
	TimeKey    = slog.TimeKey
	LevelKey   = slog.LevelKey
	MessageKey = slog.MessageKey
	SourceKey  = slog.SourceKey

	ErrorKey           = slogx.ErrorKey
	ErrorVerboseKey    = "error_verbose"
	ErrorStackTraceKey = "error_stacktrace"

	// PackageKey names the component owning a context logger. See [WithPackage].
	PackageKey = "package"
)

const redacted = "[REDACTED]"

// secretKeys are attribute keys whose values are never written.
var secretKeys = map[string]struct{}{
	"passphrase":              {},
	"passphrase_confirmation": {},
	"authorization":           {},
	"x-authorization":         {},
}

// secretAttrReplacer masks attributes that carry the user's passphrase.
func secretAttrReplacer(_ []string, attr slog.Attr) slog.Attr {
	if _, ok := secretKeys[strings.ToLower(attr.Key)]; ok {
		return slog.String(attr.Key, redacted)
	}
	return attr
}
