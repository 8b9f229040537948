package slogx

import (
	"fmt"
	"log/slog"
	"time"
)

// ErrorKey is the attribute key used for errors.
const ErrorKey = "error"

// Error returns an slog.Attr for an error value. A nil error yields an empty attribute.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(ErrorKey, err)
}

func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Stringer returns an slog.Attr for a fmt.Stringer value. A nil value logs as empty.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	if value == nil {
		return slog.String(key, "")
	}
	return slog.String(key, value.String())
}

func Int(key string, value int) slog.Attr {
	return slog.Int(key, value)
}

func Duration(key string, v time.Duration) slog.Attr {
	return slog.Duration(key, v)
}
