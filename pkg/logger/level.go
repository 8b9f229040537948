package logger

import (
	"fmt"
	"log/slog"
)

const (
	LevelCritical = slog.Level(12)
	LevelPanic    = slog.Level(14)
	LevelFatal    = slog.Level(16)
)

func levelAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) != 0 || attr.Key != LevelKey {
		return attr
	}
	l, ok := attr.Value.Any().(slog.Level)
	if !ok || l < LevelCritical {
		return attr
	}

	str := func(base string, val slog.Level) string {
		if val == 0 {
			return base
		}
		return fmt.Sprintf("%s%+d", base, val)
	}
	switch {
	case l < LevelPanic:
		return slog.String(attr.Key, str("CRITICAL", l-LevelCritical))
	case l < LevelFatal:
		return slog.String(attr.Key, str("PANIC", l-LevelPanic))
	default:
		return slog.String(attr.Key, str("FATAL", l-LevelFatal))
	}
}
