package automaxprocs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
	"go.uber.org/automaxprocs/maxprocs"
)

// initialMaxProcs is GOMAXPROCS before Init.
var initialMaxProcs = Current()

// Init sets GOMAXPROCS to the container CPU quota, if any. An explicit
// GOMAXPROCS environment variable wins.
func Init() error {
	log := logger.With(
		slogx.String("package", "automaxprocs"),
		slogx.String("event", "set_gomaxprocs"),
		slogx.Int("prev_maxprocs", initialMaxProcs),
	)

	printf := func(format string, v ...any) {
		var attrs []slog.Attr
		if val, ok := utils.Optional(v); ok {
			if _, exists := os.LookupEnv("GOMAXPROCS"); exists {
				val = Current()
			}
			if n, ok := val.(int); ok {
				attrs = append(attrs, slogx.Int("set_maxprocs", n))
			}
		}
		log.LogAttrs(context.Background(), slog.LevelDebug, fmt.Sprintf(format, v...), attrs...)
	}

	if _, err := maxprocs.Set(maxprocs.Logger(printf), maxprocs.Min(1)); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Current returns the current value of GOMAXPROCS.
func Current() int {
	return runtime.GOMAXPROCS(0)
}
