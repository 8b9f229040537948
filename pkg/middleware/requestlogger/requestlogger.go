package requestlogger

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/middleware/requestcontext"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// alwaysHidden headers carry credentials and are never logged.
var alwaysHidden = []string{"authorization", "x-authorization", "cookie"}

type Config struct {
	WithRequestHeader    bool     `mapstructure:"request_header"`
	WithRequestQuery     bool     `mapstructure:"request_query"`
	Disable              bool     `mapstructure:"disable"` // Disable logger level `INFO`
	HiddenRequestHeaders []string `mapstructure:"hidden_request_headers"`

	// SkipPaths are not logged when they complete successfully (e.g. long-lived event streams).
	SkipPaths []string `mapstructure:"skip_paths"`
}

func New(config Config) fiber.Handler {
	hidden := lo.SliceToMap(append(config.HiddenRequestHeaders, alwaysHidden...), func(h string) (string, struct{}) {
		return strings.ToLower(strings.TrimSpace(h)), struct{}{}
	})
	skip := lo.SliceToMap(config.SkipPaths, func(p string) (string, struct{}) { return p, struct{}{} })

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := c.Response().StatusCode()

		level := slog.LevelInfo
		if err != nil || status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		if level == slog.LevelInfo {
			if _, ok := skip[c.Path()]; ok || config.Disable {
				return errors.WithStack(err)
			}
		}

		request := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", c.Route().Path),
			slog.String("ip", requestcontext.GetClientIP(c.UserContext())),
			slog.String("user-agent", string(c.Context().UserAgent())),
			slog.Any("params", c.AllParams()),
			slog.Int("length", len(c.Body())),
		}
		if config.WithRequestQuery {
			request = append(request, slog.String("query", string(c.Request().URI().QueryString())))
		}
		if config.WithRequestHeader {
			var headers []any
			for k, v := range c.GetReqHeaders() {
				if _, ok := hidden[strings.ToLower(k)]; ok {
					continue
				}
				headers = append(headers, slog.Any(k, v))
			}
			request = append(request, slog.Group("header", headers...))
		}

		attrs := []slog.Attr{
			slog.String("event", "api_request"),
			slog.Int64("latency", latency.Milliseconds()),
			slog.String("latencyHuman", latency.String()),
			{Key: "request", Value: slog.GroupValue(request...)},
			{Key: "response", Value: slog.GroupValue(
				slog.Int("status", status),
				slog.Int("length", len(c.Response().Body())),
			)},
		}
		if level == slog.LevelError {
			attrs = append(attrs, slog.Any("error", lo.Ternary[error](err != nil, err, fiber.NewError(status))))
		}

		logger.LogAttrs(c.UserContext(), level, "Request Completed", attrs...)
		return errors.WithStack(err)
	}
}
