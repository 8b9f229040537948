package requestcontext

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// Option enriches the request context before the handler runs.
type Option func(ctx context.Context, c *fiber.Ctx) (context.Context, error)

func New(opts ...Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var err error
		ctx := c.UserContext()
		for i, opt := range opts {
			ctx, err = opt(ctx, c)
			if err == nil {
				continue
			}
			var reject rejectError
			if errors.As(err, &reject) {
				return c.Status(reject.status).JSON(common.HttpResponse[any]{Error: &reject.message})
			}

			logger.ErrorContext(c.UserContext(), "Failed to extract request context", err,
				slog.String("event", "requestcontext/error"),
				slog.Int("optionIndex", i),
			)
			message := "internal server error"
			return c.Status(http.StatusInternalServerError).JSON(common.HttpResponse[any]{Error: &message})
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
