package requestcontext

import (
	"context"

	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

type requestIDKey struct{}

// GetRequestID returns the id stored by WithRequestID, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRequestID reuses the id from the request header or generates one, echoes
// it back and adds it to the context logger.
func WithRequestID() Option {
	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		if !ok || id == "" {
			id = c.Get(fiber.HeaderXRequestID, fiberutils.UUID())
			c.Set(fiber.HeaderXRequestID, id)
			c.Locals(requestid.ConfigDefault.ContextKey, id)
		}

		ctx = context.WithValue(ctx, requestIDKey{}, id)
		return logger.WithContext(ctx, "requestId", id), nil
	}
}
