package errorhandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

// kindStatus maps internal error kinds to response status codes.
var kindStatus = []struct {
	kind   errs.ErrorKind
	status int
}{
	{errs.NotFound, http.StatusNotFound},
	{errs.Conflict, http.StatusConflict},
	{errs.InvalidArgument, http.StatusBadRequest},
	{errs.ArgumentRequired, http.StatusBadRequest},
	{errs.Timeout, http.StatusGatewayTimeout},
	{errs.Unavailable, http.StatusBadGateway},
}

func respond(ctx *fiber.Ctx, status int, message string) error {
	return errors.WithStack(ctx.Status(status).JSON(common.HttpResponse[any]{
		Error: &message,
	}))
}

func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		if e := new(errs.PublicError); errors.As(err, &e) {
			return respond(ctx, http.StatusBadRequest, e.Message())
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return respond(ctx, e.Code, e.Message)
		}
		for _, k := range kindStatus {
			if errors.Is(err, k.kind) {
				logger.WarnContext(ctx.UserContext(), "Request failed",
					slogx.String("event", "api_error"),
					slogx.Error(err),
				)
				return respond(ctx, k.status, err.Error())
			}
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error", err,
			slogx.String("event", "api_unhandled_error"),
		)
		return respond(ctx, http.StatusInternalServerError, "Internal Server Error")
	}
}
