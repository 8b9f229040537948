package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) RefreshBalance(ctx *fiber.Ctx) error {
	wallet, err := h.portal.RefreshBalance(ctx.UserContext())
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(ctx.JSON(newResponse(wallet)))
}
