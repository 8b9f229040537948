package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) GetToasts(ctx *fiber.Ctx) error {
	return errors.WithStack(ctx.JSON(newResponse(h.portal.Store().GetState().Toasts.Items)))
}

func (h *HttpHandler) DismissToast(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return errs.WithPublicMessage(err, "invalid toast id")
	}
	s := h.portal.Store().Dispatch(state.ToastDismissed{ID: id})
	return errors.WithStack(ctx.JSON(newResponse(s.Toasts.Items)))
}
