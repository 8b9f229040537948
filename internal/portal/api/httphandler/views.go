package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/internal/portal"
	"github.com/gofiber/fiber/v2"
)

type viewsResult struct {
	Mounted []portal.View `json:"mounted"`
}

func (h *HttpHandler) MountView(ctx *fiber.Ctx) error {
	if err := h.portal.MountView(portal.View(ctx.Params("view"))); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(ctx.JSON(newResponse(viewsResult{Mounted: h.portal.MountedViews()})))
}

func (h *HttpHandler) UnmountView(ctx *fiber.Ctx) error {
	if err := h.portal.UnmountView(portal.View(ctx.Params("view"))); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(ctx.JSON(newResponse(viewsResult{Mounted: h.portal.MountedViews()})))
}
