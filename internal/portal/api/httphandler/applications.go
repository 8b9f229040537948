package httphandler

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/provisioning"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type createApplicationsRequest struct {
	// PoolIDs defaults to the pools chosen during signup.
	PoolIDs []string `json:"poolIds"`
}

type createApplicationsResult struct {
	Applied []string `json:"applied"`
}

func (h *HttpHandler) CreateApplications(ctx *fiber.Ctx) error {
	var req createApplicationsRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return errs.WithPublicMessage(err, "invalid body")
		}
	}

	poolIDs := lo.Ternary(len(req.PoolIDs) > 0, req.PoolIDs, h.portal.Store().GetState().Signup.PoolIDs)
	if len(poolIDs) == 0 {
		return errs.NewPublicError("'poolIds' is required")
	}

	if err := h.portal.Workflow().CreateApplications(ctx.UserContext(), poolIDs); err != nil {
		if aerr := new(provisioning.ApplicationError); errors.As(err, &aerr) {
			return fiber.NewError(fiber.StatusBadGateway, fmt.Sprintf("application to pool %q failed", aerr.PoolID))
		}
		return errors.WithStack(err)
	}

	s := h.portal.Store().GetState()
	return errors.WithStack(ctx.JSON(newResponse(createApplicationsResult{Applied: state.AppliedPoolIDs(s)})))
}
