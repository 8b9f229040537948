package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/portal"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gofiber/fiber/v2"
)

type signupResult struct {
	state.Signup
	PhaseName  string   `json:"phaseName"`
	PhaseNames []string `json:"phaseNames"`
	Running    bool     `json:"running"`
}

type getStateResult struct {
	Account       state.Account              `json:"account"`
	Wallet        state.Wallet               `json:"wallet"`
	Authorization state.Authorization        `json:"authorization"`
	Signup        signupResult               `json:"signup"`
	ExpectedUsage entity.ExpectedUsage       `json:"expectedUsage"`
	Applications  []entity.Application       `json:"applications"`
	API           map[string]state.APIStatus `json:"api"`
	MountedViews  []portal.View              `json:"mountedViews"`
}

type getStateResponse = HttpResponse[getStateResult]

func (h *HttpHandler) stateResult(s state.State) getStateResult {
	names := make([]string, 0, len(s.Signup.Phases))
	for _, p := range s.Signup.Phases {
		names = append(names, p.String())
	}
	return getStateResult{
		Account:       s.Account,
		Wallet:        s.Wallet,
		Authorization: s.Authorization,
		Signup: signupResult{
			Signup:     s.Signup,
			PhaseName:  s.Signup.Phase.String(),
			PhaseNames: names,
			Running:    h.portal.AccountCreationRunning(),
		},
		ExpectedUsage: s.ExpectedUsage,
		Applications:  s.Applications,
		API:           s.API,
		MountedViews:  h.portal.MountedViews(),
	}
}

func (h *HttpHandler) GetState(ctx *fiber.Ctx) error {
	resp := getStateResponse(newResponse(h.stateResult(h.portal.Store().GetState())))
	return errors.WithStack(ctx.JSON(resp))
}

func (h *HttpHandler) ResetSession(ctx *fiber.Ctx) error {
	if h.portal.AccountCreationRunning() {
		return fiber.NewError(fiber.StatusConflict, "account creation is in progress")
	}
	s := h.portal.Dispatcher().ResetSession()
	return errors.WithStack(ctx.JSON(getStateResponse(newResponse(h.stateResult(s)))))
}
