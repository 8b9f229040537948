package httphandler

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/actions"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/provisioning"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gaze-network/pool-portal/pkg/middleware/requestcontext"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type setIdentityRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`

	// IP overrides the address the request came from.
	IP string `json:"ip"`
}

type setIdentityResult struct {
	Email state.Field `json:"email"`
	Name  state.Field `json:"name"`
	IP    string      `json:"ip"`
	Valid bool        `json:"valid"`
}

// SetIdentity validates email and name independently. Invalid fields are
// reported in the result, not as a request error.
func (h *HttpHandler) SetIdentity(ctx *fiber.Ctx) error {
	var req setIdentityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid body")
	}

	d := h.portal.Dispatcher()
	d.SetEmailAddressAndName(strings.TrimSpace(req.Email), req.Name)
	s := d.SetIPAddress(lo.Ternary(req.IP != "", req.IP, requestcontext.GetClientIP(ctx.UserContext())))

	return errors.WithStack(ctx.JSON(newResponse(setIdentityResult{
		Email: s.Account.Email,
		Name:  s.Account.Name,
		IP:    s.Account.IP,
		Valid: s.Account.Email.Valid() && s.Account.Name.Valid(),
	})))
}

type setExpectedUsageRequest struct {
	entity.ExpectedUsage
	PoolIDs []string `json:"poolIds"`
}

func (h *HttpHandler) SetExpectedUsage(ctx *fiber.Ctx) error {
	var req setExpectedUsageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid body")
	}

	d := h.portal.Dispatcher()
	d.SetExpectedUsage(req.ExpectedUsage)
	if req.PoolIDs != nil {
		d.SetSignupPoolIDs(req.PoolIDs)
	}
	return errors.WithStack(ctx.JSON(newResponse(h.stateResult(h.portal.Store().GetState()))))
}

var errPassphraseMismatch = errs.NewPublicError("passphrase and confirmation must match")

// SetPassphrase stores a confirmed passphrase and creates the wallet.
func (h *HttpHandler) SetPassphrase(ctx *fiber.Ctx) error {
	var req actions.PassphraseForm
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid body")
	}
	if !actions.ValidatePassphrase(req) {
		return errors.WithStack(errPassphraseMismatch)
	}

	h.portal.Dispatcher().SetPassphrase(req.Passphrase)
	if err := h.portal.Workflow().CreateUserWallet(ctx.UserContext()); err != nil {
		if perr := new(provisioning.Error); errors.As(err, &perr) {
			return fiber.NewError(fiber.StatusBadGateway, provisioning.WalletFailureToast)
		}
		return errors.WithStack(err)
	}
	return errors.WithStack(ctx.JSON(newResponse(h.stateResult(h.portal.Store().GetState()))))
}

// CreateAccount starts node provisioning and answers before it completes.
func (h *HttpHandler) CreateAccount(ctx *fiber.Ctx) error {
	s := h.portal.Store().GetState()
	if s.Wallet.Address == "" {
		return errs.NewPublicError("wallet must be created first")
	}
	if err := h.portal.StartAccountCreation(); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(ctx.Status(fiber.StatusAccepted).JSON(newResponse(h.stateResult(h.portal.Store().GetState()))))
}
