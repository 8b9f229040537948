package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type transactionRow struct {
	Hash        string                 `json:"hash"`
	TimeStamp   entity.OptionalInt     `json:"timeStamp"`
	Type        entity.TransactionType `json:"type"`
	TimeDisplay string                 `json:"timeDisplay"`
	TypeDisplay string                 `json:"typeDisplay"`
}

type getTransactionsResult struct {
	List       []transactionRow       `json:"list"`
	Total      int                    `json:"total"`
	Loaded     bool                   `json:"loaded"`
	TypeFilter entity.TransactionType `json:"typeFilter"`
	Types      []string               `json:"types"`
}

type getTransactionsResponse = HttpResponse[getTransactionsResult]

func transactionsResult(s state.State) getTransactionsResult {
	rows := lo.Map(state.FilteredTransactions(s), func(t entity.Transaction, _ int) transactionRow {
		return transactionRow{
			Hash:        t.Hash,
			TimeStamp:   t.TimeStamp,
			Type:        t.Type,
			TimeDisplay: t.TimeDisplay(),
			TypeDisplay: t.Type.Display(),
		}
	})
	return getTransactionsResult{
		List:       rows,
		Total:      len(s.Transactions.Items),
		Loaded:     s.Transactions.Loaded,
		TypeFilter: s.Transactions.TypeFilter,
		Types:      lo.Map(entity.TransactionTypes, func(t entity.TransactionType, _ int) string { return string(t) }),
	}
}

func (h *HttpHandler) GetTransactions(ctx *fiber.Ctx) error {
	resp := getTransactionsResponse(newResponse(transactionsResult(h.portal.Store().GetState())))
	return errors.WithStack(ctx.JSON(resp))
}

type setTransactionFilterRequest struct {
	Type entity.TransactionType `json:"type"`
}

func (h *HttpHandler) SetTransactionFilter(ctx *fiber.Ctx) error {
	var req setTransactionFilterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid body")
	}
	if req.Type != "" && !req.Type.IsKnown() {
		return errs.NewPublicError("unknown transaction type")
	}

	s := h.portal.Dispatcher().SetTransactionTypeFilter(req.Type)
	return errors.WithStack(ctx.JSON(getTransactionsResponse(newResponse(transactionsResult(s)))))
}
