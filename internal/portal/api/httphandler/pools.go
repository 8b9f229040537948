package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type poolRow struct {
	Address   string                 `json:"address"`
	Name      string                 `json:"name"`
	Location  string                 `json:"location"`
	Rating    float64                `json:"rating"`
	NodeCount entity.OptionalInt     `json:"nodeCount"`
	Earnings  entity.OptionalDecimal `json:"earnings"`
	Applied   bool                   `json:"applied"`
	Display   poolDisplay            `json:"display"`
}

type poolDisplay struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	NodeCount string `json:"nodeCount"`
	Earnings  string `json:"earnings"`
}

type getPoolsResult struct {
	List      []poolRow         `json:"list"`
	Total     int               `json:"total"`
	Shown     int               `json:"shown"`
	Loaded    bool              `json:"loaded"`
	Locations []string          `json:"locations"`
	Filters   state.PoolFilters `json:"filters"`
	Sort      state.Sort        `json:"sort"`
}

type getPoolsResponse = HttpResponse[getPoolsResult]

func poolsResult(s state.State) getPoolsResult {
	pools := state.FilteredPools(s)
	rows := lo.Map(pools, func(p entity.Pool, _ int) poolRow {
		return poolRow{
			Address:   p.Address,
			Name:      p.Name,
			Location:  p.Location,
			Rating:    float64(p.Rating),
			NodeCount: p.NodeCount,
			Earnings:  p.Earnings,
			Applied:   state.HasApplied(s, p.Address),
			Display: poolDisplay{
				Name:      p.NameDisplay(),
				Location:  p.LocationDisplay(),
				NodeCount: p.NodeCountDisplay(),
				Earnings:  p.EarningsDisplay(),
			},
		}
	})
	return getPoolsResult{
		List:      rows,
		Total:     state.PoolCount(s),
		Shown:     len(rows),
		Loaded:    s.Pools.Loaded,
		Locations: state.PoolLocations(s),
		Filters:   s.Pools.Filters,
		Sort:      s.Pools.Sort,
	}
}

func (h *HttpHandler) GetPools(ctx *fiber.Ctx) error {
	resp := getPoolsResponse(newResponse(poolsResult(h.portal.Store().GetState())))
	return errors.WithStack(ctx.JSON(resp))
}

// setPoolFiltersRequest updates only the filters present in the body.
type setPoolFiltersRequest struct {
	Locations *[]string           `json:"locations"`
	MinRating *float64            `json:"minRating"`
	NodeCount *state.IntRange     `json:"nodeCount"`
	Earnings  *state.DecimalRange `json:"earnings"`
}

func (r setPoolFiltersRequest) Validate() error {
	var errList []error
	if r.MinRating != nil && (*r.MinRating < 0 || *r.MinRating > entity.MaxRating) {
		errList = append(errList, errors.Newf("'minRating' must be between 0 and %d", entity.MaxRating))
	}
	if r.NodeCount != nil && (r.NodeCount.Min < 0 || r.NodeCount.Min > r.NodeCount.Max) {
		errList = append(errList, errors.New("'nodeCount' must be a non-negative ascending range"))
	}
	if r.Earnings != nil && (r.Earnings.Min.IsNegative() || r.Earnings.Min.GreaterThan(r.Earnings.Max)) {
		errList = append(errList, errors.New("'earnings' must be a non-negative ascending range"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) SetPoolFilters(ctx *fiber.Ctx) error {
	var req setPoolFiltersRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	d := h.portal.Dispatcher()
	if req.Locations != nil {
		d.SetLocationFilter(*req.Locations)
	}
	if req.MinRating != nil {
		d.SetRatingFilter(*req.MinRating)
	}
	if req.NodeCount != nil {
		d.SetNodeCountFilter(*req.NodeCount)
	}
	if req.Earnings != nil {
		d.SetEarningsFilter(state.DecimalRange{
			Min: req.Earnings.Min,
			Max: decimal.Min(req.Earnings.Max, decimal.NewFromInt(state.MaxEarningsFilter)),
		})
	}

	resp := getPoolsResponse(newResponse(poolsResult(h.portal.Store().GetState())))
	return errors.WithStack(ctx.JSON(resp))
}

func (h *HttpHandler) SortPools(ctx *fiber.Ctx) error {
	column := state.SortColumn(ctx.Params("column"))
	if !column.IsValid() {
		return errs.NewPublicError("unknown sort column")
	}

	s := h.portal.Dispatcher().HandleSort(column)
	return errors.WithStack(ctx.JSON(getPoolsResponse(newResponse(poolsResult(s)))))
}
