package state

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	// MaxNodeFilter is the upper node-count bound meaning "no upper bound".
	MaxNodeFilter = 100

	// MaxEarningsFilter is the upper earnings bound (GLA/GB) meaning "no upper bound".
	MaxEarningsFilter = 100
)

// IntRange is an inclusive range. Max at or above the filter's maximum is unbounded.
type IntRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

type DecimalRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

type PoolFilters struct {
	Locations []string     `json:"locations"`
	MinRating float64      `json:"minRating"`
	NodeCount IntRange     `json:"nodeCount"`
	Earnings  DecimalRange `json:"earnings"`
}

func DefaultPoolFilters() PoolFilters {
	return PoolFilters{
		NodeCount: IntRange{Min: 0, Max: MaxNodeFilter},
		Earnings:  DecimalRange{Min: decimal.Zero, Max: decimal.NewFromInt(MaxEarningsFilter)},
	}
}

func (r IntRange) unrestricted() bool {
	return r.Min <= 0 && r.Max >= MaxNodeFilter
}

func (r IntRange) contains(v entity.OptionalInt) bool {
	if r.unrestricted() {
		return true
	}
	if !v.Valid || v.Value < r.Min {
		return false
	}
	return r.Max >= MaxNodeFilter || v.Value <= r.Max
}

func (r DecimalRange) unrestricted() bool {
	return !r.Min.IsPositive() && r.Max.GreaterThanOrEqual(decimal.NewFromInt(MaxEarningsFilter))
}

func (r DecimalRange) contains(v entity.OptionalDecimal) bool {
	if r.unrestricted() {
		return true
	}
	if !v.Valid || v.Value.LessThan(r.Min) {
		return false
	}
	return r.Max.GreaterThanOrEqual(decimal.NewFromInt(MaxEarningsFilter)) || v.Value.LessThanOrEqual(r.Max)
}

// Match reports whether the pool passes every filter.
func (f PoolFilters) Match(p entity.Pool) bool {
	if len(f.Locations) > 0 && !lo.ContainsBy(f.Locations, func(l string) bool { return strings.EqualFold(l, p.Location) }) {
		return false
	}
	if float64(p.Rating) < f.MinRating {
		return false
	}
	return f.NodeCount.contains(p.NodeCount) && f.Earnings.contains(p.Earnings)
}

type SortColumn string

const (
	SortByName      SortColumn = "name"
	SortByLocation  SortColumn = "location"
	SortByRating    SortColumn = "rating"
	SortByNodeCount SortColumn = "nodeCount"
	SortByPrice     SortColumn = "price"
)

var SortColumns = []SortColumn{SortByName, SortByLocation, SortByRating, SortByNodeCount, SortByPrice}

func (c SortColumn) IsValid() bool {
	return lo.Contains(SortColumns, c)
}

type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

type Sort struct {
	Column    SortColumn    `json:"column"`
	Direction SortDirection `json:"direction"`
}

// Toggle returns the sort after the column header was clicked: the same
// column flips direction, a new column starts ascending.
func (s Sort) Toggle(column SortColumn) Sort {
	if s.Column == column && s.Direction == SortAscending {
		return Sort{Column: column, Direction: SortDescending}
	}
	return Sort{Column: column, Direction: SortAscending}
}

// comparePools orders two pools by column. Unknown values sort last in both
// directions, so the direction is applied here rather than by the caller.
func comparePools(a, b entity.Pool, s Sort) int {
	desc := s.Direction == SortDescending
	order := func(c int) int {
		if desc {
			return -c
		}
		return c
	}
	unknownLast := func(aKnown, bKnown bool) (int, bool) {
		switch {
		case aKnown && bKnown:
			return 0, false
		case aKnown:
			return -1, true
		case bKnown:
			return 1, true
		}
		return 0, true
	}

	switch s.Column {
	case SortByName, SortByLocation:
		av, bv := a.Name, b.Name
		if s.Column == SortByLocation {
			av, bv = a.Location, b.Location
		}
		if c, done := unknownLast(av != "", bv != ""); done {
			return c
		}
		return order(cmp.Compare(strings.ToLower(av), strings.ToLower(bv)))
	case SortByRating:
		return order(cmp.Compare(a.Rating, b.Rating))
	case SortByNodeCount:
		if c, done := unknownLast(a.NodeCount.Valid, b.NodeCount.Valid); done {
			return c
		}
		return order(cmp.Compare(a.NodeCount.Value, b.NodeCount.Value))
	case SortByPrice:
		if c, done := unknownLast(a.Earnings.Valid, b.Earnings.Valid); done {
			return c
		}
		return order(a.Earnings.Value.Cmp(b.Earnings.Value))
	}
	return 0
}

// sortPools returns a sorted copy. The input order is kept for equal keys.
func sortPools(pools []entity.Pool, s Sort) []entity.Pool {
	out := slices.Clone(pools)
	if s.Column == "" {
		return out
	}
	slices.SortStableFunc(out, func(a, b entity.Pool) int {
		return comparePools(a, b, s)
	})
	return out
}
