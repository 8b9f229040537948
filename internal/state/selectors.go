package state

import (
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/samber/lo"
)

// FilteredPools returns the pools passing the current filters, in sort order.
func FilteredPools(s State) []entity.Pool {
	filtered := lo.Filter(s.Pools.Items, func(p entity.Pool, _ int) bool {
		return s.Pools.Filters.Match(p)
	})
	return sortPools(filtered, s.Pools.Sort)
}

func PoolCount(s State) int {
	return len(s.Pools.Items)
}

// PoolLocations returns the distinct known locations in list order.
func PoolLocations(s State) []string {
	locations := lo.Map(s.Pools.Items, func(p entity.Pool, _ int) string { return p.Location })
	return lo.Uniq(lo.Filter(locations, func(l string, _ int) bool { return l != "" }))
}

func AppliedPoolIDs(s State) []string {
	return lo.Map(s.Applications, func(a entity.Application, _ int) string { return a.PoolID })
}

func HasApplied(s State, poolID string) bool {
	return lo.ContainsBy(s.Applications, func(a entity.Application) bool { return a.PoolID == poolID })
}

// FilteredTransactions returns the transactions of the selected type, or all
// of them when no type is selected.
func FilteredTransactions(s State) []entity.Transaction {
	if s.Transactions.TypeFilter == "" {
		return s.Transactions.Items
	}
	return lo.Filter(s.Transactions.Items, func(t entity.Transaction, _ int) bool {
		return t.Type == s.Transactions.TypeFilter
	})
}

func IsLoading(s State, name string) bool {
	return s.API[name].Loading
}

func APIError(s State, name string) error {
	return s.API[name].Err
}
