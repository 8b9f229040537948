package state

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/samber/lo"
)

// Reduce applies an action to every slice and returns the next state.
func Reduce(s State, action Action) State {
	if _, ok := action.(SessionReset); ok {
		next := Initial()
		next.Wallet.BalanceType = s.Wallet.BalanceType
		return next
	}
	return State{
		Account:       reduceAccount(s.Account, action),
		Wallet:        reduceWallet(s.Wallet, action),
		Authorization: reduceAuthorization(s.Authorization, action),
		Pools:         reducePools(s.Pools, action),
		Transactions:  reduceTransactions(s.Transactions, action),
		Applications:  reduceApplications(s.Applications, action),
		Signup:        reduceSignup(s.Signup, action),
		ExpectedUsage: reduceExpectedUsage(s.ExpectedUsage, action),
		Toasts:        reduceToasts(s.Toasts, action),
		API:           reduceAPI(s.API, action),
	}
}

func reduceAccount(s Account, action Action) Account {
	switch a := action.(type) {
	case EmailSet:
		s.Email = Field{Value: a.Email}
	case EmailFailed:
		s.Email = Field{Err: a.Err}
	case NameSet:
		s.Name = Field{Value: a.Name}
	case NameFailed:
		s.Name = Field{Err: a.Err}
	case PassphraseSet:
		s.Passphrase = a.Passphrase
	case NodeAddressSet:
		s.NodeAddress = a.Address
	case IPAddressSet:
		s.IP = a.IP
	case AccountLoading:
		s.Loading = a.Loading
	case AccountCreated:
		s.Created = a.Created
	case AccountInfoSaved:
		s.InfoSaved = a.Saved
	case ApplyPoolLoading:
		s.ApplyPoolLoading = a.Loading
	case AppliedToPool:
		s.AppliedToPool = true
	}
	return s
}

func reduceWallet(s Wallet, action Action) Wallet {
	switch a := action.(type) {
	case WalletAddressSet:
		// set at most once per session
		if s.Address == "" {
			s.Address = a.Address
		}
	case WalletLoading:
		s.Loading = a.Loading
	case BalanceLoading:
		s.BalanceLoading = a.Loading
	case BalanceSet:
		s.Balance = a.Value
		if a.Type != "" {
			s.BalanceType = a.Type
		}
	}
	return s
}

func reduceAuthorization(s Authorization, action Action) Authorization {
	if _, ok := action.(UserAuthorized); ok {
		s.Authorized = true
	}
	return s
}

func reducePools(s Pools, action Action) Pools {
	switch a := action.(type) {
	case PoolsLoaded:
		s.Items = slices.Clone(a.Pools)
		s.Loaded = true
	case PoolSortRequested:
		s.Sort = s.Sort.Toggle(a.Column)
	case LocationFilterSet:
		locations := lo.Map(a.Locations, func(l string, _ int) string { return strings.TrimSpace(l) })
		locations = lo.Filter(locations, func(l string, _ int) bool { return l != "" })
		s.Filters.Locations = lo.Uniq(locations)
	case RatingFilterSet:
		s.Filters.MinRating = max(0, min(a.MinRating, entity.MaxRating))
	case NodeCountFilterSet:
		s.Filters.NodeCount = a.Range
	case EarningsFilterSet:
		s.Filters.Earnings = a.Range
	}
	return s
}

func reduceTransactions(s Transactions, action Action) Transactions {
	switch a := action.(type) {
	case TransactionsLoaded:
		s.Items = slices.Clone(a.Transactions)
		s.Loaded = true
	case TransactionTypeFilterSet:
		s.TypeFilter = a.Type
	}
	return s
}

// reduceApplications appends one record per pool id; later records for the
// same pool are ignored.
func reduceApplications(s []entity.Application, action Action) []entity.Application {
	a, ok := action.(ApplicationRecorded)
	if !ok {
		return s
	}
	if lo.ContainsBy(s, func(app entity.Application) bool { return app.PoolID == a.Application.PoolID }) {
		return s
	}
	return append(slices.Clip(s), a.Application)
}

func reduceSignup(s Signup, action Action) Signup {
	switch a := action.(type) {
	case SignupStarted:
		s.Phase = entity.PhaseIdle
		s.Phases = []entity.ProvisioningPhase{entity.PhaseIdle}
		s.Failed = false
	case SignupResumed:
		// a retry after a failure starts a new phase history
		if s.Failed {
			s.Phase = entity.PhaseIdle
			s.Phases = []entity.ProvisioningPhase{entity.PhaseIdle}
			s.Failed = false
		}
	case PhaseChanged:
		s.Phase = a.Phase
		s.Phases = append(slices.Clip(s.Phases), a.Phase)
		if a.Phase == entity.PhaseFailed {
			s.Failed = true
		}
	case SignupWalletCreated:
		s.WalletCreated = a.Created
	case SignupFailed:
		s.Failed = a.Failed
	case SignupPoolsSet:
		s.PoolIDs = slices.Clone(a.PoolIDs)
	}
	return s
}

func reduceExpectedUsage(s entity.ExpectedUsage, action Action) entity.ExpectedUsage {
	if a, ok := action.(ExpectedUsageSet); ok {
		return a.Usage
	}
	return s
}

func reduceToasts(s Toasts, action Action) Toasts {
	switch a := action.(type) {
	case ToastAdded:
		s.NextID++
		s.Items = append(slices.Clip(s.Items), Toast{
			ID:        s.NextID,
			Text:      a.Text,
			Success:   a.Success,
			CreatedAt: time.Now(),
		})
	case ToastDismissed:
		s.Items = lo.Reject(s.Items, func(t Toast, _ int) bool { return t.ID == a.ID })
	}
	return s
}

func reduceAPI(s map[string]APIStatus, action Action) map[string]APIStatus {
	var (
		name   string
		status APIStatus
	)
	switch a := action.(type) {
	case APIRequested:
		name, status = a.Name, APIStatus{Loading: true}
	case APISucceeded:
		name, status = a.Name, APIStatus{}
	case APIFailed:
		name, status = a.Name, APIStatus{Err: a.Err}
	default:
		return s
	}
	next := maps.Clone(s)
	if next == nil {
		next = make(map[string]APIStatus, 1)
	}
	next[name] = status
	return next
}
