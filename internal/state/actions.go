package state

import (
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/shopspring/decimal"
)

// Action is a state transition request. Reducers switch on the concrete type.
type Action interface {
	ActionName() string
}

// Control API call lifecycle.
type (
	APIRequested struct{ Name string }
	APISucceeded struct{ Name string }
	APIFailed    struct {
		Name string
		Err  error
	}
)

// Account.
type (
	EmailSet         struct{ Email string }
	EmailFailed      struct{ Err error }
	NameSet          struct{ Name string }
	NameFailed       struct{ Err error }
	PassphraseSet    struct{ Passphrase string }
	NodeAddressSet   struct{ Address string }
	IPAddressSet     struct{ IP string }
	AccountLoading   struct{ Loading bool }
	AccountCreated   struct{ Created bool }
	AccountInfoSaved struct{ Saved bool }
	ApplyPoolLoading struct{ Loading bool }
	AppliedToPool    struct{ PoolIDs []string }
)

// Wallet and authorization.
type (
	WalletAddressSet struct{ Address string }
	WalletLoading    struct{ Loading bool }
	BalanceLoading   struct{ Loading bool }
	BalanceSet       struct {
		Type  string
		Value decimal.Decimal
	}
	UserAuthorized struct{}
)

// Signup workflow.
type (
	SignupStarted       struct{}
	SignupResumed       struct{}
	PhaseChanged        struct{ Phase entity.ProvisioningPhase }
	SignupWalletCreated struct{ Created bool }
	SignupFailed        struct{ Failed bool }
	SignupPoolsSet      struct{ PoolIDs []string }
	ExpectedUsageSet    struct{ Usage entity.ExpectedUsage }
	ApplicationRecorded struct{ Application entity.Application }
)

// Lists.
type (
	PoolsLoaded              struct{ Pools []entity.Pool }
	PoolSortRequested        struct{ Column SortColumn }
	LocationFilterSet        struct{ Locations []string }
	RatingFilterSet          struct{ MinRating float64 }
	NodeCountFilterSet       struct{ Range IntRange }
	EarningsFilterSet        struct{ Range DecimalRange }
	TransactionsLoaded       struct{ Transactions []entity.Transaction }
	TransactionTypeFilterSet struct{ Type entity.TransactionType }
)

// Notifications and session.
type (
	ToastAdded struct {
		Text    string
		Success bool
	}
	ToastDismissed struct{ ID int }
	SessionReset   struct{}
)

func (APIRequested) ActionName() string             { return "api/requested" }
func (APISucceeded) ActionName() string             { return "api/succeeded" }
func (APIFailed) ActionName() string                { return "api/failed" }
func (EmailSet) ActionName() string                 { return "account/emailSet" }
func (EmailFailed) ActionName() string              { return "account/emailFailed" }
func (NameSet) ActionName() string                  { return "account/nameSet" }
func (NameFailed) ActionName() string               { return "account/nameFailed" }
func (PassphraseSet) ActionName() string            { return "account/passphraseSet" }
func (NodeAddressSet) ActionName() string           { return "account/nodeAddressSet" }
func (IPAddressSet) ActionName() string             { return "account/ipAddressSet" }
func (AccountLoading) ActionName() string           { return "account/loading" }
func (AccountCreated) ActionName() string           { return "account/created" }
func (AccountInfoSaved) ActionName() string         { return "account/infoSaved" }
func (ApplyPoolLoading) ActionName() string         { return "account/applyPoolLoading" }
func (AppliedToPool) ActionName() string            { return "account/appliedToPool" }
func (WalletAddressSet) ActionName() string         { return "wallet/addressSet" }
func (WalletLoading) ActionName() string            { return "wallet/loading" }
func (BalanceLoading) ActionName() string           { return "wallet/balanceLoading" }
func (BalanceSet) ActionName() string               { return "wallet/balanceSet" }
func (UserAuthorized) ActionName() string           { return "authorization/authorized" }
func (SignupStarted) ActionName() string            { return "signup/started" }
func (SignupResumed) ActionName() string            { return "signup/resumed" }
func (PhaseChanged) ActionName() string             { return "signup/phaseChanged" }
func (SignupWalletCreated) ActionName() string      { return "signup/walletCreated" }
func (SignupFailed) ActionName() string             { return "signup/failed" }
func (SignupPoolsSet) ActionName() string           { return "signup/poolsSet" }
func (ExpectedUsageSet) ActionName() string         { return "expectedUsage/set" }
func (ApplicationRecorded) ActionName() string      { return "applications/recorded" }
func (PoolsLoaded) ActionName() string              { return "pools/loaded" }
func (PoolSortRequested) ActionName() string        { return "pools/sortRequested" }
func (LocationFilterSet) ActionName() string        { return "pools/locationFilterSet" }
func (RatingFilterSet) ActionName() string          { return "pools/ratingFilterSet" }
func (NodeCountFilterSet) ActionName() string       { return "pools/nodeCountFilterSet" }
func (EarningsFilterSet) ActionName() string        { return "pools/earningsFilterSet" }
func (TransactionsLoaded) ActionName() string       { return "transactions/loaded" }
func (TransactionTypeFilterSet) ActionName() string { return "transactions/typeFilterSet" }
func (ToastAdded) ActionName() string               { return "toasts/added" }
func (ToastDismissed) ActionName() string           { return "toasts/dismissed" }
func (SessionReset) ActionName() string             { return "session/reset" }
