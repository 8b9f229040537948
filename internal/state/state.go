package state

import (
	"encoding/json"
	"time"

	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/shopspring/decimal"
)

// Names of the control API calls tracked in the API slice.
const (
	APICreateWallet         = "createWallet"
	APIFetchBalance         = "fetchBalance"
	APICreateNode           = "createNode"
	APISetNodeData          = "setNodeData"
	APIGetNode              = "getNode"
	APIApplyToPool          = "applyToPool"
	APIGetTransactionStatus = "getTransactionStatus"
	APIGetAllPools          = "getAllPools"
	APIGetAllTransactions   = "getAllTransactions"
)

// State is the process-wide session state. Values are replaced, never mutated
// in place, so a State obtained from the store is a stable snapshot.
type State struct {
	Account       Account              `json:"account"`
	Wallet        Wallet               `json:"wallet"`
	Authorization Authorization        `json:"authorization"`
	Pools         Pools                `json:"pools"`
	Transactions  Transactions         `json:"transactions"`
	Applications  []entity.Application `json:"applications"`
	Signup        Signup               `json:"signup"`
	ExpectedUsage entity.ExpectedUsage `json:"expectedUsage"`
	Toasts        Toasts               `json:"toasts"`
	API           map[string]APIStatus `json:"api"`
}

// Field is a validated form value. A failed validation keeps the error and
// clears the value.
type Field struct {
	Value string
	Err   error
}

func (f Field) Valid() bool {
	return f.Err == nil && f.Value != ""
}

func (f Field) MarshalJSON() ([]byte, error) {
	out := struct {
		Value string `json:"value"`
		Error string `json:"error,omitempty"`
	}{Value: f.Value}
	if f.Err != nil {
		out.Error = f.Err.Error()
	}
	return json.Marshal(out)
}

type Account struct {
	Email Field `json:"email"`
	Name  Field `json:"name"`

	// Passphrase is write-only.
	Passphrase string `json:"-"`

	NodeAddress      string `json:"nodeAddress"`
	IP               string `json:"ip"`
	Loading          bool   `json:"accountCreationLoading"`
	Created          bool   `json:"accountCreated"`
	InfoSaved        bool   `json:"accountInfoSaved"`
	ApplyPoolLoading bool   `json:"applyPoolLoading"`
	AppliedToPool    bool   `json:"appliedToPool"`
}

type Wallet struct {
	Address        string          `json:"walletAddress"`
	Loading        bool            `json:"walletLoading"`
	BalanceType    string          `json:"balanceType"`
	Balance        decimal.Decimal `json:"balance"`
	BalanceLoading bool            `json:"balanceLoading"`
}

type Authorization struct {
	Authorized bool `json:"authorized"`
}

type Pools struct {
	Items   []entity.Pool `json:"items"`
	Loaded  bool          `json:"loaded"`
	Filters PoolFilters   `json:"filters"`
	Sort    Sort          `json:"sort"`
}

type Transactions struct {
	Items      []entity.Transaction   `json:"items"`
	Loaded     bool                   `json:"loaded"`
	TypeFilter entity.TransactionType `json:"typeFilter"`
}

type Signup struct {
	Phase         entity.ProvisioningPhase   `json:"phase"`
	Phases        []entity.ProvisioningPhase `json:"phases"`
	WalletCreated bool                       `json:"walletCreated"`
	Failed        bool                       `json:"failed"`
	PoolIDs       []string                   `json:"poolIds"`
}

type Toast struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"createdAt"`
}

type Toasts struct {
	Items  []Toast `json:"items"`
	NextID int     `json:"-"`
}

// APIStatus tracks one named control API call.
type APIStatus struct {
	Loading bool
	Err     error
}

func (s APIStatus) MarshalJSON() ([]byte, error) {
	out := struct {
		Loading bool   `json:"loading"`
		Error   string `json:"error,omitempty"`
	}{Loading: s.Loading}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return json.Marshal(out)
}

// Initial returns the state of a fresh session.
func Initial() State {
	return State{
		Wallet: Wallet{BalanceType: entity.DefaultBalanceType},
		Pools: Pools{
			Filters: DefaultPoolFilters(),
		},
		API: map[string]APIStatus{},
	}
}
