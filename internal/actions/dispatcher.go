package actions

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gaze-network/pool-portal/internal/backend"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
)

// Dispatcher wraps control API calls with their state side effects. Every
// backend action returns the raw result so callers decide whether to proceed.
type Dispatcher struct {
	store *state.Store
	api   backend.ControlAPI
}

func New(store *state.Store, api backend.ControlAPI) *Dispatcher {
	if store == nil || api == nil {
		panic("actions: store and control api are required")
	}
	return &Dispatcher{store: store, api: api}
}

func (d *Dispatcher) Store() *state.Store {
	return d.store
}

// apiAction runs call between the APIRequested and APISucceeded/APIFailed actions.
func apiAction[T any](ctx context.Context, d *Dispatcher, name string, call func(context.Context) backend.Result[T], onSuccess func(T) []state.Action) backend.Result[T] {
	ctx = logger.WithPackage(ctx, "actions", slog.String("api", name))

	d.store.Dispatch(state.APIRequested{Name: name})
	result := call(ctx)
	if result.Failed() {
		logger.WarnContext(ctx, "Control API call failed", slogx.Error(result.Err))
		d.store.Dispatch(state.APIFailed{Name: name, Err: result.Err})
		return result
	}

	actions := []state.Action{state.APISucceeded{Name: name}}
	if onSuccess != nil {
		actions = append(actions, onSuccess(result.Response)...)
	}
	d.store.Dispatch(actions...)
	return result
}

func (d *Dispatcher) CreateWallet(ctx context.Context, passphrase string) backend.Result[backend.WalletAccount] {
	return apiAction(ctx, d, state.APICreateWallet, func(ctx context.Context) backend.Result[backend.WalletAccount] {
		return d.api.CreateWallet(ctx, passphrase)
	}, nil)
}

// AuthorizeUser marks the session as authorized by the passphrase it holds.
func (d *Dispatcher) AuthorizeUser(passphrase string) {
	d.store.Dispatch(state.PassphraseSet{Passphrase: passphrase}, state.UserAuthorized{})
}

func (d *Dispatcher) FetchBalance(ctx context.Context, walletAddress, balanceType string) backend.Result[entity.Balance] {
	return apiAction(ctx, d, state.APIFetchBalance, func(ctx context.Context) backend.Result[entity.Balance] {
		return d.api.GetBalance(ctx, walletAddress, balanceType)
	}, func(b entity.Balance) []state.Action {
		return []state.Action{state.BalanceSet{Type: b.Type, Value: b.Value}}
	})
}

// FetchGLABalance refreshes the balance of the session wallet. The balance
// loading flag is reset on both paths.
func (d *Dispatcher) FetchGLABalance(ctx context.Context) backend.Result[entity.Balance] {
	s := d.store.GetState()
	d.store.Dispatch(state.BalanceLoading{Loading: true})
	defer d.store.Dispatch(state.BalanceLoading{Loading: false})

	return d.FetchBalance(ctx, s.Wallet.Address, s.Wallet.BalanceType)
}

func (d *Dispatcher) CreateNode(ctx context.Context, passphrase string) backend.Result[backend.TxReceipt] {
	return apiAction(ctx, d, state.APICreateNode, func(ctx context.Context) backend.Result[backend.TxReceipt] {
		return d.api.CreateNode(ctx, passphrase)
	}, nil)
}

func (d *Dispatcher) SetNodeData(ctx context.Context, nodeAddress, passphrase string, payload entity.NodeDataPayload) backend.Result[backend.TxReceipt] {
	return apiAction(ctx, d, state.APISetNodeData, func(ctx context.Context) backend.Result[backend.TxReceipt] {
		return d.api.SetNodeData(ctx, nodeAddress, passphrase, payload)
	}, nil)
}

func (d *Dispatcher) GetNode(ctx context.Context) backend.Result[entity.Node] {
	return apiAction(ctx, d, state.APIGetNode, d.api.GetNode, nil)
}

// ApplyToPool submits one application. The pool id is trimmed first.
func (d *Dispatcher) ApplyToPool(ctx context.Context, poolID string, payload entity.ApplicationPayload) backend.Result[backend.TxReceipt] {
	poolID = strings.TrimSpace(poolID)
	return apiAction(ctx, d, state.APIApplyToPool, func(ctx context.Context) backend.Result[backend.TxReceipt] {
		return d.api.ApplyToPool(ctx, poolID, payload)
	}, func(r backend.TxReceipt) []state.Action {
		return []state.Action{state.ApplicationRecorded{Application: entity.Application{
			PoolID:   poolID,
			Payload:  payload,
			TxHandle: r.TxHash,
		}}}
	})
}

func (d *Dispatcher) GetTransactionStatus(ctx context.Context, handle entity.TxHandle) backend.Result[entity.TxStatus] {
	return apiAction(ctx, d, state.APIGetTransactionStatus, func(ctx context.Context) backend.Result[entity.TxStatus] {
		return d.api.GetTransactionStatus(ctx, handle)
	}, nil)
}

func (d *Dispatcher) GetAllPools(ctx context.Context) backend.Result[[]entity.Pool] {
	return apiAction(ctx, d, state.APIGetAllPools, d.api.GetPools, func(pools []entity.Pool) []state.Action {
		return []state.Action{state.PoolsLoaded{Pools: pools}}
	})
}

// GetAllTransactions lists the history of the session wallet.
func (d *Dispatcher) GetAllTransactions(ctx context.Context) backend.Result[[]entity.Transaction] {
	address := d.store.GetState().Wallet.Address
	return apiAction(ctx, d, state.APIGetAllTransactions, func(ctx context.Context) backend.Result[[]entity.Transaction] {
		return d.api.GetTransactions(ctx, address)
	}, func(txs []entity.Transaction) []state.Action {
		return []state.Action{state.TransactionsLoaded{Transactions: txs}}
	})
}
