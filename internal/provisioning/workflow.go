package provisioning

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/actions"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gaze-network/pool-portal/internal/txwait"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
)

const (
	WalletFailureToast      = "There was a problem creating your wallet. Please try again."
	ApplicationSuccessToast = "You have successfully applied to a pool!"
)

// Workflow creates the wallet, node and node metadata of a new account.
// Steps run strictly in sequence and only one run is active at a time.
type Workflow struct {
	store      *state.Store
	dispatcher *actions.Dispatcher
	waiter     *txwait.Waiter

	running  sync.Mutex
	applying sync.Mutex
}

func New(dispatcher *actions.Dispatcher, waiter *txwait.Waiter) *Workflow {
	if dispatcher == nil || waiter == nil {
		panic("provisioning: dispatcher and waiter are required")
	}
	return &Workflow{
		store:      dispatcher.Store(),
		dispatcher: dispatcher,
		waiter:     waiter,
	}
}

func (w *Workflow) lock(mu *sync.Mutex, name string) error {
	if !mu.TryLock() {
		return errors.Wrapf(errs.Conflict, "%s is already in progress", name)
	}
	return nil
}

// Run stores the passphrase and provisions the wallet and the account.
func (w *Workflow) Run(ctx context.Context, passphrase string) error {
	if err := w.lock(&w.running, "provisioning"); err != nil {
		return err
	}
	defer w.running.Unlock()

	ctx = w.withLogger(ctx)
	w.store.Dispatch(state.SignupStarted{})
	w.dispatcher.SetPassphrase(passphrase)
	if err := w.createUserWallet(ctx); err != nil {
		return err
	}
	return w.createAccount(ctx)
}

// CreateUserWallet creates the wallet for the passphrase held in state. It is
// skipped when the session already has a wallet.
func (w *Workflow) CreateUserWallet(ctx context.Context) error {
	if err := w.lock(&w.running, "provisioning"); err != nil {
		return err
	}
	defer w.running.Unlock()

	w.store.Dispatch(state.SignupStarted{})
	return w.createUserWallet(w.withLogger(ctx))
}

// CreateAccount creates the node unless the account already exists, then
// submits the node metadata and waits for both confirmations.
func (w *Workflow) CreateAccount(ctx context.Context) error {
	if err := w.lock(&w.running, "provisioning"); err != nil {
		return err
	}
	defer w.running.Unlock()

	return w.createAccount(w.withLogger(ctx))
}

func (w *Workflow) withLogger(ctx context.Context) context.Context {
	return logger.WithPackage(ctx, "provisioning")
}

func (w *Workflow) enter(ctx context.Context, phase entity.ProvisioningPhase) {
	logger.InfoContext(ctx, "Provisioning phase changed", slogx.Stringer("phase", phase))
	w.store.Dispatch(state.PhaseChanged{Phase: phase})
}

func (w *Workflow) fail(ctx context.Context, phase entity.ProvisioningPhase, err error) error {
	logger.ErrorContext(ctx, "Provisioning failed", err, slogx.Stringer("phase", phase))
	s := w.store.Dispatch(state.PhaseChanged{Phase: entity.PhaseFailed}, state.SignupFailed{Failed: true})
	return &Error{
		Phase:          phase,
		AccountCreated: s.Account.Created,
		Err:            err,
	}
}

func (w *Workflow) createUserWallet(ctx context.Context) error {
	s := w.store.GetState()
	if s.Wallet.Address != "" {
		w.store.Dispatch(state.SignupWalletCreated{Created: true})
		w.enter(ctx, entity.PhaseWalletCreated)
		return nil
	}

	w.enter(ctx, entity.PhaseWalletCreating)
	w.store.Dispatch(state.WalletLoading{Loading: true})
	defer w.store.Dispatch(state.WalletLoading{Loading: false})

	passphrase := s.Account.Passphrase
	if passphrase == "" {
		w.dispatcher.AddToast(WalletFailureToast, false)
		return w.fail(ctx, entity.PhaseWalletCreating, errors.Wrap(errs.ArgumentRequired, "passphrase is required"))
	}

	wallet := w.dispatcher.CreateWallet(ctx, passphrase)
	if wallet.Failed() {
		w.dispatcher.AddToast(WalletFailureToast, false)
		return w.fail(ctx, entity.PhaseWalletCreating, errors.Wrap(wallet.Err, "wallet creation failed"))
	}

	w.dispatcher.AuthorizeUser(passphrase)
	w.store.Dispatch(
		state.WalletAddressSet{Address: wallet.Response.Address},
		state.SignupWalletCreated{Created: true},
	)
	w.enter(ctx, entity.PhaseWalletCreated)
	return nil
}

func (w *Workflow) createAccount(ctx context.Context) error {
	w.store.Dispatch(state.SignupResumed{}, state.AccountLoading{Loading: true})
	defer w.store.Dispatch(state.AccountLoading{Loading: false})

	if s := w.store.GetState(); !s.Account.Created {
		w.enter(ctx, entity.PhaseNodeCreating)
		node := w.dispatcher.CreateNode(ctx, s.Account.Passphrase)
		if node.Failed() {
			return w.fail(ctx, entity.PhaseNodeCreating, errors.Wrap(node.Err, "node creation failed"))
		}

		w.enter(ctx, entity.PhaseAwaitingNodeConfirmation)
		if _, err := w.waiter.Wait(ctx, node.Response.TxHash); err != nil {
			return w.fail(ctx, entity.PhaseAwaitingNodeConfirmation, errors.Wrap(err, "node creation not confirmed"))
		}
		w.store.Dispatch(state.AccountCreated{Created: true})
	}

	w.enter(ctx, entity.PhaseNodeInfoFetching)
	if err := w.getNodeInfo(ctx); err != nil {
		return w.fail(ctx, entity.PhaseNodeInfoFetching, err)
	}

	w.enter(ctx, entity.PhaseNodeDataSubmitting)
	handle, err := w.setUserNodeData(ctx)
	if err != nil {
		return w.fail(ctx, entity.PhaseNodeDataSubmitting, err)
	}

	w.enter(ctx, entity.PhaseAwaitingDataConfirmation)
	if _, err := w.waiter.Wait(ctx, handle); err != nil {
		return w.fail(ctx, entity.PhaseAwaitingDataConfirmation, errors.Wrap(err, "node data not confirmed"))
	}

	w.store.Dispatch(state.AccountInfoSaved{Saved: true})
	w.enter(ctx, entity.PhaseComplete)
	return nil
}

// getNodeInfo records the node address. Identity already stored on the node
// replaces the local one and marks the account as created.
func (w *Workflow) getNodeInfo(ctx context.Context) error {
	result := w.dispatcher.GetNode(ctx)
	if result.Failed() {
		return errors.Wrap(result.Err, "can't get node info")
	}
	node := result.Response
	if strings.TrimSpace(node.Address) == "" {
		return errors.Wrap(errs.NotFound, "node has no address")
	}

	if node.Data != nil {
		if node.HasIdentity() {
			w.store.Dispatch(state.AccountCreated{Created: true})
			w.dispatcher.SetEmailAddressAndName(node.Data.Email, node.Data.Name)
		}
		if node.Data.IP != "" {
			w.dispatcher.SetIPAddress(node.Data.IP)
		}
	}
	w.store.Dispatch(state.NodeAddressSet{Address: node.Address})
	return nil
}

func (w *Workflow) setUserNodeData(ctx context.Context) (entity.TxHandle, error) {
	s := w.store.GetState()
	payload := entity.NodeDataPayload{
		Name:           s.Account.Name.Value,
		Email:          s.Account.Email.Value,
		Passphrase:     s.Account.Passphrase,
		StorageAmount:  s.ExpectedUsage.StorageAmount,
		EstimatedSpeed: s.ExpectedUsage.EstimatedSpeed,
		Reason:         s.ExpectedUsage.Reason,
		UptimeStart:    s.ExpectedUsage.UptimeStart,
		UptimeEnd:      s.ExpectedUsage.UptimeEnd,
		AllDayUptime:   s.ExpectedUsage.AllDayUptime,
		IP:             s.Account.IP,
	}
	logger.DebugContext(ctx, "Submitting node data", slog.Any("payload", payload))

	result := w.dispatcher.SetNodeData(ctx, s.Account.NodeAddress, s.Account.Passphrase, payload)
	if result.Failed() {
		return "", errors.Wrap(result.Err, "node data submission failed")
	}
	return result.Response.TxHash, nil
}

// CreateApplications applies to each pool in order with the same payload and
// stops at the first failure. Failed pools are not retried.
func (w *Workflow) CreateApplications(ctx context.Context, poolIDs []string) error {
	if len(poolIDs) == 0 {
		return errors.Wrap(errs.ArgumentRequired, "at least one pool is required")
	}
	if err := w.lock(&w.applying, "pool application"); err != nil {
		return err
	}
	defer w.applying.Unlock()

	ctx = logger.WithContext(w.withLogger(ctx), slog.Int("pools", len(poolIDs)))

	w.store.Dispatch(state.ApplyPoolLoading{Loading: true})
	defer w.store.Dispatch(state.ApplyPoolLoading{Loading: false})

	s := w.store.GetState()
	payload := entity.ApplicationPayload{
		Email:          s.Account.Email.Value,
		Name:           s.Account.Name.Value,
		Reason:         s.ExpectedUsage.Reason,
		EstimatedSpeed: s.ExpectedUsage.EstimatedSpeed,
	}

	for i, poolID := range poolIDs {
		result := w.dispatcher.ApplyToPool(ctx, poolID, payload)
		if result.Failed() {
			err := &ApplicationError{PoolID: strings.TrimSpace(poolID), Index: i, Err: result.Err}
			logger.ErrorContext(ctx, "Pool application failed", err, slog.String("pool", poolID), slog.Int("index", i))
			return err
		}
	}

	w.dispatcher.AddToast(ApplicationSuccessToast, true)
	w.store.Dispatch(state.AppliedToPool{PoolIDs: poolIDs})
	return nil
}
