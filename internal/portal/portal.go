package portal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/actions"
	"github.com/gaze-network/pool-portal/internal/poller"
	"github.com/gaze-network/pool-portal/internal/provisioning"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/samber/lo"
)

// View is a list screen whose data is refreshed while it is mounted.
type View string

const (
	ViewPools        View = "pools"
	ViewTransactions View = "transactions"
)

type Config struct {
	PoolsInterval        time.Duration
	TransactionsInterval time.Duration
}

// Portal is the session-level use case layer behind the portal API and CLI.
type Portal struct {
	store      *state.Store
	dispatcher *actions.Dispatcher
	workflow   *provisioning.Workflow
	poller     *poller.Poller
	config     Config

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	creating atomic.Bool
}

func New(dispatcher *actions.Dispatcher, workflow *provisioning.Workflow, listPoller *poller.Poller, config Config) *Portal {
	config.PoolsInterval = utils.Default(config.PoolsInterval, poller.DefaultPoolsInterval)
	config.TransactionsInterval = utils.Default(config.TransactionsInterval, poller.DefaultTransactionsInterval)

	ctx, cancel := context.WithCancel(context.Background())
	return &Portal{
		store:      dispatcher.Store(),
		dispatcher: dispatcher,
		workflow:   workflow,
		poller:     listPoller,
		config:     config,
		ctx:        logger.WithPackage(ctx, "portal"),
		cancel:     cancel,
	}
}

func (p *Portal) Store() *state.Store {
	return p.store
}

func (p *Portal) Dispatcher() *actions.Dispatcher {
	return p.dispatcher
}

func (p *Portal) Workflow() *provisioning.Workflow {
	return p.workflow
}

// MountView starts refreshing the view's list. Mounting twice keeps a single schedule.
func (p *Portal) MountView(view View) error {
	switch view {
	case ViewPools:
		return p.poller.Start(poller.KeyPools, func(ctx context.Context) error {
			return p.dispatcher.GetAllPools(ctx).Err
		}, p.config.PoolsInterval)
	case ViewTransactions:
		if p.store.GetState().Wallet.Address == "" {
			return errors.Wrap(errs.ArgumentRequired, "transactions need a wallet, create it first")
		}
		return p.poller.Start(poller.KeyTransactions, func(ctx context.Context) error {
			if p.store.GetState().Wallet.Address == "" {
				return errors.Wrap(errs.ArgumentRequired, "wallet is not created yet")
			}
			return p.dispatcher.GetAllTransactions(ctx).Err
		}, p.config.TransactionsInterval)
	}
	return errors.Wrapf(errs.NotFound, "unknown view %q", view)
}

func (p *Portal) UnmountView(view View) error {
	key, ok := viewKeys[view]
	if !ok {
		return errors.Wrapf(errs.NotFound, "unknown view %q", view)
	}
	p.poller.End(key)
	return nil
}

var viewKeys = map[View]string{
	ViewPools:        poller.KeyPools,
	ViewTransactions: poller.KeyTransactions,
}

// MountedViews returns the views currently refreshed.
func (p *Portal) MountedViews() []View {
	return lo.FilterMap(p.poller.Keys(), func(key string, _ int) (View, bool) {
		return lo.FindKey(viewKeys, key)
	})
}

// StartAccountCreation runs the account part of provisioning in the
// background. Progress is observable through the signup state.
func (p *Portal) StartAccountCreation() error {
	if !p.creating.CompareAndSwap(false, true) {
		return errors.Wrap(errs.Conflict, "account creation is already in progress")
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.creating.Store(false)

		if err := p.workflow.CreateAccount(p.ctx); err != nil {
			logger.ErrorContext(p.ctx, "Account creation failed", err)
			return
		}
		logger.InfoContext(p.ctx, "Account created")
	}()
	return nil
}

// AccountCreationRunning reports whether StartAccountCreation is still working.
func (p *Portal) AccountCreationRunning() bool {
	return p.creating.Load()
}

// RefreshBalance fetches the balance of the session wallet.
func (p *Portal) RefreshBalance(ctx context.Context) (state.Wallet, error) {
	if p.store.GetState().Wallet.Address == "" {
		return state.Wallet{}, errors.Wrap(errs.ArgumentRequired, "wallet is not created yet")
	}
	if err := p.dispatcher.FetchGLABalance(ctx).Err; err != nil {
		return state.Wallet{}, errors.Wrap(err, "can't fetch balance")
	}
	return p.store.GetState().Wallet, nil
}

// Shutdown stops polling and background work, then closes state subscriptions.
func (p *Portal) Shutdown(ctx context.Context) error {
	p.cancel()
	if err := p.poller.Shutdown(ctx); err != nil {
		return errors.WithStack(err)
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "portal shutdown context canceled")
	}

	p.store.Shutdown()
	return nil
}
