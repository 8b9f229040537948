package provisioning

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/actions"
	"github.com/gaze-network/pool-portal/internal/backend"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gaze-network/pool-portal/internal/txwait"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkflow(opts ...backend.MockOption) (*Workflow, *backend.Mock) {
	mock := backend.NewMock(append([]backend.MockOption{backend.WithLatencyScale(0)}, opts...)...)
	dispatcher := actions.New(state.NewStore(), mock)
	waiter := txwait.New(mock, txwait.Config{Interval: time.Millisecond, MaxQueryErrors: 3})
	return New(dispatcher, waiter), mock
}

func TestRun(t *testing.T) {
	w, mock := newWorkflow()
	w.dispatcher.SetEmailAddressAndName("ann@example.com", "Ann")
	w.dispatcher.SetIPAddress("10.0.0.7")
	w.dispatcher.SetExpectedUsage(entity.ExpectedUsage{StorageAmount: "2TB", Reason: "backups"})

	require.NoError(t, w.Run(context.Background(), "secret"))

	s := w.store.GetState()
	assert.Equal(t, []entity.ProvisioningPhase{
		entity.PhaseIdle,
		entity.PhaseWalletCreating,
		entity.PhaseWalletCreated,
		entity.PhaseNodeCreating,
		entity.PhaseAwaitingNodeConfirmation,
		entity.PhaseNodeInfoFetching,
		entity.PhaseNodeDataSubmitting,
		entity.PhaseAwaitingDataConfirmation,
		entity.PhaseComplete,
	}, s.Signup.Phases)
	assert.Equal(t, backend.MockWalletAddress, s.Wallet.Address)
	assert.True(t, s.Authorization.Authorized)
	assert.True(t, s.Signup.WalletCreated)
	assert.False(t, s.Signup.Failed)
	assert.True(t, s.Account.Created)
	assert.True(t, s.Account.InfoSaved)
	assert.Equal(t, backend.MockNodeAddress, s.Account.NodeAddress)
	assert.False(t, s.Account.Loading)
	assert.False(t, s.Wallet.Loading)

	assert.Equal(t, 1, mock.CallCount(backend.MethodCreateWallet))
	assert.Equal(t, 1, mock.CallCount(backend.MethodCreateNode))
	assert.Equal(t, 1, mock.CallCount(backend.MethodSetNodeData))

	// node data goes to the fetched node address
	for _, call := range mock.Calls() {
		if call.Method == backend.MethodSetNodeData {
			assert.Equal(t, []string{backend.MockNodeAddress}, call.Args)
		}
	}
}

func TestRunWalletFailure(t *testing.T) {
	w, mock := newWorkflow(backend.WithFailure(backend.MethodCreateWallet, errors.New("keystore down")))

	err := w.Run(context.Background(), "secret")

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, entity.PhaseWalletCreating, perr.Phase)
	assert.False(t, perr.AccountCreated)

	s := w.store.GetState()
	assert.True(t, s.Signup.Failed)
	assert.Equal(t, entity.PhaseFailed, s.Signup.Phases[len(s.Signup.Phases)-1])
	assert.Empty(t, s.Wallet.Address)
	assert.False(t, s.Wallet.Loading)
	assert.False(t, s.Authorization.Authorized)
	require.Len(t, s.Toasts.Items, 1)
	assert.Equal(t, WalletFailureToast, s.Toasts.Items[0].Text)
	assert.False(t, s.Toasts.Items[0].Success)
	assert.Zero(t, mock.CallCount(backend.MethodCreateNode))
}

func TestRunStepFailures(t *testing.T) {
	testCases := []struct {
		name           string
		opts           []backend.MockOption
		phase          entity.ProvisioningPhase
		accountCreated bool
		expectedErr    error
	}{
		{
			name:  "node creation",
			opts:  []backend.MockOption{backend.WithFailure(backend.MethodCreateNode, errs.Unavailable)},
			phase: entity.PhaseNodeCreating,
		},
		{
			name:        "node confirmation rejected",
			opts:        []backend.MockOption{backend.WithTxStatuses(entity.TxStatus{Complete: true, Status: false})},
			phase:       entity.PhaseAwaitingNodeConfirmation,
			expectedErr: txwait.ErrTransactionFailed,
		},
		{
			name:           "node info",
			opts:           []backend.MockOption{backend.WithFailure(backend.MethodGetNode, errs.Unavailable)},
			phase:          entity.PhaseNodeInfoFetching,
			accountCreated: true,
		},
		{
			name:           "node without address",
			opts:           []backend.MockOption{backend.WithNode(entity.Node{})},
			phase:          entity.PhaseNodeInfoFetching,
			accountCreated: true,
			expectedErr:    errs.NotFound,
		},
		{
			name:           "node data",
			opts:           []backend.MockOption{backend.WithFailure(backend.MethodSetNodeData, errs.Unavailable)},
			phase:          entity.PhaseNodeDataSubmitting,
			accountCreated: true,
		},
		{
			name: "node data confirmation query errors",
			opts: []backend.MockOption{
				backend.WithFailure(backend.MethodGetTransactionStatus, errs.Unavailable, backend.MockNodeDataTx.String()),
			},
			phase:          entity.PhaseAwaitingDataConfirmation,
			accountCreated: true,
			expectedErr:    errs.Unavailable,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := newWorkflow(tc.opts...)

			err := w.Run(context.Background(), "secret")

			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.phase, perr.Phase)
			assert.Equal(t, tc.accountCreated, perr.AccountCreated)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			}

			s := w.store.GetState()
			assert.True(t, s.Signup.Failed)
			assert.True(t, s.Signup.WalletCreated)
			assert.False(t, s.Account.InfoSaved)
			assert.False(t, s.Account.Loading)
			assert.Empty(t, s.Toasts.Items)
		})
	}
}

func TestCreateAccountSkipsExistingNode(t *testing.T) {
	w, mock := newWorkflow()
	w.store.Dispatch(state.PassphraseSet{Passphrase: "secret"}, state.AccountCreated{Created: true})

	require.NoError(t, w.CreateAccount(context.Background()))

	assert.Zero(t, mock.CallCount(backend.MethodCreateNode))
	assert.Equal(t, 1, mock.CallCount(backend.MethodSetNodeData))
	assert.True(t, w.store.GetState().Account.InfoSaved)
}

func TestCreateAccountRetryAfterDataFailure(t *testing.T) {
	store := state.NewStore()
	failing := backend.NewMock(backend.WithLatencyScale(0), backend.WithFailure(backend.MethodSetNodeData, errs.Unavailable))
	first := New(actions.New(store, failing), txwait.New(failing, txwait.Config{Interval: time.Millisecond}))

	var perr *Error
	require.ErrorAs(t, first.Run(context.Background(), "secret"), &perr)
	require.True(t, perr.AccountCreated)

	healthy := backend.NewMock(backend.WithLatencyScale(0))
	retry := New(actions.New(store, healthy), txwait.New(healthy, txwait.Config{Interval: time.Millisecond}))
	require.NoError(t, retry.CreateAccount(context.Background()))

	assert.Zero(t, healthy.CallCount(backend.MethodCreateNode))
	assert.Equal(t, 1, healthy.CallCount(backend.MethodSetNodeData))

	s := store.GetState()
	assert.True(t, s.Account.InfoSaved)
	assert.False(t, s.Signup.Failed)
	assert.Equal(t, entity.PhaseComplete, s.Signup.Phase)
	assert.Equal(t, []entity.ProvisioningPhase{
		entity.PhaseIdle,
		entity.PhaseNodeInfoFetching,
		entity.PhaseNodeDataSubmitting,
		entity.PhaseAwaitingDataConfirmation,
		entity.PhaseComplete,
	}, s.Signup.Phases)
}

func TestRunNodeCreationFailureStopsWorkflow(t *testing.T) {
	w, mock := newWorkflow(backend.WithFailure(backend.MethodCreateNode, errs.Unavailable))

	var perr *Error
	require.ErrorAs(t, w.Run(context.Background(), "secret"), &perr)
	assert.Equal(t, entity.PhaseNodeCreating, perr.Phase)

	assert.Zero(t, mock.CallCount(backend.MethodGetTransactionStatus))
	assert.Zero(t, mock.CallCount(backend.MethodGetNode))
	assert.Zero(t, mock.CallCount(backend.MethodSetNodeData))
	assert.Equal(t, entity.PhaseFailed, w.store.GetState().Signup.Phase)
}

func TestCreateUserWalletWithoutPassphrase(t *testing.T) {
	w, mock := newWorkflow()

	err := w.CreateUserWallet(context.Background())

	assert.ErrorIs(t, err, errs.ArgumentRequired)
	assert.Zero(t, mock.CallCount(backend.MethodCreateWallet))
	assert.True(t, w.store.GetState().Signup.Failed)
}

func TestGetNodeInfoBackendIdentityWins(t *testing.T) {
	w, _ := newWorkflow(backend.WithNode(entity.Node{
		Address: "node-1",
		Data:    &entity.NodeData{Name: "Remote", Email: "remote@example.com", IP: "192.168.1.9"},
	}))
	w.dispatcher.SetEmailAddressAndName("local@example.com", "Local")

	require.NoError(t, w.getNodeInfo(context.Background()))

	s := w.store.GetState()
	assert.Equal(t, "remote@example.com", s.Account.Email.Value)
	assert.Equal(t, "Remote", s.Account.Name.Value)
	assert.Equal(t, "192.168.1.9", s.Account.IP)
	assert.Equal(t, "node-1", s.Account.NodeAddress)
	assert.True(t, s.Account.Created)
}

func TestGetNodeInfoKeepsLocalIdentity(t *testing.T) {
	w, _ := newWorkflow(backend.WithNode(entity.Node{Address: "node-1", Data: &entity.NodeData{Name: "Remote"}}))
	w.dispatcher.SetEmailAddressAndName("local@example.com", "Local")

	require.NoError(t, w.getNodeInfo(context.Background()))

	s := w.store.GetState()
	assert.Equal(t, "local@example.com", s.Account.Email.Value)
	assert.Equal(t, "Local", s.Account.Name.Value)
	assert.False(t, s.Account.Created)
}

func TestCreateUserWalletExistingWallet(t *testing.T) {
	w, mock := newWorkflow()
	w.store.Dispatch(state.WalletAddressSet{Address: "0xabc"})

	require.NoError(t, w.CreateUserWallet(context.Background()))

	s := w.store.GetState()
	assert.Equal(t, "0xabc", s.Wallet.Address)
	assert.True(t, s.Signup.WalletCreated)
	assert.Zero(t, mock.CallCount(backend.MethodCreateWallet))
}

func TestConcurrentRunConflict(t *testing.T) {
	mock := backend.NewMock(backend.WithLatencyScale(0.05))
	dispatcher := actions.New(state.NewStore(), mock)
	w := New(dispatcher, txwait.New(mock, txwait.Config{Interval: time.Millisecond}))
	dispatcher.SetPassphrase("secret")

	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(started)
		_ = w.CreateUserWallet(context.Background())
	}()
	<-started
	require.Eventually(t, func() bool {
		return w.store.GetState().Wallet.Loading
	}, time.Second, time.Millisecond)

	err := w.Run(context.Background(), "secret")
	assert.ErrorIs(t, err, errs.Conflict)

	wg.Wait()
	assert.Equal(t, 1, mock.CallCount(backend.MethodCreateWallet))
}

func TestRunCancelled(t *testing.T) {
	w, _ := newWorkflow(backend.WithTxStatuses(entity.TxStatus{}))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := w.Run(ctx, "secret")

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, entity.PhaseAwaitingNodeConfirmation, perr.Phase)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
