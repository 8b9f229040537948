package provisioning

import (
	"context"
	"testing"

	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/backend"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateApplications(t *testing.T) {
	w, mock := newWorkflow()
	w.dispatcher.SetEmailAddressAndName("ann@example.com", "Ann")
	w.dispatcher.SetExpectedUsage(entity.ExpectedUsage{Reason: "backups", EstimatedSpeed: "100Mbps"})

	require.NoError(t, w.CreateApplications(context.Background(), []string{"pool-a", "pool-b"}))

	s := w.store.GetState()
	assert.True(t, s.Account.AppliedToPool)
	assert.False(t, s.Account.ApplyPoolLoading)
	assert.Equal(t, []string{"pool-a", "pool-b"}, state.AppliedPoolIDs(s))
	require.Len(t, s.Toasts.Items, 1)
	assert.Equal(t, ApplicationSuccessToast, s.Toasts.Items[0].Text)
	assert.True(t, s.Toasts.Items[0].Success)

	applied := lo.Filter(mock.Calls(), func(c backend.Call, _ int) bool { return c.Method == backend.MethodApplyToPool })
	assert.Equal(t, []backend.Call{
		{Method: backend.MethodApplyToPool, Args: []string{"pool-a"}},
		{Method: backend.MethodApplyToPool, Args: []string{"pool-b"}},
	}, applied)
}

func TestCreateApplicationsStopsAtFirstError(t *testing.T) {
	w, mock := newWorkflow(backend.WithFailure(backend.MethodApplyToPool, errs.Unavailable, "pool-b"))

	err := w.CreateApplications(context.Background(), []string{"pool-a", "pool-b", "pool-c"})

	var aerr *ApplicationError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "pool-b", aerr.PoolID)
	assert.Equal(t, 1, aerr.Index)
	assert.ErrorIs(t, err, errs.Unavailable)

	s := w.store.GetState()
	assert.False(t, s.Account.AppliedToPool)
	assert.False(t, s.Account.ApplyPoolLoading)
	assert.Empty(t, s.Toasts.Items)
	assert.Equal(t, []string{"pool-a"}, state.AppliedPoolIDs(s))
	assert.Equal(t, 2, mock.CallCount(backend.MethodApplyToPool))
}

func TestCreateApplicationsEmpty(t *testing.T) {
	w, mock := newWorkflow()

	err := w.CreateApplications(context.Background(), nil)

	assert.ErrorIs(t, err, errs.ArgumentRequired)
	assert.Zero(t, mock.CallCount(backend.MethodApplyToPool))
}
