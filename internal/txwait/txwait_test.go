package txwait

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/backend"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedQuerier replays results in order; the last one repeats.
type scriptedQuerier struct {
	mu      sync.Mutex
	results []backend.Result[entity.TxStatus]
	calls   int
}

func (q *scriptedQuerier) GetTransactionStatus(_ context.Context, _ entity.TxHandle) backend.Result[entity.TxStatus] {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := q.results[min(q.calls, len(q.results)-1)]
	q.calls++
	return result
}

func (q *scriptedQuerier) Calls() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

var (
	pending   = backend.Ok(entity.TxStatus{})
	confirmed = backend.Ok(entity.TxStatus{Complete: true, Status: true})
	rejected  = backend.Ok(entity.TxStatus{Complete: true, Status: false})
	queryErr  = backend.Fail[entity.TxStatus](errors.New("connection reset"))
)

func TestWait(t *testing.T) {
	testCases := []struct {
		name    string
		results []backend.Result[entity.TxStatus]
		config  Config
		calls   int
		err     error
	}{
		{
			name:    "confirmed on first query",
			results: []backend.Result[entity.TxStatus]{confirmed},
			calls:   1,
		},
		{
			name:    "pending then confirmed",
			results: []backend.Result[entity.TxStatus]{pending, pending, confirmed},
			calls:   3,
		},
		{
			name:    "completed but rejected is terminal",
			results: []backend.Result[entity.TxStatus]{pending, rejected, confirmed},
			calls:   2,
			err:     ErrTransactionFailed,
		},
		{
			name:    "transient query errors are retried",
			results: []backend.Result[entity.TxStatus]{queryErr, queryErr, pending, queryErr, confirmed},
			config:  Config{MaxQueryErrors: 3},
			calls:   5,
		},
		{
			name:    "consecutive query errors give up",
			results: []backend.Result[entity.TxStatus]{queryErr},
			config:  Config{MaxQueryErrors: 3},
			calls:   3,
			err:     errs.Unavailable,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			querier := &scriptedQuerier{results: tc.results}
			tc.config.Interval = time.Millisecond
			waiter := New(querier, tc.config)

			status, err := waiter.Wait(context.Background(), "0xabc")
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			} else {
				require.NoError(t, err)
				assert.True(t, status.Confirmed())
			}
			assert.Equal(t, tc.calls, querier.Calls())
		})
	}
}

func TestWaitEmptyHandle(t *testing.T) {
	querier := &scriptedQuerier{results: []backend.Result[entity.TxStatus]{confirmed}}
	_, err := New(querier, Config{}).Wait(context.Background(), "")
	assert.ErrorIs(t, err, errs.InvalidArgument)
	assert.Zero(t, querier.Calls())
}

func TestWaitTimeout(t *testing.T) {
	querier := &scriptedQuerier{results: []backend.Result[entity.TxStatus]{pending}}
	waiter := New(querier, Config{Interval: 5 * time.Millisecond, Timeout: 30 * time.Millisecond})

	_, err := waiter.Wait(context.Background(), "0xabc")
	assert.ErrorIs(t, err, errs.Timeout)
	assert.GreaterOrEqual(t, querier.Calls(), 2)
}

func TestWaitCancel(t *testing.T) {
	querier := &scriptedQuerier{results: []backend.Result[entity.TxStatus]{pending}}
	waiter := New(querier, Config{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := waiter.Wait(ctx, "0xabc")
		done <- err
	}()

	require.Eventually(t, func() bool { return querier.Calls() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("wait did not stop after cancel")
	}
	assert.Equal(t, 1, querier.Calls())
}

func TestWaitWithMockControlAPI(t *testing.T) {
	mock := backend.NewMock(backend.WithLatencyScale(0), backend.WithTxStatuses(entity.TxStatus{}, entity.TxStatus{Complete: true, Status: true}))
	waiter := New(mock, Config{Interval: time.Millisecond})

	status, err := waiter.Wait(context.Background(), backend.MockNodeCreateTx)
	require.NoError(t, err)
	assert.True(t, status.Confirmed())
	assert.Equal(t, 2, mock.CallCount(backend.MethodGetTransactionStatus))
}

func TestWaitUnavailableKeepsCause(t *testing.T) {
	querier := &scriptedQuerier{results: []backend.Result[entity.TxStatus]{queryErr}}
	waiter := New(querier, Config{Interval: time.Millisecond, MaxQueryErrors: 2})

	_, err := waiter.Wait(context.Background(), "0xabc")

	require.ErrorIs(t, err, errs.Unavailable)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Contains(t, fmt.Sprintf("%+v", err), "connection reset")
}
