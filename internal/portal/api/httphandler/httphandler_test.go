package httphandler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/actions"
	"github.com/gaze-network/pool-portal/internal/backend"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/poller"
	"github.com/gaze-network/pool-portal/internal/portal"
	"github.com/gaze-network/pool-portal/internal/provisioning"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gaze-network/pool-portal/internal/txwait"
	"github.com/gaze-network/pool-portal/pkg/errorhandler"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, opts ...backend.MockOption) (*fiber.App, *portal.Portal, *backend.Mock) {
	t.Helper()
	mock := backend.NewMock(append([]backend.MockOption{backend.WithLatencyScale(0)}, opts...)...)
	dispatcher := actions.New(state.NewStore(), mock)
	workflow := provisioning.New(dispatcher, txwait.New(mock, txwait.Config{Interval: time.Millisecond}))
	p := portal.New(dispatcher, workflow, poller.New(), portal.Config{
		PoolsInterval:        time.Hour,
		TransactionsInterval: time.Hour,
	})

	app := fiber.New(fiber.Config{ErrorHandler: errorhandler.NewHTTPErrorHandler()})
	require.NoError(t, New(p).Mount(app))
	t.Cleanup(func() {
		_ = p.Shutdown(context.Background())
		_ = app.ShutdownWithTimeout(time.Second)
	})
	return app, p, mock
}

func do[T any](t *testing.T, app *fiber.App, method, path string, body any) (int, HttpResponse[T]) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out HttpResponse[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestSignupFlow(t *testing.T) {
	app, p, mock := newTestApp(t)

	status, identity := do[setIdentityResult](t, app, http.MethodPost, "/v1/signup/identity", map[string]any{
		"email": "ann@example.com",
		"name":  "Ann",
		"ip":    "10.1.1.1",
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, identity.Result.Valid)
	assert.Equal(t, "10.1.1.1", identity.Result.IP)

	status, _ = do[getStateResult](t, app, http.MethodPost, "/v1/signup/expected-usage", map[string]any{
		"storageAmount":  "2TB",
		"estimatedSpeed": "100Mbps",
		"reason":         "backups",
		"allDayUptime":   true,
		"poolIds":        []string{"pool-a", "pool-b"},
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = do[getStateResult](t, app, http.MethodPost, "/v1/signup/passphrase", actions.PassphraseForm{
		Passphrase:   "secret",
		Confirmation: "secret",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, backend.MockWalletAddress, p.Store().GetState().Wallet.Address)

	status, _ = do[getStateResult](t, app, http.MethodPost, "/v1/signup/account", nil)
	require.Equal(t, http.StatusAccepted, status)
	require.Eventually(t, func() bool {
		return p.Store().GetState().Signup.Phase == entity.PhaseComplete
	}, time.Second, time.Millisecond)

	status, applied := do[createApplicationsResult](t, app, http.MethodPost, "/v1/applications", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"pool-a", "pool-b"}, applied.Result.Applied)
	assert.Equal(t, 2, mock.CallCount(backend.MethodApplyToPool))

	status, st := do[getStateResult](t, app, http.MethodGet, "/v1/state", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, st.Result.Account.InfoSaved)
	assert.True(t, st.Result.Account.AppliedToPool)
	assert.Equal(t, "Complete", st.Result.Signup.PhaseName)
}

func TestSignupErrors(t *testing.T) {
	testCases := []struct {
		name           string
		path           string
		body           any
		expectedStatus int
	}{
		{name: "passphrase mismatch", path: "/v1/signup/passphrase", body: actions.PassphraseForm{Passphrase: "a", Confirmation: "b"}, expectedStatus: http.StatusBadRequest},
		{name: "account before wallet", path: "/v1/signup/account", expectedStatus: http.StatusBadRequest},
		{name: "applications without pools", path: "/v1/applications", expectedStatus: http.StatusBadRequest},
		{name: "unknown view", path: "/v1/views/settings/mount", expectedStatus: http.StatusNotFound},
		{name: "unknown sort column", path: "/v1/pools/sort/owner", expectedStatus: http.StatusBadRequest},
		{name: "balance without wallet", path: "/v1/wallet/balance", expectedStatus: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app, _, _ := newTestApp(t)
			status, resp := do[any](t, app, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.expectedStatus, status)
			assert.NotNil(t, resp.Error)
		})
	}
}

func TestWalletFailure(t *testing.T) {
	app, p, _ := newTestApp(t, backend.WithFailure(backend.MethodCreateWallet, errs.Unavailable))

	status, resp := do[any](t, app, http.MethodPost, "/v1/signup/passphrase", actions.PassphraseForm{
		Passphrase:   "secret",
		Confirmation: "secret",
	})
	assert.Equal(t, http.StatusBadGateway, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, provisioning.WalletFailureToast, *resp.Error)

	status, toasts := do[[]state.Toast](t, app, http.MethodGet, "/v1/toasts", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, *toasts.Result, 1)

	status, _ = do[[]state.Toast](t, app, http.MethodDelete, "/v1/toasts/"+strconv.Itoa((*toasts.Result)[0].ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, p.Store().GetState().Toasts.Items)
}

func TestApplicationFailure(t *testing.T) {
	app, _, _ := newTestApp(t, backend.WithFailure(backend.MethodApplyToPool, errs.Unavailable, "pool-b"))

	status, resp := do[any](t, app, http.MethodPost, "/v1/applications", createApplicationsRequest{
		PoolIDs: []string{"pool-a", "pool-b"},
	})
	assert.Equal(t, http.StatusBadGateway, status)
	require.NotNil(t, resp.Error)
	assert.Contains(t, *resp.Error, "pool-b")
}

func TestPoolsView(t *testing.T) {
	app, p, _ := newTestApp(t)

	status, _ := do[viewsResult](t, app, http.MethodPost, "/v1/views/pools/mount", nil)
	require.Equal(t, http.StatusOK, status)
	require.Eventually(t, func() bool { return p.Store().GetState().Pools.Loaded }, time.Second, time.Millisecond)

	status, pools := do[getPoolsResult](t, app, http.MethodGet, "/v1/pools", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, pools.Result.Total, pools.Result.Shown)
	assert.NotEmpty(t, pools.Result.List)

	status, sorted := do[getPoolsResult](t, app, http.MethodPost, "/v1/pools/sort/rating", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, state.SortByRating, sorted.Result.Sort.Column)

	status, filtered := do[getPoolsResult](t, app, http.MethodPut, "/v1/pools/filters", map[string]any{"minRating": 5})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5.0, filtered.Result.Filters.MinRating)
	for _, row := range filtered.Result.List {
		assert.GreaterOrEqual(t, row.Rating, 5.0)
	}

	status, _ = do[getPoolsResult](t, app, http.MethodPut, "/v1/pools/filters", map[string]any{"minRating": 9})
	assert.Equal(t, http.StatusBadRequest, status)

	status, views := do[viewsResult](t, app, http.MethodPost, "/v1/views/pools/unmount", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, views.Result.Mounted)
}

func TestTransactionFilter(t *testing.T) {
	app, p, _ := newTestApp(t)
	p.Store().Dispatch(state.WalletAddressSet{Address: backend.MockWalletAddress})
	require.NoError(t, p.Dispatcher().GetAllTransactions(context.Background()).Err)

	status, txs := do[getTransactionsResult](t, app, http.MethodPut, "/v1/transactions/filter", map[string]any{"type": "deposit"})
	require.Equal(t, http.StatusOK, status)
	for _, row := range txs.Result.List {
		assert.Equal(t, entity.TransactionType("deposit"), row.Type)
	}

	status, _ = do[getTransactionsResult](t, app, http.MethodPut, "/v1/transactions/filter", map[string]any{"type": "refund"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestEvents(t *testing.T) {
	app, p, _ := newTestApp(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/v1/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get(fiber.HeaderContentType))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		for {
			next, err := reader.ReadString('\n')
			require.NoError(t, err)
			if next == "\n" {
				break
			}
		}
		return strings.TrimSpace(strings.TrimPrefix(line, "event:"))
	}

	assert.Equal(t, "state", readEvent())
	p.Dispatcher().AddToast("hello", true)
	assert.Equal(t, state.ToastAdded{}.ActionName(), readEvent())
}
