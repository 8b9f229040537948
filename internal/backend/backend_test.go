package backend

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newControlDaemon serves app on a loopback port and returns a client for it.
func newControlDaemon(t *testing.T, app *fiber.App) *HTTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
	})

	api, err := NewHTTP(Config{URL: "http://" + ln.Addr().String(), Timeout: 2 * time.Second})
	require.NoError(t, err)
	return api
}

func TestHTTPControlAPI(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/keystore/account/create", func(c *fiber.Ctx) error {
		var body struct {
			Passphrase string `json:"passphrase"`
		}
		if err := c.BodyParser(&body); err != nil || body.Passphrase == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "passphrase is required"})
		}
		return c.JSON(fiber.Map{"success": true, "response": fiber.Map{"address": "0xwallet"}})
	})
	app.Post("/node/create", func(c *fiber.Ctx) error {
		if c.Get(AuthorizationHeader) != "secret" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "unauthorized"})
		}
		return c.JSON(fiber.Map{"success": true, "txHash": fiber.Map{"value": "0xabc"}})
	})
	app.Post("/node/:address/data", func(c *fiber.Ctx) error {
		var payload entity.NodeDataPayload
		if err := c.BodyParser(&payload); err != nil {
			return err
		}
		if c.Params("address") != "node-1" || c.Get(AuthorizationHeader) != payload.Passphrase {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}
		return c.JSON(fiber.Map{"success": true, "response": fiber.Map{"txHash": fiber.Map{"value": "0xdef"}}})
	})
	app.Get("/node/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "response": fiber.Map{
			"address": "node-1",
			"data":    fiber.Map{"email": "ann@example.com", "name": "Ann", "ip": "10.0.0.1"},
		}})
	})
	app.Post("/node/applications/:pool/new", func(c *fiber.Ctx) error {
		if c.Params("pool") == "closed" {
			return c.JSON(fiber.Map{"success": false, "error": "pool is closed"})
		}
		return c.JSON(fiber.Map{"success": true})
	})
	app.Get("/account/:address/balance/:type", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "response": fiber.Map{"value": "42.5"}})
	})
	app.Get("/status/tx/:hash", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "response": fiber.Map{"complete": true, "status": c.Params("hash") == "0xabc"}})
	})
	app.Get("/pool/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "response": []fiber.Map{
			{"address": "p1", "name": "Alpha", "nodeCount": "", "rating": 4},
			{"address": "p2", "name": "Beta", "nodeCount": 0, "earnings": "0.5"},
		}})
	})
	app.Get("/account/:address/transactions", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "response": []fiber.Map{
			{"hash": "0x1", "timeStamp": 1700000000, "type": "deposit"},
		}})
	})
	api := newControlDaemon(t, app)
	ctx := context.Background()

	t.Run("create wallet", func(t *testing.T) {
		result := api.CreateWallet(ctx, "secret")
		require.NoError(t, result.Err)
		assert.Equal(t, "0xwallet", result.Response.Address)

		result = api.CreateWallet(ctx, "")
		require.True(t, result.Failed())
		var apiErr *APIError
		require.ErrorAs(t, result.Err, &apiErr)
		assert.Equal(t, fiber.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "passphrase is required", apiErr.Message)
	})
	t.Run("create node reads envelope tx hash", func(t *testing.T) {
		result := api.CreateNode(ctx, "secret")
		require.NoError(t, result.Err)
		assert.Equal(t, entity.TxHandle("0xabc"), result.Response.TxHash)

		result = api.CreateNode(ctx, "wrong")
		var apiErr *APIError
		require.ErrorAs(t, result.Err, &apiErr)
		assert.Equal(t, "unauthorized", apiErr.Message)
	})
	t.Run("set node data reads nested tx hash", func(t *testing.T) {
		result := api.SetNodeData(ctx, "node-1", "secret", entity.NodeDataPayload{Passphrase: "secret", Name: "Ann"})
		require.NoError(t, result.Err)
		assert.Equal(t, entity.TxHandle("0xdef"), result.Response.TxHash)
	})
	t.Run("get node", func(t *testing.T) {
		result := api.GetNode(ctx)
		require.NoError(t, result.Err)
		assert.Equal(t, "node-1", result.Response.Address)
		assert.True(t, result.Response.HasIdentity())
		assert.Equal(t, "10.0.0.1", result.Response.Data.IP)
	})
	t.Run("apply to pool", func(t *testing.T) {
		result := api.ApplyToPool(ctx, "open", entity.ApplicationPayload{Email: "ann@example.com"})
		require.Error(t, result.Err, "receipt without tx hash")

		result = api.ApplyToPool(ctx, "closed", entity.ApplicationPayload{})
		var apiErr *APIError
		require.ErrorAs(t, result.Err, &apiErr)
		assert.Equal(t, "pool is closed", apiErr.Message)
	})
	t.Run("balance", func(t *testing.T) {
		result := api.GetBalance(ctx, "0xwallet", "")
		require.NoError(t, result.Err)
		assert.Equal(t, entity.DefaultBalanceType, result.Response.Type)
		assert.True(t, decimal.RequireFromString("42.5").Equal(result.Response.Value))
	})
	t.Run("transaction status", func(t *testing.T) {
		result := api.GetTransactionStatus(ctx, "0xabc")
		require.NoError(t, result.Err)
		assert.True(t, result.Response.Confirmed())

		result = api.GetTransactionStatus(ctx, "0xother")
		require.NoError(t, result.Err)
		assert.True(t, result.Response.Failed())
	})
	t.Run("pools", func(t *testing.T) {
		result := api.GetPools(ctx)
		require.NoError(t, result.Err)
		require.Len(t, result.Response, 2)
		assert.Equal(t, entity.UnknownDisplay, result.Response[0].NodeCountDisplay())
		assert.Equal(t, "0", result.Response[1].NodeCountDisplay())
	})
	t.Run("transactions", func(t *testing.T) {
		result := api.GetTransactions(ctx, "0xwallet")
		require.NoError(t, result.Err)
		require.Len(t, result.Response, 1)
		assert.Equal(t, entity.TransactionTypeDeposit, result.Response[0].Type)
	})
	t.Run("not found", func(t *testing.T) {
		result := Get[entity.Node](ctx, api.client, "/missing")
		var apiErr *APIError
		require.ErrorAs(t, result.Err, &apiErr)
		assert.Equal(t, fiber.StatusNotFound, apiErr.StatusCode)
	})
}

func TestHTTPControlAPIUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	api, err := NewHTTP(Config{URL: "http://" + addr, Timeout: time.Second})
	require.NoError(t, err)

	result := api.GetNode(context.Background())
	assert.ErrorIs(t, result.Err, errs.Unavailable)
	assert.Contains(t, result.Err.Error(), "control api unreachable")
}

func TestNewSelectsImplementation(t *testing.T) {
	api, err := New(Config{MockData: true})
	require.NoError(t, err)
	assert.IsType(t, &Mock{}, api)

	api, err = New(Config{URL: "http://localhost:8080"})
	require.NoError(t, err)
	assert.IsType(t, &HTTP{}, api)

	_, err = New(Config{})
	assert.ErrorIs(t, err, errs.ArgumentRequired)
}

func TestDelayed(t *testing.T) {
	t.Run("resolves after delay", func(t *testing.T) {
		start := time.Now()
		result := Delayed(context.Background(), func() Result[int] { return Ok(7) }, 20*time.Millisecond)
		require.NoError(t, result.Err)
		assert.Equal(t, 7, result.Response)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		result := Delayed(ctx, func() Result[int] { called = true; return Ok(7) }, time.Hour)
		assert.ErrorIs(t, result.Err, context.Canceled)
		assert.False(t, called)
	})
	t.Run("fail without error", func(t *testing.T) {
		assert.True(t, Fail[int](nil).Failed())
	})
}

func TestMock(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("defaults", func(t *testing.T) {
		mock := NewMock(WithLatencyScale(0))

		assert.Equal(t, MockWalletAddress, mock.CreateWallet(ctx, "p").Response.Address)
		assert.Equal(t, MockNodeCreateTx, mock.CreateNode(ctx, "p").Response.TxHash)
		assert.Equal(t, MockNodeAddress, mock.GetNode(ctx).Response.Address)
		assert.True(t, mock.GetTransactionStatus(ctx, MockNodeCreateTx).Response.Confirmed())
		assert.NotEmpty(t, mock.GetPools(ctx).Response)
		assert.Equal(t, entity.DefaultBalanceType, mock.GetBalance(ctx, MockWalletAddress, "").Response.Type)
		assert.Equal(t, 1, mock.CallCount(MethodCreateNode))
		assert.Len(t, mock.Calls(), 6)
	})
	t.Run("failure by argument", func(t *testing.T) {
		mock := NewMock(WithLatencyScale(0), WithFailure(MethodApplyToPool, boom, "p2"))

		assert.False(t, mock.ApplyToPool(ctx, "p1", entity.ApplicationPayload{}).Failed())
		assert.ErrorIs(t, mock.ApplyToPool(ctx, "p2", entity.ApplicationPayload{}).Err, boom)
	})
	t.Run("status sequence", func(t *testing.T) {
		mock := NewMock(WithLatencyScale(0), WithTxStatuses(entity.TxStatus{}, entity.TxStatus{Complete: true, Status: true}))

		assert.False(t, mock.GetTransactionStatus(ctx, "0x1").Response.Complete)
		assert.True(t, mock.GetTransactionStatus(ctx, "0x1").Response.Confirmed())
		assert.True(t, mock.GetTransactionStatus(ctx, "0x1").Response.Confirmed())
		assert.False(t, mock.GetTransactionStatus(ctx, "0x2").Response.Complete)
	})
	t.Run("latency honours context", func(t *testing.T) {
		mock := NewMock()
		ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, mock.CreateNode(ctx, "p").Err, context.DeadlineExceeded)
		assert.Zero(t, mock.CallCount(MethodCreateNode))
	})
}
