package backend

import (
	"context"
	"net/url"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/pkg/httpclient"
)

// HTTP is the control API served by a running daemon.
type HTTP struct {
	client *httpclient.Client
}

var _ ControlAPI = (*HTTP)(nil)

func NewHTTP(config Config) (*HTTP, error) {
	client, err := httpclient.New(config.URL, httpclient.Config{
		Debug:   config.Debug,
		Timeout: config.Timeout,
		Headers: map[string]string{
			"Accept": "application/json",
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client")
	}
	return &HTTP{client: client}, nil
}

func authorization(passphrase string) map[string]string {
	return map[string]string{AuthorizationHeader: passphrase}
}

func (h *HTTP) CreateWallet(ctx context.Context, passphrase string) Result[WalletAccount] {
	return Post[WalletAccount](ctx, h.client, "/keystore/account/create", map[string]string{"passphrase": passphrase}, nil)
}

func (h *HTTP) CreateNode(ctx context.Context, passphrase string) Result[TxReceipt] {
	return Post[TxReceipt](ctx, h.client, "/node/create", struct{}{}, authorization(passphrase))
}

func (h *HTTP) SetNodeData(ctx context.Context, nodeAddress, passphrase string, payload entity.NodeDataPayload) Result[TxReceipt] {
	return Post[TxReceipt](ctx, h.client, "/node/"+url.PathEscape(nodeAddress)+"/data", payload, authorization(passphrase))
}

func (h *HTTP) GetNode(ctx context.Context) Result[entity.Node] {
	return Get[entity.Node](ctx, h.client, "/node/")
}

func (h *HTTP) ApplyToPool(ctx context.Context, poolID string, payload entity.ApplicationPayload) Result[TxReceipt] {
	return Post[TxReceipt](ctx, h.client, "/node/applications/"+url.PathEscape(poolID)+"/new", payload, nil)
}

func (h *HTTP) GetBalance(ctx context.Context, address, balanceType string) Result[entity.Balance] {
	balanceType = utils.Default(balanceType, entity.DefaultBalanceType)
	result := Get[entity.Balance](ctx, h.client, "/account/"+url.PathEscape(address)+"/balance/"+url.PathEscape(balanceType))
	if !result.Failed() && result.Response.Type == "" {
		result.Response.Type = balanceType
	}
	return result
}

func (h *HTTP) GetTransactionStatus(ctx context.Context, handle entity.TxHandle) Result[entity.TxStatus] {
	return Get[entity.TxStatus](ctx, h.client, "/status/tx/"+url.PathEscape(handle.String()))
}

func (h *HTTP) GetPools(ctx context.Context) Result[[]entity.Pool] {
	return Get[[]entity.Pool](ctx, h.client, "/pool/")
}

func (h *HTTP) GetTransactions(ctx context.Context, address string) Result[[]entity.Transaction] {
	return Get[[]entity.Transaction](ctx, h.client, "/account/"+url.PathEscape(address)+"/transactions")
}
