package backend

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/internal/entity"
)

// ControlAPI is the node's control daemon, one method per endpoint.
type ControlAPI interface {
	CreateWallet(ctx context.Context, passphrase string) Result[WalletAccount]
	CreateNode(ctx context.Context, passphrase string) Result[TxReceipt]
	SetNodeData(ctx context.Context, nodeAddress, passphrase string, payload entity.NodeDataPayload) Result[TxReceipt]
	GetNode(ctx context.Context) Result[entity.Node]
	ApplyToPool(ctx context.Context, poolID string, payload entity.ApplicationPayload) Result[TxReceipt]
	GetBalance(ctx context.Context, address, balanceType string) Result[entity.Balance]
	GetTransactionStatus(ctx context.Context, handle entity.TxHandle) Result[entity.TxStatus]
	GetPools(ctx context.Context) Result[[]entity.Pool]
	GetTransactions(ctx context.Context, address string) Result[[]entity.Transaction]
}

// AuthorizationHeader carries the passphrase on authenticated calls.
const AuthorizationHeader = "X-Authorization"

type WalletAccount struct {
	Address string `json:"address"`
}

// TxReceipt is returned by state-mutating calls.
type TxReceipt struct {
	TxHash entity.TxHandle `json:"txHash"`
}

func (r *TxReceipt) decodeEnvelope(env envelope) error {
	if env.TxHash != nil && env.TxHash.Value != "" {
		r.TxHash = entity.TxHandle(env.TxHash.Value)
		return nil
	}
	if len(env.Response) > 0 && string(env.Response) != "null" {
		var nested struct {
			TxHash *txHashValue `json:"txHash"`
		}
		if err := json.Unmarshal(env.Response, &nested); err == nil && nested.TxHash != nil && nested.TxHash.Value != "" {
			r.TxHash = entity.TxHandle(nested.TxHash.Value)
			return nil
		}
	}
	return errors.WithStack(&APIError{StatusCode: 200, Message: "response has no transaction hash"})
}
