package backend

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCreateWallet         Method = "CreateWallet"
	MethodCreateNode           Method = "CreateNode"
	MethodSetNodeData          Method = "SetNodeData"
	MethodGetNode              Method = "GetNode"
	MethodApplyToPool          Method = "ApplyToPool"
	MethodGetBalance           Method = "GetBalance"
	MethodGetTransactionStatus Method = "GetTransactionStatus"
	MethodGetPools             Method = "GetPools"
	MethodGetTransactions      Method = "GetTransactions"
)

// Simulated latencies of the synthetic control API.
var MockLatencies = map[Method]time.Duration{
	MethodCreateWallet:         1000 * time.Millisecond,
	MethodCreateNode:           3000 * time.Millisecond,
	MethodSetNodeData:          3000 * time.Millisecond,
	MethodApplyToPool:          3000 * time.Millisecond,
	MethodGetNode:              1000 * time.Millisecond,
	MethodGetTransactionStatus: 1000 * time.Millisecond,
	MethodGetBalance:           500 * time.Millisecond,
	MethodGetPools:             500 * time.Millisecond,
	MethodGetTransactions:      500 * time.Millisecond,
}

// Handles and addresses returned by the synthetic control API.
const (
	MockWalletAddress     = "0x5a0b54d5dc17e0aadc383d2db43b0a0d3e029c4c"
	MockNodeAddress       = "mynodeaddress"
	MockNodeCreateTx      = entity.TxHandle("0x8392141904")
	MockNodeDataTx        = entity.TxHandle("0x3012093812038")
	MockApplicationTx     = entity.TxHandle("0x92312312")
	mockDefaultGLABalance = "1250.75"
)

// Call is a recorded control API invocation.
type Call struct {
	Method Method
	Args   []string
}

type mockFailure struct {
	arg string
	err error
}

// Mock is a deterministic in-process control API.
type Mock struct {
	scale float64

	mu           sync.Mutex
	calls        []Call
	failures     map[Method][]mockFailure
	txStatuses   []entity.TxStatus
	statusIndex  map[entity.TxHandle]int
	node         entity.Node
	pools        []entity.Pool
	transactions []entity.Transaction
	balance      decimal.Decimal
}

var _ ControlAPI = (*Mock)(nil)

type MockOption func(*Mock)

// WithLatencyScale multiplies every simulated latency. 0 disables them.
func WithLatencyScale(scale float64) MockOption {
	return func(m *Mock) {
		m.scale = lo.Ternary(scale < 0, 0, scale)
	}
}

// WithFailure makes method fail with err. When arg is given, only calls whose
// first argument equals arg fail.
func WithFailure(method Method, err error, arg ...string) MockOption {
	return func(m *Mock) {
		f := mockFailure{err: err}
		if len(arg) > 0 {
			f.arg = arg[0]
		}
		m.failures[method] = append(m.failures[method], f)
	}
}

// WithTxStatuses sets the status sequence every handle goes through. The last
// status repeats.
func WithTxStatuses(statuses ...entity.TxStatus) MockOption {
	return func(m *Mock) {
		if len(statuses) > 0 {
			m.txStatuses = statuses
		}
	}
}

func WithNode(node entity.Node) MockOption {
	return func(m *Mock) {
		m.node = node
	}
}

func WithPools(pools ...entity.Pool) MockOption {
	return func(m *Mock) {
		m.pools = pools
	}
}

func WithTransactions(transactions ...entity.Transaction) MockOption {
	return func(m *Mock) {
		m.transactions = transactions
	}
}

func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		scale:        1,
		failures:     make(map[Method][]mockFailure),
		txStatuses:   []entity.TxStatus{{Complete: true, Status: true}},
		statusIndex:  make(map[entity.TxHandle]int),
		node:         entity.Node{Address: MockNodeAddress},
		pools:        mockPools(),
		transactions: mockTransactions(),
		balance:      decimal.RequireFromString(mockDefaultGLABalance),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Calls returns the recorded invocations in order.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns how many times method was invoked.
func (m *Mock) CallCount(method Method) int {
	return lo.CountBy(m.Calls(), func(c Call) bool { return c.Method == method })
}

// record registers the call and returns the configured failure, if any.
func (m *Mock) record(method Method, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Args: args})
	for _, f := range m.failures[method] {
		if f.arg == "" || (len(args) > 0 && args[0] == f.arg) {
			return f.err
		}
	}
	return nil
}

func (m *Mock) latency(method Method) time.Duration {
	return time.Duration(float64(MockLatencies[method]) * m.scale)
}

func respond[T any](ctx context.Context, m *Mock, method Method, response func() T, args ...string) Result[T] {
	return Delayed(ctx, func() Result[T] {
		if err := m.record(method, args...); err != nil {
			return Fail[T](err)
		}
		return Ok(response())
	}, m.latency(method))
}

func (m *Mock) CreateWallet(ctx context.Context, _ string) Result[WalletAccount] {
	return respond(ctx, m, MethodCreateWallet, func() WalletAccount {
		return WalletAccount{Address: MockWalletAddress}
	})
}

func (m *Mock) CreateNode(ctx context.Context, _ string) Result[TxReceipt] {
	return respond(ctx, m, MethodCreateNode, func() TxReceipt {
		return TxReceipt{TxHash: MockNodeCreateTx}
	})
}

func (m *Mock) SetNodeData(ctx context.Context, nodeAddress, _ string, _ entity.NodeDataPayload) Result[TxReceipt] {
	return respond(ctx, m, MethodSetNodeData, func() TxReceipt {
		return TxReceipt{TxHash: MockNodeDataTx}
	}, nodeAddress)
}

func (m *Mock) GetNode(ctx context.Context) Result[entity.Node] {
	return respond(ctx, m, MethodGetNode, func() entity.Node {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.node
	})
}

func (m *Mock) ApplyToPool(ctx context.Context, poolID string, _ entity.ApplicationPayload) Result[TxReceipt] {
	return respond(ctx, m, MethodApplyToPool, func() TxReceipt {
		return TxReceipt{TxHash: MockApplicationTx}
	}, poolID)
}

func (m *Mock) GetBalance(ctx context.Context, address, balanceType string) Result[entity.Balance] {
	balanceType = lo.Ternary(balanceType == "", entity.DefaultBalanceType, balanceType)
	return respond(ctx, m, MethodGetBalance, func() entity.Balance {
		value := decimal.Zero
		if strings.EqualFold(balanceType, entity.DefaultBalanceType) {
			value = m.balance
		}
		return entity.Balance{Type: balanceType, Value: value}
	}, address, balanceType)
}

func (m *Mock) GetTransactionStatus(ctx context.Context, handle entity.TxHandle) Result[entity.TxStatus] {
	return respond(ctx, m, MethodGetTransactionStatus, func() entity.TxStatus {
		m.mu.Lock()
		defer m.mu.Unlock()
		i := m.statusIndex[handle]
		m.statusIndex[handle] = i + 1
		return m.txStatuses[min(i, len(m.txStatuses)-1)]
	}, handle.String())
}

func (m *Mock) GetPools(ctx context.Context) Result[[]entity.Pool] {
	return respond(ctx, m, MethodGetPools, func() []entity.Pool {
		return append([]entity.Pool(nil), m.pools...)
	})
}

func (m *Mock) GetTransactions(ctx context.Context, address string) Result[[]entity.Transaction] {
	return respond(ctx, m, MethodGetTransactions, func() []entity.Transaction {
		return append([]entity.Transaction(nil), m.transactions...)
	}, address)
}

func mockPools() []entity.Pool {
	return []entity.Pool{
		{
			Address:   "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984",
			Name:      "Aurora Storage",
			Location:  "US-East",
			Rating:    4.5,
			NodeCount: entity.KnownInt(12),
			Earnings:  entity.KnownDecimal(decimal.RequireFromString("0.5")),
		},
		{
			Address:  "0x7fc66500c84a76ad7e9c93437bfc5ac33e2ddae9",
			Name:     "Berlin Vault",
			Location: "EU-Central",
			Rating:   3,
			Earnings: entity.KnownDecimal(decimal.RequireFromString("0.35")),
		},
		{
			Address:   "0x514910771af9ca656af840dff83e8264ecf986ca",
			Name:      "Kyoto Cells",
			Location:  "Asia-East",
			Rating:    5,
			NodeCount: entity.KnownInt(0),
		},
		{
			Address:   "0x0d8775f648430679a709e98d2b0cb6250d2887ef",
			Name:      "Lagos Depot",
			Location:  "Africa-West",
			Rating:    2.5,
			NodeCount: entity.KnownInt(40),
			Earnings:  entity.KnownDecimal(decimal.RequireFromString("1.2")),
		},
	}
}

func mockTransactions() []entity.Transaction {
	return []entity.Transaction{
		{Hash: "0x9fc3a1b2c4d5e6f70812", TimeStamp: entity.KnownInt(1700000000), Type: entity.TransactionTypeDeposit},
		{Hash: "0x4ab7e2d9c0f1a3b5c6d8", TimeStamp: entity.KnownInt(1700086400), Type: entity.TransactionTypePoolPayment},
		{Hash: "0x77e1c3b5a9d2f4e6c8b0", TimeStamp: entity.KnownInt(1700172800), Type: entity.TransactionTypeWithdrawal},
	}
}
