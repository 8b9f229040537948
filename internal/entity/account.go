package entity

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// Node is the user's registered storage-provider entity.
type Node struct {
	Address string    `json:"address"`
	Data    *NodeData `json:"data,omitempty"`
}

type NodeData struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	IP    string `json:"ip,omitempty"`
}

// HasIdentity reports whether the node already carries the user's email and name.
func (n Node) HasIdentity() bool {
	return n.Data != nil && strings.TrimSpace(n.Data.Email) != "" && strings.TrimSpace(n.Data.Name) != ""
}

type ExpectedUsage struct {
	StorageAmount  string `json:"storageAmount"`
	EstimatedSpeed string `json:"estimatedSpeed"`
	Reason         string `json:"reason"`
	UptimeStart    string `json:"uptimeStart"`
	UptimeEnd      string `json:"uptimeEnd"`
	AllDayUptime   bool   `json:"allDayUptime"`
}

// NodeDataPayload is the consolidated node metadata submitted after the node exists.
type NodeDataPayload struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Passphrase     string `json:"passphrase"`
	StorageAmount  string `json:"storageAmount"`
	EstimatedSpeed string `json:"estimatedSpeed"`
	Reason         string `json:"reason"`
	UptimeStart    string `json:"uptimeStart"`
	UptimeEnd      string `json:"uptimeEnd"`
	AllDayUptime   bool   `json:"allDayUptime"`
	IP             string `json:"ip"`
}

// LogValue omits the passphrase.
func (p NodeDataPayload) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", p.Name),
		slog.String("email", p.Email),
		slog.String("storageAmount", p.StorageAmount),
		slog.String("estimatedSpeed", p.EstimatedSpeed),
		slog.Bool("allDayUptime", p.AllDayUptime),
		slog.String("ip", p.IP),
	)
}

type ApplicationPayload struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Reason         string `json:"reason"`
	EstimatedSpeed string `json:"estimatedSpeed"`
}

// Application is a submitted request to join a pool. It is never mutated.
type Application struct {
	PoolID   string             `json:"poolId"`
	Payload  ApplicationPayload `json:"payload"`
	TxHandle TxHandle           `json:"txHash,omitempty"`
}

const DefaultBalanceType = "gla"

type Balance struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}
