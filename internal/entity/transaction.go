package entity

import (
	"time"
)

type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypePoolPayment TransactionType = "pool_payment"
)

var transactionTypeDisplay = map[TransactionType]string{
	TransactionTypeDeposit:     "Deposit",
	TransactionTypeWithdrawal:  "Withdrawal",
	TransactionTypePoolPayment: "Pool payment",
}

// TransactionTypes lists the known types in display order.
var TransactionTypes = []TransactionType{
	TransactionTypeDeposit,
	TransactionTypeWithdrawal,
	TransactionTypePoolPayment,
}

func (t TransactionType) IsKnown() bool {
	_, ok := transactionTypeDisplay[t]
	return ok
}

func (t TransactionType) Display() string {
	if d, ok := transactionTypeDisplay[t]; ok {
		return d
	}
	return UnknownDisplay
}

// Transaction is a wallet history record keyed by Hash.
type Transaction struct {
	Hash string `json:"hash"`

	// TimeStamp is in epoch seconds.
	TimeStamp OptionalInt     `json:"timeStamp"`
	Type      TransactionType `json:"type,omitempty"`
}

// Time returns the transaction time, or the zero time when the timestamp is unknown.
func (t Transaction) Time() time.Time {
	if !t.TimeStamp.Valid {
		return time.Time{}
	}
	return time.Unix(t.TimeStamp.Value, 0)
}

func (t Transaction) TimeDisplay() string {
	if !t.TimeStamp.Valid {
		return UnknownDisplay
	}
	return t.Time().UTC().Format(time.DateTime)
}

// TxHandle references an in-flight backend operation awaiting confirmation.
type TxHandle string

func (h TxHandle) String() string {
	return string(h)
}

type TxStatus struct {
	Complete bool `json:"complete"`
	Status   bool `json:"status"`
}

// Confirmed reports a completed and successful transaction.
func (s TxStatus) Confirmed() bool {
	return s.Complete && s.Status
}

// Failed reports a completed transaction that was not applied.
func (s TxStatus) Failed() bool {
	return s.Complete && !s.Status
}
