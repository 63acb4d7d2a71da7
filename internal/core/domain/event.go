package domain

import (
	"github.com/shopspring/decimal"
)

// ClientID identifies a client account.
type ClientID uint16

// TransactionID identifies a transaction, globally unique for
// deposits and withdrawals across the whole event stream.
type TransactionID uint32

// EventType represents the kind of ledger event.
type EventType string

const (
	EventDeposit    EventType = "deposit"
	EventWithdrawal EventType = "withdrawal"
	EventDispute    EventType = "dispute"
	EventResolve    EventType = "resolve"
	EventChargeback EventType = "chargeback"
)

// Valid reports whether t is one of the five known event kinds.
func (t EventType) Valid() bool {
	switch t {
	case EventDeposit, EventWithdrawal, EventDispute, EventResolve, EventChargeback:
		return true
	}
	return false
}

// HasAmount reports whether events of this kind carry a monetary amount.
// Only deposits and withdrawals do; the dispute family references a past
// transaction by id instead.
func (t EventType) HasAmount() bool {
	return t == EventDeposit || t == EventWithdrawal
}

// Event is one entry of the input stream, validated upstream by the
// reader: known type, ids parsed, amount present exactly when required.
type Event struct {
	Type     EventType       `json:"type"`
	ClientID ClientID        `json:"client_id"`
	TxID     TransactionID   `json:"tx_id"`
	Amount   decimal.Decimal `json:"amount,omitempty"` // zero value when Type.HasAmount() is false
}

// MaxAmountPlaces is the maximum number of fractional digits accepted
// on an input amount.
const MaxAmountPlaces = 4
