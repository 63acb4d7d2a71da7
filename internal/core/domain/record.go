package domain

import (
	"github.com/shopspring/decimal"
)

// DisputeStatus is the lifecycle state of a history record.
//
// active -> disputed -> active (resolve) | charged_back (terminal).
type DisputeStatus string

const (
	StatusActive      DisputeStatus = "active"
	StatusDisputed    DisputeStatus = "disputed"
	StatusChargedBack DisputeStatus = "charged_back"
)

// TransactionRecord is the stored monetary effect of a past deposit or
// withdrawal, keyed by transaction id. The amount is signed: positive
// for deposits, negative for withdrawals. Records are inserted once and
// never deleted; only Status transitions afterwards, so a dispute can
// reference the transaction at any later point in the stream.
type TransactionRecord struct {
	TxID     TransactionID   `json:"tx_id"`
	ClientID ClientID        `json:"client_id"`
	Amount   decimal.Decimal `json:"amount"`
	Status   DisputeStatus   `json:"status"`
}

// Disputable reports whether a dispute event may open a hold on this
// record: only non-disputed deposits qualify. Withdrawals are recorded
// for duplicate-id detection but cannot be disputed (holding funds that
// already left the account has no defined meaning).
func (r *TransactionRecord) Disputable() bool {
	return r.Status == StatusActive && r.Amount.IsPositive()
}
