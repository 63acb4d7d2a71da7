package domain

import (
	"github.com/shopspring/decimal"
)

// Balance is the externally visible snapshot of one client account.
type Balance struct {
	ClientID  ClientID        `json:"client_id"`
	Available decimal.Decimal `json:"available"`
	Held      decimal.Decimal `json:"held"`
	Locked    bool            `json:"locked"`
}

// Total returns available + held. It is derived rather than stored so
// the total = available + held invariant cannot drift.
func (b Balance) Total() decimal.Decimal {
	return b.Available.Add(b.Held)
}
