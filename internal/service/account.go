package service

import (
	"ledger-replay-engine/internal/core/domain"
	"ledger-replay-engine/pkg/apperror"

	"github.com/shopspring/decimal"
)

// BasicAccount is the in-memory ports.ClientAccount implementation.
// It holds one client's available and held funds plus the locked flag;
// total is always derived as available + held.
//
// Every operation checks the locked flag first: a chargeback is
// terminal and the account accepts nothing afterwards.
type BasicAccount struct {
	clientID  domain.ClientID
	available decimal.Decimal
	held      decimal.Decimal
	locked    bool
}

// NewBasicAccount creates an empty, unlocked account for a client.
func NewBasicAccount(id domain.ClientID) *BasicAccount {
	return &BasicAccount{
		clientID:  id,
		available: decimal.Zero,
		held:      decimal.Zero,
	}
}

// Deposit credits available funds.
func (a *BasicAccount) Deposit(amount decimal.Decimal) error {
	if a.locked {
		return apperror.ErrAccountLocked()
	}
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}

	a.available = a.available.Add(amount)
	return nil
}

// Withdraw debits available funds. Fails without touching state when
// the balance would go negative.
func (a *BasicAccount) Withdraw(amount decimal.Decimal) error {
	if a.locked {
		return apperror.ErrAccountLocked()
	}
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	if a.available.LessThan(amount) {
		return apperror.ErrInsufficientFunds()
	}

	a.available = a.available.Sub(amount)
	return nil
}

// Dispute opens a hold for a recorded deposit: the recorded amount
// moves from available to held. The arithmetic is applied literally, so
// available can go negative when a withdrawal spent the deposited funds
// before the dispute arrived. Held never goes negative because only
// deposits (positive recorded amounts) are disputable.
func (a *BasicAccount) Dispute(rec *domain.TransactionRecord) error {
	if a.locked {
		return apperror.ErrAccountLocked()
	}
	if rec.Status == domain.StatusDisputed {
		return apperror.ErrAlreadyDisputed()
	}
	if !rec.Disputable() {
		return apperror.ErrNotDisputable()
	}

	a.available = a.available.Sub(rec.Amount)
	a.held = a.held.Add(rec.Amount)
	return nil
}

// Resolve reverses a hold, restoring the pre-dispute split exactly.
func (a *BasicAccount) Resolve(rec *domain.TransactionRecord) error {
	if a.locked {
		return apperror.ErrAccountLocked()
	}
	if rec.Status != domain.StatusDisputed {
		return apperror.ErrNotDisputed()
	}

	a.held = a.held.Sub(rec.Amount)
	a.available = a.available.Add(rec.Amount)
	return nil
}

// Chargeback removes held funds permanently and locks the account.
func (a *BasicAccount) Chargeback(rec *domain.TransactionRecord) error {
	if a.locked {
		return apperror.ErrAccountLocked()
	}
	if rec.Status != domain.StatusDisputed {
		return apperror.ErrNotDisputed()
	}

	a.held = a.held.Sub(rec.Amount)
	a.locked = true
	return nil
}

// ClientID returns the owning client id.
func (a *BasicAccount) ClientID() domain.ClientID {
	return a.clientID
}

// Balance returns a snapshot of the current state.
func (a *BasicAccount) Balance() domain.Balance {
	return domain.Balance{
		ClientID:  a.clientID,
		Available: a.available,
		Held:      a.held,
		Locked:    a.locked,
	}
}

// Restore resets the account to a snapshot taken with Balance. It can
// unlock: undoing a chargeback whose status write failed must restore
// the pre-chargeback state exactly.
func (a *BasicAccount) Restore(snapshot domain.Balance) {
	a.available = snapshot.Available
	a.held = snapshot.Held
	a.locked = snapshot.Locked
}
