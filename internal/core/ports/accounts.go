package ports

import (
	"ledger-replay-engine/internal/core/domain"

	"github.com/shopspring/decimal"
)

// ClientAccount is the capability interface for one client's balance
// state. The engine only ever talks to accounts through it, so an
// alternative representation (persisted, partitioned by client range)
// can be substituted without touching the replay loop.
//
// All operations return an *apperror.AppError on failure. Failures
// leave the account state untouched. Dispute-lifecycle mismatches are
// Ignorable errors; the engine treats them as no-ops.
type ClientAccount interface {
	// Deposit credits available funds. Amount must be positive.
	Deposit(amount decimal.Decimal) error

	// Withdraw debits available funds. Amount must be positive and
	// must not exceed the available balance.
	Withdraw(amount decimal.Decimal) error

	// Dispute moves the recorded amount from available to held. Only
	// a non-disputed deposit record qualifies. Available may go
	// negative if the deposit was spent before the dispute arrived;
	// that arithmetic is applied literally.
	Dispute(rec *domain.TransactionRecord) error

	// Resolve releases a hold, moving the recorded amount from held
	// back to available.
	Resolve(rec *domain.TransactionRecord) error

	// Chargeback removes held funds permanently and locks the
	// account. Locking is terminal: every later operation fails.
	Chargeback(rec *domain.TransactionRecord) error

	// ClientID returns the owning client id.
	ClientID() domain.ClientID

	// Balance returns a snapshot of the current state.
	Balance() domain.Balance

	// Restore resets the account to a previously captured Balance
	// snapshot. The engine uses it to undo an applied operation when
	// the history write that follows it fails, so a dropped event
	// leaves no partial state behind.
	Restore(snapshot domain.Balance)
}

// AccountFactory creates the ClientAccount for a client the first time
// an event references it.
type AccountFactory func(id domain.ClientID) ClientAccount
