package service

import (
	"context"
	"fmt"
	"sort"

	"ledger-replay-engine/internal/core/domain"
	"ledger-replay-engine/internal/core/ports"
	"ledger-replay-engine/internal/metrics"
	"ledger-replay-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine replays ledger events against client accounts. It exclusively
// owns the client id -> account mapping and the transaction history;
// accounts never reference each other.
//
// The engine is single-threaded by design: each event is fully applied
// before the next one is read, and Process must not be called
// concurrently. Partitioning by client id would need per-worker engines
// with disjoint client sets and per-client histories.
type Engine struct {
	accounts   map[domain.ClientID]ports.ClientAccount
	history    ports.HistoryStore
	newAccount ports.AccountFactory
	log        zerolog.Logger

	processed uint64
	dropped   uint64
	ignored   uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithAccountFactory overrides how accounts are created on first
// reference, substituting an alternative ClientAccount implementation.
func WithAccountFactory(f ports.AccountFactory) Option {
	return func(e *Engine) { e.newAccount = f }
}

// NewEngine creates an engine with empty account and history state.
// Every run gets a uuid on its log context so interleaved runs can be
// told apart in aggregated logs.
func NewEngine(history ports.HistoryStore, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		accounts: make(map[domain.ClientID]ports.ClientAccount),
		history:  history,
		newAccount: func(id domain.ClientID) ports.ClientAccount {
			return NewBasicAccount(id)
		},
		log: log.With().Str("run_id", uuid.New().String()).Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process applies one event in arrival order. A non-nil return means
// the event had no effect on balances; it is never fatal to the run.
// Ignorable errors (apperror.IsIgnorable) are dispute-lifecycle no-ops,
// everything else is a dropped event.
func (e *Engine) Process(ctx context.Context, ev domain.Event) error {
	var err error
	switch ev.Type {
	case domain.EventDeposit, domain.EventWithdrawal:
		err = e.applyTransfer(ctx, ev)
	case domain.EventDispute, domain.EventResolve, domain.EventChargeback:
		err = e.applyDispute(ctx, ev)
	default:
		err = apperror.ErrMalformedEvent(fmt.Errorf("unknown event type %q", ev.Type))
	}

	e.observe(ev, err)
	return err
}

// applyTransfer handles deposits and withdrawals: the only event kinds
// that create history records. The record is inserted after the account
// operation succeeds; a history write failure rolls the account back to
// its pre-event snapshot, so a dropped event leaves both the account
// and the history unchanged.
func (e *Engine) applyTransfer(ctx context.Context, ev domain.Event) error {
	existing, err := e.history.Get(ctx, ev.TxID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("history lookup tx %d: %w", ev.TxID, err))
	}
	if existing != nil {
		return apperror.ErrDuplicateTransaction()
	}

	acct := e.account(ev.ClientID)
	snapshot := acct.Balance()

	rec := &domain.TransactionRecord{
		TxID:     ev.TxID,
		ClientID: ev.ClientID,
		Status:   domain.StatusActive,
	}

	switch ev.Type {
	case domain.EventDeposit:
		if err := acct.Deposit(ev.Amount); err != nil {
			return err
		}
		rec.Amount = ev.Amount
	case domain.EventWithdrawal:
		if err := acct.Withdraw(ev.Amount); err != nil {
			return err
		}
		rec.Amount = ev.Amount.Neg()
	}

	if err := e.history.Insert(ctx, rec); err != nil {
		acct.Restore(snapshot)
		return apperror.InternalError(fmt.Errorf("history insert tx %d: %w", ev.TxID, err))
	}
	metrics.HistoryRecords.Inc()
	return nil
}

// applyDispute handles the dispute family. These mutate the status of
// an existing record but never create one. The referenced account and
// record must both exist and agree on the client id; a cross-client
// reference is malformed, not a lifecycle no-op.
func (e *Engine) applyDispute(ctx context.Context, ev domain.Event) error {
	acct, ok := e.accounts[ev.ClientID]
	if !ok {
		return apperror.ErrUnknownTransaction()
	}

	rec, err := e.history.Get(ctx, ev.TxID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("history lookup tx %d: %w", ev.TxID, err))
	}
	if rec == nil {
		return apperror.ErrUnknownTransaction()
	}
	if rec.ClientID != ev.ClientID {
		return apperror.ErrClientMismatch()
	}

	snapshot := acct.Balance()

	var next domain.DisputeStatus
	switch ev.Type {
	case domain.EventDispute:
		if err := acct.Dispute(rec); err != nil {
			return err
		}
		next = domain.StatusDisputed
	case domain.EventResolve:
		if err := acct.Resolve(rec); err != nil {
			return err
		}
		next = domain.StatusActive
	case domain.EventChargeback:
		if err := acct.Chargeback(rec); err != nil {
			return err
		}
		next = domain.StatusChargedBack
		metrics.AccountsLocked.Inc()
	}

	// The account op already mutated balances (a chargeback even locked
	// the account); a failed status write rolls that back so account and
	// stored record stay in agreement.
	if err := e.history.SetStatus(ctx, ev.TxID, next); err != nil {
		acct.Restore(snapshot)
		if ev.Type == domain.EventChargeback {
			metrics.AccountsLocked.Dec()
		}
		return apperror.InternalError(fmt.Errorf("history status tx %d: %w", ev.TxID, err))
	}
	return nil
}

// account returns the account for a client, creating it lazily on
// first reference.
func (e *Engine) account(id domain.ClientID) ports.ClientAccount {
	if acct, ok := e.accounts[id]; ok {
		return acct
	}
	acct := e.newAccount(id)
	e.accounts[id] = acct
	return acct
}

// observe logs and counts one event outcome. Dropped events are warned
// about, lifecycle no-ops only show up at debug level; neither ever
// aborts the stream.
func (e *Engine) observe(ev domain.Event, err error) {
	if err == nil {
		e.processed++
		metrics.EventsProcessed.WithLabelValues(string(ev.Type)).Inc()
		return
	}

	code := apperror.Code(err)
	if apperror.IsIgnorable(err) {
		e.ignored++
		metrics.EventsIgnored.WithLabelValues(code).Inc()
		e.log.Debug().
			Str("type", string(ev.Type)).
			Uint16("client", uint16(ev.ClientID)).
			Uint32("tx", uint32(ev.TxID)).
			Str("code", code).
			Msg("event ignored")
		return
	}

	e.dropped++
	metrics.EventsDropped.WithLabelValues(code).Inc()
	e.log.Warn().
		Err(err).
		Str("type", string(ev.Type)).
		Uint16("client", uint16(ev.ClientID)).
		Uint32("tx", uint32(ev.TxID)).
		Msg("event dropped")
}

// Finalize returns the balance snapshot of every account, sorted by
// client id so rendering is deterministic. Call it only after the input
// stream is exhausted; it has no side effects and may be called more
// than once.
func (e *Engine) Finalize() []domain.Balance {
	balances := make([]domain.Balance, 0, len(e.accounts))
	for _, acct := range e.accounts {
		balances = append(balances, acct.Balance())
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].ClientID < balances[j].ClientID
	})
	return balances
}

// Stats reports how many events were applied, dropped, and ignored.
type Stats struct {
	Processed uint64 `json:"processed"`
	Dropped   uint64 `json:"dropped"`
	Ignored   uint64 `json:"ignored"`
}

// Stats returns the per-run event counters.
func (e *Engine) Stats() Stats {
	return Stats{Processed: e.processed, Dropped: e.dropped, Ignored: e.ignored}
}
