// Package csvio reads the ledger event stream from CSV and renders the
// final balance report back to CSV. It is the boundary collaborator of
// the engine: rows are validated into well-typed events here, and
// malformed rows are reported per row so the run can continue.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ledger-replay-engine/internal/core/domain"
	"ledger-replay-engine/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Input column order: type, client, tx, amount. The amount column is
// absent or empty on dispute/resolve/chargeback rows.
const expectedHeader = "type,client,tx,amount"

// Reader yields one validated event per CSV row.
type Reader struct {
	csv        *csv.Reader
	headerSeen bool
}

// NewReader wraps r. Fields are trimmed and rows may omit the amount
// column, matching the original interchange format.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // amount column is optional
	return &Reader{csv: cr}
}

// Read returns the next event. io.EOF signals a cleanly exhausted
// stream. Any other error is either fatal (underlying reader failed) or
// an apperror.ErrMalformedEvent for this row only; callers drop the row
// and keep reading.
func (r *Reader) Read() (*domain.Event, error) {
	for {
		row, err := r.csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			if _, ok := err.(*csv.ParseError); ok {
				return nil, apperror.ErrMalformedEvent(err)
			}
			return nil, err
		}

		// Skip the header row once.
		if !r.headerSeen {
			r.headerSeen = true
			if isHeader(row) {
				continue
			}
		}

		return parseRow(row)
	}
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(row[0]), "type")
}

func parseRow(row []string) (*domain.Event, error) {
	if len(row) < 3 {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("expected at least 3 columns (%s), got %d", expectedHeader, len(row)))
	}

	evType := domain.EventType(strings.ToLower(strings.TrimSpace(row[0])))
	if !evType.Valid() {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("unknown event type %q", row[0]))
	}

	client, err := strconv.ParseUint(strings.TrimSpace(row[1]), 10, 16)
	if err != nil {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("client id %q: %w", row[1], err))
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(row[2]), 10, 32)
	if err != nil {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("tx id %q: %w", row[2], err))
	}

	ev := &domain.Event{
		Type:     evType,
		ClientID: domain.ClientID(client),
		TxID:     domain.TransactionID(tx),
	}

	rawAmount := ""
	if len(row) > 3 {
		rawAmount = strings.TrimSpace(row[3])
	}

	if !evType.HasAmount() {
		if rawAmount != "" {
			return nil, apperror.ErrMalformedEvent(fmt.Errorf("%s events carry no amount", evType))
		}
		return ev, nil
	}

	if rawAmount == "" {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("%s events require an amount", evType))
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("amount %q: %w", rawAmount, err))
	}
	if amount.IsNegative() {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("amount %q is negative", rawAmount))
	}
	if !amount.Equal(amount.Round(domain.MaxAmountPlaces)) {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("amount %q exceeds %d decimal places", rawAmount, domain.MaxAmountPlaces))
	}

	ev.Amount = amount
	return ev, nil
}
