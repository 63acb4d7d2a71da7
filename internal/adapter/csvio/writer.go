package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"ledger-replay-engine/internal/core/domain"
)

// Output column order, each monetary field rendered with exactly 4
// fractional digits.
var outputHeader = []string{"client", "available", "held", "total", "locked"}

// WriteReport renders the finalized balances as CSV.
func WriteReport(w io.Writer, balances []domain.Balance) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(outputHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, b := range balances {
		row := []string{
			strconv.FormatUint(uint64(b.ClientID), 10),
			b.Available.StringFixed(4),
			b.Held.StringFixed(4),
			b.Total().StringFixed(4),
			strconv.FormatBool(b.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write report row for client %d: %w", b.ClientID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
