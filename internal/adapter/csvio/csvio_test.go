package csvio

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"ledger-replay-engine/internal/core/domain"
	"ledger-replay-engine/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) ([]domain.Event, []error) {
	t.Helper()
	r := NewReader(strings.NewReader(input))

	var events []domain.Event
	var errs []error
	for {
		ev, err := r.Read()
		if err == io.EOF {
			return events, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, *ev)
	}
}

func TestReader_ParsesAllEventKinds(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 10.0\n" +
		"withdrawal, 1, 2, 5.5\n" +
		"dispute, 1, 1\n" +
		"resolve, 1, 1\n" +
		"chargeback, 1, 1\n"

	events, errs := readAll(t, input)
	require.Empty(t, errs)
	require.Len(t, events, 5)

	assert.Equal(t, domain.EventDeposit, events[0].Type)
	assert.True(t, events[0].Amount.Equal(decimal.RequireFromString("10.0")))
	assert.Equal(t, domain.ClientID(1), events[0].ClientID)
	assert.Equal(t, domain.TransactionID(1), events[0].TxID)

	assert.Equal(t, domain.EventWithdrawal, events[1].Type)
	assert.Equal(t, domain.EventDispute, events[2].Type)
	assert.Equal(t, domain.EventResolve, events[3].Type)
	assert.Equal(t, domain.EventChargeback, events[4].Type)
}

func TestReader_TrimsAndIsCaseInsensitiveOnType(t *testing.T) {
	events, errs := readAll(t, "type,client,tx,amount\n  Deposit ,  2 ,  7 ,  1.5 \n")
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDeposit, events[0].Type)
	assert.Equal(t, domain.ClientID(2), events[0].ClientID)
}

func TestReader_DisputeRowWithEmptyAmountColumn(t *testing.T) {
	// Some producers emit a trailing empty amount column instead of
	// omitting it.
	events, errs := readAll(t, "type,client,tx,amount\ndispute,1,1,\n")
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDispute, events[0].Type)
}

func TestReader_MalformedRowsAreRowLocal(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,10.0\n" +
		"transfer,1,2,1.0\n" + // unknown type
		"deposit,notanumber,3,1.0\n" + // bad client id
		"deposit,1,4,\n" + // missing required amount
		"deposit,1,5,-2.0\n" + // negative amount
		"deposit,1,6,1.23456\n" + // too many decimal places
		"dispute,1,1,9.0\n" + // dispute must not carry an amount
		"deposit,1,7,2.0\n"

	events, errs := readAll(t, input)
	require.Len(t, events, 2, "good rows before and after bad ones still parse")
	assert.Equal(t, domain.TransactionID(1), events[0].TxID)
	assert.Equal(t, domain.TransactionID(7), events[1].TxID)

	require.Len(t, errs, 6)
	for _, err := range errs {
		assert.Equal(t, "LED_008", apperror.Code(err))
	}
}

func TestReader_ClientIDRange(t *testing.T) {
	// 65535 is the top of the u16 range; 65536 is out.
	events, errs := readAll(t, "type,client,tx,amount\ndeposit,65535,1,1.0\ndeposit,65536,2,1.0\n")
	require.Len(t, events, 1)
	assert.Equal(t, domain.ClientID(65535), events[0].ClientID)
	require.Len(t, errs, 1)
}

func TestReader_NoHeader(t *testing.T) {
	// Streams without a header row are accepted: the first row is data.
	events, errs := readAll(t, "deposit,1,1,3.0\n")
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.True(t, events[0].Amount.Equal(decimal.RequireFromString("3.0")))
}

func TestReader_FourDecimalPlacesAccepted(t *testing.T) {
	events, errs := readAll(t, "type,client,tx,amount\ndeposit,1,1,0.0001\n")
	require.Empty(t, errs)
	require.Len(t, events, 1)
	assert.True(t, events[0].Amount.Equal(decimal.RequireFromString("0.0001")))
}

func TestWriteReport(t *testing.T) {
	balances := []domain.Balance{
		{ClientID: 1, Available: decimal.RequireFromString("5"), Held: decimal.Zero, Locked: false},
		{ClientID: 2, Available: decimal.RequireFromString("-8"), Held: decimal.RequireFromString("10"), Locked: false},
		{ClientID: 3, Available: decimal.Zero, Held: decimal.Zero, Locked: true},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, balances))

	expected := "client,available,held,total,locked\n" +
		"1,5.0000,0.0000,5.0000,false\n" +
		"2,-8.0000,10.0000,2.0000,false\n" +
		"3,0.0000,0.0000,0.0000,true\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteReport_EmptyBalances(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}
