package report

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khata-dev/khata/internal/model"
)

func TestOutstanding_Receivable(t *testing.T) {
	var b entryBuilder
	b.add(uuid.New(), customer.ID, date(2025, 4, 2), "5000", "0")
	b.add(uuid.New(), customer.ID, date(2025, 4, 9), "0", "2000")

	rep := ComputeOutstanding([]model.Account{customer, supplier, bank}, b.entries)

	require.Len(t, rep.Receivables, 1)
	assert.Equal(t, customer.ID, rep.Receivables[0].AccountID)
	assert.True(t, rep.Receivables[0].Balance.Equal(dec("3000")))
	assert.Empty(t, rep.Payables, "supplier has a zero balance")
	assert.True(t, rep.TotalReceivable.Equal(dec("3000")))
	assert.True(t, rep.NetPosition.Equal(dec("3000")))
}

func TestOutstanding_Payable(t *testing.T) {
	rep := ComputeOutstanding(allAccounts(), sampleEntries()[:6])

	require.Len(t, rep.Payables, 1)
	assert.Equal(t, supplier.ID, rep.Payables[0].AccountID)
	assert.True(t, rep.Payables[0].Balance.Equal(dec("590")), "magnitude, not signed")
	assert.Equal(t, "27AABCA1234B1Z1", rep.Payables[0].TaxNumber)

	require.Len(t, rep.Receivables, 1)
	assert.True(t, rep.TotalReceivable.Equal(dec("1180")))
	assert.True(t, rep.TotalPayable.Equal(dec("590")))
	assert.True(t, rep.NetPosition.Equal(dec("590")))
}

func TestOutstanding_SettledPartyExcluded(t *testing.T) {
	rep := ComputeOutstanding(allAccounts(), sampleEntries())
	assert.Empty(t, rep.Payables, "supplier was paid in full")
	require.Len(t, rep.Receivables, 1)
}

func TestOutstanding_OpeningBalance(t *testing.T) {
	owed := supplier
	owed.OpeningBalance = dec("-250")
	rep := ComputeOutstanding([]model.Account{owed}, nil)
	require.Len(t, rep.Payables, 1)
	assert.True(t, rep.Payables[0].Balance.Equal(dec("250")))
	assert.True(t, rep.NetPosition.Equal(dec("-250")))
}

func TestOutstanding_IgnoresNonParties(t *testing.T) {
	rep := ComputeOutstanding([]model.Account{bank}, sampleEntries())
	assert.Empty(t, rep.Receivables)
	assert.Empty(t, rep.Payables)
	assert.True(t, rep.NetPosition.IsZero())
}
