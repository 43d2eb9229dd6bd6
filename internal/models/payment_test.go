package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayment_AssignAndUnassignKeepInvariant(t *testing.T) {
	p := Payment{ID: "p1", Confidence: ConfidenceManual}
	assert.True(t, p.Consistent())

	p.AssignTo("inv-1", ConfidenceHigh)
	require.NotNil(t, p.InvoiceID)
	assert.Equal(t, "inv-1", *p.InvoiceID)
	assert.True(t, p.Matched)
	assert.Equal(t, ConfidenceHigh, p.Confidence)
	assert.True(t, p.Consistent())

	p.Unassign()
	assert.Nil(t, p.InvoiceID)
	assert.False(t, p.Matched)
	assert.Equal(t, ConfidenceManual, p.Confidence)
	assert.True(t, p.Consistent())
}

func TestPayment_Consistent(t *testing.T) {
	id := "inv"
	assert.False(t, Payment{Matched: true}.Consistent())
	assert.False(t, Payment{InvoiceID: &id}.Consistent())
}

func TestInvoiceStatusPredicates(t *testing.T) {
	tests := []struct {
		status      InvoiceStatus
		outstanding bool
		issued      bool
	}{
		{StatusDraft, false, false},
		{StatusOpen, true, true},
		{StatusPartialPaid, true, true},
		{StatusPaid, false, true},
		{StatusOverdue, true, true},
		{StatusCancelled, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.True(t, tt.status.Valid())
			assert.Equal(t, tt.outstanding, tt.status.Outstanding())
			assert.Equal(t, tt.issued, tt.status.Issued())
		})
	}
	assert.False(t, InvoiceStatus("VOID").Valid())
}

func TestInvoice_Outstanding(t *testing.T) {
	assert.Equal(t, int64(4000), Invoice{TotalAmount: 10000, PaidAmount: 6000}.Outstanding())
	assert.Equal(t, int64(0), Invoice{TotalAmount: 10000, PaidAmount: 12000}.Outstanding())
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	require.NotNil(t, StringPtr("x"))
	assert.Equal(t, "x", StringValue(StringPtr("x")))
	assert.Equal(t, "", StringValue(nil))
}

func TestEntryDate_Date(t *testing.T) {
	assert.Equal(t, "2024-03-10", EntryDate{Dt: "2024-03-10"}.Date())
	assert.Equal(t, "2024-03-11", EntryDate{DtTm: "2024-03-11T08:00:00"}.Date())
	assert.Equal(t, "", EntryDate{}.Date())
}
