// Package models defines the invoices, payments and statement records that
// flow through the reconciliation core. All amounts are integer minor units.
package models

import "time"

// Invoice is owned upstream; the reconciliation core reads it and maintains
// PaidAmount and Status.
type Invoice struct {
	ID          string        `json:"id" yaml:"id"`
	TenantID    string        `json:"tenantId" yaml:"tenant_id"`
	Sequence    int64         `json:"sequence" yaml:"sequence"`
	TotalAmount int64         `json:"totalAmount" yaml:"total_amount"`
	PaidAmount  int64         `json:"paidAmount" yaml:"paid_amount"`
	DueDate     time.Time     `json:"dueDate" yaml:"due_date"`
	Reference   string        `json:"reference" yaml:"reference"`
	Status      InvoiceStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time     `json:"createdAt" yaml:"created_at"`
}

// Outstanding returns the amount still expected, never negative.
func (i Invoice) Outstanding() int64 {
	if i.PaidAmount >= i.TotalAmount {
		return 0
	}
	return i.TotalAmount - i.PaidAmount
}
