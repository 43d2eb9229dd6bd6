// Package store defines the persistence boundary of the reconciliation core.
// Implementations live in store/sqlite and store/memory.
package store

import (
	"context"
	"errors"
	"time"

	"fjacquet/payrecon/internal/models"
)

// ErrNotFound is returned (wrapped) when an invoice or payment id is unknown.
var ErrNotFound = errors.New("not found")

// InvoiceFilter narrows FindInvoicesByTenant. Zero fields do not filter.
type InvoiceFilter struct {
	Statuses []models.InvoiceStatus
	Total    *int64
	// DueFrom and DueTo bound the due date, both inclusive.
	DueFrom   *time.Time
	DueTo     *time.Time
	Reference *string
}

// PaymentFilter narrows ListPayments. Zero fields do not filter.
type PaymentFilter struct {
	Matched     *bool
	ImportBatch *string
}

// Repository is the set of queries and updates the core needs.
type Repository interface {
	FindInvoicesByTenant(ctx context.Context, tenantID string, filter InvoiceFilter) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	InsertInvoice(ctx context.Context, invoice *models.Invoice) error
	// UpdateInvoiceLedger overwrites the paid amount and status.
	UpdateInvoiceLedger(ctx context.Context, id string, paidAmount int64, status models.InvoiceStatus) error
	// SumMatchedPayments sums the amounts of payments matched to invoiceID.
	SumMatchedPayments(ctx context.Context, invoiceID string) (int64, error)

	InsertPayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	// UpdatePaymentMatch sets the matched invoice and confidence together.
	// A nil invoiceID unmatches the payment.
	UpdatePaymentMatch(ctx context.Context, id string, invoiceID *string, confidence models.Confidence) error
	ListPayments(ctx context.Context, tenantID string, filter PaymentFilter) ([]models.Payment, error)

	// NextInvoiceSequence atomically increments and returns the tenant's
	// invoice counter, starting at 1.
	NextInvoiceSequence(ctx context.Context, tenantID string) (int64, error)
}

// Store is a Repository that can run work in a transaction.
type Store interface {
	Repository

	// WithinTx runs fn in a write transaction. Transactions are serialised,
	// so read-then-write sequences inside fn do not race. The transaction
	// is rolled back when fn returns an error.
	WithinTx(ctx context.Context, fn func(repo Repository) error) error
	Close() error
}

// Int64 returns a pointer to v, for filters.
func Int64(v int64) *int64 {
	return &v
}

// Bool returns a pointer to v, for filters.
func Bool(v bool) *bool {
	return &v
}

// Time returns a pointer to v, for filters.
func Time(v time.Time) *time.Time {
	return &v
}

// Match reports whether invoice passes the filter. Stores that cannot
// push a criterion down to their backend use it.
func (f InvoiceFilter) Match(invoice models.Invoice) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, invoice.Status) {
		return false
	}
	if f.Total != nil && invoice.TotalAmount != *f.Total {
		return false
	}
	if f.DueFrom != nil && invoice.DueDate.Before(*f.DueFrom) {
		return false
	}
	if f.DueTo != nil && invoice.DueDate.After(*f.DueTo) {
		return false
	}
	if f.Reference != nil && invoice.Reference != *f.Reference {
		return false
	}
	return true
}

// Match reports whether payment passes the filter.
func (f PaymentFilter) Match(payment models.Payment) bool {
	if f.Matched != nil && payment.Matched != *f.Matched {
		return false
	}
	if f.ImportBatch != nil && models.StringValue(payment.ImportBatch) != *f.ImportBatch {
		return false
	}
	return true
}

func containsStatus(statuses []models.InvoiceStatus, s models.InvoiceStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
