// Package invoicing issues invoices: it draws the tenant's next sequence
// number, derives the payment reference from it and stores the invoice as
// OPEN, all in one transaction.
package invoicing

import (
	"context"
	"fmt"
	"time"

	"fjacquet/payrecon/internal/dateutils"
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/parsererror"
	"fjacquet/payrecon/internal/reference"
	"fjacquet/payrecon/internal/store"

	"github.com/google/uuid"
)

// TenantLookup resolves a tenant's collection account.
type TenantLookup interface {
	Lookup(id string) (models.Tenant, bool)
}

// IssueRequest describes an invoice to issue. Style may be empty.
type IssueRequest struct {
	TenantID    string
	TotalAmount int64
	DueDate     time.Time
	Style       reference.Style
}

// Issuer creates invoices.
type Issuer struct {
	store        store.Store
	tenants      TenantLookup
	generator    *reference.Generator
	defaultStyle reference.Style
	logger       logging.Logger

	now   func() time.Time
	newID func() string
}

// NewIssuer returns an Issuer. tenants may be nil, in which case the style
// falls back to defaultStyle when the request does not set one.
func NewIssuer(s store.Store, tenants TenantLookup, defaultStyle reference.Style, logger logging.Logger) *Issuer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if defaultStyle == "" {
		defaultStyle = reference.StyleQRR
	}
	return &Issuer{
		store:        s,
		tenants:      tenants,
		generator:    reference.NewGenerator(),
		defaultStyle: defaultStyle,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// SetClock replaces the time source for creation timestamps.
func (i *Issuer) SetClock(now func() time.Time) {
	i.now = now
}

// Issue stores a new OPEN invoice with a zero paid amount. A failure leaves
// the tenant's sequence untouched.
func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (*models.Invoice, error) {
	if req.TenantID == "" {
		return nil, &parsererror.ValidationError{Field: "tenant", Reason: "is required"}
	}
	if req.TotalAmount <= 0 {
		return nil, &parsererror.ValidationError{Field: "totalAmount", Reason: fmt.Sprintf("must be positive, got %d", req.TotalAmount)}
	}
	if req.DueDate.IsZero() {
		return nil, &parsererror.ValidationError{Field: "dueDate", Reason: "is required"}
	}
	style := i.styleFor(req)

	var out *models.Invoice
	err := i.store.WithinTx(ctx, func(repo store.Repository) error {
		seq, err := repo.NextInvoiceSequence(ctx, req.TenantID)
		if err != nil {
			return fmt.Errorf("failed to draw invoice number: %w", err)
		}
		ref, err := i.generator.Generate(style, req.TenantID, seq)
		if err != nil {
			return err
		}
		inv := &models.Invoice{
			ID:          i.newID(),
			TenantID:    req.TenantID,
			Sequence:    seq,
			TotalAmount: req.TotalAmount,
			DueDate:     dateutils.DateOnly(req.DueDate),
			Reference:   ref,
			Status:      models.StatusOpen,
			CreatedAt:   i.now().UTC(),
		}
		if err := repo.InsertInvoice(ctx, inv); err != nil {
			return fmt.Errorf("failed to store invoice: %w", err)
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	i.logger.Info("Invoice issued",
		logging.F(logging.FieldTenant, out.TenantID),
		logging.F(logging.FieldInvoice, out.ID),
		logging.F(logging.FieldReference, out.Reference),
		logging.F(logging.FieldAmount, out.TotalAmount))
	return out, nil
}

func (i *Issuer) styleFor(req IssueRequest) reference.Style {
	if req.Style != "" {
		return req.Style
	}
	if i.tenants != nil {
		if t, ok := i.tenants.Lookup(req.TenantID); ok && t.IBAN != "" {
			return reference.StyleForIBAN(t.IBAN)
		}
	}
	return i.defaultStyle
}

// Cancel marks an invoice CANCELLED. Its paid amount is kept; payments
// already matched stay attached.
func (i *Issuer) Cancel(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	var out *models.Invoice
	err := i.store.WithinTx(ctx, func(repo store.Repository) error {
		inv, err := repo.GetInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == models.StatusCancelled {
			out = inv
			return nil
		}
		if err := repo.UpdateInvoiceLedger(ctx, inv.ID, inv.PaidAmount, models.StatusCancelled); err != nil {
			return err
		}
		inv.Status = models.StatusCancelled
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.PaidAmount > 0 {
		i.logger.Warn("Cancelled invoice has matched payments",
			logging.F(logging.FieldInvoice, out.ID),
			logging.F(logging.FieldAmount, out.PaidAmount))
	}
	return out, nil
}

// MarkOverdue moves the tenant's OPEN invoices due before asOf to OVERDUE
// and returns them. Partially paid invoices keep PARTIAL_PAID.
func (i *Issuer) MarkOverdue(ctx context.Context, tenantID string, asOf time.Time) ([]models.Invoice, error) {
	cutoff := dateutils.DateOnly(asOf).AddDate(0, 0, -1)
	var marked []models.Invoice
	err := i.store.WithinTx(ctx, func(repo store.Repository) error {
		due, err := repo.FindInvoicesByTenant(ctx, tenantID, store.InvoiceFilter{
			Statuses: []models.InvoiceStatus{models.StatusOpen},
			DueTo:    &cutoff,
		})
		if err != nil {
			return err
		}
		for _, inv := range due {
			if err := repo.UpdateInvoiceLedger(ctx, inv.ID, inv.PaidAmount, models.StatusOverdue); err != nil {
				return err
			}
			inv.Status = models.StatusOverdue
			marked = append(marked, inv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	i.logger.Info("Overdue invoices marked",
		logging.F(logging.FieldTenant, tenantID),
		logging.F(logging.FieldCount, len(marked)))
	return marked, nil
}

// List returns the tenant's invoices, optionally restricted to statuses.
func (i *Issuer) List(ctx context.Context, tenantID string, statuses ...models.InvoiceStatus) ([]models.Invoice, error) {
	return i.store.FindInvoicesByTenant(ctx, tenantID, store.InvoiceFilter{Statuses: statuses})
}
