// Package ledger keeps an invoice's paid amount and status in line with the
// payments matched to it. Both are always derived afresh from the matched
// payments, never adjusted incrementally.
package ledger

import (
	"context"
	"fmt"

	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/store"
)

// DeriveStatus returns the status an invoice in state current should have
// once paid of total has been received.
//
// DRAFT and CANCELLED are never changed. An OVERDUE invoice without any
// payment stays OVERDUE.
func DeriveStatus(current models.InvoiceStatus, total, paid int64) models.InvoiceStatus {
	if current == models.StatusDraft || current == models.StatusCancelled {
		return current
	}
	switch {
	case paid >= total:
		return models.StatusPaid
	case paid > 0:
		return models.StatusPartialPaid
	case current == models.StatusOverdue:
		return models.StatusOverdue
	default:
		return models.StatusOpen
	}
}

// Updater recomputes invoice ledgers.
type Updater struct {
	store  store.Store
	logger logging.Logger
}

// NewUpdater returns an Updater over s.
func NewUpdater(s store.Store, logger logging.Logger) *Updater {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Updater{store: s, logger: logger}
}

// Recompute re-derives the ledger of invoiceID in its own transaction.
func (u *Updater) Recompute(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	var out *models.Invoice
	err := u.store.WithinTx(ctx, func(repo store.Repository) error {
		inv, err := u.RecomputeIn(ctx, repo, invoiceID)
		out = inv
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecomputeIn re-derives the ledger of invoiceID through repo, for callers
// that already hold a transaction. Nothing is written when the ledger is
// already current.
func (u *Updater) RecomputeIn(ctx context.Context, repo store.Repository, invoiceID string) (*models.Invoice, error) {
	inv, err := repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("recompute ledger: %w", err)
	}
	paid, err := repo.SumMatchedPayments(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("recompute ledger of invoice %s: %w", invoiceID, err)
	}
	status := DeriveStatus(inv.Status, inv.TotalAmount, paid)

	if paid > 0 && !inv.Status.Issued() {
		u.logger.Warn("Payments are matched to an invoice that is not issued",
			logging.F(logging.FieldInvoice, invoiceID),
			logging.F(logging.FieldStatus, string(inv.Status)),
			logging.F(logging.FieldAmount, paid))
	}

	if paid == inv.PaidAmount && status == inv.Status {
		return inv, nil
	}
	if err := repo.UpdateInvoiceLedger(ctx, invoiceID, paid, status); err != nil {
		return nil, fmt.Errorf("recompute ledger of invoice %s: %w", invoiceID, err)
	}

	u.logger.Debug("Invoice ledger updated",
		logging.F(logging.FieldInvoice, invoiceID),
		logging.F(logging.FieldAmount, paid),
		logging.F(logging.FieldStatus, string(status)))

	inv.PaidAmount = paid
	inv.Status = status
	return inv, nil
}
