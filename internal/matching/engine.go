// Package matching decides which invoice, if any, a payment settles.
//
// Tiers are tried in order and each fires only on a unique candidate:
//
//	HIGH    exact payment reference
//	MEDIUM  exact amount and due date within the date window
//	LOW     exact amount
//
// Anything else is MANUAL. Amount tiers only consider outstanding invoices
// (OPEN, PARTIAL_PAID, OVERDUE). The engine does no I/O.
package matching

import (
	"fjacquet/payrecon/internal/dateutils"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/textutils"
)

// DefaultDateWindowDays is the MEDIUM tier window on either side of the
// value date.
const DefaultDateWindowDays = 1

// Result is the outcome of matching one payment. Invoice is nil for MANUAL.
type Result struct {
	Invoice    *models.Invoice
	Confidence models.Confidence
}

// Matched reports whether an invoice was selected.
func (r Result) Matched() bool {
	return r.Invoice != nil
}

// Engine runs the tiers. The zero value uses a window of zero days.
type Engine struct {
	DateWindowDays int
}

// NewEngine returns an engine with the given window; negative values fall
// back to DefaultDateWindowDays.
func NewEngine(dateWindowDays int) *Engine {
	if dateWindowDays < 0 {
		dateWindowDays = DefaultDateWindowDays
	}
	return &Engine{DateWindowDays: dateWindowDays}
}

// Match selects an invoice for payment among invoices. Invoices of other
// tenants are ignored.
func (e *Engine) Match(payment models.Payment, invoices []models.Invoice) Result {
	if inv := e.byReference(payment, invoices); inv != nil {
		return Result{Invoice: inv, Confidence: models.ConfidenceHigh}
	}
	if inv := unique(invoices, func(inv *models.Invoice) bool {
		return e.amountCandidate(payment, inv) &&
			dateutils.WithinDays(inv.DueDate, payment.ValueDate, e.DateWindowDays)
	}); inv != nil {
		return Result{Invoice: inv, Confidence: models.ConfidenceMedium}
	}
	if inv := unique(invoices, func(inv *models.Invoice) bool {
		return e.amountCandidate(payment, inv)
	}); inv != nil {
		return Result{Invoice: inv, Confidence: models.ConfidenceLow}
	}
	return Result{Confidence: models.ConfidenceManual}
}

func (e *Engine) byReference(payment models.Payment, invoices []models.Invoice) *models.Invoice {
	if payment.Reference == nil {
		return nil
	}
	ref := textutils.StripWhitespace(*payment.Reference)
	if ref == "" {
		return nil
	}
	return unique(invoices, func(inv *models.Invoice) bool {
		return inv.TenantID == payment.TenantID &&
			inv.Status.Issued() &&
			textutils.StripWhitespace(inv.Reference) == ref
	})
}

func (e *Engine) amountCandidate(payment models.Payment, inv *models.Invoice) bool {
	return inv.TenantID == payment.TenantID &&
		inv.Status.Outstanding() &&
		inv.TotalAmount == payment.Amount
}

// unique returns the only invoice satisfying keep, or nil when there are
// none or several.
func unique(invoices []models.Invoice, keep func(*models.Invoice) bool) *models.Invoice {
	var found *models.Invoice
	for i := range invoices {
		inv := &invoices[i]
		if !keep(inv) {
			continue
		}
		if found != nil {
			return nil
		}
		found = inv
	}
	return found
}
