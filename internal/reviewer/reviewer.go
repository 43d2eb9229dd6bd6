// Package reviewer builds the operator work list of payments waiting for a
// manual decision.
package reviewer

import (
	"context"
	"fmt"

	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/store"
	"fjacquet/payrecon/internal/suggest"
)

// Item is one unmatched payment with what is known about it.
type Item struct {
	Payment models.Payment `json:"payment" yaml:"payment"`
	Hints   []suggest.Hint `json:"hints" yaml:"hints"`
	Advice  string         `json:"advice,omitempty" yaml:"advice,omitempty"`
}

// Report is the review list of one tenant.
type Report struct {
	TenantID string `json:"tenantId" yaml:"tenant_id"`
	Pending  int    `json:"pending" yaml:"pending"`
	Items    []Item `json:"items" yaml:"items"`
}

// Reviewer assembles review reports.
type Reviewer struct {
	repo        store.Repository
	advisor     suggest.Advisor
	maxDistance int
	logger      logging.Logger
}

// NewReviewer returns a Reviewer. advisor may be nil.
func NewReviewer(repo store.Repository, advisor suggest.Advisor, maxDistance int, logger logging.Logger) *Reviewer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Reviewer{
		repo:        repo,
		advisor:     advisor,
		maxDistance: maxDistance,
		logger:      logger.WithField("component", "Reviewer"),
	}
}

// Review lists the tenant's unmatched payments with near-reference and
// amount hints, plus advisor output when an advisor is configured. An
// advisor failure only drops the advice of that payment.
func (r *Reviewer) Review(ctx context.Context, tenantID string) (*Report, error) {
	pending, err := r.repo.ListPayments(ctx, tenantID, store.PaymentFilter{Matched: store.Bool(false)})
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched payments: %w", err)
	}
	invoices, err := r.repo.FindInvoicesByTenant(ctx, tenantID, store.InvoiceFilter{Statuses: models.IssuedStatuses})
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	report := &Report{TenantID: tenantID, Pending: len(pending), Items: make([]Item, 0, len(pending))}
	for _, p := range pending {
		item := Item{Payment: p}
		item.Hints = append(item.Hints, suggest.NearReferenceHints(p, invoices, r.maxDistance)...)
		item.Hints = append(item.Hints, suggest.AmountHints(p, invoices)...)

		if r.advisor != nil {
			advice, err := r.advisor.Advise(ctx, p, invoices)
			if err != nil {
				r.logger.WithError(err).Warn("Advisor failed",
					logging.F(logging.FieldPayment, p.ID))
			} else {
				item.Advice = advice
			}
		}
		report.Items = append(report.Items, item)
	}

	r.logger.Debug("Review prepared",
		logging.F(logging.FieldTenant, tenantID),
		logging.F(logging.FieldCount, report.Pending))
	return report, nil
}
