package ingest

import (
	"context"
	"fmt"

	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/store"
)

// AutoMatch runs the engine over every unmatched payment of tenantID.
// Results lists one outcome per payment processed, in creation order;
// payments that fail are logged and left out.
func (s *Service) AutoMatch(ctx context.Context, tenantID string) (*models.AutoMatchResult, error) {
	pending, err := s.store.ListPayments(ctx, tenantID, store.PaymentFilter{Matched: store.Bool(false)})
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched payments: %w", err)
	}

	result := &models.AutoMatchResult{Results: make([]models.MatchOutcome, 0, len(pending))}
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome, err := s.autoMatchOne(ctx, p.ID)
		if err != nil {
			s.logger.WithError(err).Error("Auto-match failed for payment",
				logging.F(logging.FieldTenant, tenantID),
				logging.F(logging.FieldPayment, p.ID))
			continue
		}
		result.TotalProcessed++
		if outcome.InvoiceID != nil {
			result.MatchedCount++
		}
		result.Results = append(result.Results, outcome)
	}

	s.logger.Info("Auto-match finished",
		logging.F(logging.FieldTenant, tenantID),
		logging.F(logging.FieldCount, result.TotalProcessed),
		logging.F("matched", result.MatchedCount))
	return result, nil
}

func (s *Service) autoMatchOne(ctx context.Context, paymentID string) (models.MatchOutcome, error) {
	var outcome models.MatchOutcome
	err := s.store.WithinTx(ctx, func(repo store.Repository) error {
		// Reload inside the transaction: an operator may have assigned it
		// since the list was read.
		p, err := repo.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Matched {
			outcome = models.MatchOutcome{PaymentID: p.ID, InvoiceID: p.InvoiceID, Confidence: p.Confidence}
			return nil
		}
		res, err := s.matchIn(ctx, repo, p)
		if err != nil {
			return err
		}
		outcome = models.MatchOutcome{PaymentID: p.ID, Confidence: res.Confidence}
		if res.Matched() {
			id := res.Invoice.ID
			outcome.InvoiceID = &id
		}
		return nil
	})
	return outcome, err
}

// Rematch lets an operator assign paymentID to invoiceID, or unmatch it
// when invoiceID is nil. Assignments carry MANUAL confidence. The ledgers of
// both the previous and the new invoice are recomputed in the same
// transaction.
func (s *Service) Rematch(ctx context.Context, paymentID string, invoiceID *string) (*models.Payment, error) {
	var out *models.Payment
	err := s.store.WithinTx(ctx, func(repo store.Repository) error {
		p, err := repo.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}

		if invoiceID != nil {
			inv, err := repo.GetInvoice(ctx, *invoiceID)
			if err != nil {
				return err
			}
			if inv.TenantID != p.TenantID {
				return fmt.Errorf("payment %s, invoice %s: %w", p.ID, inv.ID, ErrTenantMismatch)
			}
			if !inv.Status.Issued() {
				return fmt.Errorf("invoice %s is %s: %w", inv.ID, inv.Status, ErrInvoiceNotPayable)
			}
		}

		previous := p.InvoiceID
		if err := repo.UpdatePaymentMatch(ctx, p.ID, invoiceID, models.ConfidenceManual); err != nil {
			return fmt.Errorf("failed to update payment %s: %w", p.ID, err)
		}
		if invoiceID != nil {
			p.AssignTo(*invoiceID, models.ConfidenceManual)
		} else {
			p.Unassign()
		}

		if previous != nil && (invoiceID == nil || *previous != *invoiceID) {
			if _, err := s.ledger.RecomputeIn(ctx, repo, *previous); err != nil {
				return err
			}
		}
		if invoiceID != nil {
			if _, err := s.ledger.RecomputeIn(ctx, repo, *invoiceID); err != nil {
				return err
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment re-matched",
		logging.F(logging.FieldPayment, paymentID),
		logging.F(logging.FieldInvoice, models.StringValue(invoiceID)))
	return out, nil
}
