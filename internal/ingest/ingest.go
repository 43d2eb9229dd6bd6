// Package ingest turns submitted payments and parsed bank statements into
// stored payments, matches them to invoices and keeps invoice ledgers
// current.
//
// Every payment is handled in its own store transaction:
//
//	persist -> match -> (if matched) assign + recompute ledger
//
// so a failure on one payment never affects the others of a batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"fjacquet/payrecon/internal/dateutils"
	"fjacquet/payrecon/internal/ledger"
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/matching"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/parser"
	"fjacquet/payrecon/internal/parsererror"
	"fjacquet/payrecon/internal/store"
	"fjacquet/payrecon/internal/textutils"

	"github.com/google/uuid"
)

var (
	// ErrTenantMismatch is returned when a payment would be assigned to an
	// invoice of another tenant.
	ErrTenantMismatch = errors.New("payment and invoice belong to different tenants")
	// ErrInvoiceNotPayable is returned when the target invoice is DRAFT or
	// CANCELLED.
	ErrInvoiceNotPayable = errors.New("invoice does not accept payments")
)

// batchLayout formats import batch identifiers. It is fixed width so batch
// ids sort by creation time.
const batchLayout = "20060102T150405.000000000"

// PaymentInput is one payment as submitted by a caller or decoded from a
// statement.
type PaymentInput struct {
	Amount      int64     `json:"amount" yaml:"amount"`
	ValueDate   time.Time `json:"valueDate" yaml:"value_date"`
	Reference   *string   `json:"reference" yaml:"reference"`
	Description *string   `json:"description" yaml:"description"`
	RawSource   string    `json:"rawSource,omitempty" yaml:"raw_source,omitempty"`
}

// FromRecord converts a parsed statement record.
func FromRecord(rec models.StatementRecord) PaymentInput {
	return PaymentInput{
		Amount:      rec.Amount,
		ValueDate:   rec.ValueDate,
		Reference:   rec.Reference,
		Description: rec.Description,
		RawSource:   rec.Raw,
	}
}

// Validate checks the fields the pipeline relies on.
func (in PaymentInput) Validate() error {
	if in.Amount < 0 {
		return &parsererror.ValidationError{Field: "amount", Reason: fmt.Sprintf("must not be negative, got %d", in.Amount)}
	}
	if in.ValueDate.IsZero() {
		return &parsererror.ValidationError{Field: "valueDate", Reason: "is required"}
	}
	return nil
}

// Service runs the ingestion pipeline.
type Service struct {
	store   store.Store
	engine  *matching.Engine
	ledger  *ledger.Updater
	parsers *parser.Registry
	logger  logging.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires a Service. parsers may be nil when only generic payment
// lists are imported.
func NewService(s store.Store, engine *matching.Engine, parsers *parser.Registry, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if engine == nil {
		engine = matching.NewEngine(matching.DefaultDateWindowDays)
	}
	if parsers == nil {
		parsers = parser.NewRegistry()
	}
	return &Service{
		store:   s,
		engine:  engine,
		ledger:  ledger.NewUpdater(s, logger),
		parsers: parsers,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// SetClock replaces the time source used for batch ids and timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Ledger returns the ledger updater shared with the pipeline.
func (s *Service) Ledger() *ledger.Updater {
	return s.ledger
}

// NewBatchID returns an import batch identifier for the current instant.
func (s *Service) NewBatchID() string {
	return "IMP-" + s.now().UTC().Format(batchLayout)
}

// SubmitPayment stores a single manually entered payment and matches it.
// The payment carries no import batch.
func (s *Service) SubmitPayment(ctx context.Context, tenantID string, in PaymentInput) (*models.Payment, error) {
	p, err := s.ingest(ctx, tenantID, in, nil)
	if err != nil {
		s.logger.WithError(err).Error("Failed to submit payment",
			logging.F(logging.FieldTenant, tenantID))
		return nil, err
	}
	return p, nil
}

// ImportPayments stores and matches a list of payments under one new import
// batch. Payments that fail are reported in the summary's Errors with their
// 1-based position and do not stop the import. An error is returned only
// when ctx is done before the list is processed.
func (s *Service) ImportPayments(ctx context.Context, tenantID string, inputs []PaymentInput) (*models.ImportSummary, error) {
	return s.importRows(ctx, tenantID, len(inputs), func(i int) (PaymentInput, error) {
		return inputs[i], nil
	})
}

// ImportRequests behaves like ImportPayments for undecoded requests. A
// request that does not convert is reported at its row like any other
// failure.
func (s *Service) ImportRequests(ctx context.Context, tenantID string, requests []PaymentRequest) (*models.ImportSummary, error) {
	return s.importRows(ctx, tenantID, len(requests), func(i int) (PaymentInput, error) {
		return requests[i].Input()
	})
}

func (s *Service) importRows(ctx context.Context, tenantID string, n int, input func(i int) (PaymentInput, error)) (*models.ImportSummary, error) {
	batch := s.NewBatchID()
	summary := &models.ImportSummary{ImportBatch: batch, Errors: []models.RowError{}}

	for i := 0; i < n; i++ {
		row := i + 1
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("import %s interrupted at row %d: %w", batch, row, err)
		}

		in, err := input(i)
		var p *models.Payment
		if err == nil {
			p, err = s.ingest(ctx, tenantID, in, &batch)
		}
		if err != nil {
			s.logger.WithError(err).Error("Failed to import payment",
				logging.F(logging.FieldTenant, tenantID),
				logging.F(logging.FieldBatch, batch),
				logging.F(logging.FieldRow, row))
			summary.Errors = append(summary.Errors, models.RowError{Row: row, Message: err.Error()})
			continue
		}

		summary.Imported++
		if p.Matched {
			summary.AutomaticallyMatched++
		} else {
			summary.NeedsManualReview++
		}
	}

	s.logger.Info("Import finished",
		logging.F(logging.FieldTenant, tenantID),
		logging.F(logging.FieldBatch, batch),
		logging.F(logging.FieldCount, summary.Imported),
		logging.F("matched", summary.AutomaticallyMatched),
		logging.F("manual", summary.NeedsManualReview),
		logging.F("failed", len(summary.Errors)))
	return summary, nil
}

// ImportStatement parses r in the given format and imports the decoded
// records as one batch. Malformed records are dropped by the parser and
// never reach the summary.
func (s *Service) ImportStatement(ctx context.Context, tenantID string, format parser.Format, r io.Reader) (*models.ImportSummary, error) {
	p, err := s.parsers.Get(format)
	if err != nil {
		return nil, err
	}
	records, err := p.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s statement: %w", format, err)
	}

	s.logger.Debug("Statement parsed",
		logging.F(logging.FieldTenant, tenantID),
		logging.F(logging.FieldFormat, string(format)),
		logging.F(logging.FieldCount, len(records)))

	inputs := make([]PaymentInput, 0, len(records))
	for _, rec := range records {
		inputs = append(inputs, FromRecord(rec))
	}
	return s.ImportPayments(ctx, tenantID, inputs)
}

// ingest persists one payment and, when the engine finds an invoice,
// assigns it and recomputes that invoice, all in one transaction.
func (s *Service) ingest(ctx context.Context, tenantID string, in PaymentInput, batch *string) (*models.Payment, error) {
	if tenantID == "" {
		return nil, &parsererror.ValidationError{Field: "tenant", Reason: "is required"}
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	payment := models.Payment{
		ID:          s.newID(),
		TenantID:    tenantID,
		Amount:      in.Amount,
		ValueDate:   dateutils.DateOnly(in.ValueDate),
		Reference:   nonBlank(in.Reference),
		Description: nonBlank(in.Description),
		Confidence:  models.ConfidenceManual,
		ImportBatch: batch,
		RawSource:   in.RawSource,
		CreatedAt:   s.now().UTC(),
	}

	err := s.store.WithinTx(ctx, func(repo store.Repository) error {
		if err := repo.InsertPayment(ctx, &payment); err != nil {
			return fmt.Errorf("failed to store payment: %w", err)
		}
		_, err := s.matchIn(ctx, repo, &payment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// matchIn runs the engine for an unmatched payment and applies the result.
// The payment is updated in place.
func (s *Service) matchIn(ctx context.Context, repo store.Repository, payment *models.Payment) (matching.Result, error) {
	candidates, err := Candidates(ctx, repo, *payment)
	if err != nil {
		return matching.Result{}, err
	}
	result := s.engine.Match(*payment, candidates)
	if !result.Matched() {
		s.logger.Debug("Payment left for manual review",
			logging.F(logging.FieldPayment, payment.ID),
			logging.F(logging.FieldAmount, payment.Amount))
		return result, nil
	}

	invoiceID := result.Invoice.ID
	if err := repo.UpdatePaymentMatch(ctx, payment.ID, &invoiceID, result.Confidence); err != nil {
		return result, fmt.Errorf("failed to assign payment %s: %w", payment.ID, err)
	}
	payment.AssignTo(invoiceID, result.Confidence)

	if _, err := s.ledger.RecomputeIn(ctx, repo, invoiceID); err != nil {
		return result, err
	}

	s.logger.Info("Payment matched",
		logging.F(logging.FieldPayment, payment.ID),
		logging.F(logging.FieldInvoice, invoiceID),
		logging.F(logging.FieldConfidence, string(result.Confidence)))
	return result, nil
}

// Candidates loads the invoices the engine may pick for payment: those
// carrying its reference and the outstanding ones with its amount.
func Candidates(ctx context.Context, repo store.Repository, payment models.Payment) ([]models.Invoice, error) {
	var out []models.Invoice
	seen := make(map[string]bool)
	add := func(invoices []models.Invoice) {
		for _, inv := range invoices {
			if !seen[inv.ID] {
				seen[inv.ID] = true
				out = append(out, inv)
			}
		}
	}

	if ref := textutils.StripWhitespace(models.StringValue(payment.Reference)); ref != "" {
		byRef, err := repo.FindInvoicesByTenant(ctx, payment.TenantID, store.InvoiceFilter{
			Statuses:  models.IssuedStatuses,
			Reference: &ref,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load invoices by reference: %w", err)
		}
		add(byRef)
	}

	byAmount, err := repo.FindInvoicesByTenant(ctx, payment.TenantID, store.InvoiceFilter{
		Statuses: models.OutstandingStatuses,
		Total:    store.Int64(payment.Amount),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices by amount: %w", err)
	}
	add(byAmount)
	return out, nil
}

// nonBlank keeps s verbatim unless it holds only whitespace.
func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}
