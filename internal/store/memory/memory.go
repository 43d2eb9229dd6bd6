// Package memory is a Store kept in process memory. It backs tests and
// dry-run imports.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/store"
)

// Hooks lets tests inject persistence failures. A hook returning an error
// makes the corresponding operation fail without side effects.
type Hooks struct {
	BeforeInsertPayment func(p *models.Payment) error
	BeforeUpdateMatch   func(paymentID string) error
}

// Store is an in-memory store.Store.
type Store struct {
	// txMu serialises transactions; mu guards the maps.
	txMu sync.Mutex
	mu   sync.RWMutex
	data dataset

	Hooks Hooks
}

type dataset struct {
	invoices  map[string]models.Invoice
	payments  map[string]models.Payment
	sequences map[string]int64
}

var _ store.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{data: dataset{
		invoices:  make(map[string]models.Invoice),
		payments:  make(map[string]models.Payment),
		sequences: make(map[string]int64),
	}}
}

// WithinTx implements store.Store. Work is applied in place and undone from
// a snapshot when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(repo store.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (d dataset) clone() dataset {
	out := dataset{
		invoices:  make(map[string]models.Invoice, len(d.invoices)),
		payments:  make(map[string]models.Payment, len(d.payments)),
		sequences: make(map[string]int64, len(d.sequences)),
	}
	for k, v := range d.invoices {
		out.invoices[k] = v
	}
	for k, v := range d.payments {
		out.payments[k] = v
	}
	for k, v := range d.sequences {
		out.sequences[k] = v
	}
	return out
}

func (s *Store) FindInvoicesByTenant(_ context.Context, tenantID string, filter store.InvoiceFilter) ([]models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Invoice
	for _, inv := range s.data.invoices {
		if inv.TenantID == tenantID && filter.Match(inv) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetInvoice(_ context.Context, id string) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.data.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, store.ErrNotFound)
	}
	return &inv, nil
}

func (s *Store) InsertInvoice(_ context.Context, invoice *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.invoices[invoice.ID]; exists {
		return fmt.Errorf("invoice %s already exists", invoice.ID)
	}
	for _, other := range s.data.invoices {
		if invoice.Reference != "" && other.TenantID == invoice.TenantID && other.Reference == invoice.Reference {
			return fmt.Errorf("reference %s already used by invoice %s", invoice.Reference, other.ID)
		}
	}
	s.data.invoices[invoice.ID] = *invoice
	return nil
}

func (s *Store) UpdateInvoiceLedger(_ context.Context, id string, paidAmount int64, status models.InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.data.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %s: %w", id, store.ErrNotFound)
	}
	inv.PaidAmount = paidAmount
	inv.Status = status
	s.data.invoices[id] = inv
	return nil
}

func (s *Store) SumMatchedPayments(_ context.Context, invoiceID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, p := range s.data.payments {
		if p.Matched && p.InvoiceID != nil && *p.InvoiceID == invoiceID {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (s *Store) InsertPayment(_ context.Context, payment *models.Payment) error {
	if s.Hooks.BeforeInsertPayment != nil {
		if err := s.Hooks.BeforeInsertPayment(payment); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.payments[payment.ID]; exists {
		return fmt.Errorf("payment %s already exists", payment.ID)
	}
	if !payment.Consistent() {
		return fmt.Errorf("payment %s: matched flag and invoice id disagree", payment.ID)
	}
	if payment.InvoiceID != nil {
		if _, ok := s.data.invoices[*payment.InvoiceID]; !ok {
			return fmt.Errorf("invoice %s: %w", *payment.InvoiceID, store.ErrNotFound)
		}
	}
	s.data.payments[payment.ID] = clonePayment(*payment)
	return nil
}

func (s *Store) GetPayment(_ context.Context, id string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", id, store.ErrNotFound)
	}
	out := clonePayment(p)
	return &out, nil
}

func (s *Store) UpdatePaymentMatch(_ context.Context, id string, invoiceID *string, confidence models.Confidence) error {
	if s.Hooks.BeforeUpdateMatch != nil {
		if err := s.Hooks.BeforeUpdateMatch(id); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.payments[id]
	if !ok {
		return fmt.Errorf("payment %s: %w", id, store.ErrNotFound)
	}
	if invoiceID == nil {
		p.Unassign()
		p.Confidence = confidence
	} else {
		if _, ok := s.data.invoices[*invoiceID]; !ok {
			return fmt.Errorf("invoice %s: %w", *invoiceID, store.ErrNotFound)
		}
		p.AssignTo(*invoiceID, confidence)
	}
	s.data.payments[id] = p
	return nil
}

func (s *Store) ListPayments(_ context.Context, tenantID string, filter store.PaymentFilter) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Payment
	for _, p := range s.data.payments {
		if p.TenantID == tenantID && filter.Match(p) {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) NextInvoiceSequence(_ context.Context, tenantID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.sequences[tenantID]++
	return s.data.sequences[tenantID], nil
}

// clonePayment copies the pointer fields so callers cannot mutate stored
// state through them.
func clonePayment(p models.Payment) models.Payment {
	p.InvoiceID = copyString(p.InvoiceID)
	p.Reference = copyString(p.Reference)
	p.Description = copyString(p.Description)
	p.ImportBatch = copyString(p.ImportBatch)
	return p
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
