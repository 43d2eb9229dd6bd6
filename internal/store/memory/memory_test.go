package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, inv := range []models.Invoice{
		{ID: "inv-1", TenantID: "acme", Sequence: 1, TotalAmount: 10000, DueDate: due, Reference: "REF1", Status: models.StatusOpen},
		{ID: "inv-2", TenantID: "acme", Sequence: 2, TotalAmount: 5000, DueDate: due, Reference: "REF2", Status: models.StatusPaid},
		{ID: "inv-3", TenantID: "other", Sequence: 1, TotalAmount: 10000, DueDate: due, Reference: "REF1", Status: models.StatusOpen},
	} {
		inv := inv
		require.NoError(t, s.InsertInvoice(ctx, &inv))
	}
}

func TestStore_Invoices(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s)

	all, err := s.FindInvoicesByTenant(ctx, "acme", store.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "inv-1", all[0].ID)

	open, err := s.FindInvoicesByTenant(ctx, "acme", store.InvoiceFilter{Statuses: models.OutstandingStatuses})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "inv-1", open[0].ID)

	dup := models.Invoice{ID: "inv-4", TenantID: "acme", Reference: "REF1"}
	assert.Error(t, s.InsertInvoice(ctx, &dup))

	_, err = s.GetInvoice(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.UpdateInvoiceLedger(ctx, "inv-1", 400, models.StatusPartialPaid))
	inv, err := s.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(400), inv.PaidAmount)
	assert.Equal(t, models.StatusPartialPaid, inv.Status)
	assert.ErrorIs(t, s.UpdateInvoiceLedger(ctx, "missing", 0, models.StatusOpen), store.ErrNotFound)
}

func TestStore_PaymentsAndSums(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s)

	batch := "IMP-1"
	p1 := models.Payment{ID: "p1", TenantID: "acme", Amount: 3000, Confidence: models.ConfidenceManual, ImportBatch: &batch}
	p2 := models.Payment{ID: "p2", TenantID: "acme", Amount: 2000, Reference: models.StringPtr("R2"), Confidence: models.ConfidenceManual}
	require.NoError(t, s.InsertPayment(ctx, &p1))
	require.NoError(t, s.InsertPayment(ctx, &p2))

	bad := models.Payment{ID: "p3", TenantID: "acme", Matched: true}
	assert.Error(t, s.InsertPayment(ctx, &bad))

	require.NoError(t, s.UpdatePaymentMatch(ctx, "p1", models.StringPtr("inv-1"), models.ConfidenceHigh))
	require.NoError(t, s.UpdatePaymentMatch(ctx, "p2", models.StringPtr("inv-1"), models.ConfidenceLow))
	assert.ErrorIs(t, s.UpdatePaymentMatch(ctx, "p2", models.StringPtr("missing"), models.ConfidenceLow), store.ErrNotFound)
	assert.ErrorIs(t, s.UpdatePaymentMatch(ctx, "missing", nil, models.ConfidenceManual), store.ErrNotFound)

	sum, err := s.SumMatchedPayments(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), sum)

	require.NoError(t, s.UpdatePaymentMatch(ctx, "p2", nil, models.ConfidenceManual))
	got, err := s.GetPayment(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, got.Matched)
	assert.Nil(t, got.InvoiceID)
	assert.Equal(t, models.ConfidenceManual, got.Confidence)

	sum, err = s.SumMatchedPayments(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), sum)

	unmatched, err := s.ListPayments(ctx, "acme", store.PaymentFilter{Matched: store.Bool(false)})
	require.NoError(t, err)
	require.Len(t, unmatched, 1)
	assert.Equal(t, "p2", unmatched[0].ID)

	inBatch, err := s.ListPayments(ctx, "acme", store.PaymentFilter{ImportBatch: &batch})
	require.NoError(t, err)
	require.Len(t, inBatch, 1)
	assert.Equal(t, "p1", inBatch[0].ID)

	// returned copies are detached from stored state
	*got.Reference = "x"
	again, err := s.GetPayment(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "R2", models.StringValue(again.Reference))
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(repo store.Repository) error {
		p := models.Payment{ID: "p1", TenantID: "acme", Amount: 100, Confidence: models.ConfidenceManual}
		require.NoError(t, repo.InsertPayment(ctx, &p))
		require.NoError(t, repo.UpdateInvoiceLedger(ctx, "inv-1", 100, models.StatusPartialPaid))
		_, err := repo.NextInvoiceSequence(ctx, "acme")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetPayment(ctx, "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	inv, err := s.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), inv.PaidAmount)
	assert.Equal(t, models.StatusOpen, inv.Status)

	seq, err := s.NextInvoiceSequence(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

func TestStore_WithinTxCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := New().WithinTx(ctx, func(store.Repository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_NextInvoiceSequenceConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	const workers = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.NextInvoiceSequence(ctx, "acme")
			assert.NoError(t, err)
			mu.Lock()
			seen[seq] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers)
	for i := int64(1); i <= workers; i++ {
		assert.True(t, seen[i], "sequence %d missing", i)
	}
}

func TestStore_Hooks(t *testing.T) {
	ctx := context.Background()
	s := New()
	fail := errors.New("disk full")
	s.Hooks.BeforeInsertPayment = func(p *models.Payment) error {
		if p.ID == "p2" {
			return fail
		}
		return nil
	}

	p1 := models.Payment{ID: "p1", TenantID: "acme", Confidence: models.ConfidenceManual}
	p2 := models.Payment{ID: "p2", TenantID: "acme", Confidence: models.ConfidenceManual}
	require.NoError(t, s.InsertPayment(ctx, &p1))
	assert.ErrorIs(t, s.InsertPayment(ctx, &p2), fail)

	all, err := s.ListPayments(ctx, "acme", store.PaymentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
