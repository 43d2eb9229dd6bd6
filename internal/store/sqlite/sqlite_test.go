package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var due = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "payrecon.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func insertInvoice(t *testing.T, s store.Repository, inv models.Invoice) {
	t.Helper()
	if inv.Status == "" {
		inv.Status = models.StatusOpen
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = due
	}
	inv.CreatedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertInvoice(context.Background(), &inv))
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payrecon.db")
	s, err := Open(path)
	require.NoError(t, err)
	insertInvoice(t, s, models.Invoice{ID: "inv-1", TenantID: "acme", Sequence: 1, TotalAmount: 100, Reference: "R1"})
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	inv, err := s.GetInvoice(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), inv.TotalAmount)
}

func TestInvoices(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	insertInvoice(t, s, models.Invoice{ID: "inv-1", TenantID: "acme", Sequence: 1, TotalAmount: 5000, Reference: "R1"})
	insertInvoice(t, s, models.Invoice{ID: "inv-2", TenantID: "acme", Sequence: 2, TotalAmount: 5000, Reference: "R2",
		DueDate: due.AddDate(0, 0, 5), Status: models.StatusOverdue})
	insertInvoice(t, s, models.Invoice{ID: "inv-3", TenantID: "acme", Sequence: 3, TotalAmount: 7000, Reference: "R3",
		Status: models.StatusCancelled})
	insertInvoice(t, s, models.Invoice{ID: "inv-4", TenantID: "other", Sequence: 1, TotalAmount: 5000, Reference: "R1"})

	dup := models.Invoice{ID: "inv-5", TenantID: "acme", Reference: "R1", Status: models.StatusOpen, DueDate: due}
	assert.Error(t, s.InsertInvoice(ctx, &dup))

	got, err := s.GetInvoice(ctx, "inv-2")
	require.NoError(t, err)
	assert.Equal(t, due.AddDate(0, 0, 5), got.DueDate)
	assert.Equal(t, models.StatusOverdue, got.Status)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), got.CreatedAt)

	_, err = s.GetInvoice(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	tests := []struct {
		name     string
		filter   store.InvoiceFilter
		expected []string
	}{
		{name: "all", filter: store.InvoiceFilter{}, expected: []string{"inv-1", "inv-2", "inv-3"}},
		{name: "outstanding", filter: store.InvoiceFilter{Statuses: models.OutstandingStatuses}, expected: []string{"inv-1", "inv-2"}},
		{name: "total", filter: store.InvoiceFilter{Total: store.Int64(7000)}, expected: []string{"inv-3"}},
		{name: "due window", filter: store.InvoiceFilter{DueFrom: store.Time(due.AddDate(0, 0, -1)), DueTo: store.Time(due.AddDate(0, 0, 1))}, expected: []string{"inv-1", "inv-3"}},
		{name: "reference", filter: store.InvoiceFilter{Reference: models.StringPtr("R2")}, expected: []string{"inv-2"}},
		{name: "no hit", filter: store.InvoiceFilter{Reference: models.StringPtr("nope")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoices, err := s.FindInvoicesByTenant(ctx, "acme", tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, inv := range invoices {
				ids = append(ids, inv.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}

	require.NoError(t, s.UpdateInvoiceLedger(ctx, "inv-1", 2500, models.StatusPartialPaid))
	got, err = s.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), got.PaidAmount)
	assert.Equal(t, models.StatusPartialPaid, got.Status)
	assert.ErrorIs(t, s.UpdateInvoiceLedger(ctx, "missing", 0, models.StatusOpen), store.ErrNotFound)
}

func TestPayments(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	insertInvoice(t, s, models.Invoice{ID: "inv-1", TenantID: "acme", Sequence: 1, TotalAmount: 5000, Reference: "R1"})

	batch := "IMP-20240310T120000.000000000"
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p1 := models.Payment{ID: "p1", TenantID: "acme", Amount: 3000, ValueDate: due,
		Reference: models.StringPtr("R1"), Description: models.StringPtr("first"),
		Confidence: models.ConfidenceManual, ImportBatch: &batch, RawSource: "raw", CreatedAt: created}
	p2 := models.Payment{ID: "p2", TenantID: "acme", Amount: 2000, ValueDate: due,
		Confidence: models.ConfidenceManual, CreatedAt: created.Add(time.Second)}
	require.NoError(t, s.InsertPayment(ctx, &p1))
	require.NoError(t, s.InsertPayment(ctx, &p2))

	inconsistent := models.Payment{ID: "p3", TenantID: "acme", Amount: 1, ValueDate: due,
		Confidence: models.ConfidenceHigh, Matched: true, CreatedAt: created}
	assert.Error(t, s.InsertPayment(ctx, &inconsistent), "matched without invoice violates the check constraint")

	got, err := s.GetPayment(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "first", models.StringValue(got.Description))
	assert.Equal(t, batch, models.StringValue(got.ImportBatch))
	assert.Equal(t, "raw", got.RawSource)
	assert.Equal(t, due, got.ValueDate)
	assert.Nil(t, got.InvoiceID)
	assert.False(t, got.Matched)

	require.NoError(t, s.UpdatePaymentMatch(ctx, "p1", models.StringPtr("inv-1"), models.ConfidenceHigh))
	require.NoError(t, s.UpdatePaymentMatch(ctx, "p2", models.StringPtr("inv-1"), models.ConfidenceLow))
	assert.Error(t, s.UpdatePaymentMatch(ctx, "p2", models.StringPtr("missing"), models.ConfidenceLow))
	assert.ErrorIs(t, s.UpdatePaymentMatch(ctx, "missing", nil, models.ConfidenceManual), store.ErrNotFound)

	sum, err := s.SumMatchedPayments(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), sum)

	require.NoError(t, s.UpdatePaymentMatch(ctx, "p2", nil, models.ConfidenceManual))
	sum, err = s.SumMatchedPayments(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), sum)

	sum, err = s.SumMatchedPayments(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)

	got, err = s.GetPayment(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.Matched)
	assert.Equal(t, "inv-1", models.StringValue(got.InvoiceID))
	assert.Equal(t, models.ConfidenceHigh, got.Confidence)

	unmatched, err := s.ListPayments(ctx, "acme", store.PaymentFilter{Matched: store.Bool(false)})
	require.NoError(t, err)
	require.Len(t, unmatched, 1)
	assert.Equal(t, "p2", unmatched[0].ID)

	all, err := s.ListPayments(ctx, "acme", store.PaymentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p1", all[0].ID)

	inBatch, err := s.ListPayments(ctx, "acme", store.PaymentFilter{ImportBatch: &batch})
	require.NoError(t, err)
	require.Len(t, inBatch, 1)

	_, err = s.GetPayment(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithinTx(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	insertInvoice(t, s, models.Invoice{ID: "inv-1", TenantID: "acme", Sequence: 1, TotalAmount: 5000, Reference: "R1"})

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(repo store.Repository) error {
		require.NoError(t, repo.UpdateInvoiceLedger(ctx, "inv-1", 5000, models.StatusPaid))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	inv, err := s.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, inv.Status)

	err = s.WithinTx(ctx, func(repo store.Repository) error {
		return repo.UpdateInvoiceLedger(ctx, "inv-1", 5000, models.StatusPaid)
	})
	require.NoError(t, err)
	inv, err = s.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, inv.Status)
}

func TestNextInvoiceSequence_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	const workers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithinTx(ctx, func(repo store.Repository) error {
				seq, err := repo.NextInvoiceSequence(ctx, "acme")
				if err != nil {
					return err
				}
				mu.Lock()
				seen[seq] = true
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers)
	for i := int64(1); i <= workers; i++ {
		assert.True(t, seen[i], "sequence %d missing", i)
	}

	other, err := s.NextInvoiceSequence(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}
