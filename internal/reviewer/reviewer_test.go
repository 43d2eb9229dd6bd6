package reviewer

import (
	"context"
	"errors"
	"testing"
	"time"

	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/store/memory"
	"fjacquet/payrecon/internal/suggest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAdvisor struct {
	calls int
	err   error
}

func (m *mockAdvisor) Advise(_ context.Context, p models.Payment, _ []models.Invoice) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "Invoice: NONE for " + p.ID, nil
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, inv := range []models.Invoice{
		{ID: "a", TenantID: "acme", Sequence: 1, TotalAmount: 5000, DueDate: due, Reference: "RF18539007547034", Status: models.StatusOpen},
		{ID: "b", TenantID: "acme", Sequence: 2, TotalAmount: 5000, DueDate: due, Reference: "RF712348231", Status: models.StatusOpen},
	} {
		inv := inv
		require.NoError(t, s.InsertInvoice(ctx, &inv))
	}
	matched := models.Payment{ID: "m", TenantID: "acme", Amount: 5000, ValueDate: due}
	matched.AssignTo("a", models.ConfidenceHigh)
	require.NoError(t, s.InsertPayment(ctx, &matched))
	require.NoError(t, s.InsertPayment(ctx, &models.Payment{
		ID: "u", TenantID: "acme", Amount: 5000, ValueDate: due,
		Reference: models.StringPtr("RF18539007547035"), Confidence: models.ConfidenceManual,
	}))
	return s
}

func TestReview(t *testing.T) {
	advisor := &mockAdvisor{}
	r := NewReviewer(seedStore(t), advisor, 2, logging.NewMockLogger())

	report, err := r.Review(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", report.TenantID)
	assert.Equal(t, 1, report.Pending)
	require.Len(t, report.Items, 1)

	item := report.Items[0]
	assert.Equal(t, "u", item.Payment.ID)
	require.Len(t, item.Hints, 3)
	assert.Equal(t, suggest.Hint{InvoiceID: "a", Reference: "RF18539007547034", Kind: suggest.KindReference, Distance: 1}, item.Hints[0])
	assert.Equal(t, suggest.KindAmount, item.Hints[1].Kind)
	assert.Equal(t, "Invoice: NONE for u", item.Advice)
	assert.Equal(t, 1, advisor.calls)
}

func TestReview_AdvisorFailureKeepsHints(t *testing.T) {
	logger := logging.NewMockLogger()
	r := NewReviewer(seedStore(t), &mockAdvisor{err: errors.New("timeout")}, 2, logger)

	report, err := r.Review(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Empty(t, report.Items[0].Advice)
	assert.NotEmpty(t, report.Items[0].Hints)
	assert.Len(t, logger.EntriesByLevel("WARN"), 1)
}

func TestReview_WithoutAdvisor(t *testing.T) {
	r := NewReviewer(seedStore(t), nil, 0, nil)
	report, err := r.Review(context.Background(), "globex")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Pending)
	assert.Empty(t, report.Items)
}
