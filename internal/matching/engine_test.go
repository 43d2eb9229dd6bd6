package matching

import (
	"testing"
	"time"

	"fjacquet/payrecon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = "acme"

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func invoice(id string, total int64, dueDay int, ref string, status models.InvoiceStatus) models.Invoice {
	return models.Invoice{ID: id, TenantID: tenant, TotalAmount: total, DueDate: day(dueDay), Reference: ref, Status: status}
}

func payment(amount int64, valueDay int, ref *string) models.Payment {
	return models.Payment{ID: "p", TenantID: tenant, Amount: amount, ValueDate: day(valueDay), Reference: ref}
}

func TestMatch(t *testing.T) {
	const qrr = "210000000003139471430009017"

	tests := []struct {
		name       string
		invoices   []models.Invoice
		payment    models.Payment
		wantID     string
		confidence models.Confidence
	}{
		{
			name:       "exact reference",
			invoices:   []models.Invoice{invoice("inv-1", 10000, 10, qrr, models.StatusOpen)},
			payment:    payment(10000, 10, models.StringPtr(qrr)),
			wantID:     "inv-1",
			confidence: models.ConfidenceHigh,
		},
		{
			name:       "reference with whitespace and wrong amount",
			invoices:   []models.Invoice{invoice("inv-1", 10000, 10, qrr, models.StatusOpen)},
			payment:    payment(4000, 20, models.StringPtr("21 00000 00003 13947 14300 09017")),
			wantID:     "inv-1",
			confidence: models.ConfidenceHigh,
		},
		{
			name:       "reference hits paid invoice",
			invoices:   []models.Invoice{invoice("inv-1", 10000, 10, qrr, models.StatusPaid)},
			payment:    payment(10000, 10, models.StringPtr(qrr)),
			wantID:     "inv-1",
			confidence: models.ConfidenceHigh,
		},
		{
			name: "duplicate reference falls through",
			invoices: []models.Invoice{
				invoice("inv-1", 10000, 10, qrr, models.StatusOpen),
				invoice("inv-2", 7000, 10, qrr, models.StatusOpen),
			},
			payment:    payment(7000, 11, models.StringPtr(qrr)),
			wantID:     "inv-2",
			confidence: models.ConfidenceMedium,
		},
		{
			name:       "cancelled invoice reference is ignored",
			invoices:   []models.Invoice{invoice("inv-1", 10000, 10, qrr, models.StatusCancelled)},
			payment:    payment(10000, 10, models.StringPtr(qrr)),
			confidence: models.ConfidenceManual,
		},
		{
			name:       "draft invoice reference is ignored",
			invoices:   []models.Invoice{invoice("inv-1", 10000, 10, qrr, models.StatusDraft)},
			payment:    payment(10000, 10, models.StringPtr(qrr)),
			confidence: models.ConfidenceManual,
		},
		{
			name:       "amount and date within window",
			invoices:   []models.Invoice{invoice("inv-1", 5000, 10, "R1", models.StatusOpen)},
			payment:    payment(5000, 11, nil),
			wantID:     "inv-1",
			confidence: models.ConfidenceMedium,
		},
		{
			name:       "amount and date one day early",
			invoices:   []models.Invoice{invoice("inv-1", 5000, 10, "R1", models.StatusOverdue)},
			payment:    payment(5000, 9, nil),
			wantID:     "inv-1",
			confidence: models.ConfidenceMedium,
		},
		{
			name:       "unknown reference uses amount tiers",
			invoices:   []models.Invoice{invoice("inv-1", 5000, 10, "R1", models.StatusPartialPaid)},
			payment:    payment(5000, 10, models.StringPtr("RF18539007547034")),
			wantID:     "inv-1",
			confidence: models.ConfidenceMedium,
		},
		{
			name:       "amount only outside window",
			invoices:   []models.Invoice{invoice("inv-1", 5000, 10, "R1", models.StatusOpen)},
			payment:    payment(5000, 12, nil),
			wantID:     "inv-1",
			confidence: models.ConfidenceLow,
		},
		{
			name: "ambiguous window resolved by nothing",
			invoices: []models.Invoice{
				invoice("inv-1", 5000, 10, "R1", models.StatusOpen),
				invoice("inv-2", 5000, 10, "R2", models.StatusOpen),
			},
			payment:    payment(5000, 10, nil),
			confidence: models.ConfidenceManual,
		},
		{
			name: "window picks the close invoice",
			invoices: []models.Invoice{
				invoice("inv-1", 5000, 10, "R1", models.StatusOpen),
				invoice("inv-2", 5000, 25, "R2", models.StatusOpen),
			},
			payment:    payment(5000, 11, nil),
			wantID:     "inv-1",
			confidence: models.ConfidenceMedium,
		},
		{
			name: "paid and cancelled invoices do not compete",
			invoices: []models.Invoice{
				invoice("inv-1", 5000, 10, "R1", models.StatusPaid),
				invoice("inv-2", 5000, 10, "R2", models.StatusCancelled),
				invoice("inv-3", 5000, 10, "R3", models.StatusDraft),
				invoice("inv-4", 5000, 1, "R4", models.StatusOpen),
			},
			payment:    payment(5000, 10, nil),
			wantID:     "inv-4",
			confidence: models.ConfidenceLow,
		},
		{
			name: "other tenant ignored",
			invoices: []models.Invoice{
				{ID: "inv-x", TenantID: "other", TotalAmount: 5000, DueDate: day(10), Reference: "R1", Status: models.StatusOpen},
			},
			payment:    payment(5000, 10, models.StringPtr("R1")),
			confidence: models.ConfidenceManual,
		},
		{
			name:       "blank reference",
			invoices:   []models.Invoice{invoice("inv-1", 900, 10, "", models.StatusOpen)},
			payment:    payment(5000, 10, models.StringPtr("  ")),
			confidence: models.ConfidenceManual,
		},
		{
			name:       "no invoices",
			payment:    payment(5000, 10, nil),
			confidence: models.ConfidenceManual,
		},
	}

	engine := NewEngine(DefaultDateWindowDays)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Match(tt.payment, tt.invoices)
			assert.Equal(t, tt.confidence, result.Confidence)
			if tt.wantID == "" {
				assert.Nil(t, result.Invoice)
				assert.False(t, result.Matched())
				return
			}
			require.NotNil(t, result.Invoice)
			assert.Equal(t, tt.wantID, result.Invoice.ID)
			assert.True(t, result.Matched())
		})
	}
}

func TestMatch_WindowIsConfigurable(t *testing.T) {
	invoices := []models.Invoice{invoice("inv-1", 5000, 10, "R1", models.StatusOpen)}

	strict := NewEngine(0)
	assert.Equal(t, models.ConfidenceLow, strict.Match(payment(5000, 11, nil), invoices).Confidence)
	assert.Equal(t, models.ConfidenceMedium, strict.Match(payment(5000, 10, nil), invoices).Confidence)

	wide := NewEngine(7)
	assert.Equal(t, models.ConfidenceMedium, wide.Match(payment(5000, 17, nil), invoices).Confidence)

	assert.Equal(t, DefaultDateWindowDays, NewEngine(-3).DateWindowDays)
}

func TestMatch_CalendarDaysIgnoreClock(t *testing.T) {
	invoices := []models.Invoice{invoice("inv-1", 5000, 10, "R1", models.StatusOpen)}
	p := payment(5000, 11, nil)
	p.ValueDate = time.Date(2024, 3, 11, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, models.ConfidenceMedium, NewEngine(1).Match(p, invoices).Confidence)
}
