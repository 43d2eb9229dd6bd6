package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoices() []models.Invoice {
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return []models.Invoice{
		{ID: "a", TenantID: "acme", TotalAmount: 5000, DueDate: due, Reference: "210000000003139471430009017", Status: models.StatusOpen},
		{ID: "b", TenantID: "acme", TotalAmount: 5000, PaidAmount: 1000, DueDate: due, Reference: "210000000003139471430009018", Status: models.StatusPartialPaid},
		{ID: "c", TenantID: "acme", TotalAmount: 4000, DueDate: due, Reference: "210000000003139471430009099", Status: models.StatusOpen},
		{ID: "d", TenantID: "acme", TotalAmount: 5000, DueDate: due, Reference: "210000000003139471430009016", Status: models.StatusCancelled},
		{ID: "e", TenantID: "globex", TotalAmount: 5000, DueDate: due, Reference: "210000000003139471430009019", Status: models.StatusOpen},
	}
}

func TestNearReferenceHints(t *testing.T) {
	tests := []struct {
		name        string
		reference   string
		maxDistance int
		expected    []string
	}{
		{name: "one digit off", reference: "21 00000 00003 13947 14300 09015", maxDistance: 1, expected: []string{"a", "b"}},
		{name: "two digits off", reference: "210000000003139471430009097", maxDistance: 2, expected: []string{"a", "c", "b"}},
		{name: "exact match is not a hint", reference: "210000000003139471430009017", maxDistance: 1, expected: []string{"b"}},
		{name: "too far", reference: "RF18539007547034", maxDistance: 2, expected: nil},
		{name: "disabled", reference: "210000000003139471430009015", maxDistance: 0, expected: nil},
		{name: "no reference", reference: "", maxDistance: 2, expected: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.Payment{ID: "p", TenantID: "acme", Amount: 5000, Reference: models.StringPtr(tt.reference)}
			hints := NearReferenceHints(p, invoices(), tt.maxDistance)
			var ids []string
			for _, h := range hints {
				ids = append(ids, h.InvoiceID)
				assert.Equal(t, KindReference, h.Kind)
				assert.LessOrEqual(t, h.Distance, tt.maxDistance)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestAmountHints(t *testing.T) {
	p := models.Payment{ID: "p", TenantID: "acme", Amount: 4000}
	hints := AmountHints(p, invoices())
	require.Len(t, hints, 2)
	assert.Equal(t, "b", hints[0].InvoiceID)
	assert.Equal(t, "c", hints[1].InvoiceID)
	assert.Equal(t, KindAmount, hints[0].Kind)
}

type stubGenerator struct {
	prompt      string
	reply       string
	err         error
	sawDeadline bool
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	_, s.sawDeadline = ctx.Deadline()
	return s.reply, s.err
}

func TestGeminiAdvisor(t *testing.T) {
	gen := &stubGenerator{reply: "  Invoice: a\nReason: amount and date agree \n"}
	advisor := NewGeminiAdvisor(gen, 5*time.Second, logging.NewMockLogger())

	p := models.Payment{
		ID: "p1", TenantID: "acme", Amount: 5000,
		ValueDate:   time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		Description: models.StringPtr("March rent"),
	}
	advice, err := advisor.Advise(context.Background(), p, invoices())
	require.NoError(t, err)
	assert.Equal(t, "Invoice: a\nReason: amount and date agree", advice)
	assert.True(t, gen.sawDeadline)

	assert.Contains(t, gen.prompt, "amount 50.00, value date 2024-03-11")
	assert.Contains(t, gen.prompt, `description "March rent"`)
	assert.Contains(t, gen.prompt, "id b, reference 210000000003139471430009018, total 50.00, outstanding 40.00")
	assert.NotContains(t, gen.prompt, "id d,")
}

func TestGeminiAdvisor_Error(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	advisor := NewGeminiAdvisor(gen, 0, nil)

	_, err := advisor.Advise(context.Background(), models.Payment{ID: "p1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.False(t, gen.sawDeadline)
}

func TestBuildPrompt_NoOpenInvoices(t *testing.T) {
	prompt := BuildPrompt(models.Payment{Amount: 1}, nil)
	assert.True(t, strings.Contains(prompt, "- none"))
}

func TestNewGeminiModel_RequiresKey(t *testing.T) {
	_, err := NewGeminiModel(context.Background(), "", "gemini-1.5-flash")
	assert.Error(t, err)
}
