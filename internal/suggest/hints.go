// Package suggest produces review hints for payments the matching engine
// left to an operator. Hints never assign a payment.
package suggest

import (
	"sort"
	"strings"

	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/textutils"

	"github.com/agnivade/levenshtein"
)

// Hint kinds.
const (
	KindReference = "reference"
	KindAmount    = "amount"
)

// Hint points an operator at an invoice that might be the one a payment
// was meant for.
type Hint struct {
	InvoiceID string `json:"invoiceId" yaml:"invoice_id"`
	Reference string `json:"reference" yaml:"reference"`
	Kind      string `json:"kind" yaml:"kind"`
	// Distance is the edit distance between the references, 0 for amount hints.
	Distance int `json:"distance" yaml:"distance"`
}

// NearReferenceHints returns invoices whose reference is within maxDistance
// edits of the payment reference, typically a mistyped digit. Exact matches
// are excluded since the engine already handles them. Results are ordered
// by distance, then reference.
func NearReferenceHints(payment models.Payment, invoices []models.Invoice, maxDistance int) []Hint {
	ref := strings.ToUpper(textutils.StripWhitespace(models.StringValue(payment.Reference)))
	if ref == "" || maxDistance <= 0 {
		return nil
	}

	var hints []Hint
	for _, inv := range invoices {
		if inv.TenantID != payment.TenantID || !inv.Status.Issued() {
			continue
		}
		candidate := strings.ToUpper(textutils.StripWhitespace(inv.Reference))
		if candidate == "" || abs(len(candidate)-len(ref)) > maxDistance {
			continue
		}
		d := levenshtein.ComputeDistance(ref, candidate)
		if d == 0 || d > maxDistance {
			continue
		}
		hints = append(hints, Hint{InvoiceID: inv.ID, Reference: inv.Reference, Kind: KindReference, Distance: d})
	}
	sortHints(hints)
	return hints
}

// AmountHints lists outstanding invoices whose total or outstanding amount
// equals the payment amount. They are the candidates that made the amount
// tiers ambiguous.
func AmountHints(payment models.Payment, invoices []models.Invoice) []Hint {
	var hints []Hint
	for _, inv := range invoices {
		if inv.TenantID != payment.TenantID || !inv.Status.Outstanding() {
			continue
		}
		if inv.TotalAmount == payment.Amount || inv.Outstanding() == payment.Amount {
			hints = append(hints, Hint{InvoiceID: inv.ID, Reference: inv.Reference, Kind: KindAmount})
		}
	}
	sortHints(hints)
	return hints
}

func sortHints(hints []Hint) {
	sort.SliceStable(hints, func(i, j int) bool {
		if hints[i].Distance != hints[j].Distance {
			return hints[i].Distance < hints[j].Distance
		}
		return hints[i].Reference < hints[j].Reference
	})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
