package models

import "time"

// Payment is an incoming bank payment. Matched is true exactly when
// InvoiceID is set; use AssignTo and Unassign to change either.
type Payment struct {
	ID          string     `json:"id" yaml:"id"`
	TenantID    string     `json:"tenantId" yaml:"tenant_id"`
	InvoiceID   *string    `json:"invoiceId" yaml:"invoice_id"`
	Amount      int64      `json:"amount" yaml:"amount"`
	ValueDate   time.Time  `json:"valueDate" yaml:"value_date"`
	Reference   *string    `json:"reference" yaml:"reference"`
	Description *string    `json:"description" yaml:"description"`
	Confidence  Confidence `json:"confidence" yaml:"confidence"`
	Matched     bool       `json:"matched" yaml:"matched"`
	ImportBatch *string    `json:"importBatch" yaml:"import_batch"`
	RawSource   string     `json:"-" yaml:"-"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"created_at"`
}

// AssignTo attaches the payment to invoiceID with the given confidence.
func (p *Payment) AssignTo(invoiceID string, c Confidence) {
	id := invoiceID
	p.InvoiceID = &id
	p.Matched = true
	p.Confidence = c
}

// Unassign detaches the payment and leaves it for manual review.
func (p *Payment) Unassign() {
	p.InvoiceID = nil
	p.Matched = false
	p.Confidence = ConfidenceManual
}

// Consistent reports whether Matched agrees with InvoiceID.
func (p Payment) Consistent() bool {
	return p.Matched == (p.InvoiceID != nil)
}

// StringPtr returns nil for an empty string and a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
