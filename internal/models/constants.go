package models

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusDraft       InvoiceStatus = "DRAFT"
	StatusOpen        InvoiceStatus = "OPEN"
	StatusPartialPaid InvoiceStatus = "PARTIAL_PAID"
	StatusPaid        InvoiceStatus = "PAID"
	StatusOverdue     InvoiceStatus = "OVERDUE"
	StatusCancelled   InvoiceStatus = "CANCELLED"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusOpen, StatusPartialPaid, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Outstanding reports whether an invoice in this status still expects money.
// Only these statuses take part in amount-based matching.
func (s InvoiceStatus) Outstanding() bool {
	return s == StatusOpen || s == StatusPartialPaid || s == StatusOverdue
}

// Issued reports whether the invoice has left the draft stage and was not
// cancelled. Payments may only be attached to issued invoices.
func (s InvoiceStatus) Issued() bool {
	return s != StatusDraft && s != StatusCancelled
}

// OutstandingStatuses lists the statuses eligible for amount-based matching.
var OutstandingStatuses = []InvoiceStatus{StatusOpen, StatusPartialPaid, StatusOverdue}

// IssuedStatuses lists every status a payment may be attached to.
var IssuedStatuses = []InvoiceStatus{StatusOpen, StatusPartialPaid, StatusPaid, StatusOverdue}

// Confidence is the matching engine's trust level for an assignment.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
	ConfidenceManual Confidence = "MANUAL"
)

// Automatic reports whether the confidence was produced by an automatic tier.
func (c Confidence) Automatic() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// Statement entry direction markers as found in bank statements.
const (
	DirectionCredit = "CRDT"
	DirectionDebit  = "DBIT"
)
