package models

// RowError reports a record that could not be imported. Row is 1-based
// within the submitted list.
type RowError struct {
	Row     int    `json:"row" yaml:"row"`
	Message string `json:"message" yaml:"message"`
}

// ImportSummary is returned by every batch import.
type ImportSummary struct {
	Imported             int        `json:"imported" yaml:"imported"`
	AutomaticallyMatched int        `json:"automaticallyMatched" yaml:"automatically_matched"`
	NeedsManualReview    int        `json:"needsManualReview" yaml:"needs_manual_review"`
	ImportBatch          string     `json:"importBatch" yaml:"import_batch"`
	Errors               []RowError `json:"errors" yaml:"errors"`
}

// MatchOutcome is the per-payment result of an auto-match run.
type MatchOutcome struct {
	PaymentID  string     `json:"paymentId" yaml:"payment_id"`
	InvoiceID  *string    `json:"invoiceId" yaml:"invoice_id"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// AutoMatchResult is returned by an auto-match run over unmatched payments.
type AutoMatchResult struct {
	MatchedCount   int            `json:"matchedCount" yaml:"matched_count"`
	TotalProcessed int            `json:"totalProcessed" yaml:"total_processed"`
	Results        []MatchOutcome `json:"results" yaml:"results"`
}
