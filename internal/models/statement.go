package models

import "time"

// StatementRecord is the canonical output of every statement parser.
// Amount is always positive; debit entries never become records.
type StatementRecord struct {
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency,omitempty"`
	ValueDate   time.Time `json:"valueDate"`
	Reference   *string   `json:"reference"`
	Description *string   `json:"description"`
	// Raw is the source fragment the record was decoded from.
	Raw string `json:"-"`
}
