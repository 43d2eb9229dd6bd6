// Package common holds the delimited-text writers shared by the export
// commands.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"fjacquet/payrecon/internal/currencyutils"
	"fjacquet/payrecon/internal/dateutils"
	"fjacquet/payrecon/internal/models"

	"github.com/gocarina/gocsv"
)

// timestampLayout is used for CreatedAt columns.
const timestampLayout = "2006-01-02T15:04:05Z07:00"

// PaymentRow is the exported shape of a payment.
type PaymentRow struct {
	ID          string `csv:"id"`
	TenantID    string `csv:"tenant_id"`
	InvoiceID   string `csv:"invoice_id"`
	Amount      string `csv:"amount"`
	ValueDate   string `csv:"value_date"`
	Reference   string `csv:"reference"`
	Description string `csv:"description"`
	Confidence  string `csv:"confidence"`
	Matched     bool   `csv:"matched"`
	ImportBatch string `csv:"import_batch"`
	CreatedAt   string `csv:"created_at"`
}

// StatementRow is one record of the delimited statement format, in the
// column order the csv parser reads.
type StatementRow struct {
	Amount      string `csv:"amount"`
	ValueDate   string `csv:"value_date"`
	Reference   string `csv:"reference"`
	Description string `csv:"description"`
}

// NewPaymentRow converts a payment. Amounts are printed in major units.
func NewPaymentRow(p models.Payment) PaymentRow {
	row := PaymentRow{
		ID:          p.ID,
		TenantID:    p.TenantID,
		InvoiceID:   models.StringValue(p.InvoiceID),
		Amount:      currencyutils.FormatMinor(p.Amount),
		ValueDate:   dateutils.ToISODate(p.ValueDate),
		Reference:   models.StringValue(p.Reference),
		Description: models.StringValue(p.Description),
		Confidence:  string(p.Confidence),
		Matched:     p.Matched,
		ImportBatch: models.StringValue(p.ImportBatch),
	}
	if !p.CreatedAt.IsZero() {
		row.CreatedAt = p.CreatedAt.UTC().Format(timestampLayout)
	}
	return row
}

// WritePaymentsCSV writes payments with a header line.
func WritePaymentsCSV(w io.Writer, payments []models.Payment, delimiter rune) error {
	rows := make([]PaymentRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, NewPaymentRow(p))
	}
	return writeRows(w, &rows, delimiter)
}

// WriteStatementCSV writes records in the delimited statement format.
func WriteStatementCSV(w io.Writer, records []models.StatementRecord, delimiter rune) error {
	rows := make([]StatementRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, StatementRow{
			Amount:      currencyutils.FormatMinor(rec.Amount),
			ValueDate:   dateutils.ToISODate(rec.ValueDate),
			Reference:   models.StringValue(rec.Reference),
			Description: models.StringValue(rec.Description),
		})
	}
	return writeRows(w, &rows, delimiter)
}

func writeRows(w io.Writer, rows interface{}, delimiter rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}

// ReadCSV decodes rows of T from delimited text with a header line.
func ReadCSV[T any](r io.Reader, delimiter rune) ([]T, error) {
	var rows []T
	err := gocsv.UnmarshalCSV(csvReader(r, delimiter), &rows)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}

func csvReader(r io.Reader, delimiter rune) gocsv.CSVReader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	return reader
}

// DelimiterName describes delimiter for log output.
func DelimiterName(delimiter rune) string {
	switch delimiter {
	case '\t':
		return "tab"
	case ';':
		return "semicolon"
	case ',':
		return "comma"
	}
	return strconv.QuoteRune(delimiter)
}
