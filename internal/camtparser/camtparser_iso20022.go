package camtparser

import (
	"encoding/xml"
	"fmt"
	"io"

	"fjacquet/payrecon/internal/currencyutils"
	"fjacquet/payrecon/internal/dateutils"
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/parser"
	"fjacquet/payrecon/internal/parsererror"
	"fjacquet/payrecon/internal/textutils"
)

const expectedFormat = "ISO 20022 camt.052/053/054 XML document"

// ISO20022Parser decodes the whole document with encoding/xml and rejects
// input that is not a well-formed ISO 20022 Document. Entries inside a
// valid document are still skipped one by one when unusable.
type ISO20022Parser struct {
	parser.BaseParser
}

var _ parser.Parser = (*ISO20022Parser)(nil)

// NewISO20022Parser returns the strict CAMT parser.
func NewISO20022Parser(logger logging.Logger) *ISO20022Parser {
	return &ISO20022Parser{BaseParser: parser.NewBaseParser(string(parser.CAMT)+"-strict", logger)}
}

// Parse implements parser.Parser.
func (p *ISO20022Parser) Parse(r io.Reader) ([]models.StatementRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading CAMT document: %w", err)
	}

	var doc models.ISO20022Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &parsererror.InvalidFormatError{
			Source:               p.Name(),
			ExpectedFormat:       expectedFormat,
			ActualContentSnippet: parsererror.Snippet(data, 64),
			Msg:                  err.Error(),
		}
	}

	var (
		records []models.StatementRecord
		skipped int
		index   int
	)
	for _, stmt := range doc.Statements() {
		for i := range stmt.Ntry {
			index++
			entry := &stmt.Ntry[i]
			if !entry.IsCredit() {
				continue
			}
			rec, err := p.convertEntry(entry)
			if err != nil {
				p.SkipRecord(index, err.FieldName, entry.Amt.Value, err)
				skipped++
				continue
			}
			records = append(records, rec)
		}
	}

	p.LogParsed(len(records), skipped)
	return records, nil
}

func (p *ISO20022Parser) convertEntry(entry *models.Entry) (models.StatementRecord, *parsererror.DataExtractionError) {
	fail := func(field, reason string) *parsererror.DataExtractionError {
		return &parsererror.DataExtractionError{Source: p.Name(), FieldName: field, Reason: reason}
	}

	if entry.Amt.Value == "" {
		return models.StatementRecord{}, fail("Amt", errMissingAmount.Error())
	}
	amount, err := currencyutils.ParseMinorUnits(entry.Amt.Value)
	if err != nil {
		return models.StatementRecord{}, fail("Amt", err.Error())
	}
	if amount <= 0 {
		return models.StatementRecord{}, fail("Amt", errNonPositive.Error())
	}

	dateStr := entry.BookgDt.Date()
	if dateStr == "" {
		dateStr = entry.ValDt.Date()
	}
	if dateStr == "" {
		return models.StatementRecord{}, fail("BookgDt", errMissingDate.Error())
	}
	date, _, err := dateutils.ParseDate(dateStr)
	if err != nil {
		return models.StatementRecord{}, fail("BookgDt", err.Error())
	}

	unstructured := textutils.CleanText(entry.Unstructured())
	description := entry.AddtlNtryInf
	if description == "" {
		description = unstructured
	}
	if description == "" {
		description = entry.AdditionalTransactionInfo()
	}

	return models.StatementRecord{
		Amount:      amount,
		Currency:    entry.Amt.Ccy,
		ValueDate:   date,
		Reference:   models.StringPtr(referenceOf(textutils.CleanText(entry.CreditorReference()), unstructured)),
		Description: models.StringPtr(textutils.CleanText(description)),
	}, nil
}
