// Package csvparser decodes delimited-text payment statements.
//
// The expected column order is amount, value date, reference, description.
// The first line is a header and is ignored; columns are positional.
package csvparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/payrecon/internal/currencyutils"
	"fjacquet/payrecon/internal/dateutils"
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/parser"
)

const (
	colAmount = iota
	colValueDate
	colReference
	colDescription
)

const minFields = 2

var errNonPositive = errors.New("amount must be positive")

// Parser reads delimited statements.
type Parser struct {
	parser.BaseParser
	delimiter rune
}

var _ parser.Parser = (*Parser)(nil)

// NewParser returns a comma separated parser.
func NewParser(logger logging.Logger) *Parser {
	return NewParserWithDelimiter(logger, ',')
}

// NewParserWithDelimiter returns a parser splitting on delimiter.
func NewParserWithDelimiter(logger logging.Logger, delimiter rune) *Parser {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Parser{
		BaseParser: parser.NewBaseParser(string(parser.CSV), logger),
		delimiter:  delimiter,
	}
}

// Parse implements parser.Parser.
func (p *Parser) Parse(r io.Reader) ([]models.StatementRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		records []models.StatementRecord
		skipped int
		header  = true
	)
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				p.SkipRecord(csvErr.Line, "row", "", err)
				skipped++
				header = false
				continue
			}
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		if header {
			header = false
			continue
		}
		if isBlank(fields) {
			continue
		}
		line, _ := reader.FieldPos(0)

		rec, field, err := p.parseRow(fields)
		if err != nil {
			p.SkipRecord(line, field, fieldAt(fields, columnOf(field)), err)
			skipped++
			continue
		}
		records = append(records, rec)
	}

	p.LogParsed(len(records), skipped)
	return records, nil
}

func (p *Parser) parseRow(fields []string) (models.StatementRecord, string, error) {
	if len(fields) < minFields {
		return models.StatementRecord{}, "row", fmt.Errorf("expected at least %d fields, got %d", minFields, len(fields))
	}

	amount, err := currencyutils.ParseMinorUnits(fieldAt(fields, colAmount))
	if err != nil {
		return models.StatementRecord{}, "amount", err
	}
	if amount <= 0 {
		return models.StatementRecord{}, "amount", errNonPositive
	}

	valueDate, _, err := dateutils.ParseDate(fieldAt(fields, colValueDate))
	if err != nil {
		return models.StatementRecord{}, "valueDate", err
	}

	return models.StatementRecord{
		Amount:      amount,
		ValueDate:   valueDate,
		Reference:   models.StringPtr(fieldAt(fields, colReference)),
		Description: models.StringPtr(fieldAt(fields, colDescription)),
		Raw:         strings.Join(fields, string(p.delimiter)),
	}, "", nil
}

func fieldAt(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func columnOf(field string) int {
	switch field {
	case "amount":
		return colAmount
	case "valueDate":
		return colValueDate
	}
	return -1
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
