// Package mt940parser decodes SWIFT MT940 customer statements.
//
// A :61: statement line opens an entry and the :86: field that follows it,
// continuation lines included, becomes the entry description. Only credit
// entries are emitted.
package mt940parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"fjacquet/payrecon/internal/currencyutils"
	"fjacquet/payrecon/internal/dateutils"
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/parser"
	"fjacquet/payrecon/internal/reference"
	"fjacquet/payrecon/internal/textutils"
)

const (
	tagStatementLine = "61"
	tagInformation   = "86"

	noReference   = "NONREF"
	maxLineLength = 1024 * 1024
)

var (
	// value date, optional entry date, mark, optional funds code, amount,
	// optional transaction type, customer reference, optional bank reference
	statementLine = regexp.MustCompile(`^:61:(\d{6})(\d{4})?(RC|RD|C|D)([A-Z])?(\d+(?:[,.]\d*)?)([NFS][A-Z0-9]{3})?(.*?)(?://(.*))?$`)
	fieldTag      = regexp.MustCompile(`^:(\d{2}[A-Z]?):`)
	openingSaldo  = regexp.MustCompile(`^:60[FM]:[CD]\d{6}([A-Z]{3})`)

	errNoMatch    = errors.New("statement line does not match :61: layout")
	errZeroAmount = errors.New("amount is zero")
)

// Parser reads MT940 statements.
type Parser struct {
	parser.BaseParser
}

var _ parser.Parser = (*Parser)(nil)

// NewParser returns an MT940 parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(string(parser.MT940), logger)}
}

type entry struct {
	record      models.StatementRecord
	description []string
	raw         []string
}

// Parse implements parser.Parser.
func (p *Parser) Parse(r io.Reader) ([]models.StatementRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var (
		records  []models.StatementRecord
		skipped  int
		current  *entry
		inInfo   bool
		currency string
		lineNo   int
	)
	flush := func() {
		if current != nil {
			records = append(records, p.finish(current))
		}
		current = nil
		inInfo = false
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tag := fieldTag.FindStringSubmatch(line)
		switch {
		case tag == nil:
			switch {
			case line == "-" || strings.HasPrefix(line, "-}"):
				flush()
			case strings.HasPrefix(line, "{"):
				// SWIFT envelope blocks
			case current != nil:
				current.raw = append(current.raw, line)
				if inInfo {
					current.description = append(current.description, line)
				}
			}

		case tag[1] == tagStatementLine:
			flush()
			e, err := p.openEntry(line, currency)
			if err != nil {
				p.SkipRecord(lineNo, "statementLine", line, err)
				skipped++
				continue
			}
			current = e

		case tag[1] == tagInformation:
			if current == nil {
				continue
			}
			inInfo = true
			current.raw = append(current.raw, line)
			current.description = append(current.description, strings.TrimSpace(line[len(":86:"):]))

		default:
			flush()
			if m := openingSaldo.FindStringSubmatch(line); m != nil {
				currency = m[1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading MT940 statement: %w", err)
	}
	flush()

	p.LogParsed(len(records), skipped)
	return records, nil
}

// openEntry decodes a :61: line. Debit entries yield a nil entry and no
// error.
func (p *Parser) openEntry(line, currency string) (*entry, error) {
	m := statementLine.FindStringSubmatch(line)
	if m == nil {
		return nil, errNoMatch
	}
	valueDate, mark, amountStr, customerRef := m[1], m[3], m[5], m[7]

	if mark == "D" || mark == "RC" {
		p.GetLogger().Debug("Ignoring debit entry",
			logging.F(logging.FieldParser, p.Name()),
			logging.F(logging.FieldAmount, amountStr))
		return nil, nil
	}

	date, err := dateutils.ExpandYYMMDD(valueDate)
	if err != nil {
		return nil, err
	}
	amount, err := currencyutils.ParseMinorUnits(strings.Replace(amountStr, ",", ".", 1))
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, errZeroAmount
	}

	var ref *string
	if r := strings.TrimSpace(customerRef); r != "" && !strings.EqualFold(r, noReference) {
		ref = &r
	}

	return &entry{
		record: models.StatementRecord{
			Amount:    amount,
			Currency:  currency,
			ValueDate: date,
			Reference: ref,
		},
		raw: []string{line},
	}, nil
}

func (p *Parser) finish(e *entry) models.StatementRecord {
	rec := e.record
	description := textutils.CleanText(strings.Join(e.description, " "))
	rec.Description = models.StringPtr(description)
	if rec.Reference == nil {
		rec.Reference = models.StringPtr(reference.FindInText(description))
	}
	rec.Raw = strings.Join(e.raw, "\n")
	return rec
}
