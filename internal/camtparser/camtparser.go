// Package camtparser extracts incoming payments from ISO 20022 camt.05x
// account reports.
//
// The default Parser does not validate the document. It cuts every Ntry
// element out of the raw text and decodes each one on its own, so a
// truncated or partly broken file still yields its well-formed entries.
// ISO20022Parser is the strict alternative.
package camtparser

import (
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
	"fjacquet/payrecon/internal/xmlutils"

	"gopkg.in/xmlpath.v2"
)

var (
	entryStart = regexp.MustCompile(`<(?:[A-Za-z_][\w.-]*:)?Ntry[\s>]`)
	entryEnd   = regexp.MustCompile(`</(?:[A-Za-z_][\w.-]*:)?Ntry\s*>`)
	prefixed   = regexp.MustCompile(`(</?)[A-Za-z_][\w.-]*:`)

	pathAmount       = xmlpath.MustCompile(xmlutils.XPathEntryAmount)
	pathCurrency     = xmlpath.MustCompile(xmlutils.XPathEntryCurrency)
	pathDirection    = xmlpath.MustCompile(xmlutils.XPathEntryDirection)
	pathBookingDate  = xmlpath.MustCompile(xmlutils.XPathBookingDate)
	pathBookingTime  = xmlpath.MustCompile(xmlutils.XPathBookingDateTime)
	pathValueDate    = xmlpath.MustCompile(xmlutils.XPathValueDate)
	pathCreditorRef  = xmlpath.MustCompile(xmlutils.XPathCreditorRef)
	pathUnstructured = xmlpath.MustCompile(xmlutils.XPathUnstructured)
	pathAddtlEntry   = xmlpath.MustCompile(xmlutils.XPathAddtlEntryInfo)
	pathAddtlTx      = xmlpath.MustCompile(xmlutils.XPathAddtlTxInfo)

	errMissingAmount = errors.New("entry has no amount")
	errMissingDate   = errors.New("entry has no booking or value date")
	errNonPositive   = errors.New("amount must be positive")
	errDebit         = errors.New("debit entry")
)

// Parser is the tolerant CAMT entry scanner.
type Parser struct {
	parser.BaseParser
}

var _ parser.Parser = (*Parser)(nil)

// NewParser returns the tolerant CAMT parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(string(parser.CAMT), logger)}
}

// Parse implements parser.Parser.
func (p *Parser) Parse(r io.Reader) ([]models.StatementRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading CAMT document: %w", err)
	}

	var (
		records []models.StatementRecord
		skipped int
	)
	for i, block := range entryBlocks(string(data)) {
		rec, field, err := parseEntry(block)
		if errors.Is(err, errDebit) {
			continue
		}
		if err != nil {
			p.SkipRecord(i+1, field, snippet(block), err)
			skipped++
			continue
		}
		records = append(records, rec)
	}

	p.LogParsed(len(records), skipped)
	return records, nil
}

// entryBlocks returns every <Ntry>...</Ntry> block in document order. A
// start tag whose block is interrupted by another start tag is abandoned in
// favour of the later one; an unterminated trailing block is dropped.
func entryBlocks(doc string) []string {
	var blocks []string
	pos := 0
	for pos < len(doc) {
		start := entryStart.FindStringIndex(doc[pos:])
		if start == nil {
			break
		}
		from := pos + start[0]
		bodyFrom := pos + start[1]

		end := entryEnd.FindStringIndex(doc[bodyFrom:])
		if end == nil {
			break
		}
		to := bodyFrom + end[1]

		if next := entryStart.FindStringIndex(doc[bodyFrom : bodyFrom+end[0]]); next != nil {
			pos = bodyFrom + next[0]
			continue
		}
		blocks = append(blocks, doc[from:to])
		pos = to
	}
	return blocks
}

// parseEntry decodes one entry block. The returned field names the element
// that made the block unusable.
func parseEntry(block string) (models.StatementRecord, string, error) {
	// Fragments cut from a prefixed document carry undeclared prefixes.
	root, err := xmlutils.ParseFragment(prefixed.ReplaceAllString(block, "$1"))
	if err != nil {
		return models.StatementRecord{}, "Ntry", err
	}

	if xmlutils.FirstValue(root, pathDirection) == models.DirectionDebit {
		return models.StatementRecord{}, "CdtDbtInd", errDebit
	}

	amountStr := xmlutils.FirstValue(root, pathAmount)
	if amountStr == "" {
		return models.StatementRecord{}, "Amt", errMissingAmount
	}
	amount, err := currencyutils.ParseMinorUnits(amountStr)
	if err != nil {
		return models.StatementRecord{}, "Amt", err
	}
	if amount <= 0 {
		return models.StatementRecord{}, "Amt", errNonPositive
	}

	dateStr := xmlutils.FirstValue(root, pathBookingDate)
	if dateStr == "" {
		dateStr = dateOf(xmlutils.FirstValue(root, pathBookingTime))
	}
	if dateStr == "" {
		dateStr = xmlutils.FirstValue(root, pathValueDate)
	}
	if dateStr == "" {
		return models.StatementRecord{}, "BookgDt", errMissingDate
	}
	date, _, err := dateutils.ParseDate(dateStr)
	if err != nil {
		return models.StatementRecord{}, "BookgDt", err
	}

	unstructured := xmlutils.FirstValue(root, pathUnstructured)
	return models.StatementRecord{
		Amount:      amount,
		Currency:    xmlutils.FirstValue(root, pathCurrency),
		ValueDate:   date,
		Reference:   models.StringPtr(referenceOf(xmlutils.FirstValue(root, pathCreditorRef), unstructured)),
		Description: models.StringPtr(xmlutils.FirstValue(root, pathAddtlEntry, pathUnstructured, pathAddtlTx)),
		Raw:         block,
	}, "", nil
}

// referenceOf prefers the structured creditor reference, then a reference
// found inside the unstructured remittance text, then that text verbatim.
func referenceOf(structured, unstructured string) string {
	if structured != "" {
		return structured
	}
	if found := reference.FindInText(unstructured); found != "" {
		return found
	}
	return unstructured
}

// dateOf cuts the date part off an ISO date-time.
func dateOf(dateTime string) string {
	if len(dateTime) >= len(dateutils.DateLayoutISO) {
		return dateTime[:len(dateutils.DateLayoutISO)]
	}
	return dateTime
}

const snippetRunes = 80

// snippet collapses whitespace and keeps at most snippetRunes runes.
func snippet(block string) string {
	s := strings.Join(strings.Fields(block), " ")
	if r := []rune(s); len(r) > snippetRunes {
		return string(r[:snippetRunes])
	}
	return s
}
