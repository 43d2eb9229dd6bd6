// Package parser defines the contract shared by all statement decoders and
// the registry the ingestion pipeline resolves them from.
package parser

import (
	"io"

	"fjacquet/payrecon/internal/models"
)

// Parser turns a raw statement payload into canonical records.
//
// Implementations are best effort: a malformed record is logged and
// skipped, never failing the whole input. An error is returned only when
// the payload itself cannot be read.
type Parser interface {
	Parse(r io.Reader) ([]models.StatementRecord, error)
}
