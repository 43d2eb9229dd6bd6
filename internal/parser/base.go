package parser

import (
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/parsererror"
)

// BaseParser carries the logger shared by parser implementations, which
// embed it.
type BaseParser struct {
	name   string
	logger logging.Logger
}

// NewBaseParser returns a BaseParser for the named format. A nil logger is
// replaced by a default logrus adapter.
func NewBaseParser(name string, logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return BaseParser{name: name, logger: logger}
}

// SetLogger swaps the logger; nil is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// Name is the format name used in log fields and errors.
func (b *BaseParser) Name() string {
	return b.name
}

// SkipRecord logs a record that is dropped and returns the wrapped error.
func (b *BaseParser) SkipRecord(record int, field, value string, err error) *parsererror.ParseError {
	perr := &parsererror.ParseError{Parser: b.name, Record: record, Field: field, Value: value, Err: err}
	b.logger.WithError(err).Warn("Skipping malformed statement record",
		logging.F(logging.FieldParser, b.name),
		logging.F(logging.FieldLine, record),
		logging.F(logging.FieldReason, perr.Error()))
	return perr
}

// LogParsed reports how many records were emitted.
func (b *BaseParser) LogParsed(emitted, skipped int) {
	b.logger.Info("Parsed statement",
		logging.F(logging.FieldParser, b.name),
		logging.F(logging.FieldCount, emitted),
		logging.F("skipped", skipped))
}
