// Package batch imports every statement file of a directory, each file as
// its own import batch.
package batch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"fjacquet/payrecon/internal/fileutils"
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/parser"
)

// StatementImporter imports one statement.
type StatementImporter interface {
	ImportStatement(ctx context.Context, tenantID string, format parser.Format, r io.Reader) (*models.ImportSummary, error)
}

// FileResult is the outcome for one file. Error is set when the file could
// not be imported at all.
type FileResult struct {
	File    string                `json:"file" yaml:"file"`
	Format  parser.Format         `json:"format,omitempty" yaml:"format,omitempty"`
	Summary *models.ImportSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Error   string                `json:"error,omitempty" yaml:"error,omitempty"`
}

// Totals adds up the summaries of all imported files.
type Totals struct {
	Files                int `json:"files" yaml:"files"`
	FailedFiles          int `json:"failedFiles" yaml:"failed_files"`
	Imported             int `json:"imported" yaml:"imported"`
	AutomaticallyMatched int `json:"automaticallyMatched" yaml:"automatically_matched"`
	NeedsManualReview    int `json:"needsManualReview" yaml:"needs_manual_review"`
	RowErrors            int `json:"rowErrors" yaml:"row_errors"`
}

// Result is returned by DirectoryImporter.Import.
type Result struct {
	TenantID string       `json:"tenantId" yaml:"tenant_id"`
	Files    []FileResult `json:"files" yaml:"files"`
	Totals   Totals       `json:"totals" yaml:"totals"`
}

// DirectoryImporter walks a directory and imports each statement in it.
type DirectoryImporter struct {
	importer StatementImporter
	logger   logging.Logger
}

// NewDirectoryImporter returns a DirectoryImporter.
func NewDirectoryImporter(importer StatementImporter, logger logging.Logger) *DirectoryImporter {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &DirectoryImporter{importer: importer, logger: logger}
}

// Import processes the files of dir in name order. A file whose format
// cannot be detected or that fails to import is recorded and skipped.
func (d *DirectoryImporter) Import(ctx context.Context, tenantID, dir string) (*Result, error) {
	files, err := fileutils.ListStatementFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &Result{TenantID: tenantID, Files: make([]FileResult, 0, len(files))}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fr := d.importFile(ctx, tenantID, file)
		result.Files = append(result.Files, fr)
		result.Totals.Files++
		if fr.Summary == nil {
			result.Totals.FailedFiles++
			d.logger.Warn("Statement file skipped",
				logging.F(logging.FieldFile, file),
				logging.F(logging.FieldReason, fr.Error))
			continue
		}
		result.Totals.Imported += fr.Summary.Imported
		result.Totals.AutomaticallyMatched += fr.Summary.AutomaticallyMatched
		result.Totals.NeedsManualReview += fr.Summary.NeedsManualReview
		result.Totals.RowErrors += len(fr.Summary.Errors)
	}

	d.logger.Info("Directory import finished",
		logging.F(logging.FieldTenant, tenantID),
		logging.F(logging.FieldCount, result.Totals.Files),
		logging.F("failed_files", result.Totals.FailedFiles),
		logging.F("imported", result.Totals.Imported))
	return result, nil
}

func (d *DirectoryImporter) importFile(ctx context.Context, tenantID, file string) FileResult {
	fr := FileResult{File: filepath.Base(file)}

	head, err := fileutils.ReadHead(file)
	if err != nil {
		fr.Error = err.Error()
		return fr
	}
	format, err := parser.DetectFormat(file, head)
	if err != nil {
		fr.Error = err.Error()
		return fr
	}
	fr.Format = format

	f, err := fileutils.OpenFile(file)
	if err != nil {
		fr.Error = err.Error()
		return fr
	}
	defer f.Close()

	d.logger.Debug("Importing statement file",
		logging.F(logging.FieldFile, file),
		logging.F(logging.FieldFormat, string(format)))

	summary, err := d.importer.ImportStatement(ctx, tenantID, format, f)
	if err != nil {
		fr.Error = fmt.Sprintf("import failed: %v", err)
		return fr
	}
	fr.Summary = summary
	return fr
}
