// Package ingest imports a payment file for a tenant.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/payrecon/cmd/root"
	"fjacquet/payrecon/internal/fileutils"
	svc "fjacquet/payrecon/internal/ingest"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/parser"

	"github.com/spf13/cobra"
)

// FormatJSON selects a JSON list of payment requests instead of a bank
// statement.
const FormatJSON = "json"

var format string

// Cmd represents the ingest command.
var Cmd = &cobra.Command{
	Use:   "ingest FILE",
	Short: "Import payments from a statement or JSON file",
	Long: `Import payments from a bank statement (CSV, MT940, CAMT) or from a JSON
list of payment requests, then match each payment against the tenant's
invoices. The file is one import batch; rows that fail are reported and the
rest are kept.

The format is detected from the content and extension unless --format is given.

Example:
  payrecon ingest -t acme statement.xml
  payrecon ingest -t acme --format json payments.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, err := root.RequireTenant()
		if err != nil {
			return err
		}
		summary, err := importFile(cmd, tenant, args[0])
		if err != nil {
			return err
		}
		return root.Render(cmd, summary)
	},
}

func init() {
	Cmd.Flags().StringVar(&format, "format", "", "File format: csv, mt940, camt or json")
}

func importFile(cmd *cobra.Command, tenant, file string) (*models.ImportSummary, error) {
	if !fileutils.FileExists(file) {
		return nil, fmt.Errorf("file not found: %s", file)
	}
	service := root.GetContainer().GetIngest()

	if IsJSON(format, file) {
		f, err := fileutils.OpenFile(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		requests, err := svc.DecodePaymentList(f)
		if err != nil {
			return nil, err
		}
		return service.ImportRequests(cmd.Context(), tenant, requests)
	}

	statementFormat, err := ResolveFormat(format, file, root.GetContainer().GetParsers())
	if err != nil {
		return nil, err
	}
	f, err := fileutils.OpenFile(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return service.ImportStatement(cmd.Context(), tenant, statementFormat, f)
}

// IsJSON reports whether file should be read as a payment request list.
func IsJSON(flag, file string) bool {
	if flag != "" {
		return strings.EqualFold(flag, FormatJSON)
	}
	return strings.EqualFold(filepath.Ext(file), "."+FormatJSON)
}

// ResolveFormat picks the statement format from flag, or from the file's
// content and extension, and checks that registry can parse it.
func ResolveFormat(flag, file string, registry *parser.Registry) (parser.Format, error) {
	var (
		f   parser.Format
		err error
	)
	if flag != "" {
		f, err = parser.ParseFormat(flag)
	} else {
		var head []byte
		if head, err = fileutils.ReadHead(file); err != nil {
			return "", err
		}
		f, err = parser.DetectFormat(file, head)
	}
	if err != nil {
		return "", err
	}
	if _, err := registry.Get(f); err != nil {
		return "", fmt.Errorf("%w (supported: %v)", err, registry.Formats())
	}
	return f, nil
}
