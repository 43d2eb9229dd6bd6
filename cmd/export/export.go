// Package export writes a tenant's payments as CSV.
package export

import (
	"io"

	"fjacquet/payrecon/cmd/root"
	"fjacquet/payrecon/internal/common"
	"fjacquet/payrecon/internal/fileutils"
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/store"

	"github.com/spf13/cobra"
)

var (
	output    string
	matched   bool
	unmatched bool
	batchID   string
)

// Cmd represents the export command.
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export payments to CSV",
	Long: `Export a tenant's payments to CSV using the configured delimiter.

Example:
  payrecon export -t acme --unmatched -o unmatched.csv
  payrecon export -t acme --batch IMP-20240312T083000.123456789`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, err := root.RequireTenant()
		if err != nil {
			return err
		}
		c := root.GetContainer()
		payments, err := c.GetStore().ListPayments(cmd.Context(), tenant, Filter(matched, unmatched, batchID))
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if output != "" {
			f, err := fileutils.CreateFile(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if err := common.WritePaymentsCSV(w, payments, c.GetConfig().Delimiter()); err != nil {
			return err
		}
		if output != "" {
			root.GetLogger().Info("Payments exported",
				logging.F(logging.FieldFile, output),
				logging.F(logging.FieldCount, len(payments)))
		}
		return nil
	},
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	Cmd.Flags().BoolVar(&matched, "matched", false, "Only matched payments")
	Cmd.Flags().BoolVar(&unmatched, "unmatched", false, "Only unmatched payments")
	Cmd.Flags().StringVar(&batchID, "batch", "", "Only payments of this import batch")
	Cmd.MarkFlagsMutuallyExclusive("matched", "unmatched")
}

// Filter builds the payment filter from the export flags.
func Filter(matched, unmatched bool, batch string) store.PaymentFilter {
	var f store.PaymentFilter
	switch {
	case matched:
		f.Matched = store.Bool(true)
	case unmatched:
		f.Matched = store.Bool(false)
	}
	if batch != "" {
		f.ImportBatch = &batch
	}
	return f
}
