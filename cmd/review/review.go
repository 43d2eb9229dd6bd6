// Package review lists unmatched payments with matching hints.
package review

import (
	"fjacquet/payrecon/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the review command.
var Cmd = &cobra.Command{
	Use:   "review",
	Short: "Review payments that need manual matching",
	Long: `Review the tenant's unmatched payments. Each one is listed with the
invoices whose reference is within a few edits of the payment's reference
and the outstanding invoices of the same amount. With AI enabled a short
suggestion is added per payment.

Example:
  payrecon review -t acme --output-format yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, err := root.RequireTenant()
		if err != nil {
			return err
		}
		report, err := root.GetContainer().GetReviewer().Review(cmd.Context(), tenant)
		if err != nil {
			return err
		}
		return root.Render(cmd, report)
	},
}
