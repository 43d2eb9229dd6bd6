// Package automatch re-runs matching over a tenant's unmatched payments.
package automatch

import (
	"fjacquet/payrecon/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the automatch command.
var Cmd = &cobra.Command{
	Use:   "automatch",
	Short: "Match a tenant's unmatched payments against current invoices",
	Long: `Run the matching tiers again over every unmatched payment of a tenant.
Useful after new invoices were issued for payments that arrived first.

Example:
  payrecon automatch -t acme`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, err := root.RequireTenant()
		if err != nil {
			return err
		}
		res, err := root.GetContainer().GetIngest().AutoMatch(cmd.Context(), tenant)
		if err != nil {
			return err
		}
		return root.Render(cmd, res)
	},
}
