// Package tenant maintains the tenant directory.
package tenant

import (
	"fjacquet/payrecon/cmd/root"
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/models"

	"github.com/spf13/cobra"
)

var (
	name     string
	iban     string
	currency string
)

// Cmd groups the tenant subcommands.
var Cmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants and their collection accounts",
	Long: `Manage the tenant directory. A tenant's IBAN decides the reference style
of its invoices: a QR-IBAN requires QR references, any other IBAN gets
creditor references.

Example:
  payrecon tenant add acme --name "Acme AG" --iban CH4431999123000889012
  payrecon tenant list`,
}

var addCmd = &cobra.Command{
	Use:   "add TENANT_ID",
	Short: "Add or update a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := root.GetContainer().GetTenants()
		t := models.Tenant{ID: args[0], Name: name, IBAN: iban, Currency: currency}
		if err := dir.Upsert(t); err != nil {
			return err
		}
		if err := dir.Save(); err != nil {
			return err
		}
		saved, _ := dir.Lookup(t.ID)
		root.GetLogger().Info("Tenant saved",
			logging.F(logging.FieldTenant, saved.ID),
			logging.F(logging.FieldFile, dir.File))
		return root.Render(cmd, saved)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return root.Render(cmd, root.GetContainer().GetTenants().List())
	},
}

func init() {
	addCmd.Flags().StringVar(&name, "name", "", "Display name")
	addCmd.Flags().StringVar(&iban, "iban", "", "Collection account IBAN")
	addCmd.Flags().StringVar(&currency, "currency", "CHF", "Account currency")
	Cmd.AddCommand(addCmd, listCmd)
}
