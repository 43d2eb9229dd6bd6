// Package match assigns a payment to an invoice by hand.
package match

import (
	"fmt"

	"fjacquet/payrecon/cmd/root"

	"github.com/spf13/cobra"
)

var unmatch bool

// Cmd represents the match command.
var Cmd = &cobra.Command{
	Use:   "match PAYMENT_ID [INVOICE_ID]",
	Short: "Manually match or unmatch a payment",
	Long: `Attach a payment to an invoice, or detach it with --unmatch. The paid
amounts of the previous and the new invoice are recomputed.

Example:
  payrecon match 6f1c... 0b7e...
  payrecon match 6f1c... --unmatch`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := Target(args, unmatch)
		if err != nil {
			return err
		}
		payment, err := root.GetContainer().GetIngest().Rematch(cmd.Context(), args[0], target)
		if err != nil {
			return err
		}
		return root.Render(cmd, payment)
	},
}

func init() {
	Cmd.Flags().BoolVar(&unmatch, "unmatch", false, "Detach the payment from its invoice")
}

// Target returns the invoice id to match to, or nil when unmatching.
func Target(args []string, unmatch bool) (*string, error) {
	switch {
	case unmatch && len(args) == 2:
		return nil, fmt.Errorf("--unmatch does not take an invoice id")
	case unmatch:
		return nil, nil
	case len(args) != 2:
		return nil, fmt.Errorf("an invoice id is required unless --unmatch is set")
	}
	id := args[1]
	return &id, nil
}
