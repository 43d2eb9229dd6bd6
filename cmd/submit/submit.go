// Package submit records a single payment.
package submit

import (
	"fmt"

	"fjacquet/payrecon/cmd/root"
	"fjacquet/payrecon/internal/ingest"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	amount      string
	valueDate   string
	reference   string
	description string
)

// Cmd represents the submit command.
var Cmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a single payment and match it",
	Long: `Submit one incoming payment outside of any import batch. The payment is
matched immediately and the matched invoice's paid amount is updated.

Example:
  payrecon submit -t acme --amount 150.00 --date 2024-03-10 --reference 716672059000000000000000017`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, err := root.RequireTenant()
		if err != nil {
			return err
		}
		req, err := Request(cmd)
		if err != nil {
			return err
		}
		in, err := req.Input()
		if err != nil {
			return err
		}
		payment, err := root.GetContainer().GetIngest().SubmitPayment(cmd.Context(), tenant, in)
		if err != nil {
			return err
		}
		return root.Render(cmd, payment)
	},
}

func init() {
	Cmd.Flags().StringVar(&amount, "amount", "", "Payment amount, e.g. 150.00")
	Cmd.Flags().StringVar(&valueDate, "date", "", "Value date (YYYY-MM-DD)")
	Cmd.Flags().StringVar(&reference, "reference", "", "Payment reference")
	Cmd.Flags().StringVar(&description, "description", "", "Free text description")
	_ = Cmd.MarkFlagRequired("amount")
	_ = Cmd.MarkFlagRequired("date")
}

// Request builds the payment request from the command's flags. Optional
// flags that were not given stay nil.
func Request(cmd *cobra.Command) (ingest.PaymentRequest, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return ingest.PaymentRequest{}, fmt.Errorf("invalid --amount: %w", err)
	}
	req := ingest.PaymentRequest{Amount: value, ValueDate: valueDate}
	if cmd.Flags().Changed("reference") {
		r := reference
		req.Reference = &r
	}
	if cmd.Flags().Changed("description") {
		d := description
		req.Description = &d
	}
	return req, nil
}
