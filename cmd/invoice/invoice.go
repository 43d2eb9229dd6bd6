// Package invoice manages invoices: issuing, listing, cancelling and
// marking them overdue.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/payrecon/cmd/root"
	"fjacquet/payrecon/internal/currencyutils"
	"fjacquet/payrecon/internal/dateutils"
	"fjacquet/payrecon/internal/invoicing"
	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/reference"

	"github.com/spf13/cobra"
)

var (
	amount   string
	dueDate  string
	style    string
	statuses []string
	asOf     string
)

// Cmd groups the invoice subcommands.
var Cmd = &cobra.Command{
	Use:   "invoice",
	Short: "Issue and manage invoices",
	Long: `Issue and manage the invoices payments are reconciled against.

Every issued invoice receives the tenant's next sequence number and a
structured payment reference derived from it.

Example:
  payrecon invoice issue -t acme --amount 150.00 --due 2024-03-31
  payrecon invoice list -t acme --status OPEN --status OVERDUE`,
}

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a new invoice",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, err := root.RequireTenant()
		if err != nil {
			return err
		}
		req, err := issueRequest(tenant)
		if err != nil {
			return err
		}
		inv, err := root.GetContainer().GetIssuer().Issue(cmd.Context(), req)
		if err != nil {
			return err
		}
		return root.Render(cmd, inv)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a tenant's invoices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, err := root.RequireTenant()
		if err != nil {
			return err
		}
		filter, err := ParseStatuses(statuses)
		if err != nil {
			return err
		}
		invoices, err := root.GetContainer().GetIssuer().List(cmd.Context(), tenant, filter...)
		if err != nil {
			return err
		}
		if invoices == nil {
			invoices = []models.Invoice{}
		}
		return root.Render(cmd, invoices)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel INVOICE_ID",
	Short: "Cancel an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := root.GetContainer().GetIssuer().Cancel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return root.Render(cmd, inv)
	},
}

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "Mark open invoices past their due date as overdue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, err := root.RequireTenant()
		if err != nil {
			return err
		}
		day := time.Now()
		if asOf != "" {
			if day, err = dateutils.ParseISODate(asOf); err != nil {
				return fmt.Errorf("invalid --as-of: %w", err)
			}
		}
		marked, err := root.GetContainer().GetIssuer().MarkOverdue(cmd.Context(), tenant, day)
		if err != nil {
			return err
		}
		if marked == nil {
			marked = []models.Invoice{}
		}
		return root.Render(cmd, marked)
	},
}

func init() {
	issueCmd.Flags().StringVar(&amount, "amount", "", "Invoice total, e.g. 150.00")
	issueCmd.Flags().StringVar(&dueDate, "due", "", "Due date (YYYY-MM-DD)")
	issueCmd.Flags().StringVar(&style, "style", "", "Reference style: qrr or scor (default from tenant IBAN)")
	_ = issueCmd.MarkFlagRequired("amount")
	_ = issueCmd.MarkFlagRequired("due")

	listCmd.Flags().StringSliceVar(&statuses, "status", nil, "Only list invoices in these statuses")

	overdueCmd.Flags().StringVar(&asOf, "as-of", "", "Reference day (YYYY-MM-DD, default today)")

	Cmd.AddCommand(issueCmd, listCmd, cancelCmd, overdueCmd)
}

func issueRequest(tenant string) (invoicing.IssueRequest, error) {
	total, err := currencyutils.ParseMinorUnits(amount)
	if err != nil {
		return invoicing.IssueRequest{}, fmt.Errorf("invalid --amount: %w", err)
	}
	due, err := dateutils.ParseISODate(dueDate)
	if err != nil {
		return invoicing.IssueRequest{}, fmt.Errorf("invalid --due: %w", err)
	}
	req := invoicing.IssueRequest{TenantID: tenant, TotalAmount: total, DueDate: due}
	if style != "" {
		if req.Style, err = reference.ParseStyle(style); err != nil {
			return invoicing.IssueRequest{}, err
		}
	}
	return req, nil
}

// ParseStatuses converts status names to InvoiceStatus values.
func ParseStatuses(names []string) ([]models.InvoiceStatus, error) {
	out := make([]models.InvoiceStatus, 0, len(names))
	for _, n := range names {
		s := models.InvoiceStatus(strings.ToUpper(strings.TrimSpace(n)))
		if !s.Valid() {
			return nil, fmt.Errorf("unknown invoice status %q", n)
		}
		out = append(out, s)
	}
	return out, nil
}
