package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/store"
)

const invoiceColumns = "id, tenant_id, sequence, total_amount, paid_amount, due_date, reference, status, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (models.Invoice, error) {
	var (
		inv       models.Invoice
		due, made string
		status    string
	)
	if err := row.Scan(&inv.ID, &inv.TenantID, &inv.Sequence, &inv.TotalAmount, &inv.PaidAmount,
		&due, &inv.Reference, &status, &made); err != nil {
		return models.Invoice{}, err
	}
	var err error
	if inv.DueDate, err = parseDate(due); err != nil {
		return models.Invoice{}, fmt.Errorf("invoice %s: bad due_date: %w", inv.ID, err)
	}
	if inv.CreatedAt, err = parseTimestamp(made); err != nil {
		return models.Invoice{}, fmt.Errorf("invoice %s: bad created_at: %w", inv.ID, err)
	}
	inv.Status = models.InvoiceStatus(status)
	return inv, nil
}

func (r *repo) FindInvoicesByTenant(ctx context.Context, tenantID string, f store.InvoiceFilter) ([]models.Invoice, error) {
	where := []string{"tenant_id = ?"}
	args := []any{tenantID}

	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if f.Total != nil {
		where = append(where, "total_amount = ?")
		args = append(args, *f.Total)
	}
	if f.DueFrom != nil {
		where = append(where, "due_date >= ?")
		args = append(args, formatDate(*f.DueFrom))
	}
	if f.DueTo != nil {
		where = append(where, "due_date <= ?")
		args = append(args, formatDate(*f.DueTo))
	}
	if f.Reference != nil {
		where = append(where, "reference = ?")
		args = append(args, *f.Reference)
	}

	query := "SELECT " + invoiceColumns + " FROM invoices WHERE " + strings.Join(where, " AND ") +
		" ORDER BY sequence, id"
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying invoices: %w", err)
	}
	defer rows.Close()

	var out []models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *repo) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, notFound(err, "invoice", id)
	}
	return &inv, nil
}

func (r *repo) InsertInvoice(ctx context.Context, inv *models.Invoice) error {
	_, err := r.q.ExecContext(ctx, `
	INSERT INTO invoices(id, tenant_id, sequence, total_amount, paid_amount, due_date, reference, status, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		inv.ID, inv.TenantID, inv.Sequence, inv.TotalAmount, inv.PaidAmount,
		formatDate(inv.DueDate), inv.Reference, string(inv.Status), formatTimestamp(inv.CreatedAt))
	if err != nil {
		return fmt.Errorf("error inserting invoice %s: %w", inv.ID, err)
	}
	return nil
}

func (r *repo) UpdateInvoiceLedger(ctx context.Context, id string, paidAmount int64, status models.InvoiceStatus) error {
	res, err := r.q.ExecContext(ctx, `UPDATE invoices SET paid_amount = ?, status = ? WHERE id = ?`,
		paidAmount, string(status), id)
	if err != nil {
		return fmt.Errorf("error updating invoice %s: %w", id, err)
	}
	return expectOne(res, "invoice", id)
}

func (r *repo) SumMatchedPayments(ctx context.Context, invoiceID string) (int64, error) {
	var sum sql.NullInt64
	err := r.q.QueryRowContext(ctx,
		`SELECT SUM(amount) FROM payments WHERE invoice_id = ? AND matched = 1`, invoiceID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("error summing payments of invoice %s: %w", invoiceID, err)
	}
	return sum.Int64, nil
}

func (r *repo) NextInvoiceSequence(ctx context.Context, tenantID string) (int64, error) {
	var next int64
	err := r.q.QueryRowContext(ctx, `
	INSERT INTO invoice_sequences(tenant_id, last_value) VALUES(?, 1)
	ON CONFLICT(tenant_id) DO UPDATE SET last_value = last_value + 1
	RETURNING last_value;
	`, tenantID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("error allocating invoice sequence for %s: %w", tenantID, err)
	}
	return next, nil
}
