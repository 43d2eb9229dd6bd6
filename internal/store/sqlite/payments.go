package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fjacquet/payrecon/internal/models"
	"fjacquet/payrecon/internal/store"
)

const paymentColumns = "id, tenant_id, invoice_id, amount, value_date, reference, description, confidence, matched, import_batch, raw_source, created_at"

func scanPayment(row rowScanner) (models.Payment, error) {
	var (
		p                        models.Payment
		invoiceID, ref, desc     sql.NullString
		batch                    sql.NullString
		valueDate, made, confStr string
	)
	if err := row.Scan(&p.ID, &p.TenantID, &invoiceID, &p.Amount, &valueDate, &ref, &desc,
		&confStr, &p.Matched, &batch, &p.RawSource, &made); err != nil {
		return models.Payment{}, err
	}
	var err error
	if p.ValueDate, err = parseDate(valueDate); err != nil {
		return models.Payment{}, fmt.Errorf("payment %s: bad value_date: %w", p.ID, err)
	}
	if p.CreatedAt, err = parseTimestamp(made); err != nil {
		return models.Payment{}, fmt.Errorf("payment %s: bad created_at: %w", p.ID, err)
	}
	p.InvoiceID = nullable(invoiceID)
	p.Reference = nullable(ref)
	p.Description = nullable(desc)
	p.ImportBatch = nullable(batch)
	p.Confidence = models.Confidence(confStr)
	return p, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func (r *repo) InsertPayment(ctx context.Context, p *models.Payment) error {
	_, err := r.q.ExecContext(ctx, `
	INSERT INTO payments(id, tenant_id, invoice_id, amount, value_date, reference, description,
	 confidence, matched, import_batch, raw_source, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		p.ID, p.TenantID, p.InvoiceID, p.Amount, formatDate(p.ValueDate), p.Reference, p.Description,
		string(p.Confidence), p.Matched, p.ImportBatch, p.RawSource, formatTimestamp(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("error inserting payment %s: %w", p.ID, err)
	}
	return nil
}

func (r *repo) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = ?", id)
	p, err := scanPayment(row)
	if err != nil {
		return nil, notFound(err, "payment", id)
	}
	return &p, nil
}

func (r *repo) UpdatePaymentMatch(ctx context.Context, id string, invoiceID *string, confidence models.Confidence) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE payments SET invoice_id = ?, matched = ?, confidence = ? WHERE id = ?`,
		invoiceID, invoiceID != nil, string(confidence), id)
	if err != nil {
		return fmt.Errorf("error updating match of payment %s: %w", id, err)
	}
	return expectOne(res, "payment", id)
}

func (r *repo) ListPayments(ctx context.Context, tenantID string, f store.PaymentFilter) ([]models.Payment, error) {
	where := []string{"tenant_id = ?"}
	args := []any{tenantID}

	if f.Matched != nil {
		where = append(where, "matched = ?")
		args = append(args, *f.Matched)
	}
	if f.ImportBatch != nil {
		where = append(where, "import_batch = ?")
		args = append(args, *f.ImportBatch)
	}

	query := "SELECT " + paymentColumns + " FROM payments WHERE " + strings.Join(where, " AND ") +
		" ORDER BY created_at, id"
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying payments: %w", err)
	}
	defer rows.Close()

	var out []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
