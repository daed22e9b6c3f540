package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-crm/internal/platform/db"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

var ErrNotFound = fmt.Errorf("%w: document", httpx.ErrNotFound)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Document, error)
	GetByReference(ctx context.Context, ref uuid.UUID) (*Document, error)
	List(ctx context.Context, req ListRequest) ([]Document, int, error)
	Create(ctx context.Context, doc Document) (int64, error)
	Update(ctx context.Context, doc Document) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	ReplaceLines(ctx context.Context, documentID int64, lines []Line) error
	NextSequence(ctx context.Context, companyID int64, kind Kind, period string) (int64, error)
	ListDraftIDsByTax(ctx context.Context, taxID int64) ([]int64, error)
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const documentColumns = `id, reference, kind, doc_number, company_id, customer_name, customer_email,
	issue_date, due_date, status, currency, tax_enabled, discount_type, discount_value,
	subtotal, total_tax, total_line_discount, document_discount_amount, total_discount,
	grand_total, notes, created_at, updated_at`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(
		&d.ID, &d.Reference, &d.Kind, &d.DocNumber, &d.CompanyID, &d.CustomerName, &d.CustomerEmail,
		&d.IssueDate, &d.DueDate, &d.Status, &d.Currency, &d.TaxEnabled, &d.DiscountType, &d.DiscountValue,
		&d.Subtotal, &d.TotalTax, &d.TotalLineDiscount, &d.DocumentDiscountAmount, &d.TotalDiscount,
		&d.GrandTotal, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r *repository) Get(ctx context.Context, id int64) (*Document, error) {
	return r.getWhere(ctx, `id = $1`, id)
}

func (r *repository) GetByReference(ctx context.Context, ref uuid.UUID) (*Document, error) {
	return r.getWhere(ctx, `reference = $1`, ref)
}

func (r *repository) getWhere(ctx context.Context, cond string, arg any) (*Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM sales_documents WHERE `+cond, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	lines, err := r.lines(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.Lines = lines
	return &d, nil
}

func (r *repository) lines(ctx context.Context, documentID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, line_order, name, description, quantity, unit_price, discount_percent,
			tax_id, tax_name, tax_percent, amount, discount_amount, tax_amount, line_total
		FROM sales_document_lines
		WHERE document_id = $1
		ORDER BY line_order ASC, id ASC`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(
			&l.ID, &l.DocumentID, &l.LineOrder, &l.Name, &l.Description, &l.Quantity, &l.UnitPrice,
			&l.DiscountPercent, &l.TaxID, &l.TaxName, &l.TaxPercent, &l.Amount, &l.DiscountAmount,
			&l.TaxAmount, &l.LineTotal,
		); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Document, int, error) {
	conditions := []string{"company_id = $1", "kind = $2"}
	args := []any{req.CompanyID, req.Kind}

	if req.Status != nil {
		args = append(args, *req.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if req.Search != "" {
		args = append(args, "%"+req.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(doc_number ILIKE $%d OR customer_name ILIKE $%d)", len(args), len(args)))
	}
	if req.From != nil {
		args = append(args, *req.From)
		conditions = append(conditions, fmt.Sprintf("issue_date >= $%d", len(args)))
	}
	if req.To != nil {
		args = append(args, *req.To)
		conditions = append(conditions, fmt.Sprintf("issue_date <= $%d", len(args)))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales_documents`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + documentColumns + ` FROM sales_documents` + where + ` ORDER BY issue_date DESC, id DESC`
	if req.Limit > 0 {
		args = append(args, req.Limit, req.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, d Document) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sales_documents (
			reference, kind, doc_number, company_id, customer_name, customer_email,
			issue_date, due_date, status, currency, tax_enabled, discount_type, discount_value,
			subtotal, total_tax, total_line_discount, document_discount_amount, total_discount,
			grand_total, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id`,
		d.Reference, d.Kind, d.DocNumber, d.CompanyID, d.CustomerName, d.CustomerEmail,
		d.IssueDate, d.DueDate, d.Status, d.Currency, d.TaxEnabled, d.DiscountType, d.DiscountValue,
		d.Subtotal, d.TotalTax, d.TotalLineDiscount, d.DocumentDiscountAmount, d.TotalDiscount,
		d.GrandTotal, d.Notes,
	).Scan(&id)
	return id, err
}

// Update rewrites the editable header fields and stored totals of a draft.
// It returns ErrNotEditable when the row is missing or has left DRAFT.
func (r *repository) Update(ctx context.Context, d Document) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sales_documents SET
			customer_name = $2, customer_email = $3, issue_date = $4, due_date = $5, currency = $6,
			tax_enabled = $7, discount_type = $8, discount_value = $9, subtotal = $10, total_tax = $11,
			total_line_discount = $12, document_discount_amount = $13, total_discount = $14,
			grand_total = $15, notes = $16, updated_at = $17
		WHERE id = $1 AND status = $18`,
		d.ID, d.CustomerName, d.CustomerEmail, d.IssueDate, d.DueDate, d.Currency,
		d.TaxEnabled, d.DiscountType, d.DiscountValue, d.Subtotal, d.TotalTax,
		d.TotalLineDiscount, d.DocumentDiscountAmount, d.TotalDiscount,
		d.GrandTotal, d.Notes, time.Now(), StatusDraft,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotEditable
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE sales_documents SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ReplaceLines(ctx context.Context, documentID int64, lines []Line) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sales_document_lines WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}
	for _, l := range lines {
		_, err := r.db.Exec(ctx, `
			INSERT INTO sales_document_lines (
				document_id, line_order, name, description, quantity, unit_price, discount_percent,
				tax_id, tax_name, tax_percent, amount, discount_amount, tax_amount, line_total
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			documentID, l.LineOrder, l.Name, l.Description, l.Quantity, l.UnitPrice, l.DiscountPercent,
			l.TaxID, l.TaxName, l.TaxPercent, l.Amount, l.DiscountAmount, l.TaxAmount, l.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert line %d: %w", l.LineOrder, err)
		}
	}
	return nil
}

// NextSequence allocates the next number in a company's monthly sequence for
// kind. It must run inside the transaction that inserts the document.
func (r *repository) NextSequence(ctx context.Context, companyID int64, kind Kind, period string) (int64, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sales_document_sequences (company_id, kind, period, last_seq)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, kind, period)
		DO UPDATE SET last_seq = sales_document_sequences.last_seq + 1
		RETURNING last_seq`, companyID, kind, period).Scan(&seq)
	return seq, err
}

// ListDraftIDsByTax returns draft documents with at least one line using taxID.
func (r *repository) ListDraftIDsByTax(ctx context.Context, taxID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT d.id
		FROM sales_documents d
		JOIN sales_document_lines l ON l.document_id = d.id
		WHERE l.tax_id = $1 AND d.status = $2
		ORDER BY d.id`, taxID, StatusDraft)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
