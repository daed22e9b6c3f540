package taxes

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-crm/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Tax, int, error)
	ListAll(ctx context.Context) ([]Tax, error)
	Get(ctx context.Context, id int64) (Tax, error)
	Create(ctx context.Context, tax Tax) (Tax, error)
	Update(ctx context.Context, id int64, tax Tax) (Tax, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const taxColumns = `id, code, name, rate, created_at, updated_at`

func scanTax(row pgx.Row) (Tax, error) {
	var t Tax
	err := row.Scan(&t.ID, &t.Code, &t.Name, &t.Rate, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Tax, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND (name ILIKE $1 OR code ILIKE $1)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM taxes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + taxColumns + ` FROM taxes` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.Limit, filters.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var taxes []Tax
	for rows.Next() {
		t, err := scanTax(rows)
		if err != nil {
			return nil, 0, err
		}
		taxes = append(taxes, t)
	}
	return taxes, total, rows.Err()
}

// ListAll returns every tax ordered by name, the order shown in dropdowns.
func (r *repository) ListAll(ctx context.Context) ([]Tax, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taxColumns+` FROM taxes ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taxes []Tax
	for rows.Next() {
		t, err := scanTax(rows)
		if err != nil {
			return nil, err
		}
		taxes = append(taxes, t)
	}
	return taxes, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Tax, error) {
	t, err := scanTax(r.pool.QueryRow(ctx, `SELECT `+taxColumns+` FROM taxes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Tax{}, shared.ErrNotFound
	}
	return t, err
}

func (r *repository) Create(ctx context.Context, tax Tax) (Tax, error) {
	created, err := scanTax(r.pool.QueryRow(ctx,
		`INSERT INTO taxes (code, name, rate) VALUES ($1, $2, $3) RETURNING `+taxColumns,
		strings.TrimSpace(tax.Code), strings.TrimSpace(tax.Name), tax.Rate,
	))
	if err != nil {
		return Tax{}, mapWriteError(err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, tax Tax) (Tax, error) {
	updated, err := scanTax(r.pool.QueryRow(ctx,
		`UPDATE taxes SET code = $1, name = $2, rate = $3, updated_at = clock_timestamp()
		WHERE id = $4 RETURNING `+taxColumns,
		strings.TrimSpace(tax.Code), strings.TrimSpace(tax.Name), tax.Rate, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Tax{}, shared.ErrNotFound
	}
	if err != nil {
		return Tax{}, mapWriteError(err)
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM taxes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "rate":
		return "rate " + dir
	default:
		return "name " + dir
	}
}
