package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"civic-portal/internal/domain"
	"civic-portal/internal/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRequestsRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRequestsRepo(db *pgxpool.Pool) *PostgresRequestsRepo {
	return &PostgresRequestsRepo{db: db}
}

func (r *PostgresRequestsRepo) Create(ctx context.Context, req *domain.Request) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO requests
			(kind, title, category, description, lat, lng, address, attachments, payment_required, user_id, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at
	`, req.Kind, req.Title, req.Category, req.Description,
		req.Location.Lat, req.Location.Lng, req.Location.Address,
		req.Attachments, req.PaymentRequired, req.UserID, req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

const requestColumns = `
	r.id, r.kind, r.title, r.category, r.description, r.lat, r.lng, r.address,
	r.attachments, r.payment_required, r.user_id, r.status, r.remark,
	r.created_at, r.updated_at, u.name, u.email`

func scanRequest(row pgx.Row) (*domain.Request, error) {
	var (
		req       domain.Request
		ownerName string
		ownerMail string
	)
	err := row.Scan(
		&req.ID, &req.Kind, &req.Title, &req.Category, &req.Description,
		&req.Location.Lat, &req.Location.Lng, &req.Location.Address,
		&req.Attachments, &req.PaymentRequired, &req.UserID, &req.Status,
		&req.Remark, &req.CreatedAt, &req.UpdatedAt, &ownerName, &ownerMail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	req.Owner = &domain.UserRef{ID: req.UserID, Name: ownerName, Email: ownerMail}
	return &req, nil
}

func (r *PostgresRequestsRepo) GetByID(ctx context.Context, kind domain.RequestKind, id string) (*domain.Request, error) {
	return scanRequest(r.db.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM requests r JOIN users u ON u.id = r.user_id
		WHERE r.id=$1 AND r.kind=$2
	`, id, kind))
}

func buildFilter(f RequestFilter) (string, []any) {
	conds := []string{"r.kind=$1"}
	args := []any{f.Kind}

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("r.status=$%d", f.Status)
	}
	if f.Category != "" {
		add("r.category=$%d", f.Category)
	}
	if f.OwnerID != "" {
		add("r.user_id=$%d", f.OwnerID)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(r.title ILIKE $%d OR r.description ILIKE $%d)", n, n))
	}
	return strings.Join(conds, " AND "), args
}

func (r *PostgresRequestsRepo) List(ctx context.Context, f RequestFilter) ([]domain.Request, int, error) {
	where, args := buildFilter(f)

	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM requests r WHERE `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	pageArgs := append(args, f.Limit, offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT `+requestColumns+`
		FROM requests r JOIN users u ON u.id = r.user_id
		WHERE `+where+`
		ORDER BY r.created_at DESC
		LIMIT $%d OFFSET $%d
	`, len(args)+1, len(args)+2), pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []domain.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *req)
	}
	return items, total, rows.Err()
}

func (r *PostgresRequestsRepo) ListByUser(ctx context.Context, kind domain.RequestKind, userID string) ([]domain.Request, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+requestColumns+`
		FROM requests r JOIN users u ON u.id = r.user_id
		WHERE r.kind=$1 AND r.user_id=$2
		ORDER BY r.created_at DESC
	`, kind, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *req)
	}
	return items, rows.Err()
}

func (r *PostgresRequestsRepo) UpdateStatus(ctx context.Context, kind domain.RequestKind, id string, status domain.Status, remark *string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE requests
		SET status=$1, remark=COALESCE($2, remark), updated_at=NOW()
		WHERE id=$3 AND kind=$4
	`, status, remark, id, kind)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *PostgresRequestsRepo) Count(ctx context.Context, kind domain.RequestKind, status domain.Status) (int, error) {
	q := `SELECT COUNT(*) FROM requests WHERE kind=$1`
	args := []any{kind}
	if status != "" {
		q += ` AND status=$2`
		args = append(args, status)
	}
	var n int
	err := r.db.QueryRow(ctx, q, args...).Scan(&n)
	return n, err
}

func (r *PostgresRequestsRepo) CountByStatus(ctx context.Context, kind domain.RequestKind) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*) FROM requests WHERE kind=$1 GROUP BY status
	`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *PostgresRequestsRepo) MonthlyCounts(ctx context.Context, kind domain.RequestKind, months int) ([]MonthCount, error) {
	start := time.Now().AddDate(0, -(months - 1), 0)
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())

	rows, err := r.db.Query(ctx, `
		SELECT EXTRACT(YEAR FROM created_at)::int,
		       EXTRACT(MONTH FROM created_at)::int,
		       COUNT(*)
		FROM requests
		WHERE kind=$1 AND created_at >= $2
		GROUP BY 1, 2
		ORDER BY 1, 2
	`, kind, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := []MonthCount{}
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Year, &mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		series = append(series, mc)
	}
	return series, rows.Err()
}
