package repository

import (
	"context"
	"errors"
	"strconv"

	"civic-portal/internal/domain"
	"civic-portal/internal/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresAnnouncementsRepo struct {
	db *pgxpool.Pool
}

func NewPostgresAnnouncementsRepo(db *pgxpool.Pool) *PostgresAnnouncementsRepo {
	return &PostgresAnnouncementsRepo{db: db}
}

func (r *PostgresAnnouncementsRepo) Create(ctx context.Context, a *domain.Announcement) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO announcements (title, body, image, pinned, author_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at
	`, a.Title, a.Body, a.Image, a.Pinned, a.AuthorID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *PostgresAnnouncementsRepo) List(ctx context.Context, page, limit int, pinned *bool) ([]domain.Announcement, int, error) {
	where := ``
	args := []any{}
	if pinned != nil {
		where = ` WHERE a.pinned=$1`
		args = append(args, *pinned)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM announcements a`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limArg := len(args) + 1
	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.title, a.body, a.image, a.pinned, a.author_id, a.created_at, a.updated_at,
		       u.name, u.email
		FROM announcements a JOIN users u ON u.id = a.author_id`+where+`
		ORDER BY a.pinned DESC, a.created_at DESC
		LIMIT $`+strconv.Itoa(limArg)+` OFFSET $`+strconv.Itoa(limArg+1),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []domain.Announcement{}
	for rows.Next() {
		var (
			a     domain.Announcement
			name  string
			email string
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.Image, &a.Pinned, &a.AuthorID,
			&a.CreatedAt, &a.UpdatedAt, &name, &email); err != nil {
			return nil, 0, err
		}
		a.Author = &domain.UserRef{ID: a.AuthorID, Name: name, Email: email}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *PostgresAnnouncementsRepo) GetByID(ctx context.Context, id string) (*domain.Announcement, error) {
	var (
		a     domain.Announcement
		name  string
		email string
	)
	err := r.db.QueryRow(ctx, `
		SELECT a.id, a.title, a.body, a.image, a.pinned, a.author_id, a.created_at, a.updated_at,
		       u.name, u.email
		FROM announcements a JOIN users u ON u.id = a.author_id
		WHERE a.id=$1
	`, id).Scan(&a.ID, &a.Title, &a.Body, &a.Image, &a.Pinned, &a.AuthorID,
		&a.CreatedAt, &a.UpdatedAt, &name, &email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	a.Author = &domain.UserRef{ID: a.AuthorID, Name: name, Email: email}
	return &a, nil
}
