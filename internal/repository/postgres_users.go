package repository

import (
	"context"
	"errors"

	"civic-portal/internal/domain"
	"civic-portal/internal/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresUsersRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUsersRepo(db *pgxpool.Pool) *PostgresUsersRepo {
	return &PostgresUsersRepo{db: db}
}

const userColumns = `id, provider_uid, name, email, phone, address, role, department, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.ProviderUID, &u.Name, &u.Email, &u.Phone, &u.Address,
		&u.Role, &u.Department, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUsersRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (provider_uid, name, email, phone, address, role, department, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at
	`, u.ProviderUID, u.Name, u.Email, u.Phone, u.Address, u.Role, u.Department, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return xerrors.ErrEmailAlreadyInUse
		}
		return err
	}
	return nil
}

func (r *PostgresUsersRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *PostgresUsersRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *PostgresUsersRepo) GetByProviderUID(ctx context.Context, uid string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE provider_uid=$1`, uid))
}

func (r *PostgresUsersRepo) LinkProviderUID(ctx context.Context, userID, uid string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET provider_uid=$1, updated_at=NOW() WHERE id=$2
	`, uid, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
