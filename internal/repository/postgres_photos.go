package repository

import (
	"context"

	"civic-portal/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPhotosRepo struct {
	db *pgxpool.Pool
}

func NewPostgresPhotosRepo(db *pgxpool.Pool) *PostgresPhotosRepo {
	return &PostgresPhotosRepo{db: db}
}

func (r *PostgresPhotosRepo) Create(ctx context.Context, p *domain.Photo) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO photos (url, file_name, original_name, taken_at, latitude, longitude, location_label, uploaded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at
	`, p.URL, p.FileName, p.OriginalName, p.TakenAt, p.Latitude, p.Longitude, p.LocationLabel, p.UploadedBy,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *PostgresPhotosRepo) ListAll(ctx context.Context) ([]domain.Photo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.url, p.file_name, p.original_name, p.taken_at, p.latitude, p.longitude,
		       p.location_label, p.uploaded_by, p.created_at,
		       u.name, u.email
		FROM photos p LEFT JOIN users u ON u.id = p.uploaded_by
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []domain.Photo{}
	for rows.Next() {
		var (
			p     domain.Photo
			name  *string
			email *string
		)
		if err := rows.Scan(&p.ID, &p.URL, &p.FileName, &p.OriginalName, &p.TakenAt,
			&p.Latitude, &p.Longitude, &p.LocationLabel, &p.UploadedBy, &p.CreatedAt,
			&name, &email); err != nil {
			return nil, err
		}
		if p.UploadedBy != nil && name != nil && email != nil {
			p.Uploader = &domain.UserRef{ID: *p.UploadedBy, Name: *name, Email: *email}
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}
