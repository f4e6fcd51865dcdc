package repository

import (
	"context"

	"civic-portal/internal/domain"
)

type PhotosRepo interface {
	Create(ctx context.Context, p *domain.Photo) error
	ListAll(ctx context.Context) ([]domain.Photo, error)
}
