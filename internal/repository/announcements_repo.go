package repository

import (
	"context"

	"civic-portal/internal/domain"
)

type AnnouncementsRepo interface {
	Create(ctx context.Context, a *domain.Announcement) error
	// List returns a page ordered pinned-first then newest-first, plus the
	// total count. pinned filters when non-nil.
	List(ctx context.Context, page, limit int, pinned *bool) ([]domain.Announcement, int, error)
	GetByID(ctx context.Context, id string) (*domain.Announcement, error)
}
