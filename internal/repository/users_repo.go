package repository

import (
	"context"

	"civic-portal/internal/domain"
)

type UsersRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByProviderUID(ctx context.Context, uid string) (*domain.User, error)
	// LinkProviderUID backfills the identity-provider subject onto an
	// existing account so future resolutions hit the direct lookup.
	LinkProviderUID(ctx context.Context, userID, uid string) error
}
