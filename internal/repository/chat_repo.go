package repository

import (
	"context"

	"civic-portal/internal/domain"
)

type ChatRepo interface {
	Insert(ctx context.Context, msg *domain.ChatMessage) error
	// History returns all messages for a room, oldest first, with sender
	// and recipient joined in.
	History(ctx context.Context, room string) ([]domain.ChatMessage, error)
}
