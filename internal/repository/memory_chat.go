package repository

import (
	"context"
	"sync"
	"time"

	"civic-portal/internal/domain"

	"github.com/google/uuid"
)

type MemoryChatRepo struct {
	mu       sync.RWMutex
	messages []domain.ChatMessage
}

func NewMemoryChatRepo() *MemoryChatRepo {
	return &MemoryChatRepo{}
}

func (r *MemoryChatRepo) Insert(_ context.Context, msg *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *MemoryChatRepo) History(_ context.Context, room string) ([]domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.ChatMessage{}
	for _, m := range r.messages {
		if m.Room == room {
			out = append(out, m)
		}
	}
	return out, nil
}
