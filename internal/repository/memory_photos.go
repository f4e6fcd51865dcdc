package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"civic-portal/internal/domain"

	"github.com/google/uuid"
)

type MemoryPhotosRepo struct {
	mu     sync.RWMutex
	photos []domain.Photo
}

func NewMemoryPhotosRepo() *MemoryPhotosRepo {
	return &MemoryPhotosRepo{}
}

func (r *MemoryPhotosRepo) Create(_ context.Context, p *domain.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	r.photos = append(r.photos, *p)
	return nil
}

func (r *MemoryPhotosRepo) ListAll(_ context.Context) ([]domain.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Photo, len(r.photos))
	copy(out, r.photos)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
