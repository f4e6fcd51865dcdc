package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"civic-portal/internal/domain"
	"civic-portal/internal/xerrors"

	"github.com/google/uuid"
)

type MemoryAnnouncementsRepo struct {
	mu    sync.RWMutex
	items map[string]*domain.Announcement
}

func NewMemoryAnnouncementsRepo() *MemoryAnnouncementsRepo {
	return &MemoryAnnouncementsRepo{items: make(map[string]*domain.Announcement)}
}

func (r *MemoryAnnouncementsRepo) Create(_ context.Context, a *domain.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *MemoryAnnouncementsRepo) List(_ context.Context, page, limit int, pinned *bool) ([]domain.Announcement, int, error) {
	r.mu.RLock()
	all := []domain.Announcement{}
	for _, a := range r.items {
		if pinned != nil && a.Pinned != *pinned {
			continue
		}
		all = append(all, *a)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Pinned != all[j].Pinned {
			return all[i].Pinned
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *MemoryAnnouncementsRepo) GetByID(_ context.Context, id string) (*domain.Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, xerrors.ErrNotFound
}
