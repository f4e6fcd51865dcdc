package repository

import (
	"context"
	"sync"
	"time"

	"civic-portal/internal/domain"
	"civic-portal/internal/xerrors"

	"github.com/google/uuid"
)

// MemoryUsersRepo backs tests and DB-less development runs.
type MemoryUsersRepo struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewMemoryUsersRepo() *MemoryUsersRepo {
	return &MemoryUsersRepo{users: make(map[string]*domain.User)}
}

func (r *MemoryUsersRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Exact match, like the unique index on users.email. Callers are
	// responsible for lowercasing.
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return xerrors.ErrEmailAlreadyInUse
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *MemoryUsersRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, xerrors.ErrNotFound
}

func (r *MemoryUsersRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *MemoryUsersRepo) GetByProviderUID(_ context.Context, uid string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ProviderUID != nil && *u.ProviderUID == uid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *MemoryUsersRepo) LinkProviderUID(_ context.Context, userID, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrNotFound
	}
	u.ProviderUID = &uid
	u.UpdatedAt = time.Now()
	return nil
}
