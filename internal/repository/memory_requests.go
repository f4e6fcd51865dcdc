package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"civic-portal/internal/domain"
	"civic-portal/internal/xerrors"

	"github.com/google/uuid"
)

// MemoryRequestsRepo backs tests and DB-less development runs. Owner joins
// are resolved against the users repo it is constructed with.
type MemoryRequestsRepo struct {
	mu       sync.RWMutex
	requests map[string]*domain.Request
	users    UsersRepo
}

func NewMemoryRequestsRepo(users UsersRepo) *MemoryRequestsRepo {
	return &MemoryRequestsRepo{
		requests: make(map[string]*domain.Request),
		users:    users,
	}
}

func (r *MemoryRequestsRepo) Create(_ context.Context, req *domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req.ID = uuid.NewString()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *MemoryRequestsRepo) withOwner(ctx context.Context, req domain.Request) domain.Request {
	if r.users != nil {
		if u, err := r.users.GetByID(ctx, req.UserID); err == nil {
			req.Owner = &domain.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return req
}

func (r *MemoryRequestsRepo) GetByID(ctx context.Context, kind domain.RequestKind, id string) (*domain.Request, error) {
	r.mu.RLock()
	req, ok := r.requests[id]
	r.mu.RUnlock()
	if !ok || req.Kind != kind {
		return nil, xerrors.ErrNotFound
	}
	out := r.withOwner(ctx, *req)
	return &out, nil
}

func matches(req *domain.Request, f RequestFilter) bool {
	if req.Kind != f.Kind {
		return false
	}
	if f.Status != "" && string(req.Status) != f.Status {
		return false
	}
	if f.Category != "" && req.Category != f.Category {
		return false
	}
	if f.OwnerID != "" && req.UserID != f.OwnerID {
		return false
	}
	if f.Search != "" {
		s := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(req.Title), s) &&
			!strings.Contains(strings.ToLower(req.Description), s) {
			return false
		}
	}
	return true
}

func (r *MemoryRequestsRepo) sorted(pred func(*domain.Request) bool) []domain.Request {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Request{}
	for _, req := range r.requests {
		if pred(req) {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MemoryRequestsRepo) List(ctx context.Context, f RequestFilter) ([]domain.Request, int, error) {
	all := r.sorted(func(req *domain.Request) bool { return matches(req, f) })
	total := len(all)

	start := (f.Page - 1) * f.Limit
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}

	page := make([]domain.Request, 0, end-start)
	for _, req := range all[start:end] {
		page = append(page, r.withOwner(ctx, req))
	}
	return page, total, nil
}

func (r *MemoryRequestsRepo) ListByUser(ctx context.Context, kind domain.RequestKind, userID string) ([]domain.Request, error) {
	all := r.sorted(func(req *domain.Request) bool {
		return req.Kind == kind && req.UserID == userID
	})
	for i := range all {
		all[i] = r.withOwner(ctx, all[i])
	}
	return all, nil
}

func (r *MemoryRequestsRepo) UpdateStatus(_ context.Context, kind domain.RequestKind, id string, status domain.Status, remark *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok || req.Kind != kind {
		return xerrors.ErrNotFound
	}
	req.Status = status
	if remark != nil {
		req.Remark = remark
	}
	req.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRequestsRepo) Count(_ context.Context, kind domain.RequestKind, status domain.Status) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, req := range r.requests {
		if req.Kind == kind && (status == "" || req.Status == status) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRequestsRepo) CountByStatus(_ context.Context, kind domain.RequestKind) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[string]int{}
	for _, req := range r.requests {
		if req.Kind == kind {
			out[string(req.Status)]++
		}
	}
	return out, nil
}

func (r *MemoryRequestsRepo) MonthlyCounts(_ context.Context, kind domain.RequestKind, months int) ([]MonthCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := time.Now().AddDate(0, -(months - 1), 0)
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())

	byMonth := map[[2]int]int{}
	for _, req := range r.requests {
		if req.Kind != kind || req.CreatedAt.Before(start) {
			continue
		}
		key := [2]int{req.CreatedAt.Year(), int(req.CreatedAt.Month())}
		byMonth[key]++
	}

	series := []MonthCount{}
	for key, n := range byMonth {
		series = append(series, MonthCount{Year: key[0], Month: key[1], Count: n})
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Year != series[j].Year {
			return series[i].Year < series[j].Year
		}
		return series[i].Month < series[j].Month
	})
	return series, nil
}
