package repository

import (
	"context"

	"civic-portal/internal/domain"
)

// RequestFilter drives listing. OwnerID is set by the service layer when the
// caller is a plain citizen; staff and admin list unscoped.
type RequestFilter struct {
	Kind     domain.RequestKind
	Status   string
	Category string
	Search   string
	OwnerID  string
	Page     int
	Limit    int
}

type MonthCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

type RequestsRepo interface {
	Create(ctx context.Context, req *domain.Request) error
	GetByID(ctx context.Context, kind domain.RequestKind, id string) (*domain.Request, error)
	// List returns the page matching the filter, newest first, plus the
	// total count under the same filter.
	List(ctx context.Context, f RequestFilter) ([]domain.Request, int, error)
	ListByUser(ctx context.Context, kind domain.RequestKind, userID string) ([]domain.Request, error)
	UpdateStatus(ctx context.Context, kind domain.RequestKind, id string, status domain.Status, remark *string) error

	// Analytics.
	Count(ctx context.Context, kind domain.RequestKind, status domain.Status) (int, error)
	CountByStatus(ctx context.Context, kind domain.RequestKind) (map[string]int, error)
	MonthlyCounts(ctx context.Context, kind domain.RequestKind, months int) ([]MonthCount, error)
}
