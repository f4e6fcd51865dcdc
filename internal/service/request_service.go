package service

import (
	"context"
	"strings"

	"civic-portal/internal/domain"
	"civic-portal/internal/repository"
	"civic-portal/internal/xerrors"

	"go.uber.org/zap"
)

// Actor is the resolved caller identity the access gate hands to the
// lifecycle manager.
type Actor struct {
	UserID  string
	IsStaff bool
	IsAdmin bool
}

func (a Actor) canViewAll() bool { return a.IsStaff || a.IsAdmin }

// RequestService owns creation, listing and status transitions for both
// lifecycle record kinds. Transitions are deliberately permissive: any
// authorized caller may set any of the four states from any state.
type RequestService struct {
	repo   repository.RequestsRepo
	logger *zap.Logger
}

func NewRequestService(repo repository.RequestsRepo, logger *zap.Logger) *RequestService {
	return &RequestService{repo: repo, logger: logger}
}

type CreateInput struct {
	Kind        domain.RequestKind
	Title       string
	Category    string
	Description string
	Location    domain.Location
	Attachments []string

	PaymentRequired bool
}

func (in CreateInput) validate() error {
	switch in.Kind {
	case domain.KindComplaint:
		if strings.TrimSpace(in.Title) == "" ||
			strings.TrimSpace(in.Category) == "" ||
			strings.TrimSpace(in.Description) == "" {
			return xerrors.ErrMissingFields
		}
	case domain.KindService:
		if strings.TrimSpace(in.Category) == "" ||
			strings.TrimSpace(in.Description) == "" ||
			strings.TrimSpace(in.Location.Address) == "" {
			return xerrors.ErrMissingFields
		}
	default:
		return xerrors.ErrInvalidRequest
	}
	return nil
}

// Create persists a new record owned by the actor. Status is always pending
// regardless of caller input; attachments must already be stored.
func (s *RequestService) Create(ctx context.Context, actor Actor, in CreateInput) (*domain.Request, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	req := &domain.Request{
		Kind:            in.Kind,
		Title:           in.Title,
		Category:        in.Category,
		Description:     in.Description,
		Location:        in.Location,
		Attachments:     in.Attachments,
		PaymentRequired: in.PaymentRequired,
		UserID:          actor.UserID,
		Status:          domain.StatusPending,
	}
	if req.Attachments == nil {
		req.Attachments = []string{}
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info("request created",
		zap.String("kind", string(in.Kind)), zap.String("id", req.ID), zap.String("user_id", actor.UserID))
	return req, nil
}

type ListParams struct {
	Kind     domain.RequestKind
	Status   string
	Category string
	Search   string
	Page     int
	Limit    int
}

type RequestPage struct {
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Total      int              `json:"total"`
	Items      []domain.Request `json:"items"`
}

// List applies the ownership scope: plain citizens only ever see their own
// records, staff and admin see everything matching the filter.
func (s *RequestService) List(ctx context.Context, actor Actor, p ListParams) (*RequestPage, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}

	f := repository.RequestFilter{
		Kind:     p.Kind,
		Status:   strings.ToLower(strings.TrimSpace(p.Status)),
		Category: p.Category,
		Search:   p.Search,
		Page:     p.Page,
		Limit:    p.Limit,
	}
	if !actor.canViewAll() {
		f.OwnerID = actor.UserID
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	totalPages := (total + p.Limit - 1) / p.Limit
	return &RequestPage{Page: p.Page, TotalPages: totalPages, Total: total, Items: items}, nil
}

func (s *RequestService) GetByID(ctx context.Context, kind domain.RequestKind, id string) (*domain.Request, error) {
	return s.repo.GetByID(ctx, kind, id)
}

func (s *RequestService) ListByUser(ctx context.Context, kind domain.RequestKind, userID string) ([]domain.Request, error) {
	return s.repo.ListByUser(ctx, kind, userID)
}

// UpdateStatus normalizes the target status to lowercase, stores the remark
// when one is supplied, and returns the updated record. A missing id is a
// not-found error, never a silently created record.
func (s *RequestService) UpdateStatus(ctx context.Context, kind domain.RequestKind, id, status, remark string) (*domain.Request, error) {
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var remarkPtr *string
	if strings.TrimSpace(remark) != "" {
		remarkPtr = &remark
	}

	if err := s.repo.UpdateStatus(ctx, kind, id, st, remarkPtr); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, kind, id)
}
