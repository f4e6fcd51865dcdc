package service

import (
	"context"

	"civic-portal/internal/domain"
	"civic-portal/internal/repository"
)

type AnalyticsService struct {
	requests repository.RequestsRepo
}

func NewAnalyticsService(requests repository.RequestsRepo) *AnalyticsService {
	return &AnalyticsService{requests: requests}
}

type Summary struct {
	ComplaintsCount   int `json:"complaintsCount"`
	ServicesCount     int `json:"servicesCount"`
	PendingComplaints int `json:"pendingComplaints"`
	PendingServices   int `json:"pendingServices"`
}

func (s *AnalyticsService) Summary(ctx context.Context) (*Summary, error) {
	var (
		out Summary
		err error
	)
	if out.ComplaintsCount, err = s.requests.Count(ctx, domain.KindComplaint, ""); err != nil {
		return nil, err
	}
	if out.ServicesCount, err = s.requests.Count(ctx, domain.KindService, ""); err != nil {
		return nil, err
	}
	if out.PendingComplaints, err = s.requests.Count(ctx, domain.KindComplaint, domain.StatusPending); err != nil {
		return nil, err
	}
	if out.PendingServices, err = s.requests.Count(ctx, domain.KindService, domain.StatusPending); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnalyticsService) ComplaintsByStatus(ctx context.Context) (map[string]int, error) {
	return s.requests.CountByStatus(ctx, domain.KindComplaint)
}

func (s *AnalyticsService) MonthlyComplaints(ctx context.Context, months int) ([]repository.MonthCount, error) {
	if months < 1 {
		months = 6
	}
	return s.requests.MonthlyCounts(ctx, domain.KindComplaint, months)
}
