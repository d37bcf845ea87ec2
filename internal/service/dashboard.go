package service

import (
	"context"

	"github.com/nkuznetsov/homie-system/internal/model"
)

// OrganizationDashboard — данные панели организации: сама организация,
// её пожертвования со строками, доставки и рассчитанные показатели.
type OrganizationDashboard struct {
	Organization *model.Organization
	Donations    []model.Donation
	Deliveries   []model.DeliveryRecord
	KPIs         model.OrganizationKPIs
}

// GetDashboardSummary возвращает сводку главной панели.
func (s *Service) GetDashboardSummary(ctx context.Context) (*model.DashboardSummary, error) {
	return s.repo.GetDashboardSummary(ctx)
}

// GetOrganizationDashboard собирает панель организации. Отсутствующая
// организация — ошибка "не найдено".
func (s *Service) GetOrganizationDashboard(ctx context.Context, name string) (*OrganizationDashboard, error) {
	org, err := s.repo.GetOrganization(ctx, name)
	if err != nil {
		return nil, err
	}

	donations, err := s.repo.ListDonationsByOrganization(ctx, org.Name)
	if err != nil {
		return nil, err
	}
	deliveries, err := s.repo.ListDeliveriesByOrganization(ctx, org.Name)
	if err != nil {
		return nil, err
	}
	kpis, err := s.repo.GetOrganizationKPIs(ctx, org.Name)
	if err != nil {
		return nil, err
	}

	return &OrganizationDashboard{
		Organization: org,
		Donations:    donations,
		Deliveries:   deliveries,
		KPIs:         *kpis,
	}, nil
}
