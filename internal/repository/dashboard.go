package repository

import (
	"context"
	"fmt"

	"github.com/nkuznetsov/homie-system/internal/model"
)

// Количество последних записей в сводке панели.
const dashboardRecentLimit = 10

// GetDashboardSummary собирает сводные показатели главной панели:
// счётчики, общую сумму пожертвований и последние записи справочников.
func (r *PostgresRepository) GetDashboardSummary(ctx context.Context) (*model.DashboardSummary, error) {
	var (
		s          model.DashboardSummary
		totalCents int64
	)

	err := r.pool.QueryRow(ctx,
		`SELECT
		     (SELECT count(*) FROM products),
		     (SELECT count(*) FROM products WHERE status = $1),
		     (SELECT count(*) FROM donations),
		     (SELECT COALESCE(sum(total_cents), 0) FROM donations),
		     (SELECT count(*) FROM organizations WHERE status = $2)`,
		string(model.ProductOutOfStock), string(model.OrganizationActive),
	).Scan(&s.TotalProducts, &s.OutOfStock, &s.TotalDonations, &totalCents, &s.ActiveOrganizations)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	s.TotalAmount = float64(totalCents) / 100

	rows, err := r.pool.Query(ctx,
		`SELECT `+organizationColumns+` FROM organizations ORDER BY updated_at DESC LIMIT $1`,
		dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboard organizations: %w", err)
	}
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		s.LatestOrganizations = append(s.LatestOrganizations, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	rows, err = r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY updated_at DESC LIMIT $1`,
		dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboard products: %w", err)
	}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		s.LatestProducts = append(s.LatestProducts, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	rows, err = r.pool.Query(ctx,
		`SELECT `+personColumns+` FROM persons ORDER BY updated_at DESC LIMIT $1`,
		dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboard persons: %w", err)
	}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		s.LatestPersons = append(s.LatestPersons, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	donations, err := r.selectDonations(ctx,
		`SELECT `+donationColumns+` FROM donations ORDER BY updated_at DESC LIMIT $1`,
		dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	s.LatestDonations = donations

	return &s, nil
}

// GetOrganizationKPIs считает показатели панели организации по её пожертвованиям
// и доставкам.
func (r *PostgresRepository) GetOrganizationKPIs(ctx context.Context, org string) (*model.OrganizationKPIs, error) {
	var (
		k          model.OrganizationKPIs
		totalCents int64
	)

	err := r.pool.QueryRow(ctx,
		`SELECT count(*),
		        COALESCE(sum(total_cents), 0),
		        count(*) FILTER (WHERE recipient_kind = $2),
		        count(*) FILTER (WHERE recipient_kind = $3)
		 FROM donations WHERE organization = $1`,
		org, string(model.RecipientPerson), string(model.RecipientShelter),
	).Scan(&k.DonationCount, &totalCents, &k.DonationToPersonCnt, &k.DonationToShelterCnt)
	if err != nil {
		return nil, fmt.Errorf("organization donation stats: %w", err)
	}
	k.TotalDonated = float64(totalCents) / 100

	err = r.pool.QueryRow(ctx,
		`SELECT count(*) FROM delivery_records WHERE organization = $1`, org,
	).Scan(&k.DeliveryCount)
	if err != nil {
		return nil, fmt.Errorf("organization delivery count: %w", err)
	}

	return &k, nil
}
