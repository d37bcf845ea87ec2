package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkuznetsov/homie-system/internal/model"
)

const animalColumns = `id, code, animal_type, adult_count, young_count, senior_count,
	source_kind, person_email, person_first_name, person_last_name, shelter_name, created_at, updated_at`

func scanAnimalRecord(row pgx.Row) (*model.AnimalRecord, error) {
	var (
		a                    model.AnimalRecord
		kind, pe, pf, pl, sn string
	)
	err := row.Scan(&a.ID, &a.Code, &a.AnimalType, &a.Counts.Adult, &a.Counts.Young, &a.Counts.Senior,
		&kind, &pe, &pf, &pl, &sn, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan animal record: %w", err)
	}
	a.Source = buildRecipient(kind, pe, pf, pl, sn)
	return &a, nil
}

// CreateAnimalRecord создаёт запись учёта животных.
func (r *PostgresRepository) CreateAnimalRecord(ctx context.Context, a *model.AnimalRecord) error {
	kind, pe, pf, pl, sn := recipientColumns(a.Source)
	err := r.pool.QueryRow(ctx,
		`INSERT INTO animal_records (code, animal_type, adult_count, young_count, senior_count,
		     source_kind, person_email, person_first_name, person_last_name, shelter_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		a.Code, string(a.AnimalType), a.Counts.Adult, a.Counts.Young, a.Counts.Senior,
		kind, pe, pf, pl, sn,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: animal record %s", ErrDuplicate, a.Code)
		}
		return fmt.Errorf("create animal record: %w", err)
	}
	return nil
}

// GetAnimalRecord возвращает запись учёта животных по коду.
func (r *PostgresRepository) GetAnimalRecord(ctx context.Context, code string) (*model.AnimalRecord, error) {
	return scanAnimalRecord(r.pool.QueryRow(ctx,
		`SELECT `+animalColumns+` FROM animal_records WHERE code = $1`, code))
}

// ListAnimalRecords возвращает все записи учёта животных, новые первыми.
func (r *PostgresRepository) ListAnimalRecords(ctx context.Context) ([]model.AnimalRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+animalColumns+` FROM animal_records ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select animal records: %w", err)
	}
	defer rows.Close()

	var res []model.AnimalRecord
	for rows.Next() {
		a, err := scanAnimalRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// UpdateAnimalRecord обновляет запись учёта животных по коду, включая
// переключение источника: поля неактивного варианта затираются.
func (r *PostgresRepository) UpdateAnimalRecord(ctx context.Context, a *model.AnimalRecord) error {
	kind, pe, pf, pl, sn := recipientColumns(a.Source)
	tag, err := r.pool.Exec(ctx,
		`UPDATE animal_records
		 SET animal_type = $2, adult_count = $3, young_count = $4, senior_count = $5,
		     source_kind = $6, person_email = $7, person_first_name = $8, person_last_name = $9,
		     shelter_name = $10, updated_at = now()
		 WHERE code = $1`,
		a.Code, string(a.AnimalType), a.Counts.Adult, a.Counts.Young, a.Counts.Senior,
		kind, pe, pf, pl, sn,
	)
	if err != nil {
		return fmt.Errorf("update animal record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: animal record %s", ErrNotFound, a.Code)
	}
	return nil
}

// DeleteAnimalRecord удаляет запись учёта животных по коду.
func (r *PostgresRepository) DeleteAnimalRecord(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM animal_records WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete animal record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: animal record %s", ErrNotFound, code)
	}
	return nil
}

const deliveryColumns = `id, code, delivery_type, purchaser_email, purchaser_first_name, purchaser_last_name,
	organization, organization_name, deliver_to, recipient_email, recipient_first_name, recipient_last_name,
	recipient_shelter, delivery_date, display_title, created_at, updated_at`

func scanDeliveryRecord(row pgx.Row) (*model.DeliveryRecord, error) {
	var (
		d                       model.DeliveryRecord
		srcKind, pe, pf, pl     string
		org, orgName            string
		recKind, re, rf, rl, rs string
	)
	err := row.Scan(&d.ID, &d.Code, &srcKind, &pe, &pf, &pl, &org, &orgName,
		&recKind, &re, &rf, &rl, &rs, &d.DeliveryDate, &d.DisplayTitle, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan delivery record: %w", err)
	}

	d.Source = model.DeliverySource{Kind: model.DeliverySourceKind(srcKind)}
	switch d.Source.Kind {
	case model.DeliveryOwnPurchase:
		d.Source.Person = &model.PersonSnapshot{Email: pe, FirstName: pf, LastName: pl}
	case model.DeliveryOrgDonated:
		if orgName == "" {
			orgName = org
		}
		d.Source.Organization = &model.OrganizationSnapshot{Name: orgName}
	}

	d.DeliverTo = buildRecipient(recKind, re, rf, rl, rs)
	return &d, nil
}

func deliverySourceColumns(src model.DeliverySource) (kind, email, first, last, org, orgName string) {
	kind = string(src.Kind)
	if src.Person != nil {
		email = src.Person.Email
		first = src.Person.FirstName
		last = src.Person.LastName
	}
	if src.Organization != nil {
		org = src.Organization.Name
		orgName = src.Organization.Name
	}
	return kind, email, first, last, org, orgName
}

// CreateDeliveryRecord создаёт запись о доставке.
func (r *PostgresRepository) CreateDeliveryRecord(ctx context.Context, d *model.DeliveryRecord) error {
	srcKind, pe, pf, pl, org, orgName := deliverySourceColumns(d.Source)
	recKind, re, rf, rl, rs := recipientColumns(d.DeliverTo)

	err := r.pool.QueryRow(ctx,
		`INSERT INTO delivery_records (code, delivery_type, purchaser_email, purchaser_first_name,
		     purchaser_last_name, organization, organization_name, deliver_to, recipient_email,
		     recipient_first_name, recipient_last_name, recipient_shelter, delivery_date, display_title)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, created_at, updated_at`,
		d.Code, srcKind, pe, pf, pl, org, orgName, recKind, re, rf, rl, rs, d.DeliveryDate, d.DisplayTitle,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: delivery record %s", ErrDuplicate, d.Code)
		}
		return fmt.Errorf("create delivery record: %w", err)
	}
	return nil
}

// GetDeliveryRecord возвращает запись о доставке по коду.
func (r *PostgresRepository) GetDeliveryRecord(ctx context.Context, code string) (*model.DeliveryRecord, error) {
	return scanDeliveryRecord(r.pool.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM delivery_records WHERE code = $1`, code))
}

// ListDeliveryRecords возвращает все записи о доставках, новые первыми.
func (r *PostgresRepository) ListDeliveryRecords(ctx context.Context) ([]model.DeliveryRecord, error) {
	return r.selectDeliveries(ctx,
		`SELECT `+deliveryColumns+` FROM delivery_records ORDER BY delivery_date DESC NULLS LAST, id DESC`)
}

// ListDeliveriesByOrganization возвращает доставки, переданные организацией.
func (r *PostgresRepository) ListDeliveriesByOrganization(ctx context.Context, org string) ([]model.DeliveryRecord, error) {
	return r.selectDeliveries(ctx,
		`SELECT `+deliveryColumns+` FROM delivery_records WHERE organization = $1
		 ORDER BY delivery_date DESC NULLS LAST, id DESC`,
		org)
}

func (r *PostgresRepository) selectDeliveries(ctx context.Context, query string, args ...any) ([]model.DeliveryRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select delivery records: %w", err)
	}
	defer rows.Close()

	var res []model.DeliveryRecord
	for rows.Next() {
		d, err := scanDeliveryRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// UpdateDeliveryRecord обновляет запись о доставке по коду; поля неактивных
// вариантов источника и получателя затираются.
func (r *PostgresRepository) UpdateDeliveryRecord(ctx context.Context, d *model.DeliveryRecord) error {
	srcKind, pe, pf, pl, org, orgName := deliverySourceColumns(d.Source)
	recKind, re, rf, rl, rs := recipientColumns(d.DeliverTo)

	tag, err := r.pool.Exec(ctx,
		`UPDATE delivery_records
		 SET delivery_type = $2, purchaser_email = $3, purchaser_first_name = $4, purchaser_last_name = $5,
		     organization = $6, organization_name = $7, deliver_to = $8, recipient_email = $9,
		     recipient_first_name = $10, recipient_last_name = $11, recipient_shelter = $12,
		     delivery_date = $13, display_title = $14, updated_at = now()
		 WHERE code = $1`,
		d.Code, srcKind, pe, pf, pl, org, orgName, recKind, re, rf, rl, rs, d.DeliveryDate, d.DisplayTitle,
	)
	if err != nil {
		return fmt.Errorf("update delivery record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: delivery record %s", ErrNotFound, d.Code)
	}
	return nil
}

// DeleteDeliveryRecord удаляет запись о доставке по коду.
func (r *PostgresRepository) DeleteDeliveryRecord(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM delivery_records WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete delivery record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: delivery record %s", ErrNotFound, code)
	}
	return nil
}

const foodDemandColumns = `id, code, shelter, shelter_name, category, quantity, needed_by, status, created_at, updated_at`

func scanFoodDemand(row pgx.Row) (*model.FoodDemand, error) {
	var f model.FoodDemand
	err := row.Scan(&f.ID, &f.Code, &f.Shelter, &f.ShelterName, &f.Category, &f.Quantity,
		&f.NeededBy, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan food demand: %w", err)
	}
	return &f, nil
}

// CreateFoodDemand создаёт заявку приюта на корм.
func (r *PostgresRepository) CreateFoodDemand(ctx context.Context, f *model.FoodDemand) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO food_demands (code, shelter, shelter_name, category, quantity, needed_by, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		f.Code, f.Shelter, f.ShelterName, string(f.Category), f.Quantity, f.NeededBy, string(f.Status),
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: food demand %s", ErrDuplicate, f.Code)
		}
		return fmt.Errorf("create food demand: %w", err)
	}
	return nil
}

// GetFoodDemand возвращает заявку на корм по коду.
func (r *PostgresRepository) GetFoodDemand(ctx context.Context, code string) (*model.FoodDemand, error) {
	return scanFoodDemand(r.pool.QueryRow(ctx,
		`SELECT `+foodDemandColumns+` FROM food_demands WHERE code = $1`, code))
}

// ListFoodDemands возвращает все заявки на корм, новые первыми.
func (r *PostgresRepository) ListFoodDemands(ctx context.Context) ([]model.FoodDemand, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+foodDemandColumns+` FROM food_demands ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select food demands: %w", err)
	}
	defer rows.Close()

	var res []model.FoodDemand
	for rows.Next() {
		f, err := scanFoodDemand(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// UpdateFoodDemand обновляет заявку на корм по коду.
func (r *PostgresRepository) UpdateFoodDemand(ctx context.Context, f *model.FoodDemand) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE food_demands
		 SET shelter = $2, shelter_name = $3, category = $4, quantity = $5, needed_by = $6,
		     status = $7, updated_at = now()
		 WHERE code = $1`,
		f.Code, f.Shelter, f.ShelterName, string(f.Category), f.Quantity, f.NeededBy, string(f.Status),
	)
	if err != nil {
		return fmt.Errorf("update food demand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: food demand %s", ErrNotFound, f.Code)
	}
	return nil
}

// DeleteFoodDemand удаляет заявку на корм по коду.
func (r *PostgresRepository) DeleteFoodDemand(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM food_demands WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete food demand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: food demand %s", ErrNotFound, code)
	}
	return nil
}

const personDemandColumns = `id, code, person_email, person_name, description, quantity, status, created_at, updated_at`

func scanPersonDemand(row pgx.Row) (*model.PersonDemand, error) {
	var p model.PersonDemand
	err := row.Scan(&p.ID, &p.Code, &p.PersonEmail, &p.PersonName, &p.Description, &p.Quantity,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan person demand: %w", err)
	}
	return &p, nil
}

// CreatePersonDemand создаёт заявку на помощь человеку.
func (r *PostgresRepository) CreatePersonDemand(ctx context.Context, p *model.PersonDemand) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO person_demands (code, person_email, person_name, description, quantity, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		p.Code, p.PersonEmail, p.PersonName, p.Description, p.Quantity, string(p.Status),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: person demand %s", ErrDuplicate, p.Code)
		}
		return fmt.Errorf("create person demand: %w", err)
	}
	return nil
}

// GetPersonDemand возвращает заявку на помощь по коду.
func (r *PostgresRepository) GetPersonDemand(ctx context.Context, code string) (*model.PersonDemand, error) {
	return scanPersonDemand(r.pool.QueryRow(ctx,
		`SELECT `+personDemandColumns+` FROM person_demands WHERE code = $1`, code))
}

// ListPersonDemands возвращает все заявки на помощь, новые первыми.
func (r *PostgresRepository) ListPersonDemands(ctx context.Context) ([]model.PersonDemand, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+personDemandColumns+` FROM person_demands ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select person demands: %w", err)
	}
	defer rows.Close()

	var res []model.PersonDemand
	for rows.Next() {
		p, err := scanPersonDemand(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// UpdatePersonDemand обновляет заявку на помощь по коду.
func (r *PostgresRepository) UpdatePersonDemand(ctx context.Context, p *model.PersonDemand) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE person_demands
		 SET person_email = $2, person_name = $3, description = $4, quantity = $5,
		     status = $6, updated_at = now()
		 WHERE code = $1`,
		p.Code, p.PersonEmail, p.PersonName, p.Description, p.Quantity, string(p.Status),
	)
	if err != nil {
		return fmt.Errorf("update person demand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: person demand %s", ErrNotFound, p.Code)
	}
	return nil
}

// DeletePersonDemand удаляет заявку на помощь по коду.
func (r *PostgresRepository) DeletePersonDemand(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM person_demands WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete person demand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: person demand %s", ErrNotFound, code)
	}
	return nil
}
