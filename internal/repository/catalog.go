package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkuznetsov/homie-system/internal/model"
)

// CreatePerson создаёт запись контактного лица.
func (r *PostgresRepository) CreatePerson(ctx context.Context, p *model.Person) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO persons (email, first_name, last_name, full_name, contact_no, country, city, street)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		p.Email, p.FirstName, p.LastName, p.FullName, p.ContactNo, p.Country, p.City, p.Street,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: person %s", ErrDuplicate, p.Email)
		}
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

func scanPerson(row pgx.Row) (*model.Person, error) {
	var p model.Person
	err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.FullName,
		&p.ContactNo, &p.Country, &p.City, &p.Street, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan person: %w", err)
	}
	return &p, nil
}

const personColumns = `id, email, first_name, last_name, full_name, contact_no, country, city, street, created_at, updated_at`

// GetPerson возвращает контактное лицо по email.
func (r *PostgresRepository) GetPerson(ctx context.Context, email string) (*model.Person, error) {
	return scanPerson(r.pool.QueryRow(ctx,
		`SELECT `+personColumns+` FROM persons WHERE email = $1`, email))
}

// ListPersons возвращает все записи контактных лиц, новые первыми.
func (r *PostgresRepository) ListPersons(ctx context.Context) ([]model.Person, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+personColumns+` FROM persons ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select persons: %w", err)
	}
	defer rows.Close()

	var res []model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
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

// UpdatePerson обновляет контактное лицо по email.
func (r *PostgresRepository) UpdatePerson(ctx context.Context, p *model.Person) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE persons
		 SET first_name = $2, last_name = $3, full_name = $4, contact_no = $5,
		     country = $6, city = $7, street = $8, updated_at = now()
		 WHERE email = $1`,
		p.Email, p.FirstName, p.LastName, p.FullName, p.ContactNo, p.Country, p.City, p.Street,
	)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: person %s", ErrNotFound, p.Email)
	}
	return nil
}

// DeletePerson удаляет контактное лицо по email.
func (r *PostgresRepository) DeletePerson(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM persons WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: person %s", ErrNotFound, email)
	}
	return nil
}

const organizationColumns = `id, name, email, contact_no, status, country, city, logo_url, bank_iban, created_at, updated_at`

func scanOrganization(row pgx.Row) (*model.Organization, error) {
	var o model.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Email, &o.ContactNo, &o.Status,
		&o.Country, &o.City, &o.LogoURL, &o.BankIBAN, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	return &o, nil
}

// CreateOrganization создаёт организацию.
func (r *PostgresRepository) CreateOrganization(ctx context.Context, o *model.Organization) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO organizations (name, email, contact_no, status, country, city, logo_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		o.Name, o.Email, o.ContactNo, string(o.Status), o.Country, o.City, o.LogoURL,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: organization %s", ErrDuplicate, o.Name)
		}
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

// GetOrganization возвращает организацию по названию.
func (r *PostgresRepository) GetOrganization(ctx context.Context, name string) (*model.Organization, error) {
	return scanOrganization(r.pool.QueryRow(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE name = $1`, name))
}

// ListOrganizations возвращает все организации, новые первыми.
func (r *PostgresRepository) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+organizationColumns+` FROM organizations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select organizations: %w", err)
	}
	defer rows.Close()

	var res []model.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// UpdateOrganization обновляет организацию по названию. Обратная ссылка на
// банковские реквизиты управляется методами Create/Update/DeleteBankDetails.
func (r *PostgresRepository) UpdateOrganization(ctx context.Context, o *model.Organization) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE organizations
		 SET email = $2, contact_no = $3, status = $4, country = $5, city = $6,
		     logo_url = $7, updated_at = now()
		 WHERE name = $1`,
		o.Name, o.Email, o.ContactNo, string(o.Status), o.Country, o.City, o.LogoURL,
	)
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: organization %s", ErrNotFound, o.Name)
	}
	return nil
}

// DeleteOrganization удаляет организацию, предварительно разорвав взаимную
// ссылку с банковскими реквизитами. Обе операции выполняются в одной транзакции.
func (r *PostgresRepository) DeleteOrganization(ctx context.Context, name string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE bank_details SET organization = '', updated_at = now() WHERE organization = $1`,
		name,
	); err != nil {
		return fmt.Errorf("unlink bank details: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM organizations WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: organization %s", ErrNotFound, name)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const bankDetailsColumns = `id, iban, bank_name, account_holder, organization, created_at, updated_at`

func scanBankDetails(row pgx.Row) (*model.BankDetails, error) {
	var b model.BankDetails
	err := row.Scan(&b.ID, &b.IBAN, &b.BankName, &b.AccountHolder, &b.Organization,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan bank details: %w", err)
	}
	return &b, nil
}

// CreateBankDetails создаёт банковские реквизиты и, если указана организация,
// проставляет обратную ссылку на неё в той же транзакции.
func (r *PostgresRepository) CreateBankDetails(ctx context.Context, b *model.BankDetails) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO bank_details (iban, bank_name, account_holder, organization)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		b.IBAN, b.BankName, b.AccountHolder, b.Organization,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: bank details %s", ErrDuplicate, b.IBAN)
		}
		return fmt.Errorf("create bank details: %w", err)
	}

	if b.Organization != "" {
		tag, err := tx.Exec(ctx,
			`UPDATE organizations SET bank_iban = $2, updated_at = now() WHERE name = $1`,
			b.Organization, b.IBAN,
		)
		if err != nil {
			return fmt.Errorf("link organization: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: organization %s", ErrReferenceNotFound, b.Organization)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetBankDetails возвращает банковские реквизиты по IBAN.
func (r *PostgresRepository) GetBankDetails(ctx context.Context, iban string) (*model.BankDetails, error) {
	return scanBankDetails(r.pool.QueryRow(ctx,
		`SELECT `+bankDetailsColumns+` FROM bank_details WHERE iban = $1`, iban))
}

// ListBankDetails возвращает все банковские реквизиты, новые первыми.
func (r *PostgresRepository) ListBankDetails(ctx context.Context) ([]model.BankDetails, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bankDetailsColumns+` FROM bank_details ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select bank details: %w", err)
	}
	defer rows.Close()

	var res []model.BankDetails
	for rows.Next() {
		b, err := scanBankDetails(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// UpdateBankDetails обновляет реквизиты по IBAN и перепривязывает обратную
// ссылку организации: старая связь снимается, новая проставляется в одной транзакции.
func (r *PostgresRepository) UpdateBankDetails(ctx context.Context, b *model.BankDetails) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE bank_details
		 SET bank_name = $2, account_holder = $3, organization = $4, updated_at = now()
		 WHERE iban = $1`,
		b.IBAN, b.BankName, b.AccountHolder, b.Organization,
	)
	if err != nil {
		return fmt.Errorf("update bank details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: bank details %s", ErrNotFound, b.IBAN)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE organizations SET bank_iban = '', updated_at = now()
		 WHERE bank_iban = $1 AND name <> $2`,
		b.IBAN, b.Organization,
	); err != nil {
		return fmt.Errorf("unlink old organization: %w", err)
	}

	if b.Organization != "" {
		tag, err := tx.Exec(ctx,
			`UPDATE organizations SET bank_iban = $2, updated_at = now() WHERE name = $1`,
			b.Organization, b.IBAN,
		)
		if err != nil {
			return fmt.Errorf("link organization: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: organization %s", ErrReferenceNotFound, b.Organization)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// DeleteBankDetails удаляет реквизиты, предварительно сняв обратную ссылку
// у организации. Обе операции выполняются в одной транзакции.
func (r *PostgresRepository) DeleteBankDetails(ctx context.Context, iban string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE organizations SET bank_iban = '', updated_at = now() WHERE bank_iban = $1`,
		iban,
	); err != nil {
		return fmt.Errorf("unlink organization: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM bank_details WHERE iban = $1`, iban)
	if err != nil {
		return fmt.Errorf("delete bank details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: bank details %s", ErrNotFound, iban)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const shelterColumns = `id, name, email, contact_no, country, city, capacity, created_at, updated_at`

func scanShelter(row pgx.Row) (*model.Shelter, error) {
	var s model.Shelter
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.ContactNo, &s.Country, &s.City,
		&s.Capacity, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan shelter: %w", err)
	}
	return &s, nil
}

// CreateShelter создаёт приют.
func (r *PostgresRepository) CreateShelter(ctx context.Context, s *model.Shelter) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO shelters (name, email, contact_no, country, city, capacity)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Email, s.ContactNo, s.Country, s.City, s.Capacity,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: shelter %s", ErrDuplicate, s.Name)
		}
		return fmt.Errorf("create shelter: %w", err)
	}
	return nil
}

// GetShelter возвращает приют по названию.
func (r *PostgresRepository) GetShelter(ctx context.Context, name string) (*model.Shelter, error) {
	return scanShelter(r.pool.QueryRow(ctx,
		`SELECT `+shelterColumns+` FROM shelters WHERE name = $1`, name))
}

// ListShelters возвращает все приюты, новые первыми.
func (r *PostgresRepository) ListShelters(ctx context.Context) ([]model.Shelter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+shelterColumns+` FROM shelters ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select shelters: %w", err)
	}
	defer rows.Close()

	var res []model.Shelter
	for rows.Next() {
		s, err := scanShelter(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// UpdateShelter обновляет приют по названию.
func (r *PostgresRepository) UpdateShelter(ctx context.Context, s *model.Shelter) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE shelters
		 SET email = $2, contact_no = $3, country = $4, city = $5, capacity = $6, updated_at = now()
		 WHERE name = $1`,
		s.Name, s.Email, s.ContactNo, s.Country, s.City, s.Capacity,
	)
	if err != nil {
		return fmt.Errorf("update shelter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: shelter %s", ErrNotFound, s.Name)
	}
	return nil
}

// DeleteShelter удаляет приют по названию.
func (r *PostgresRepository) DeleteShelter(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shelters WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete shelter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: shelter %s", ErrNotFound, name)
	}
	return nil
}

const productColumns = `id, name, price_cents, status, category, type, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Status, &p.Category, &p.Type,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

// CreateProduct создаёт позицию каталога.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, price_cents, status, category, type)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.PriceCents, string(p.Status), string(p.Category), string(p.Type),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product %s", ErrDuplicate, p.Name)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetProduct возвращает позицию каталога по названию.
func (r *PostgresRepository) GetProduct(ctx context.Context, name string) (*model.Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE name = $1`, name))
}

// ListProducts возвращает весь каталог, новые первыми.
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var res []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
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

// UpdateProduct обновляет позицию каталога по названию. Ранее снятые снимки
// цен в строках пожертвований при этом не пересчитываются.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET price_cents = $2, status = $3, category = $4, type = $5, updated_at = now()
		 WHERE name = $1`,
		p.Name, p.PriceCents, string(p.Status), string(p.Category), string(p.Type),
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, p.Name)
	}
	return nil
}

// DeleteProduct удаляет позицию каталога по названию.
func (r *PostgresRepository) DeleteProduct(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, name)
	}
	return nil
}
