package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkuznetsov/homie-system/internal/model"
)

func recipientColumns(rec model.Recipient) (kind, email, first, last, shelter string) {
	kind = string(rec.Kind)
	if rec.Person != nil {
		email = rec.Person.Email
		first = rec.Person.FirstName
		last = rec.Person.LastName
	}
	if rec.Shelter != nil {
		shelter = rec.Shelter.Name
	}
	return kind, email, first, last, shelter
}

func buildRecipient(kind, email, first, last, shelter string) model.Recipient {
	rec := model.Recipient{Kind: model.RecipientKind(kind)}
	switch rec.Kind {
	case model.RecipientPerson:
		rec.Person = &model.PersonSnapshot{Email: email, FirstName: first, LastName: last}
	case model.RecipientShelter:
		rec.Shelter = &model.ShelterSnapshot{Name: shelter}
	}
	return rec
}

const donationColumns = `id, number, hash, email, first_name, last_name, is_anonymous, is_subscription,
	donated_at, total_cents, currency, wishlist, source, company, ip_address, user_agent,
	recipient_kind, person_email, person_first_name, person_last_name, shelter_name,
	organization, organization_name, created_at, updated_at`

func scanDonation(row pgx.Row) (*model.Donation, error) {
	var (
		d                    model.Donation
		kind, pe, pf, pl, sn string
	)
	err := row.Scan(&d.ID, &d.Number, &d.Hash, &d.Email, &d.FirstName, &d.LastName,
		&d.IsAnonymous, &d.IsSubscription, &d.DonatedAt, &d.TotalCents, &d.Currency,
		&d.Wishlist, &d.Source, &d.Company, &d.IPAddress, &d.UserAgent,
		&kind, &pe, &pf, &pl, &sn,
		&d.Organization, &d.OrganizationName, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan donation: %w", err)
	}
	d.Recipient = buildRecipient(kind, pe, pf, pl, sn)
	return &d, nil
}

// CreateDonation атомарно вставляет пожертвование со строками. Повторная
// отправка с тем же hash или number не создаёт дубль: проигравшая вставка
// возвращает уже существующую запись с created=false. Последней линией
// защиты от гонок служат уникальные ограничения хранилища.
func (r *PostgresRepository) CreateDonation(ctx context.Context, d *model.Donation) (*model.Donation, bool, error) {
	var (
		res     *model.Donation
		created bool
	)
	err := r.withRetry(ctx, func() error {
		var err error
		res, created, err = r.createDonation(ctx, d)
		return err
	})
	return res, created, err
}

func (r *PostgresRepository) createDonation(ctx context.Context, d *model.Donation) (*model.Donation, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	kind, pe, pf, pl, sn := recipientColumns(d.Recipient)

	err = tx.QueryRow(ctx,
		`INSERT INTO donations (number, hash, email, first_name, last_name, is_anonymous, is_subscription,
		     donated_at, total_cents, currency, wishlist, source, company, ip_address, user_agent,
		     recipient_kind, person_email, person_first_name, person_last_name, shelter_name,
		     organization, organization_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		 ON CONFLICT DO NOTHING
		 RETURNING id, created_at, updated_at`,
		d.Number, d.Hash, d.Email, d.FirstName, d.LastName, d.IsAnonymous, d.IsSubscription,
		d.DonatedAt, d.TotalCents, d.Currency, d.Wishlist, d.Source, d.Company, d.IPAddress, d.UserAgent,
		kind, pe, pf, pl, sn,
		d.Organization, d.OrganizationName,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// Запись с таким hash или number уже есть: возвращаем её.
		existing, findErr := r.findDonation(ctx, d.Hash, d.Number)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("insert donation: %w", err)
	}

	if err := insertDonationItems(ctx, tx, d.ID, d.Items); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit tx: %w", err)
	}

	return d, true, nil
}

func insertDonationItems(ctx context.Context, tx pgx.Tx, donationID int64, items []model.DonationItem) error {
	for _, it := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO donation_items (donation_id, product, product_name, quantity, amount_cents, total_cents)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			donationID, it.Product, it.ProductName, it.Quantity, it.AmountCents, it.TotalCents,
		); err != nil {
			return fmt.Errorf("insert donation item: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) findDonation(ctx context.Context, hash, number string) (*model.Donation, error) {
	if hash != "" {
		d, err := scanDonation(r.pool.QueryRow(ctx,
			`SELECT `+donationColumns+` FROM donations WHERE hash = $1`, hash))
		if err == nil {
			return r.attachItems(ctx, d)
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if number != "" {
		d, err := scanDonation(r.pool.QueryRow(ctx,
			`SELECT `+donationColumns+` FROM donations WHERE number = $1`, number))
		if err != nil {
			return nil, err
		}
		return r.attachItems(ctx, d)
	}
	return nil, ErrNotFound
}

func (r *PostgresRepository) attachItems(ctx context.Context, d *model.Donation) (*model.Donation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product, product_name, quantity, amount_cents, total_cents
		 FROM donation_items WHERE donation_id = $1 ORDER BY id`,
		d.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("select donation items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it model.DonationItem
		if err := rows.Scan(&it.Product, &it.ProductName, &it.Quantity, &it.AmountCents, &it.TotalCents); err != nil {
			return nil, fmt.Errorf("scan donation item: %w", err)
		}
		d.Items = append(d.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return d, nil
}

// GetDonation возвращает пожертвование по номеру либо по hash, со строками.
func (r *PostgresRepository) GetDonation(ctx context.Context, key string) (*model.Donation, error) {
	d, err := scanDonation(r.pool.QueryRow(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE number = $1 OR (hash <> '' AND hash = $1)`,
		key,
	))
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, d)
}

// ListDonations возвращает все пожертвования со строками, новые первыми.
func (r *PostgresRepository) ListDonations(ctx context.Context) ([]model.Donation, error) {
	return r.selectDonations(ctx,
		`SELECT `+donationColumns+` FROM donations ORDER BY donated_at DESC NULLS LAST, id DESC`)
}

// ListDonationsByOrganization возвращает пожертвования организации со строками.
func (r *PostgresRepository) ListDonationsByOrganization(ctx context.Context, org string) ([]model.Donation, error) {
	return r.selectDonations(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE organization = $1
		 ORDER BY donated_at DESC NULLS LAST, id DESC`,
		org)
}

func (r *PostgresRepository) selectDonations(ctx context.Context, query string, args ...any) ([]model.Donation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select donations: %w", err)
	}
	defer rows.Close()

	var (
		donations []model.Donation
		ids       []int64
	)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, *d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(ids) == 0 {
		return donations, nil
	}

	itemRows, err := r.pool.Query(ctx,
		`SELECT donation_id, product, product_name, quantity, amount_cents, total_cents
		 FROM donation_items WHERE donation_id = ANY($1) ORDER BY id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("select donation items: %w", err)
	}
	defer itemRows.Close()

	itemsByDonation := make(map[int64][]model.DonationItem)
	for itemRows.Next() {
		var (
			donationID int64
			it         model.DonationItem
		)
		if err := itemRows.Scan(&donationID, &it.Product, &it.ProductName, &it.Quantity, &it.AmountCents, &it.TotalCents); err != nil {
			return nil, fmt.Errorf("scan donation item: %w", err)
		}
		itemsByDonation[donationID] = append(itemsByDonation[donationID], it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range donations {
		donations[i].Items = itemsByDonation[donations[i].ID]
	}
	return donations, nil
}

// UpdateDonation перезаписывает изменяемые поля пожертвования и полностью
// заменяет его строки. Выполняется в одной транзакции.
func (r *PostgresRepository) UpdateDonation(ctx context.Context, d *model.Donation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	kind, pe, pf, pl, sn := recipientColumns(d.Recipient)

	tag, err := tx.Exec(ctx,
		`UPDATE donations
		 SET email = $2, first_name = $3, last_name = $4, is_anonymous = $5, is_subscription = $6,
		     donated_at = $7, total_cents = $8, currency = $9, wishlist = $10, source = $11,
		     company = $12, ip_address = $13, user_agent = $14,
		     recipient_kind = $15, person_email = $16, person_first_name = $17, person_last_name = $18,
		     shelter_name = $19, organization = $20, organization_name = $21, updated_at = now()
		 WHERE id = $1`,
		d.ID, d.Email, d.FirstName, d.LastName, d.IsAnonymous, d.IsSubscription,
		d.DonatedAt, d.TotalCents, d.Currency, d.Wishlist, d.Source,
		d.Company, d.IPAddress, d.UserAgent,
		kind, pe, pf, pl, sn, d.Organization, d.OrganizationName,
	)
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: donation %s", ErrNotFound, d.Number)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM donation_items WHERE donation_id = $1`, d.ID); err != nil {
		return fmt.Errorf("delete donation items: %w", err)
	}
	if err := insertDonationItems(ctx, tx, d.ID, d.Items); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// DeleteDonation удаляет пожертвование по номеру либо hash; строки удаляются каскадно.
func (r *PostgresRepository) DeleteDonation(ctx context.Context, key string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM donations WHERE number = $1 OR (hash <> '' AND hash = $1)`, key)
	if err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: donation %s", ErrNotFound, key)
	}
	return nil
}

const paymentColumns = `id, number, hash, type, provider, amount_cents, info_1, info_2, info_3,
	payment_at, donation, created_from_payload, created_at`

func scanPayment(row pgx.Row) (*model.DonationPayment, error) {
	var p model.DonationPayment
	err := row.Scan(&p.ID, &p.Number, &p.Hash, &p.Type, &p.Provider, &p.AmountCents,
		&p.Info1, &p.Info2, &p.Info3, &p.PaymentAt, &p.Donation, &p.CreatedFromPayload, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return &p, nil
}

// CreatePayment атомарно вставляет платёж. Повтор с тем же number или hash
// возвращает существующую запись с created=false.
func (r *PostgresRepository) CreatePayment(ctx context.Context, p *model.DonationPayment) (*model.DonationPayment, bool, error) {
	var (
		res     *model.DonationPayment
		created bool
	)
	err := r.withRetry(ctx, func() error {
		var err error
		res, created, err = r.createPayment(ctx, p)
		return err
	})
	return res, created, err
}

func (r *PostgresRepository) createPayment(ctx context.Context, p *model.DonationPayment) (*model.DonationPayment, bool, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO donation_payments (number, hash, type, provider, amount_cents,
		     info_1, info_2, info_3, payment_at, donation, created_from_payload)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT DO NOTHING
		 RETURNING id, created_at`,
		p.Number, p.Hash, string(p.Type), string(p.Provider), p.AmountCents,
		p.Info1, p.Info2, p.Info3, p.PaymentAt, p.Donation, p.CreatedFromPayload,
	).Scan(&p.ID, &p.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		existing, findErr := r.findPayment(ctx, p.Number, p.Hash)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("insert payment: %w", err)
	}

	return p, true, nil
}

func (r *PostgresRepository) findPayment(ctx context.Context, number, hash string) (*model.DonationPayment, error) {
	if number != "" {
		p, err := scanPayment(r.pool.QueryRow(ctx,
			`SELECT `+paymentColumns+` FROM donation_payments WHERE number = $1`, number))
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if hash != "" {
		return scanPayment(r.pool.QueryRow(ctx,
			`SELECT `+paymentColumns+` FROM donation_payments WHERE hash = $1`, hash))
	}
	return nil, ErrNotFound
}

// GetPayment возвращает платёж по идентификатору транзакции.
func (r *PostgresRepository) GetPayment(ctx context.Context, number string) (*model.DonationPayment, error) {
	return scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM donation_payments WHERE number = $1`, number))
}

// ListPayments возвращает все платежи, новые первыми.
func (r *PostgresRepository) ListPayments(ctx context.Context) ([]model.DonationPayment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM donation_payments ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}
	defer rows.Close()

	var res []model.DonationPayment
	for rows.Next() {
		p, err := scanPayment(rows)
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
