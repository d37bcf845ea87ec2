package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nkuznetsov/homie-system/internal/model"
	"github.com/nkuznetsov/homie-system/internal/repository"
	"github.com/nkuznetsov/homie-system/internal/validation"
)

// DonationInput — входные данные пожертвования. Nil-поле при обновлении
// означает "оставить как есть". Items заменяют строки целиком: ключ карты —
// ссылка на товар каталога, значение — количество и необязательная цена.
type DonationInput struct {
	Number         *string                      `json:"donation_number" validate:"omitempty,extref"`
	Hash           *string                      `json:"hash" validate:"omitempty,idemhash"`
	Email          *string                      `json:"email" validate:"omitempty,email_basic"`
	FirstName      *string                      `json:"first_name" validate:"omitempty,alphaname"`
	LastName       *string                      `json:"last_name" validate:"omitempty,alphaname"`
	IsAnonymous    *FlexBool                    `json:"is_anonymous"`
	IsSubscription *FlexBool                    `json:"is_subscription"`
	DonatedAt      *string                      `json:"donated_at"`
	Currency       *string                      `json:"currency" validate:"omitempty,currency3"`
	Wishlist       *string                      `json:"wishlist"`
	Source         *string                      `json:"source"`
	Company        *string                      `json:"company"`
	IPAddress      *string                      `json:"ip_address"`
	UserAgent      *string                      `json:"user_agent"`
	DonatedToType  *string                      `json:"donated_to_type"`
	DonatedTo      *string                      `json:"donated_to"`
	Organization   *string                      `json:"organization"`
	Items          map[string]DonationItemInput `json:"items" validate:"omitempty,dive"`
}

// DonationItemInput — строка пожертвования во входных данных. Amount — цена
// за единицу; при отсутствии берётся текущая цена товара и снимается в строку.
type DonationItemInput struct {
	Quantity FlexInt    `json:"quantity" validate:"required,gt=0"`
	Amount   *FlexFloat `json:"amount" validate:"omitempty,gt=0"`
}

// CreateDonation выполняет идемпотентный приём пожертвования. Повтор с тем же
// hash или номером возвращает сохранённую запись с created=false. Валидация и
// разрешение ссылок выполняются до какой-либо записи.
func (s *Service) CreateDonation(ctx context.Context, in DonationInput) (*model.Donation, bool, error) {
	if errs := validation.Struct(in); len(errs) > 0 {
		return nil, false, errs
	}

	d := &model.Donation{}
	applyString(&d.Number, in.Number)
	applyString(&d.Hash, in.Hash)
	if d.Number == "" {
		d.Number = newCode("DN")
	}

	if err := s.applyDonationInput(ctx, d, in); err != nil {
		return nil, false, err
	}

	return s.repo.CreateDonation(ctx, d)
}

// GetDonation возвращает пожертвование по номеру либо hash.
func (s *Service) GetDonation(ctx context.Context, key string) (*model.Donation, error) {
	return s.repo.GetDonation(ctx, key)
}

// ListDonations возвращает все пожертвования со строками.
func (s *Service) ListDonations(ctx context.Context) ([]model.Donation, error) {
	return s.repo.ListDonations(ctx)
}

// UpdateDonation частично обновляет пожертвование. Номер и hash неизменяемы.
// Переданные строки заменяют прежние, итог пересчитывается по снимкам цен.
func (s *Service) UpdateDonation(ctx context.Context, key string, in DonationInput) (*model.Donation, error) {
	if errs := validation.Struct(in); len(errs) > 0 {
		return nil, errs
	}

	d, err := s.repo.GetDonation(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := s.applyDonationInput(ctx, d, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDonation(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.GetDonation(ctx, d.Number)
}

// DeleteDonation удаляет пожертвование по номеру либо hash вместе со строками.
func (s *Service) DeleteDonation(ctx context.Context, key string) error {
	return s.repo.DeleteDonation(ctx, key)
}

// applyDonationInput накладывает переданные поля на пожертвование: разбирает
// дату, разрешает получателя и организацию со снятием снимков, перестраивает
// строки и пересчитывает итог. Итог из входных данных игнорируется.
func (s *Service) applyDonationInput(ctx context.Context, d *model.Donation, in DonationInput) error {
	applyString(&d.Email, in.Email)
	applyString(&d.FirstName, in.FirstName)
	applyString(&d.LastName, in.LastName)
	applyBool(&d.IsAnonymous, in.IsAnonymous)
	applyBool(&d.IsSubscription, in.IsSubscription)
	applyString(&d.Currency, in.Currency)
	applyString(&d.Wishlist, in.Wishlist)
	applyString(&d.Source, in.Source)
	applyString(&d.Company, in.Company)
	applyString(&d.IPAddress, in.IPAddress)
	applyString(&d.UserAgent, in.UserAgent)

	if in.DonatedAt != nil {
		if *in.DonatedAt == "" {
			d.DonatedAt = nil
		} else {
			t, err := validation.ParseDateTime(*in.DonatedAt)
			if err != nil {
				return validation.Errors{"donated_at": err.Error()}
			}
			d.DonatedAt = &t
		}
	}

	if in.DonatedToType != nil {
		rec, err := s.resolveRecipient(ctx, *in.DonatedToType, in.DonatedTo, "donated_to", "donated_to_type")
		if err != nil {
			return err
		}
		d.Recipient = rec
	}

	if in.Organization != nil {
		if *in.Organization == "" {
			d.Organization = ""
			d.OrganizationName = ""
		} else {
			org, err := s.repo.GetOrganization(ctx, *in.Organization)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: organization %s", repository.ErrReferenceNotFound, *in.Organization)
				}
				return err
			}
			d.Organization = org.Name
			d.OrganizationName = org.Name
		}
	}

	if in.Items != nil {
		items, err := s.buildDonationItems(ctx, in.Items)
		if err != nil {
			return err
		}
		d.Items = items
	}

	var total int64
	for _, it := range d.Items {
		total += it.TotalCents
	}
	d.TotalCents = total

	return nil
}

// buildDonationItems превращает входные строки в снимки: товар обязан
// существовать, его название копируется, цена за единицу берётся из строки
// либо из каталога. Порядок строк детерминирован.
func (s *Service) buildDonationItems(ctx context.Context, in map[string]DonationItemInput) ([]model.DonationItem, error) {
	refs := make([]string, 0, len(in))
	for ref := range in {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	items := make([]model.DonationItem, 0, len(refs))
	for _, ref := range refs {
		if !validation.IsProductRef(ref) {
			return nil, validation.Errors{"items." + ref: "may contain only letters, digits and '-'"}
		}

		product, err := s.repo.GetProduct(ctx, ref)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %s", repository.ErrReferenceNotFound, ref)
			}
			return nil, err
		}

		it := in[ref]
		unit := product.PriceCents
		if it.Amount != nil {
			unit = toCents(float64(*it.Amount))
		}
		items = append(items, model.DonationItem{
			Product:     product.Name,
			ProductName: product.Name,
			Quantity:    int64(it.Quantity),
			AmountCents: unit,
			TotalCents:  unit * int64(it.Quantity),
		})
	}
	return items, nil
}

// resolveRecipient разрешает размеченную ссылку "человек или приют": проверяет
// существование и снимает отображаемые поля. Пустой тип очищает ссылку.
func (s *Service) resolveRecipient(ctx context.Context, kind string, key *string, keyField, kindField string) (model.Recipient, error) {
	switch validation.NormalizeEnum(kind) {
	case "":
		return model.Recipient{}, nil

	case validation.NormalizeEnum(string(model.RecipientPerson)):
		if key == nil || *key == "" {
			return model.Recipient{}, validation.Errors{keyField: "is required"}
		}
		p, err := s.repo.GetPerson(ctx, *key)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.Recipient{}, fmt.Errorf("%w: person %s", repository.ErrReferenceNotFound, *key)
			}
			return model.Recipient{}, err
		}
		return model.Recipient{
			Kind:   model.RecipientPerson,
			Person: &model.PersonSnapshot{Email: p.Email, FirstName: p.FirstName, LastName: p.LastName},
		}, nil

	case validation.NormalizeEnum(string(model.RecipientShelter)):
		if key == nil || *key == "" {
			return model.Recipient{}, validation.Errors{keyField: "is required"}
		}
		sh, err := s.repo.GetShelter(ctx, *key)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.Recipient{}, fmt.Errorf("%w: shelter %s", repository.ErrReferenceNotFound, *key)
			}
			return model.Recipient{}, err
		}
		return model.Recipient{
			Kind:    model.RecipientShelter,
			Shelter: &model.ShelterSnapshot{Name: sh.Name},
		}, nil

	default:
		return model.Recipient{}, validation.Errors{kindField: "must be one of: Person, Animal Shelter"}
	}
}

// PaymentInput — входные данные платежа. Все идентификационные поля обязательны.
type PaymentInput struct {
	Number         string     `json:"number" validate:"required,extref"`
	Hash           string     `json:"hash" validate:"required,idemhash"`
	Type           string     `json:"type" validate:"required"`
	Provider       string     `json:"provider" validate:"required"`
	Amount         *FlexFloat `json:"amount" validate:"required,gt=0"`
	Info1          string     `json:"info_1"`
	Info2          string     `json:"info_2"`
	Info3          string     `json:"info_3"`
	PaymentAt      *string    `json:"payment_at"`
	DonationHash   *string    `json:"donation_hash" validate:"omitempty,idemhash"`
	DonationNumber *string    `json:"donation_number" validate:"omitempty,extref"`
}

// CreatePayment выполняет идемпотентный приём платежа: повтор с тем же номером
// или hash возвращает сохранённую запись с created=false. Перечисления
// принимаются без учёта регистра и хранятся в нижнем. Ссылка на пожертвование
// мягкая: ищется по donation_hash, затем по donation_number, и остаётся
// пустой, если пожертвование не найдено.
func (s *Service) CreatePayment(ctx context.Context, in PaymentInput) (*model.DonationPayment, bool, error) {
	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}

	typ := validation.NormalizeEnum(in.Type)
	switch typ {
	case string(model.PaymentDeposit), string(model.PaymentWithdraw), string(model.PaymentRefund):
	default:
		if in.Type != "" {
			errs["type"] = "must be one of: deposit, withdraw, refund"
		}
	}

	provider := validation.NormalizeEnum(in.Provider)
	switch provider {
	case string(model.ProviderPayPal), string(model.ProviderStripe), string(model.ProviderBank), string(model.ProviderCash):
	default:
		if in.Provider != "" {
			errs["provider"] = "must be one of: paypal, stripe, bank, cash"
		}
	}

	var paymentAt *time.Time
	if in.PaymentAt != nil && *in.PaymentAt != "" {
		t, err := validation.ParseDateTime(*in.PaymentAt)
		if err != nil {
			errs["payment_at"] = err.Error()
		} else {
			paymentAt = &t
		}
	}

	if len(errs) > 0 {
		return nil, false, errs
	}

	p := &model.DonationPayment{
		Number:             in.Number,
		Hash:               in.Hash,
		Type:               model.PaymentType(typ),
		Provider:           model.PaymentProvider(provider),
		AmountCents:        toCents(float64(*in.Amount)),
		Info1:              in.Info1,
		Info2:              in.Info2,
		Info3:              in.Info3,
		PaymentAt:          paymentAt,
		CreatedFromPayload: true,
	}

	donation, err := s.lookupDonation(ctx, in.DonationHash, in.DonationNumber)
	if err != nil {
		return nil, false, err
	}
	if donation != nil {
		p.Donation = donation.Number
	}

	return s.repo.CreatePayment(ctx, p)
}

// lookupDonation ищет пожертвование для мягкой ссылки платежа. Отсутствие
// записи не является ошибкой.
func (s *Service) lookupDonation(ctx context.Context, hash, number *string) (*model.Donation, error) {
	for _, key := range []*string{hash, number} {
		if key == nil || *key == "" {
			continue
		}
		d, err := s.repo.GetDonation(ctx, *key)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// GetPayment возвращает платёж по идентификатору транзакции.
func (s *Service) GetPayment(ctx context.Context, number string) (*model.DonationPayment, error) {
	return s.repo.GetPayment(ctx, number)
}

// ListPayments возвращает все платежи.
func (s *Service) ListPayments(ctx context.Context) ([]model.DonationPayment, error) {
	return s.repo.ListPayments(ctx)
}
