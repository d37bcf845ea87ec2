package service

import (
	"context"
	"strings"

	"github.com/nkuznetsov/homie-system/internal/model"
	"github.com/nkuznetsov/homie-system/internal/validation"
)

// PersonInput — входные данные записи контактного лица. Nil-поле при
// обновлении означает "оставить как есть".
type PersonInput struct {
	Email     *string `json:"email" validate:"omitempty,email_basic"`
	FirstName *string `json:"first_name" validate:"omitempty,alphaname"`
	LastName  *string `json:"last_name" validate:"omitempty,alphaname"`
	ContactNo *string `json:"contact_no"`
	Country   *string `json:"country"`
	City      *string `json:"city"`
	Street    *string `json:"street"`
}

func applyPersonInput(p *model.Person, in PersonInput) {
	applyString(&p.FirstName, in.FirstName)
	applyString(&p.LastName, in.LastName)
	applyString(&p.ContactNo, in.ContactNo)
	applyString(&p.Country, in.Country)
	applyString(&p.City, in.City)
	applyString(&p.Street, in.Street)
	p.FullName = strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// CreatePerson создаёт запись контактного лица. Email обязателен и служит ключом.
func (s *Service) CreatePerson(ctx context.Context, in PersonInput) (*model.Person, error) {
	errs := validation.Struct(in)
	if in.Email == nil || *in.Email == "" {
		if errs == nil {
			errs = validation.Errors{}
		}
		errs["email"] = "is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	p := &model.Person{Email: *in.Email}
	applyPersonInput(p, in)
	if err := s.repo.CreatePerson(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPerson возвращает контактное лицо по email.
func (s *Service) GetPerson(ctx context.Context, email string) (*model.Person, error) {
	return s.repo.GetPerson(ctx, email)
}

// ListPersons возвращает все записи контактных лиц.
func (s *Service) ListPersons(ctx context.Context) ([]model.Person, error) {
	return s.repo.ListPersons(ctx)
}

// UpdatePerson частично обновляет контактное лицо: применяются только
// переданные поля, полное имя выводится заново.
func (s *Service) UpdatePerson(ctx context.Context, email string, in PersonInput) (*model.Person, error) {
	if errs := validation.Struct(in); len(errs) > 0 {
		return nil, errs
	}

	p, err := s.repo.GetPerson(ctx, email)
	if err != nil {
		return nil, err
	}
	applyPersonInput(p, in)
	if err := s.repo.UpdatePerson(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePerson удаляет контактное лицо по email.
func (s *Service) DeletePerson(ctx context.Context, email string) error {
	return s.repo.DeletePerson(ctx, email)
}

// OrganizationInput — входные данные организации.
type OrganizationInput struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" validate:"omitempty,email_basic"`
	ContactNo *string `json:"contact_no"`
	Status    *string `json:"status"`
	Country   *string `json:"country"`
	City      *string `json:"city"`
	LogoURL   *string `json:"logo_url"`
}

func applyOrganizationInput(o *model.Organization, in OrganizationInput) validation.Errors {
	applyString(&o.Email, in.Email)
	applyString(&o.ContactNo, in.ContactNo)
	applyString(&o.Country, in.Country)
	applyString(&o.City, in.City)
	applyString(&o.LogoURL, in.LogoURL)

	if in.Status != nil {
		switch status := validation.NormalizeEnum(*in.Status); status {
		case string(model.OrganizationActive), string(model.OrganizationInactive):
			o.Status = model.OrganizationStatus(status)
		default:
			return validation.Errors{"status": "must be one of: active, inactive"}
		}
	}
	return nil
}

// CreateOrganization создаёт организацию. Название обязательно и служит ключом,
// статус по умолчанию — active.
func (s *Service) CreateOrganization(ctx context.Context, in OrganizationInput) (*model.Organization, error) {
	errs := validation.Struct(in)
	if in.Name == nil || *in.Name == "" {
		if errs == nil {
			errs = validation.Errors{}
		}
		errs["name"] = "is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	o := &model.Organization{Name: *in.Name, Status: model.OrganizationActive}
	if errs := applyOrganizationInput(o, in); len(errs) > 0 {
		return nil, errs
	}
	if err := s.repo.CreateOrganization(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrganization возвращает организацию по названию.
func (s *Service) GetOrganization(ctx context.Context, name string) (*model.Organization, error) {
	return s.repo.GetOrganization(ctx, name)
}

// ListOrganizations возвращает все организации.
func (s *Service) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	return s.repo.ListOrganizations(ctx)
}

// UpdateOrganization частично обновляет организацию по названию.
func (s *Service) UpdateOrganization(ctx context.Context, name string, in OrganizationInput) (*model.Organization, error) {
	if errs := validation.Struct(in); len(errs) > 0 {
		return nil, errs
	}

	o, err := s.repo.GetOrganization(ctx, name)
	if err != nil {
		return nil, err
	}
	if errs := applyOrganizationInput(o, in); len(errs) > 0 {
		return nil, errs
	}
	if err := s.repo.UpdateOrganization(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteOrganization удаляет организацию; связь с банковскими реквизитами
// разрывается в той же транзакции.
func (s *Service) DeleteOrganization(ctx context.Context, name string) error {
	return s.repo.DeleteOrganization(ctx, name)
}

// BankDetailsInput — входные данные банковских реквизитов.
type BankDetailsInput struct {
	IBAN          *string `json:"iban"`
	BankName      *string `json:"bank_name"`
	AccountHolder *string `json:"account_holder"`
	Organization  *string `json:"organization"`
}

// CreateBankDetails создаёт банковские реквизиты. Если указана организация,
// взаимная ссылка проставляется атомарно; несуществующая организация —
// жёсткая ошибка.
func (s *Service) CreateBankDetails(ctx context.Context, in BankDetailsInput) (*model.BankDetails, error) {
	if in.IBAN == nil || *in.IBAN == "" {
		return nil, validation.Errors{"iban": "is required"}
	}

	b := &model.BankDetails{IBAN: *in.IBAN}
	applyString(&b.BankName, in.BankName)
	applyString(&b.AccountHolder, in.AccountHolder)
	applyString(&b.Organization, in.Organization)

	if err := s.repo.CreateBankDetails(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBankDetails возвращает реквизиты по IBAN.
func (s *Service) GetBankDetails(ctx context.Context, iban string) (*model.BankDetails, error) {
	return s.repo.GetBankDetails(ctx, iban)
}

// ListBankDetails возвращает все банковские реквизиты.
func (s *Service) ListBankDetails(ctx context.Context) ([]model.BankDetails, error) {
	return s.repo.ListBankDetails(ctx)
}

// UpdateBankDetails частично обновляет реквизиты по IBAN. Смена организации
// перепривязывает взаимную ссылку в одной транзакции.
func (s *Service) UpdateBankDetails(ctx context.Context, iban string, in BankDetailsInput) (*model.BankDetails, error) {
	b, err := s.repo.GetBankDetails(ctx, iban)
	if err != nil {
		return nil, err
	}
	applyString(&b.BankName, in.BankName)
	applyString(&b.AccountHolder, in.AccountHolder)
	applyString(&b.Organization, in.Organization)

	if err := s.repo.UpdateBankDetails(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBankDetails удаляет реквизиты; обратная ссылка организации снимается
// в той же транзакции.
func (s *Service) DeleteBankDetails(ctx context.Context, iban string) error {
	return s.repo.DeleteBankDetails(ctx, iban)
}

// ShelterInput — входные данные приюта.
type ShelterInput struct {
	Name      *string  `json:"name"`
	Email     *string  `json:"email" validate:"omitempty,email_basic"`
	ContactNo *string  `json:"contact_no"`
	Country   *string  `json:"country"`
	City      *string  `json:"city"`
	Capacity  *FlexInt `json:"capacity" validate:"omitempty,gte=0"`
}

func applyShelterInput(sh *model.Shelter, in ShelterInput) {
	applyString(&sh.Email, in.Email)
	applyString(&sh.ContactNo, in.ContactNo)
	applyString(&sh.Country, in.Country)
	applyString(&sh.City, in.City)
	applyInt(&sh.Capacity, in.Capacity)
}

// CreateShelter создаёт приют. Название обязательно и служит ключом.
func (s *Service) CreateShelter(ctx context.Context, in ShelterInput) (*model.Shelter, error) {
	errs := validation.Struct(in)
	if in.Name == nil || *in.Name == "" {
		if errs == nil {
			errs = validation.Errors{}
		}
		errs["name"] = "is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	sh := &model.Shelter{Name: *in.Name}
	applyShelterInput(sh, in)
	if err := s.repo.CreateShelter(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

// GetShelter возвращает приют по названию.
func (s *Service) GetShelter(ctx context.Context, name string) (*model.Shelter, error) {
	return s.repo.GetShelter(ctx, name)
}

// ListShelters возвращает все приюты.
func (s *Service) ListShelters(ctx context.Context) ([]model.Shelter, error) {
	return s.repo.ListShelters(ctx)
}

// UpdateShelter частично обновляет приют по названию.
func (s *Service) UpdateShelter(ctx context.Context, name string, in ShelterInput) (*model.Shelter, error) {
	if errs := validation.Struct(in); len(errs) > 0 {
		return nil, errs
	}

	sh, err := s.repo.GetShelter(ctx, name)
	if err != nil {
		return nil, err
	}
	applyShelterInput(sh, in)
	if err := s.repo.UpdateShelter(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

// DeleteShelter удаляет приют по названию.
func (s *Service) DeleteShelter(ctx context.Context, name string) error {
	return s.repo.DeleteShelter(ctx, name)
}

// ProductInput — входные данные позиции каталога. Цена указывается в денежных
// единицах и хранится в центах.
type ProductInput struct {
	Name     *string    `json:"name" validate:"omitempty,productref"`
	Price    *FlexFloat `json:"price" validate:"omitempty,gte=0"`
	Status   *string    `json:"status"`
	Category *string    `json:"category"`
	Type     *string    `json:"type"`
}

func applyProductInput(p *model.Product, in ProductInput) validation.Errors {
	errs := validation.Errors{}

	if in.Price != nil {
		p.PriceCents = toCents(float64(*in.Price))
	}
	if in.Status != nil {
		switch status := validation.NormalizeEnum(*in.Status); status {
		case string(model.ProductInStock), string(model.ProductOutOfStock):
			p.Status = model.ProductStatus(status)
		default:
			errs["status"] = "must be one of: in-stock, out-of-stock"
		}
	}
	if in.Category != nil {
		switch category := validation.NormalizeEnum(*in.Category); category {
		case string(model.ProductCategoryCat), string(model.ProductCategoryDog):
			p.Category = model.ProductCategory(category)
		default:
			errs["category"] = "must be one of: cat, dog"
		}
	}
	if in.Type != nil {
		switch typ := validation.NormalizeEnum(*in.Type); typ {
		case string(model.ProductTypeFood), string(model.ProductTypeMoney):
			p.Type = model.ProductType(typ)
		default:
			errs["type"] = "must be one of: food, money"
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreateProduct создаёт позицию каталога с умолчаниями in-stock/dog/food.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	errs := validation.Struct(in)
	if in.Name == nil || *in.Name == "" {
		if errs == nil {
			errs = validation.Errors{}
		}
		errs["name"] = "is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	p := &model.Product{
		Name:     *in.Name,
		Status:   model.ProductInStock,
		Category: model.ProductCategoryDog,
		Type:     model.ProductTypeFood,
	}
	if errs := applyProductInput(p, in); len(errs) > 0 {
		return nil, errs
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct возвращает позицию каталога по названию.
func (s *Service) GetProduct(ctx context.Context, name string) (*model.Product, error) {
	return s.repo.GetProduct(ctx, name)
}

// ListProducts возвращает весь каталог.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.ListProducts(ctx)
}

// UpdateProduct частично обновляет позицию каталога. Снимки цен в ранее
// созданных пожертвованиях не пересчитываются.
func (s *Service) UpdateProduct(ctx context.Context, name string, in ProductInput) (*model.Product, error) {
	if errs := validation.Struct(in); len(errs) > 0 {
		return nil, errs
	}

	p, err := s.repo.GetProduct(ctx, name)
	if err != nil {
		return nil, err
	}
	if errs := applyProductInput(p, in); len(errs) > 0 {
		return nil, errs
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct удаляет позицию каталога по названию.
func (s *Service) DeleteProduct(ctx context.Context, name string) error {
	return s.repo.DeleteProduct(ctx, name)
}
