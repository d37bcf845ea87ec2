package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nkuznetsov/homie-system/internal/model"
	"github.com/nkuznetsov/homie-system/internal/repository"
	"github.com/nkuznetsov/homie-system/internal/validation"
)

// AnimalRecordInput — входные данные записи учёта животных. Источник —
// размеченная ссылка: Person с person_details либо Animal Shelter с
// shelter_details.
type AnimalRecordInput struct {
	AnimalType     *string  `json:"animal_type"`
	AdultCount     *FlexInt `json:"adult_count" validate:"omitempty,gte=0"`
	YoungCount     *FlexInt `json:"young_count" validate:"omitempty,gte=0"`
	SeniorCount    *FlexInt `json:"senior_count" validate:"omitempty,gte=0"`
	Source         *string  `json:"source"`
	PersonDetails  *string  `json:"person_details"`
	ShelterDetails *string  `json:"shelter_details"`
}

func (s *Service) applyAnimalRecordInput(ctx context.Context, a *model.AnimalRecord, in AnimalRecordInput) error {
	if in.AnimalType != nil {
		switch typ := validation.NormalizeEnum(*in.AnimalType); typ {
		case string(model.AnimalDog), string(model.AnimalCat):
			a.AnimalType = model.AnimalType(typ)
		default:
			return validation.Errors{"animal_type": "must be one of: dog, cat"}
		}
	}

	applyInt(&a.Counts.Adult, in.AdultCount)
	applyInt(&a.Counts.Young, in.YoungCount)
	applyInt(&a.Counts.Senior, in.SeniorCount)

	if in.Source != nil {
		key, keyField := in.PersonDetails, "person_details"
		if validation.NormalizeEnum(*in.Source) == validation.NormalizeEnum(string(model.RecipientShelter)) {
			key, keyField = in.ShelterDetails, "shelter_details"
		}
		rec, err := s.resolveRecipient(ctx, *in.Source, key, keyField, "source")
		if err != nil {
			return err
		}
		a.Source = rec
	}
	return nil
}

// CreateAnimalRecord создаёт запись учёта животных. Вид животных и источник
// обязательны, код генерируется.
func (s *Service) CreateAnimalRecord(ctx context.Context, in AnimalRecordInput) (*model.AnimalRecord, error) {
	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}
	if in.AnimalType == nil || *in.AnimalType == "" {
		errs["animal_type"] = "is required"
	}
	if in.Source == nil || *in.Source == "" {
		errs["source"] = "is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	a := &model.AnimalRecord{Code: newCode("AR")}
	if err := s.applyAnimalRecordInput(ctx, a, in); err != nil {
		return nil, err
	}
	if err := s.repo.CreateAnimalRecord(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAnimalRecord возвращает запись учёта животных по коду.
func (s *Service) GetAnimalRecord(ctx context.Context, code string) (*model.AnimalRecord, error) {
	return s.repo.GetAnimalRecord(ctx, code)
}

// ListAnimalRecords возвращает все записи учёта животных.
func (s *Service) ListAnimalRecords(ctx context.Context) ([]model.AnimalRecord, error) {
	return s.repo.ListAnimalRecords(ctx)
}

// UpdateAnimalRecord частично обновляет запись учёта животных. Смена источника
// перезаписывает снимок и очищает поля неактивного варианта.
func (s *Service) UpdateAnimalRecord(ctx context.Context, code string, in AnimalRecordInput) (*model.AnimalRecord, error) {
	if errs := validation.Struct(in); len(errs) > 0 {
		return nil, errs
	}

	a, err := s.repo.GetAnimalRecord(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.applyAnimalRecordInput(ctx, a, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAnimalRecord(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAnimalRecord удаляет запись учёта животных по коду.
func (s *Service) DeleteAnimalRecord(ctx context.Context, code string) error {
	return s.repo.DeleteAnimalRecord(ctx, code)
}

// DeliveryRecordInput — входные данные записи о доставке. Источник — либо
// закупка человеком (purchaser), либо передача организацией (organization);
// получатель — человек или приют.
type DeliveryRecordInput struct {
	DeliveryType     *string `json:"delivery_type"`
	Purchaser        *string `json:"purchaser" validate:"omitempty,email_basic"`
	Organization     *string `json:"organization"`
	DeliverTo        *string `json:"deliver_to"`
	RecipientPerson  *string `json:"recipient_person"`
	RecipientShelter *string `json:"recipient_shelter"`
	DeliveryDate     *string `json:"delivery_date"`
}

// parseDeliveryKind принимает источник доставки без учёта регистра, допуская
// дефисы вместо пробелов ("own-purchase", "donated-from-organization").
func parseDeliveryKind(raw string) (model.DeliverySourceKind, bool) {
	norm := strings.ReplaceAll(validation.NormalizeEnum(raw), "-", " ")
	for _, kind := range []model.DeliverySourceKind{model.DeliveryOwnPurchase, model.DeliveryOrgDonated} {
		if norm == validation.NormalizeEnum(string(kind)) {
			return kind, true
		}
	}
	return "", false
}

func (s *Service) resolveDeliverySource(ctx context.Context, raw string, purchaser, org *string) (model.DeliverySource, error) {
	kind, ok := parseDeliveryKind(raw)
	if !ok {
		return model.DeliverySource{}, validation.Errors{"delivery_type": "must be one of: Own Purchase, Donated From Organization"}
	}

	switch kind {
	case model.DeliveryOwnPurchase:
		if purchaser == nil || *purchaser == "" {
			return model.DeliverySource{}, validation.Errors{"purchaser": "is required"}
		}
		p, err := s.repo.GetPerson(ctx, *purchaser)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.DeliverySource{}, fmt.Errorf("%w: person %s", repository.ErrReferenceNotFound, *purchaser)
			}
			return model.DeliverySource{}, err
		}
		return model.DeliverySource{
			Kind:   kind,
			Person: &model.PersonSnapshot{Email: p.Email, FirstName: p.FirstName, LastName: p.LastName},
		}, nil

	default:
		if org == nil || *org == "" {
			return model.DeliverySource{}, validation.Errors{"organization": "is required"}
		}
		o, err := s.repo.GetOrganization(ctx, *org)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.DeliverySource{}, fmt.Errorf("%w: organization %s", repository.ErrReferenceNotFound, *org)
			}
			return model.DeliverySource{}, err
		}
		return model.DeliverySource{
			Kind:         kind,
			Organization: &model.OrganizationSnapshot{Name: o.Name},
		}, nil
	}
}

// displayTitle выводит заголовок доставки из снимка источника.
func displayTitle(src model.DeliverySource) string {
	switch src.Kind {
	case model.DeliveryOwnPurchase:
		if src.Person == nil {
			return ""
		}
		name := strings.TrimSpace(src.Person.FirstName + " " + src.Person.LastName)
		if name == "" {
			name = src.Person.Email
		}
		return "Purchased by " + name
	case model.DeliveryOrgDonated:
		if src.Organization == nil {
			return ""
		}
		return "Donated by " + src.Organization.Name
	}
	return ""
}

func (s *Service) applyDeliveryRecordInput(ctx context.Context, d *model.DeliveryRecord, in DeliveryRecordInput) error {
	if in.DeliveryType != nil {
		src, err := s.resolveDeliverySource(ctx, *in.DeliveryType, in.Purchaser, in.Organization)
		if err != nil {
			return err
		}
		d.Source = src
	}

	if in.DeliverTo != nil {
		key, keyField := in.RecipientPerson, "recipient_person"
		if validation.NormalizeEnum(*in.DeliverTo) == validation.NormalizeEnum(string(model.RecipientShelter)) {
			key, keyField = in.RecipientShelter, "recipient_shelter"
		}
		rec, err := s.resolveRecipient(ctx, *in.DeliverTo, key, keyField, "deliver_to")
		if err != nil {
			return err
		}
		d.DeliverTo = rec
	}

	if in.DeliveryDate != nil {
		if *in.DeliveryDate == "" {
			d.DeliveryDate = nil
		} else {
			t, err := validation.ParseDateTime(*in.DeliveryDate)
			if err != nil {
				return validation.Errors{"delivery_date": err.Error()}
			}
			d.DeliveryDate = &t
		}
	}

	d.DisplayTitle = displayTitle(d.Source)
	return nil
}

// CreateDeliveryRecord создаёт запись о доставке. Тип доставки и получатель
// обязательны, код генерируется, заголовок выводится из источника.
func (s *Service) CreateDeliveryRecord(ctx context.Context, in DeliveryRecordInput) (*model.DeliveryRecord, error) {
	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}
	if in.DeliveryType == nil || *in.DeliveryType == "" {
		errs["delivery_type"] = "is required"
	}
	if in.DeliverTo == nil || *in.DeliverTo == "" {
		errs["deliver_to"] = "is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	d := &model.DeliveryRecord{Code: newCode("DR")}
	if err := s.applyDeliveryRecordInput(ctx, d, in); err != nil {
		return nil, err
	}
	if err := s.repo.CreateDeliveryRecord(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GetDeliveryRecord возвращает запись о доставке по коду.
func (s *Service) GetDeliveryRecord(ctx context.Context, code string) (*model.DeliveryRecord, error) {
	return s.repo.GetDeliveryRecord(ctx, code)
}

// ListDeliveryRecords возвращает все записи о доставках.
func (s *Service) ListDeliveryRecords(ctx context.Context) ([]model.DeliveryRecord, error) {
	return s.repo.ListDeliveryRecords(ctx)
}

// UpdateDeliveryRecord частично обновляет запись о доставке. Смена типа или
// получателя перезаписывает снимки и очищает поля неактивных вариантов.
func (s *Service) UpdateDeliveryRecord(ctx context.Context, code string, in DeliveryRecordInput) (*model.DeliveryRecord, error) {
	if errs := validation.Struct(in); len(errs) > 0 {
		return nil, errs
	}

	d, err := s.repo.GetDeliveryRecord(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.applyDeliveryRecordInput(ctx, d, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDeliveryRecord(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDeliveryRecord удаляет запись о доставке по коду.
func (s *Service) DeleteDeliveryRecord(ctx context.Context, code string) error {
	return s.repo.DeleteDeliveryRecord(ctx, code)
}

// FoodDemandInput — входные данные заявки приюта на корм.
type FoodDemandInput struct {
	Shelter  *string  `json:"shelter"`
	Category *string  `json:"category"`
	Quantity *FlexInt `json:"quantity" validate:"omitempty,gt=0"`
	NeededBy *string  `json:"needed_by"`
	Status   *string  `json:"status"`
}

func (s *Service) applyFoodDemandInput(ctx context.Context, f *model.FoodDemand, in FoodDemandInput) error {
	if in.Shelter != nil {
		sh, err := s.repo.GetShelter(ctx, *in.Shelter)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: shelter %s", repository.ErrReferenceNotFound, *in.Shelter)
			}
			return err
		}
		f.Shelter = sh.Name
		f.ShelterName = sh.Name
	}

	if in.Category != nil {
		switch category := validation.NormalizeEnum(*in.Category); category {
		case string(model.ProductCategoryCat), string(model.ProductCategoryDog):
			f.Category = model.ProductCategory(category)
		default:
			return validation.Errors{"category": "must be one of: cat, dog"}
		}
	}

	applyInt(&f.Quantity, in.Quantity)

	if in.NeededBy != nil {
		if *in.NeededBy == "" {
			f.NeededBy = nil
		} else {
			t, err := validation.ParseDateTime(*in.NeededBy)
			if err != nil {
				return validation.Errors{"needed_by": err.Error()}
			}
			f.NeededBy = &t
		}
	}

	if in.Status != nil {
		switch status := validation.NormalizeEnum(*in.Status); status {
		case string(model.DemandOpen), string(model.DemandFulfilled):
			f.Status = model.DemandStatus(status)
		default:
			return validation.Errors{"status": "must be one of: open, fulfilled"}
		}
	}
	return nil
}

// CreateFoodDemand создаёт заявку приюта на корм. Приют, категория и
// количество обязательны, статус по умолчанию — open.
func (s *Service) CreateFoodDemand(ctx context.Context, in FoodDemandInput) (*model.FoodDemand, error) {
	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}
	if in.Shelter == nil || *in.Shelter == "" {
		errs["shelter"] = "is required"
	}
	if in.Category == nil || *in.Category == "" {
		errs["category"] = "is required"
	}
	if in.Quantity == nil {
		errs["quantity"] = "is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	f := &model.FoodDemand{Code: newCode("FD"), Status: model.DemandOpen}
	if err := s.applyFoodDemandInput(ctx, f, in); err != nil {
		return nil, err
	}
	if err := s.repo.CreateFoodDemand(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// GetFoodDemand возвращает заявку на корм по коду.
func (s *Service) GetFoodDemand(ctx context.Context, code string) (*model.FoodDemand, error) {
	return s.repo.GetFoodDemand(ctx, code)
}

// ListFoodDemands возвращает все заявки на корм.
func (s *Service) ListFoodDemands(ctx context.Context) ([]model.FoodDemand, error) {
	return s.repo.ListFoodDemands(ctx)
}

// UpdateFoodDemand частично обновляет заявку на корм по коду.
func (s *Service) UpdateFoodDemand(ctx context.Context, code string, in FoodDemandInput) (*model.FoodDemand, error) {
	if errs := validation.Struct(in); len(errs) > 0 {
		return nil, errs
	}

	f, err := s.repo.GetFoodDemand(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.applyFoodDemandInput(ctx, f, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFoodDemand(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFoodDemand удаляет заявку на корм по коду.
func (s *Service) DeleteFoodDemand(ctx context.Context, code string) error {
	return s.repo.DeleteFoodDemand(ctx, code)
}

// PersonDemandInput — входные данные заявки на помощь человеку.
type PersonDemandInput struct {
	Person      *string  `json:"person" validate:"omitempty,email_basic"`
	Description *string  `json:"description"`
	Quantity    *FlexInt `json:"quantity" validate:"omitempty,gt=0"`
	Status      *string  `json:"status"`
}

func (s *Service) applyPersonDemandInput(ctx context.Context, pd *model.PersonDemand, in PersonDemandInput) error {
	if in.Person != nil {
		p, err := s.repo.GetPerson(ctx, *in.Person)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: person %s", repository.ErrReferenceNotFound, *in.Person)
			}
			return err
		}
		pd.PersonEmail = p.Email
		pd.PersonName = p.FullName
	}

	applyString(&pd.Description, in.Description)
	applyInt(&pd.Quantity, in.Quantity)

	if in.Status != nil {
		switch status := validation.NormalizeEnum(*in.Status); status {
		case string(model.DemandOpen), string(model.DemandFulfilled):
			pd.Status = model.DemandStatus(status)
		default:
			return validation.Errors{"status": "must be one of: open, fulfilled"}
		}
	}
	return nil
}

// CreatePersonDemand создаёт заявку на помощь человеку. Человек и количество
// обязательны, имя снимается из его записи, статус по умолчанию — open.
func (s *Service) CreatePersonDemand(ctx context.Context, in PersonDemandInput) (*model.PersonDemand, error) {
	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}
	if in.Person == nil || *in.Person == "" {
		errs["person"] = "is required"
	}
	if in.Quantity == nil {
		errs["quantity"] = "is required"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	pd := &model.PersonDemand{Code: newCode("PD"), Status: model.DemandOpen}
	if err := s.applyPersonDemandInput(ctx, pd, in); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePersonDemand(ctx, pd); err != nil {
		return nil, err
	}
	return pd, nil
}

// GetPersonDemand возвращает заявку на помощь по коду.
func (s *Service) GetPersonDemand(ctx context.Context, code string) (*model.PersonDemand, error) {
	return s.repo.GetPersonDemand(ctx, code)
}

// ListPersonDemands возвращает все заявки на помощь.
func (s *Service) ListPersonDemands(ctx context.Context) ([]model.PersonDemand, error) {
	return s.repo.ListPersonDemands(ctx)
}

// UpdatePersonDemand частично обновляет заявку на помощь по коду.
func (s *Service) UpdatePersonDemand(ctx context.Context, code string, in PersonDemandInput) (*model.PersonDemand, error) {
	if errs := validation.Struct(in); len(errs) > 0 {
		return nil, errs
	}

	pd, err := s.repo.GetPersonDemand(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.applyPersonDemandInput(ctx, pd, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePersonDemand(ctx, pd); err != nil {
		return nil, err
	}
	return pd, nil
}

// DeletePersonDemand удаляет заявку на помощь по коду.
func (s *Service) DeletePersonDemand(ctx context.Context, code string) error {
	return s.repo.DeletePersonDemand(ctx, code)
}
