package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nkuznetsov/homie-system/internal/model"
	"github.com/nkuznetsov/homie-system/internal/repository"
	"github.com/nkuznetsov/homie-system/internal/validation"
)

func TestHashPasswordDeterministic(t *testing.T) {
	a := hashPassword("user", "pass")
	b := hashPassword("user", "pass")
	c := hashPassword("user", "other")

	if string(a) != string(b) {
		t.Fatalf("hashPassword must be deterministic, got %x and %x", a, b)
	}
	if string(a) == string(c) {
		t.Fatalf("different passwords must produce different hashes")
	}
}

// memRepo — репозиторий в памяти для тестов бизнес-логики.
type memRepo struct {
	users         map[string]*model.User
	persons       map[string]model.Person
	orgs          map[string]model.Organization
	banks         map[string]model.BankDetails
	shelters      map[string]model.Shelter
	products      map[string]model.Product
	donations     map[string]model.Donation
	payments      map[string]model.DonationPayment
	animals       map[string]model.AnimalRecord
	deliveries    map[string]model.DeliveryRecord
	foodDemands   map[string]model.FoodDemand
	personDemands map[string]model.PersonDemand
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:         map[string]*model.User{},
		persons:       map[string]model.Person{},
		orgs:          map[string]model.Organization{},
		banks:         map[string]model.BankDetails{},
		shelters:      map[string]model.Shelter{},
		products:      map[string]model.Product{},
		donations:     map[string]model.Donation{},
		payments:      map[string]model.DonationPayment{},
		animals:       map[string]model.AnimalRecord{},
		deliveries:    map[string]model.DeliveryRecord{},
		foodDemands:   map[string]model.FoodDemand{},
		personDemands: map[string]model.PersonDemand{},
	}
}

func (m *memRepo) Close() error { return nil }

func (m *memRepo) CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error) {
	if _, ok := m.users[login]; ok {
		return 0, repository.ErrUserExists
	}
	id := int64(len(m.users) + 1)
	m.users[login] = &model.User{ID: id, Login: login, PasswordHash: passwordHash}
	return id, nil
}

func (m *memRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	u, ok := m.users[login]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memRepo) CreatePerson(ctx context.Context, p *model.Person) error {
	if _, ok := m.persons[p.Email]; ok {
		return repository.ErrDuplicate
	}
	m.persons[p.Email] = *p
	return nil
}

func (m *memRepo) GetPerson(ctx context.Context, email string) (*model.Person, error) {
	p, ok := m.persons[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memRepo) ListPersons(ctx context.Context) ([]model.Person, error) {
	res := make([]model.Person, 0, len(m.persons))
	for _, p := range m.persons {
		res = append(res, p)
	}
	return res, nil
}

func (m *memRepo) UpdatePerson(ctx context.Context, p *model.Person) error {
	if _, ok := m.persons[p.Email]; !ok {
		return repository.ErrNotFound
	}
	m.persons[p.Email] = *p
	return nil
}

func (m *memRepo) DeletePerson(ctx context.Context, email string) error {
	if _, ok := m.persons[email]; !ok {
		return repository.ErrNotFound
	}
	delete(m.persons, email)
	return nil
}

func (m *memRepo) CreateOrganization(ctx context.Context, o *model.Organization) error {
	if _, ok := m.orgs[o.Name]; ok {
		return repository.ErrDuplicate
	}
	m.orgs[o.Name] = *o
	return nil
}

func (m *memRepo) GetOrganization(ctx context.Context, name string) (*model.Organization, error) {
	o, ok := m.orgs[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (m *memRepo) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	res := make([]model.Organization, 0, len(m.orgs))
	for _, o := range m.orgs {
		res = append(res, o)
	}
	return res, nil
}

func (m *memRepo) UpdateOrganization(ctx context.Context, o *model.Organization) error {
	if _, ok := m.orgs[o.Name]; !ok {
		return repository.ErrNotFound
	}
	m.orgs[o.Name] = *o
	return nil
}

func (m *memRepo) DeleteOrganization(ctx context.Context, name string) error {
	if _, ok := m.orgs[name]; !ok {
		return repository.ErrNotFound
	}
	delete(m.orgs, name)
	return nil
}

func (m *memRepo) CreateBankDetails(ctx context.Context, b *model.BankDetails) error {
	if _, ok := m.banks[b.IBAN]; ok {
		return repository.ErrDuplicate
	}
	m.banks[b.IBAN] = *b
	return nil
}

func (m *memRepo) GetBankDetails(ctx context.Context, iban string) (*model.BankDetails, error) {
	b, ok := m.banks[iban]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (m *memRepo) ListBankDetails(ctx context.Context) ([]model.BankDetails, error) {
	res := make([]model.BankDetails, 0, len(m.banks))
	for _, b := range m.banks {
		res = append(res, b)
	}
	return res, nil
}

func (m *memRepo) UpdateBankDetails(ctx context.Context, b *model.BankDetails) error {
	if _, ok := m.banks[b.IBAN]; !ok {
		return repository.ErrNotFound
	}
	m.banks[b.IBAN] = *b
	return nil
}

func (m *memRepo) DeleteBankDetails(ctx context.Context, iban string) error {
	if _, ok := m.banks[iban]; !ok {
		return repository.ErrNotFound
	}
	delete(m.banks, iban)
	return nil
}

func (m *memRepo) CreateShelter(ctx context.Context, s *model.Shelter) error {
	if _, ok := m.shelters[s.Name]; ok {
		return repository.ErrDuplicate
	}
	m.shelters[s.Name] = *s
	return nil
}

func (m *memRepo) GetShelter(ctx context.Context, name string) (*model.Shelter, error) {
	s, ok := m.shelters[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *memRepo) ListShelters(ctx context.Context) ([]model.Shelter, error) {
	res := make([]model.Shelter, 0, len(m.shelters))
	for _, s := range m.shelters {
		res = append(res, s)
	}
	return res, nil
}

func (m *memRepo) UpdateShelter(ctx context.Context, s *model.Shelter) error {
	if _, ok := m.shelters[s.Name]; !ok {
		return repository.ErrNotFound
	}
	m.shelters[s.Name] = *s
	return nil
}

func (m *memRepo) DeleteShelter(ctx context.Context, name string) error {
	if _, ok := m.shelters[name]; !ok {
		return repository.ErrNotFound
	}
	delete(m.shelters, name)
	return nil
}

func (m *memRepo) CreateProduct(ctx context.Context, p *model.Product) error {
	if _, ok := m.products[p.Name]; ok {
		return repository.ErrDuplicate
	}
	m.products[p.Name] = *p
	return nil
}

func (m *memRepo) GetProduct(ctx context.Context, name string) (*model.Product, error) {
	p, ok := m.products[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memRepo) ListProducts(ctx context.Context) ([]model.Product, error) {
	res := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		res = append(res, p)
	}
	return res, nil
}

func (m *memRepo) UpdateProduct(ctx context.Context, p *model.Product) error {
	if _, ok := m.products[p.Name]; !ok {
		return repository.ErrNotFound
	}
	m.products[p.Name] = *p
	return nil
}

func (m *memRepo) DeleteProduct(ctx context.Context, name string) error {
	if _, ok := m.products[name]; !ok {
		return repository.ErrNotFound
	}
	delete(m.products, name)
	return nil
}

func (m *memRepo) CreateDonation(ctx context.Context, d *model.Donation) (*model.Donation, bool, error) {
	for _, ex := range m.donations {
		if (d.Hash != "" && ex.Hash == d.Hash) || ex.Number == d.Number {
			found := ex
			return &found, false, nil
		}
	}
	m.donations[d.Number] = *d
	stored := *d
	return &stored, true, nil
}

func (m *memRepo) GetDonation(ctx context.Context, key string) (*model.Donation, error) {
	for _, d := range m.donations {
		if d.Number == key || (d.Hash != "" && d.Hash == key) {
			found := d
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) ListDonations(ctx context.Context) ([]model.Donation, error) {
	res := make([]model.Donation, 0, len(m.donations))
	for _, d := range m.donations {
		res = append(res, d)
	}
	return res, nil
}

func (m *memRepo) ListDonationsByOrganization(ctx context.Context, org string) ([]model.Donation, error) {
	var res []model.Donation
	for _, d := range m.donations {
		if d.Organization == org {
			res = append(res, d)
		}
	}
	return res, nil
}

func (m *memRepo) UpdateDonation(ctx context.Context, d *model.Donation) error {
	if _, ok := m.donations[d.Number]; !ok {
		return repository.ErrNotFound
	}
	m.donations[d.Number] = *d
	return nil
}

func (m *memRepo) DeleteDonation(ctx context.Context, key string) error {
	d, err := m.GetDonation(ctx, key)
	if err != nil {
		return err
	}
	delete(m.donations, d.Number)
	return nil
}

func (m *memRepo) CreatePayment(ctx context.Context, p *model.DonationPayment) (*model.DonationPayment, bool, error) {
	for _, ex := range m.payments {
		if ex.Number == p.Number || (p.Hash != "" && ex.Hash == p.Hash) {
			found := ex
			return &found, false, nil
		}
	}
	m.payments[p.Number] = *p
	stored := *p
	return &stored, true, nil
}

func (m *memRepo) GetPayment(ctx context.Context, number string) (*model.DonationPayment, error) {
	p, ok := m.payments[number]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memRepo) ListPayments(ctx context.Context) ([]model.DonationPayment, error) {
	res := make([]model.DonationPayment, 0, len(m.payments))
	for _, p := range m.payments {
		res = append(res, p)
	}
	return res, nil
}

func (m *memRepo) CreateAnimalRecord(ctx context.Context, a *model.AnimalRecord) error {
	m.animals[a.Code] = *a
	return nil
}

func (m *memRepo) GetAnimalRecord(ctx context.Context, code string) (*model.AnimalRecord, error) {
	a, ok := m.animals[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (m *memRepo) ListAnimalRecords(ctx context.Context) ([]model.AnimalRecord, error) {
	res := make([]model.AnimalRecord, 0, len(m.animals))
	for _, a := range m.animals {
		res = append(res, a)
	}
	return res, nil
}

func (m *memRepo) UpdateAnimalRecord(ctx context.Context, a *model.AnimalRecord) error {
	if _, ok := m.animals[a.Code]; !ok {
		return repository.ErrNotFound
	}
	m.animals[a.Code] = *a
	return nil
}

func (m *memRepo) DeleteAnimalRecord(ctx context.Context, code string) error {
	if _, ok := m.animals[code]; !ok {
		return repository.ErrNotFound
	}
	delete(m.animals, code)
	return nil
}

func (m *memRepo) CreateDeliveryRecord(ctx context.Context, d *model.DeliveryRecord) error {
	m.deliveries[d.Code] = *d
	return nil
}

func (m *memRepo) GetDeliveryRecord(ctx context.Context, code string) (*model.DeliveryRecord, error) {
	d, ok := m.deliveries[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (m *memRepo) ListDeliveryRecords(ctx context.Context) ([]model.DeliveryRecord, error) {
	res := make([]model.DeliveryRecord, 0, len(m.deliveries))
	for _, d := range m.deliveries {
		res = append(res, d)
	}
	return res, nil
}

func (m *memRepo) ListDeliveriesByOrganization(ctx context.Context, org string) ([]model.DeliveryRecord, error) {
	var res []model.DeliveryRecord
	for _, d := range m.deliveries {
		if d.Source.Organization != nil && d.Source.Organization.Name == org {
			res = append(res, d)
		}
	}
	return res, nil
}

func (m *memRepo) UpdateDeliveryRecord(ctx context.Context, d *model.DeliveryRecord) error {
	if _, ok := m.deliveries[d.Code]; !ok {
		return repository.ErrNotFound
	}
	m.deliveries[d.Code] = *d
	return nil
}

func (m *memRepo) DeleteDeliveryRecord(ctx context.Context, code string) error {
	if _, ok := m.deliveries[code]; !ok {
		return repository.ErrNotFound
	}
	delete(m.deliveries, code)
	return nil
}

func (m *memRepo) CreateFoodDemand(ctx context.Context, f *model.FoodDemand) error {
	m.foodDemands[f.Code] = *f
	return nil
}

func (m *memRepo) GetFoodDemand(ctx context.Context, code string) (*model.FoodDemand, error) {
	f, ok := m.foodDemands[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (m *memRepo) ListFoodDemands(ctx context.Context) ([]model.FoodDemand, error) {
	res := make([]model.FoodDemand, 0, len(m.foodDemands))
	for _, f := range m.foodDemands {
		res = append(res, f)
	}
	return res, nil
}

func (m *memRepo) UpdateFoodDemand(ctx context.Context, f *model.FoodDemand) error {
	if _, ok := m.foodDemands[f.Code]; !ok {
		return repository.ErrNotFound
	}
	m.foodDemands[f.Code] = *f
	return nil
}

func (m *memRepo) DeleteFoodDemand(ctx context.Context, code string) error {
	if _, ok := m.foodDemands[code]; !ok {
		return repository.ErrNotFound
	}
	delete(m.foodDemands, code)
	return nil
}

func (m *memRepo) CreatePersonDemand(ctx context.Context, p *model.PersonDemand) error {
	m.personDemands[p.Code] = *p
	return nil
}

func (m *memRepo) GetPersonDemand(ctx context.Context, code string) (*model.PersonDemand, error) {
	p, ok := m.personDemands[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memRepo) ListPersonDemands(ctx context.Context) ([]model.PersonDemand, error) {
	res := make([]model.PersonDemand, 0, len(m.personDemands))
	for _, p := range m.personDemands {
		res = append(res, p)
	}
	return res, nil
}

func (m *memRepo) UpdatePersonDemand(ctx context.Context, p *model.PersonDemand) error {
	if _, ok := m.personDemands[p.Code]; !ok {
		return repository.ErrNotFound
	}
	m.personDemands[p.Code] = *p
	return nil
}

func (m *memRepo) DeletePersonDemand(ctx context.Context, code string) error {
	if _, ok := m.personDemands[code]; !ok {
		return repository.ErrNotFound
	}
	delete(m.personDemands, code)
	return nil
}

func (m *memRepo) GetDashboardSummary(ctx context.Context) (*model.DashboardSummary, error) {
	return &model.DashboardSummary{}, nil
}

func (m *memRepo) GetOrganizationKPIs(ctx context.Context, org string) (*model.OrganizationKPIs, error) {
	return &model.OrganizationKPIs{}, nil
}

func str(s string) *string { return &s }

func flexFloat(f float64) *FlexFloat {
	v := FlexFloat(f)
	return &v
}

func testHash(seed byte) string {
	return strings.Repeat(string([]byte{seed}), 32)
}

func seedCatalog(m *memRepo) {
	m.persons["jane@example.com"] = model.Person{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		FullName:  "Jane Doe",
	}
	m.shelters["Happy Paws"] = model.Shelter{Name: "Happy Paws", Capacity: 40}
	m.orgs["Feed Friends"] = model.Organization{Name: "Feed Friends", Status: model.OrganizationActive}
	m.products["dog-food"] = model.Product{Name: "dog-food", PriceCents: 1000}
	m.products["cat-food"] = model.Product{Name: "cat-food", PriceCents: 500}
}

func TestRegisterUser_PropagatesDuplicateError(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	if _, err := svc.RegisterUser(context.Background(), "login", "pass"); err != nil {
		t.Fatalf("first RegisterUser error: %v", err)
	}
	_, err := svc.RegisterUser(context.Background(), "login", "pass")
	if !errors.Is(err, repository.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthenticateUser_InvalidCredentials(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	if _, err := svc.RegisterUser(context.Background(), "user", "correct"); err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}

	if _, err := svc.AuthenticateUser(context.Background(), "user", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.AuthenticateUser(context.Background(), "ghost", "correct"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown login: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.AuthenticateUser(context.Background(), "user", "correct"); err != nil {
		t.Fatalf("valid credentials rejected: %v", err)
	}
}

func TestCreateDonation_TotalFromItems(t *testing.T) {
	repo := newMemRepo()
	seedCatalog(repo)
	svc := NewService(repo)

	d, created, err := svc.CreateDonation(context.Background(), DonationInput{
		Hash:  str(testHash('a')),
		Email: str("jane@example.com"),
		Items: map[string]DonationItemInput{
			"dog-food": {Quantity: 2},
			"cat-food": {Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateDonation error: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true for first submission")
	}
	// 2*10.00 + 3*5.00
	if d.TotalCents != 3500 {
		t.Fatalf("TotalCents = %d, want 3500", d.TotalCents)
	}
	if !strings.HasPrefix(d.Number, "DN-") {
		t.Fatalf("generated number %q must have DN- prefix", d.Number)
	}
	if len(d.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(d.Items))
	}
	for _, it := range d.Items {
		if it.ProductName == "" {
			t.Fatalf("product name snapshot is empty: %+v", it)
		}
		if it.TotalCents != it.AmountCents*it.Quantity {
			t.Fatalf("line total %d != %d*%d", it.TotalCents, it.AmountCents, it.Quantity)
		}
	}
}

func TestCreateDonation_ItemAmountOverridesCatalogPrice(t *testing.T) {
	repo := newMemRepo()
	seedCatalog(repo)
	svc := NewService(repo)

	d, _, err := svc.CreateDonation(context.Background(), DonationInput{
		Hash: str(testHash('b')),
		Items: map[string]DonationItemInput{
			"dog-food": {Quantity: 2, Amount: flexFloat(7.5)},
		},
	})
	if err != nil {
		t.Fatalf("CreateDonation error: %v", err)
	}
	if d.TotalCents != 1500 {
		t.Fatalf("TotalCents = %d, want 1500", d.TotalCents)
	}
}

func TestCreateDonation_Idempotent(t *testing.T) {
	repo := newMemRepo()
	seedCatalog(repo)
	svc := NewService(repo)

	hash := testHash('c')
	first, created, err := svc.CreateDonation(context.Background(), DonationInput{
		Hash:  str(hash),
		Email: str("jane@example.com"),
	})
	if err != nil || !created {
		t.Fatalf("first submission: created=%v err=%v", created, err)
	}

	second, created, err := svc.CreateDonation(context.Background(), DonationInput{
		Hash:  str(hash),
		Email: str("other@example.com"),
	})
	if err != nil {
		t.Fatalf("second submission error: %v", err)
	}
	if created {
		t.Fatalf("repeated hash must not create a new donation")
	}
	if second.Number != first.Number || second.Email != first.Email {
		t.Fatalf("repeat must return stored record, got %+v", second)
	}
	if len(repo.donations) != 1 {
		t.Fatalf("donations stored = %d, want 1", len(repo.donations))
	}
}

func TestCreateDonation_RejectsMalformedHash(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	_, _, err := svc.CreateDonation(context.Background(), DonationInput{Hash: str("not-a-hash")})

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation.Errors, got %v", err)
	}
	if _, ok := verrs["hash"]; !ok {
		t.Fatalf("expected error for field hash, got %v", verrs)
	}
	if len(repo.donations) != 0 {
		t.Fatalf("nothing must be written on validation failure")
	}
}

func TestCreateDonation_UnknownProduct(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	_, _, err := svc.CreateDonation(context.Background(), DonationInput{
		Hash:  str(testHash('d')),
		Items: map[string]DonationItemInput{"no-such-product": {Quantity: 1}},
	})
	if !errors.Is(err, repository.ErrReferenceNotFound) {
		t.Fatalf("expected ErrReferenceNotFound, got %v", err)
	}
}

func TestCreateDonation_RecipientSnapshot(t *testing.T) {
	repo := newMemRepo()
	seedCatalog(repo)
	svc := NewService(repo)

	d, _, err := svc.CreateDonation(context.Background(), DonationInput{
		Hash:          str(testHash('e')),
		DonatedToType: str("Person"),
		DonatedTo:     str("jane@example.com"),
	})
	if err != nil {
		t.Fatalf("CreateDonation error: %v", err)
	}
	if d.Recipient.Kind != model.RecipientPerson {
		t.Fatalf("Recipient.Kind = %q, want %q", d.Recipient.Kind, model.RecipientPerson)
	}
	if d.Recipient.Person == nil || d.Recipient.Person.FirstName != "Jane" {
		t.Fatalf("person snapshot not taken: %+v", d.Recipient.Person)
	}
}

func TestCreateDonation_InvalidRecipientKind(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	_, _, err := svc.CreateDonation(context.Background(), DonationInput{
		Hash:          str(testHash('f')),
		DonatedToType: str("Charity"),
		DonatedTo:     str("jane@example.com"),
	})

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation.Errors, got %v", err)
	}
	if _, ok := verrs["donated_to_type"]; !ok {
		t.Fatalf("expected error for field donated_to_type, got %v", verrs)
	}
}

func TestUpdateDonation_RecomputesTotal(t *testing.T) {
	repo := newMemRepo()
	seedCatalog(repo)
	svc := NewService(repo)

	d, _, err := svc.CreateDonation(context.Background(), DonationInput{
		Hash:  str(testHash('g')),
		Items: map[string]DonationItemInput{"dog-food": {Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateDonation error: %v", err)
	}
	if d.TotalCents != 1000 {
		t.Fatalf("initial TotalCents = %d, want 1000", d.TotalCents)
	}

	updated, err := svc.UpdateDonation(context.Background(), d.Number, DonationInput{
		Items: map[string]DonationItemInput{"cat-food": {Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("UpdateDonation error: %v", err)
	}
	if updated.TotalCents != 2000 {
		t.Fatalf("TotalCents after update = %d, want 2000", updated.TotalCents)
	}
	if len(updated.Items) != 1 || updated.Items[0].Product != "cat-food" {
		t.Fatalf("items must be replaced wholesale, got %+v", updated.Items)
	}
}

func TestUpdateDonation_ClearsOrganization(t *testing.T) {
	repo := newMemRepo()
	seedCatalog(repo)
	svc := NewService(repo)

	d, _, err := svc.CreateDonation(context.Background(), DonationInput{
		Hash:         str(testHash('h')),
		Organization: str("Feed Friends"),
	})
	if err != nil {
		t.Fatalf("CreateDonation error: %v", err)
	}
	if d.Organization != "Feed Friends" || d.OrganizationName != "Feed Friends" {
		t.Fatalf("organization snapshot not taken: %+v", d)
	}

	updated, err := svc.UpdateDonation(context.Background(), d.Number, DonationInput{
		Organization: str(""),
	})
	if err != nil {
		t.Fatalf("UpdateDonation error: %v", err)
	}
	if updated.Organization != "" || updated.OrganizationName != "" {
		t.Fatalf("empty organization must clear link and snapshot, got %+v", updated)
	}
}

func TestCreatePayment_NormalizesEnums(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	p, created, err := svc.CreatePayment(context.Background(), PaymentInput{
		Number:   "PAY-1",
		Hash:     testHash('i'),
		Type:     "DEPOSIT",
		Provider: "PayPal",
		Amount:   flexFloat(12.5),
	})
	if err != nil {
		t.Fatalf("CreatePayment error: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true")
	}
	if p.Type != model.PaymentDeposit {
		t.Fatalf("Type = %q, want %q", p.Type, model.PaymentDeposit)
	}
	if p.Provider != model.ProviderPayPal {
		t.Fatalf("Provider = %q, want %q", p.Provider, model.ProviderPayPal)
	}
	if p.AmountCents != 1250 {
		t.Fatalf("AmountCents = %d, want 1250", p.AmountCents)
	}
	if !p.CreatedFromPayload {
		t.Fatalf("CreatedFromPayload must be set for ingested payments")
	}
}

func TestCreatePayment_RejectsUnknownType(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	_, _, err := svc.CreatePayment(context.Background(), PaymentInput{
		Number:   "PAY-2",
		Hash:     testHash('j'),
		Type:     "bogus",
		Provider: "stripe",
		Amount:   flexFloat(1),
	})

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation.Errors, got %v", err)
	}
	if _, ok := verrs["type"]; !ok {
		t.Fatalf("expected error for field type, got %v", verrs)
	}
	if len(repo.payments) != 0 {
		t.Fatalf("nothing must be written on validation failure")
	}
}

func TestCreatePayment_Idempotent(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	in := PaymentInput{
		Number:   "PAY-3",
		Hash:     testHash('k'),
		Type:     "deposit",
		Provider: "bank",
		Amount:   flexFloat(3),
	}
	if _, created, err := svc.CreatePayment(context.Background(), in); err != nil || !created {
		t.Fatalf("first submission: created=%v err=%v", created, err)
	}

	_, created, err := svc.CreatePayment(context.Background(), in)
	if err != nil {
		t.Fatalf("second submission error: %v", err)
	}
	if created {
		t.Fatalf("repeated number must not create a new payment")
	}
	if len(repo.payments) != 1 {
		t.Fatalf("payments stored = %d, want 1", len(repo.payments))
	}
}

func TestCreatePayment_SoftDonationLink(t *testing.T) {
	repo := newMemRepo()
	seedCatalog(repo)
	svc := NewService(repo)

	hash := testHash('l')
	d, _, err := svc.CreateDonation(context.Background(), DonationInput{Hash: str(hash)})
	if err != nil {
		t.Fatalf("CreateDonation error: %v", err)
	}

	linked, _, err := svc.CreatePayment(context.Background(), PaymentInput{
		Number:       "PAY-4",
		Hash:         testHash('m'),
		Type:         "deposit",
		Provider:     "cash",
		Amount:       flexFloat(5),
		DonationHash: str(hash),
	})
	if err != nil {
		t.Fatalf("CreatePayment error: %v", err)
	}
	if linked.Donation != d.Number {
		t.Fatalf("Donation = %q, want %q", linked.Donation, d.Number)
	}

	// Несуществующее пожертвование не мешает приёму платежа.
	orphan, created, err := svc.CreatePayment(context.Background(), PaymentInput{
		Number:       "PAY-5",
		Hash:         testHash('n'),
		Type:         "deposit",
		Provider:     "cash",
		Amount:       flexFloat(5),
		DonationHash: str(testHash('z')),
	})
	if err != nil || !created {
		t.Fatalf("orphan payment: created=%v err=%v", created, err)
	}
	if orphan.Donation != "" {
		t.Fatalf("missing donation must leave link empty, got %q", orphan.Donation)
	}
}

func TestUpdateAnimalRecord_SwitchesSource(t *testing.T) {
	repo := newMemRepo()
	seedCatalog(repo)
	svc := NewService(repo)

	a, err := svc.CreateAnimalRecord(context.Background(), AnimalRecordInput{
		AnimalType:    str("dog"),
		Source:        str("Person"),
		PersonDetails: str("jane@example.com"),
	})
	if err != nil {
		t.Fatalf("CreateAnimalRecord error: %v", err)
	}
	if a.Source.Kind != model.RecipientPerson || a.Source.Person == nil {
		t.Fatalf("person source not resolved: %+v", a.Source)
	}

	updated, err := svc.UpdateAnimalRecord(context.Background(), a.Code, AnimalRecordInput{
		Source:         str("Animal Shelter"),
		ShelterDetails: str("Happy Paws"),
	})
	if err != nil {
		t.Fatalf("UpdateAnimalRecord error: %v", err)
	}
	if updated.Source.Kind != model.RecipientShelter {
		t.Fatalf("Source.Kind = %q, want %q", updated.Source.Kind, model.RecipientShelter)
	}
	if updated.Source.Person != nil {
		t.Fatalf("switching to shelter must clear person snapshot, got %+v", updated.Source.Person)
	}
	if updated.Source.Shelter == nil || updated.Source.Shelter.Name != "Happy Paws" {
		t.Fatalf("shelter snapshot not taken: %+v", updated.Source.Shelter)
	}
}

func TestCreateDeliveryRecord_DisplayTitle(t *testing.T) {
	repo := newMemRepo()
	seedCatalog(repo)
	svc := NewService(repo)

	own, err := svc.CreateDeliveryRecord(context.Background(), DeliveryRecordInput{
		DeliveryType:     str("own-purchase"),
		Purchaser:        str("jane@example.com"),
		DeliverTo:        str("Animal Shelter"),
		RecipientShelter: str("Happy Paws"),
	})
	if err != nil {
		t.Fatalf("CreateDeliveryRecord error: %v", err)
	}
	if own.DisplayTitle != "Purchased by Jane Doe" {
		t.Fatalf("DisplayTitle = %q, want %q", own.DisplayTitle, "Purchased by Jane Doe")
	}

	donated, err := svc.CreateDeliveryRecord(context.Background(), DeliveryRecordInput{
		DeliveryType:    str("Donated From Organization"),
		Organization:    str("Feed Friends"),
		DeliverTo:       str("Person"),
		RecipientPerson: str("jane@example.com"),
	})
	if err != nil {
		t.Fatalf("CreateDeliveryRecord error: %v", err)
	}
	if donated.DisplayTitle != "Donated by Feed Friends" {
		t.Fatalf("DisplayTitle = %q, want %q", donated.DisplayTitle, "Donated by Feed Friends")
	}
}

func TestCreatePerson_DerivesFullName(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	p, err := svc.CreatePerson(context.Background(), PersonInput{
		Email:     str("john@example.com"),
		FirstName: str("John"),
		LastName:  str("Smith"),
	})
	if err != nil {
		t.Fatalf("CreatePerson error: %v", err)
	}
	if p.FullName != "John Smith" {
		t.Fatalf("FullName = %q, want %q", p.FullName, "John Smith")
	}
}

func TestCreateFoodDemand_Defaults(t *testing.T) {
	repo := newMemRepo()
	seedCatalog(repo)
	svc := NewService(repo)

	qty := FlexInt(50)
	f, err := svc.CreateFoodDemand(context.Background(), FoodDemandInput{
		Shelter:  str("Happy Paws"),
		Category: str("Dog"),
		Quantity: &qty,
	})
	if err != nil {
		t.Fatalf("CreateFoodDemand error: %v", err)
	}
	if !strings.HasPrefix(f.Code, "FD-") {
		t.Fatalf("generated code %q must have FD- prefix", f.Code)
	}
	if f.Status != model.DemandOpen {
		t.Fatalf("Status = %q, want %q", f.Status, model.DemandOpen)
	}
	if f.Category != model.ProductCategoryDog {
		t.Fatalf("Category = %q, want %q", f.Category, model.ProductCategoryDog)
	}
	if f.ShelterName != "Happy Paws" {
		t.Fatalf("shelter snapshot not taken: %+v", f)
	}
}
