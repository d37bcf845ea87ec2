package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nkuznetsov/homie-system/internal/middleware"
	"github.com/nkuznetsov/homie-system/internal/model"
	"github.com/nkuznetsov/homie-system/internal/repository"
	"github.com/nkuznetsov/homie-system/internal/service"
	"github.com/nkuznetsov/homie-system/internal/validation"
)

type stubService struct {
	registerUserID int64
	registerErr    error

	authUserID int64
	authErr    error

	donation          *model.Donation
	donationCreated   bool
	donationErr       error
	lastDonationInput service.DonationInput

	payment        *model.DonationPayment
	paymentCreated bool
	paymentErr     error

	person    *model.Person
	personErr error
}

func (s *stubService) RegisterUser(ctx context.Context, login, password string) (int64, error) {
	return s.registerUserID, s.registerErr
}

func (s *stubService) AuthenticateUser(ctx context.Context, login, password string) (int64, error) {
	return s.authUserID, s.authErr
}

func (s *stubService) CreateDonation(ctx context.Context, in service.DonationInput) (*model.Donation, bool, error) {
	s.lastDonationInput = in
	return s.donation, s.donationCreated, s.donationErr
}

func (s *stubService) GetDonation(ctx context.Context, key string) (*model.Donation, error) {
	return s.donation, s.donationErr
}

func (s *stubService) ListDonations(ctx context.Context) ([]model.Donation, error) {
	return nil, s.donationErr
}

func (s *stubService) UpdateDonation(ctx context.Context, key string, in service.DonationInput) (*model.Donation, error) {
	s.lastDonationInput = in
	return s.donation, s.donationErr
}

func (s *stubService) DeleteDonation(ctx context.Context, key string) error {
	return s.donationErr
}

func (s *stubService) CreatePayment(ctx context.Context, in service.PaymentInput) (*model.DonationPayment, bool, error) {
	return s.payment, s.paymentCreated, s.paymentErr
}

func (s *stubService) GetPayment(ctx context.Context, number string) (*model.DonationPayment, error) {
	return s.payment, s.paymentErr
}

func (s *stubService) ListPayments(ctx context.Context) ([]model.DonationPayment, error) {
	return nil, s.paymentErr
}

func (s *stubService) CreatePerson(ctx context.Context, in service.PersonInput) (*model.Person, error) {
	return s.person, s.personErr
}

func (s *stubService) GetPerson(ctx context.Context, email string) (*model.Person, error) {
	return s.person, s.personErr
}

func (s *stubService) ListPersons(ctx context.Context) ([]model.Person, error) {
	return nil, s.personErr
}

func (s *stubService) UpdatePerson(ctx context.Context, email string, in service.PersonInput) (*model.Person, error) {
	return s.person, s.personErr
}

func (s *stubService) DeletePerson(ctx context.Context, email string) error {
	return s.personErr
}

func (s *stubService) CreateOrganization(ctx context.Context, in service.OrganizationInput) (*model.Organization, error) {
	return nil, nil
}

func (s *stubService) GetOrganization(ctx context.Context, name string) (*model.Organization, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	return nil, nil
}

func (s *stubService) UpdateOrganization(ctx context.Context, name string, in service.OrganizationInput) (*model.Organization, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) DeleteOrganization(ctx context.Context, name string) error {
	return repository.ErrNotFound
}

func (s *stubService) CreateBankDetails(ctx context.Context, in service.BankDetailsInput) (*model.BankDetails, error) {
	return nil, nil
}

func (s *stubService) GetBankDetails(ctx context.Context, iban string) (*model.BankDetails, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) ListBankDetails(ctx context.Context) ([]model.BankDetails, error) {
	return nil, nil
}

func (s *stubService) UpdateBankDetails(ctx context.Context, iban string, in service.BankDetailsInput) (*model.BankDetails, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) DeleteBankDetails(ctx context.Context, iban string) error {
	return repository.ErrNotFound
}

func (s *stubService) CreateShelter(ctx context.Context, in service.ShelterInput) (*model.Shelter, error) {
	return nil, nil
}

func (s *stubService) GetShelter(ctx context.Context, name string) (*model.Shelter, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) ListShelters(ctx context.Context) ([]model.Shelter, error) {
	return nil, nil
}

func (s *stubService) UpdateShelter(ctx context.Context, name string, in service.ShelterInput) (*model.Shelter, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) DeleteShelter(ctx context.Context, name string) error {
	return repository.ErrNotFound
}

func (s *stubService) CreateProduct(ctx context.Context, in service.ProductInput) (*model.Product, error) {
	return nil, nil
}

func (s *stubService) GetProduct(ctx context.Context, name string) (*model.Product, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return nil, nil
}

func (s *stubService) UpdateProduct(ctx context.Context, name string, in service.ProductInput) (*model.Product, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) DeleteProduct(ctx context.Context, name string) error {
	return repository.ErrNotFound
}

func (s *stubService) CreateAnimalRecord(ctx context.Context, in service.AnimalRecordInput) (*model.AnimalRecord, error) {
	return nil, nil
}

func (s *stubService) GetAnimalRecord(ctx context.Context, code string) (*model.AnimalRecord, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) ListAnimalRecords(ctx context.Context) ([]model.AnimalRecord, error) {
	return nil, nil
}

func (s *stubService) UpdateAnimalRecord(ctx context.Context, code string, in service.AnimalRecordInput) (*model.AnimalRecord, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) DeleteAnimalRecord(ctx context.Context, code string) error {
	return repository.ErrNotFound
}

func (s *stubService) CreateDeliveryRecord(ctx context.Context, in service.DeliveryRecordInput) (*model.DeliveryRecord, error) {
	return nil, nil
}

func (s *stubService) GetDeliveryRecord(ctx context.Context, code string) (*model.DeliveryRecord, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) ListDeliveryRecords(ctx context.Context) ([]model.DeliveryRecord, error) {
	return nil, nil
}

func (s *stubService) UpdateDeliveryRecord(ctx context.Context, code string, in service.DeliveryRecordInput) (*model.DeliveryRecord, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) DeleteDeliveryRecord(ctx context.Context, code string) error {
	return repository.ErrNotFound
}

func (s *stubService) CreateFoodDemand(ctx context.Context, in service.FoodDemandInput) (*model.FoodDemand, error) {
	return nil, nil
}

func (s *stubService) GetFoodDemand(ctx context.Context, code string) (*model.FoodDemand, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) ListFoodDemands(ctx context.Context) ([]model.FoodDemand, error) {
	return nil, nil
}

func (s *stubService) UpdateFoodDemand(ctx context.Context, code string, in service.FoodDemandInput) (*model.FoodDemand, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) DeleteFoodDemand(ctx context.Context, code string) error {
	return repository.ErrNotFound
}

func (s *stubService) CreatePersonDemand(ctx context.Context, in service.PersonDemandInput) (*model.PersonDemand, error) {
	return nil, nil
}

func (s *stubService) GetPersonDemand(ctx context.Context, code string) (*model.PersonDemand, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) ListPersonDemands(ctx context.Context) ([]model.PersonDemand, error) {
	return nil, nil
}

func (s *stubService) UpdatePersonDemand(ctx context.Context, code string, in service.PersonDemandInput) (*model.PersonDemand, error) {
	return nil, repository.ErrNotFound
}

func (s *stubService) DeletePersonDemand(ctx context.Context, code string) error {
	return repository.ErrNotFound
}

func (s *stubService) GetDashboardSummary(ctx context.Context) (*model.DashboardSummary, error) {
	return &model.DashboardSummary{}, nil
}

func (s *stubService) GetOrganizationDashboard(ctx context.Context, name string) (*service.OrganizationDashboard, error) {
	return nil, repository.ErrNotFound
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	auth := middleware.NewAuthMiddleware("test-secret")

	return NewHandler(svc, logger, auth)
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

func TestRegister_Success(t *testing.T) {
	svc := &stubService{
		registerUserID: 42,
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(credentialsRequest{
		Login:    "user",
		Password: "pass",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if len(res.Cookies()) == 0 {
		t.Fatalf("expected auth cookie to be set")
	}
}

func TestLogin_UnauthorizedOnInvalidCredentials(t *testing.T) {
	svc := &stubService{
		authErr: service.ErrInvalidCredentials,
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(credentialsRequest{
		Login:    "user",
		Password: "wrong",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
	}
}

func TestCreateDonation_BodyOverridesQuery(t *testing.T) {
	svc := &stubService{
		donation:        &model.Donation{Number: "DN-1"},
		donationCreated: true,
	}
	h := newTestHandler(t, svc)

	body := strings.NewReader(`{"email":"body@example.com"}`)
	req := httptest.NewRequest(http.MethodPost,
		"/api/donations?email=query@example.com&donation_number=QRY-1&is_anonymous=true", body)
	rec := httptest.NewRecorder()

	h.CreateDonation(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	in := svc.lastDonationInput
	if in.Email == nil || *in.Email != "body@example.com" {
		t.Fatalf("body must win over query, got email %v", in.Email)
	}
	if in.Number == nil || *in.Number != "QRY-1" {
		t.Fatalf("query-only field must survive, got number %v", in.Number)
	}
	if in.IsAnonymous == nil || !bool(*in.IsAnonymous) {
		t.Fatalf("string boolean from query must parse, got %v", in.IsAnonymous)
	}
}

func TestCreateDonation_ExistsStatus(t *testing.T) {
	svc := &stubService{
		donation: &model.Donation{
			Number:     "DN-1",
			TotalCents: 3500,
		},
		donationCreated: false,
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/donations", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.CreateDonation(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	body := decodeBody(t, res)
	if body["status"] != "exists" {
		t.Fatalf("status field = %v, want exists", body["status"])
	}
	donation, ok := body["donation"].(map[string]any)
	if !ok {
		t.Fatalf("donation envelope missing: %v", body)
	}
	if donation["total"] != 35.0 {
		t.Fatalf("total = %v, want 35 (money in units)", donation["total"])
	}
}

func TestCreateDonation_ValidationErrorsBadRequest(t *testing.T) {
	svc := &stubService{
		donationErr: validation.Errors{"hash": "must be 32-33 alphanumeric characters"},
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/donations", strings.NewReader(`{"hash":"zz"}`))
	rec := httptest.NewRecorder()

	h.CreateDonation(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}

	body := decodeBody(t, res)
	if body["status"] != "error" {
		t.Fatalf("status field = %v, want error", body["status"])
	}
	errs, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("errors map missing: %v", body)
	}
	if _, ok := errs["hash"]; !ok {
		t.Fatalf("expected error for field hash, got %v", errs)
	}
}

func TestCreateDonation_InvalidJSONBadRequest(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/donations", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()

	h.CreateDonation(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetDonation_NotFound(t *testing.T) {
	svc := &stubService{
		donationErr: repository.ErrNotFound,
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/donations/DN-404", nil)
	rec := httptest.NewRecorder()

	h.GetDonation(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreatePerson_Conflict(t *testing.T) {
	svc := &stubService{
		personErr: repository.ErrDuplicate,
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/persons",
		strings.NewReader(`{"email":"jane@example.com"}`))
	rec := httptest.NewRecorder()

	h.CreatePerson(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestCreateDonation_ReferenceNotFoundBadRequest(t *testing.T) {
	svc := &stubService{
		donationErr: repository.ErrReferenceNotFound,
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/donations",
		strings.NewReader(`{"items":{"no-such":{"quantity":1}}}`))
	rec := httptest.NewRecorder()

	h.CreateDonation(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRouter_RequiresAuth(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(t, svc)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/donations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without cookie: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	cookieRec := httptest.NewRecorder()
	h.authMiddleware.SetAuthCookie(cookieRec, 1)
	cookie := cookieRec.Result().Cookies()[0]

	authed := httptest.NewRequest(http.MethodGet, "/api/donations", nil)
	authed.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authed)

	if rec.Code != http.StatusOK {
		t.Fatalf("with cookie: status = %d, want %d", rec.Code, http.StatusOK)
	}
}
