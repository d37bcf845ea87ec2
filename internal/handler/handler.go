// Package handler содержит HTTP-обработчики API системы учёта пожертвований.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/nkuznetsov/homie-system/internal/middleware"
	"github.com/nkuznetsov/homie-system/internal/model"
	"github.com/nkuznetsov/homie-system/internal/repository"
	"github.com/nkuznetsov/homie-system/internal/service"
	"github.com/nkuznetsov/homie-system/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, login, password string) (int64, error)
	AuthenticateUser(ctx context.Context, login, password string) (int64, error)

	CreateDonation(ctx context.Context, in service.DonationInput) (*model.Donation, bool, error)
	GetDonation(ctx context.Context, key string) (*model.Donation, error)
	ListDonations(ctx context.Context) ([]model.Donation, error)
	UpdateDonation(ctx context.Context, key string, in service.DonationInput) (*model.Donation, error)
	DeleteDonation(ctx context.Context, key string) error

	CreatePayment(ctx context.Context, in service.PaymentInput) (*model.DonationPayment, bool, error)
	GetPayment(ctx context.Context, number string) (*model.DonationPayment, error)
	ListPayments(ctx context.Context) ([]model.DonationPayment, error)

	CreatePerson(ctx context.Context, in service.PersonInput) (*model.Person, error)
	GetPerson(ctx context.Context, email string) (*model.Person, error)
	ListPersons(ctx context.Context) ([]model.Person, error)
	UpdatePerson(ctx context.Context, email string, in service.PersonInput) (*model.Person, error)
	DeletePerson(ctx context.Context, email string) error

	CreateOrganization(ctx context.Context, in service.OrganizationInput) (*model.Organization, error)
	GetOrganization(ctx context.Context, name string) (*model.Organization, error)
	ListOrganizations(ctx context.Context) ([]model.Organization, error)
	UpdateOrganization(ctx context.Context, name string, in service.OrganizationInput) (*model.Organization, error)
	DeleteOrganization(ctx context.Context, name string) error

	CreateBankDetails(ctx context.Context, in service.BankDetailsInput) (*model.BankDetails, error)
	GetBankDetails(ctx context.Context, iban string) (*model.BankDetails, error)
	ListBankDetails(ctx context.Context) ([]model.BankDetails, error)
	UpdateBankDetails(ctx context.Context, iban string, in service.BankDetailsInput) (*model.BankDetails, error)
	DeleteBankDetails(ctx context.Context, iban string) error

	CreateShelter(ctx context.Context, in service.ShelterInput) (*model.Shelter, error)
	GetShelter(ctx context.Context, name string) (*model.Shelter, error)
	ListShelters(ctx context.Context) ([]model.Shelter, error)
	UpdateShelter(ctx context.Context, name string, in service.ShelterInput) (*model.Shelter, error)
	DeleteShelter(ctx context.Context, name string) error

	CreateProduct(ctx context.Context, in service.ProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, name string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, name string, in service.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, name string) error

	CreateAnimalRecord(ctx context.Context, in service.AnimalRecordInput) (*model.AnimalRecord, error)
	GetAnimalRecord(ctx context.Context, code string) (*model.AnimalRecord, error)
	ListAnimalRecords(ctx context.Context) ([]model.AnimalRecord, error)
	UpdateAnimalRecord(ctx context.Context, code string, in service.AnimalRecordInput) (*model.AnimalRecord, error)
	DeleteAnimalRecord(ctx context.Context, code string) error

	CreateDeliveryRecord(ctx context.Context, in service.DeliveryRecordInput) (*model.DeliveryRecord, error)
	GetDeliveryRecord(ctx context.Context, code string) (*model.DeliveryRecord, error)
	ListDeliveryRecords(ctx context.Context) ([]model.DeliveryRecord, error)
	UpdateDeliveryRecord(ctx context.Context, code string, in service.DeliveryRecordInput) (*model.DeliveryRecord, error)
	DeleteDeliveryRecord(ctx context.Context, code string) error

	CreateFoodDemand(ctx context.Context, in service.FoodDemandInput) (*model.FoodDemand, error)
	GetFoodDemand(ctx context.Context, code string) (*model.FoodDemand, error)
	ListFoodDemands(ctx context.Context) ([]model.FoodDemand, error)
	UpdateFoodDemand(ctx context.Context, code string, in service.FoodDemandInput) (*model.FoodDemand, error)
	DeleteFoodDemand(ctx context.Context, code string) error

	CreatePersonDemand(ctx context.Context, in service.PersonDemandInput) (*model.PersonDemand, error)
	GetPersonDemand(ctx context.Context, code string) (*model.PersonDemand, error)
	ListPersonDemands(ctx context.Context) ([]model.PersonDemand, error)
	UpdatePersonDemand(ctx context.Context, code string, in service.PersonDemandInput) (*model.PersonDemand, error)
	DeletePersonDemand(ctx context.Context, code string) error

	GetDashboardSummary(ctx context.Context) (*model.DashboardSummary, error)
	GetOrganizationDashboard(ctx context.Context, name string) (*service.OrganizationDashboard, error)
}

// Handler реализует HTTP-обработчики API системы учёта пожертвований.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

// decodePayload собирает плоский payload запроса: JSON-тело накладывается
// поверх query-параметров, query проигрывает. Значения query всегда
// передаются строками; числовые и булевы поля разбирают их сами.
func decodePayload(r *http.Request, dst any) error {
	merged := make(map[string]json.RawMessage)

	for key, vals := range r.URL.Query() {
		if len(vals) == 0 {
			continue
		}
		raw, err := json.Marshal(vals[0])
		if err != nil {
			return err
		}
		merged[key] = raw
	}

	if r.Body != nil {
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid json body: %w", err)
		}
		for k, v := range body {
			merged[k] = v
		}
	}

	buf, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dst)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeEntity отвечает конвертом {"status": ..., <key>: <entity>}.
func writeEntity(w http.ResponseWriter, status, key string, v any) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		key:      v,
	})
}

func writeErrors(w http.ResponseWriter, code int, errs validation.Errors) {
	writeJSON(w, code, map[string]any{
		"status": "error",
		"errors": errs,
	})
}

// writeError переводит ошибку сервиса в HTTP-ответ: ошибки валидации и
// отсутствующие ссылки — 400, ненайденная запись — 404, конфликт ключа — 409,
// остальное — 500 с записью в журнал.
func (h *Handler) writeError(w http.ResponseWriter, err error, logMsg string) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		writeErrors(w, http.StatusBadRequest, verrs)
	case errors.Is(err, repository.ErrReferenceNotFound):
		writeErrors(w, http.StatusBadRequest, validation.Errors{"reference": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		writeErrors(w, http.StatusNotFound, validation.Errors{"key": err.Error()})
	case errors.Is(err, repository.ErrDuplicate):
		writeErrors(w, http.StatusConflict, validation.Errors{"key": err.Error()})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		writeErrors(w, http.StatusInternalServerError, validation.Errors{"internal": "internal server error"})
	}
}

func (h *Handler) writePayloadError(w http.ResponseWriter, err error) {
	writeErrors(w, http.StatusBadRequest, validation.Errors{"payload": err.Error()})
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		h.logger.Error("register user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Login выполняет аутентификацию пользователя и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, err := h.service.AuthenticateUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.logger.Error("login user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}
