// Package service реализует бизнес-логику системы учёта пожертвований:
// идемпотентный приём, пересчёт сумм, разрешение ссылок и снимки полей.
package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nkuznetsov/homie-system/internal/model"
	"github.com/nkuznetsov/homie-system/internal/repository"
)

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)

	CreatePerson(ctx context.Context, p *model.Person) error
	GetPerson(ctx context.Context, email string) (*model.Person, error)
	ListPersons(ctx context.Context) ([]model.Person, error)
	UpdatePerson(ctx context.Context, p *model.Person) error
	DeletePerson(ctx context.Context, email string) error

	CreateOrganization(ctx context.Context, o *model.Organization) error
	GetOrganization(ctx context.Context, name string) (*model.Organization, error)
	ListOrganizations(ctx context.Context) ([]model.Organization, error)
	UpdateOrganization(ctx context.Context, o *model.Organization) error
	DeleteOrganization(ctx context.Context, name string) error

	CreateBankDetails(ctx context.Context, b *model.BankDetails) error
	GetBankDetails(ctx context.Context, iban string) (*model.BankDetails, error)
	ListBankDetails(ctx context.Context) ([]model.BankDetails, error)
	UpdateBankDetails(ctx context.Context, b *model.BankDetails) error
	DeleteBankDetails(ctx context.Context, iban string) error

	CreateShelter(ctx context.Context, s *model.Shelter) error
	GetShelter(ctx context.Context, name string) (*model.Shelter, error)
	ListShelters(ctx context.Context) ([]model.Shelter, error)
	UpdateShelter(ctx context.Context, s *model.Shelter) error
	DeleteShelter(ctx context.Context, name string) error

	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, name string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, name string) error

	CreateDonation(ctx context.Context, d *model.Donation) (*model.Donation, bool, error)
	GetDonation(ctx context.Context, key string) (*model.Donation, error)
	ListDonations(ctx context.Context) ([]model.Donation, error)
	ListDonationsByOrganization(ctx context.Context, org string) ([]model.Donation, error)
	UpdateDonation(ctx context.Context, d *model.Donation) error
	DeleteDonation(ctx context.Context, key string) error

	CreatePayment(ctx context.Context, p *model.DonationPayment) (*model.DonationPayment, bool, error)
	GetPayment(ctx context.Context, number string) (*model.DonationPayment, error)
	ListPayments(ctx context.Context) ([]model.DonationPayment, error)

	CreateAnimalRecord(ctx context.Context, a *model.AnimalRecord) error
	GetAnimalRecord(ctx context.Context, code string) (*model.AnimalRecord, error)
	ListAnimalRecords(ctx context.Context) ([]model.AnimalRecord, error)
	UpdateAnimalRecord(ctx context.Context, a *model.AnimalRecord) error
	DeleteAnimalRecord(ctx context.Context, code string) error

	CreateDeliveryRecord(ctx context.Context, d *model.DeliveryRecord) error
	GetDeliveryRecord(ctx context.Context, code string) (*model.DeliveryRecord, error)
	ListDeliveryRecords(ctx context.Context) ([]model.DeliveryRecord, error)
	ListDeliveriesByOrganization(ctx context.Context, org string) ([]model.DeliveryRecord, error)
	UpdateDeliveryRecord(ctx context.Context, d *model.DeliveryRecord) error
	DeleteDeliveryRecord(ctx context.Context, code string) error

	CreateFoodDemand(ctx context.Context, f *model.FoodDemand) error
	GetFoodDemand(ctx context.Context, code string) (*model.FoodDemand, error)
	ListFoodDemands(ctx context.Context) ([]model.FoodDemand, error)
	UpdateFoodDemand(ctx context.Context, f *model.FoodDemand) error
	DeleteFoodDemand(ctx context.Context, code string) error

	CreatePersonDemand(ctx context.Context, p *model.PersonDemand) error
	GetPersonDemand(ctx context.Context, code string) (*model.PersonDemand, error)
	ListPersonDemands(ctx context.Context) ([]model.PersonDemand, error)
	UpdatePersonDemand(ctx context.Context, p *model.PersonDemand) error
	DeletePersonDemand(ctx context.Context, code string) error

	GetDashboardSummary(ctx context.Context) (*model.DashboardSummary, error)
	GetOrganizationKPIs(ctx context.Context, org string) (*model.OrganizationKPIs, error)
}

// Service содержит бизнес-логику системы учёта пожертвований.
type Service struct {
	repo Repository
}

// NewService создаёт новый сервис с указанным репозиторием.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует нового пользователя.
func (s *Service) RegisterUser(ctx context.Context, login, password string) (int64, error) {
	hashed := hashPassword(login, password)
	id, err := s.repo.CreateUser(ctx, login, hashed)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return 0, repository.ErrUserExists
		}
		return 0, err
	}
	return id, nil
}

// AuthenticateUser проверяет логин и пароль пользователя и возвращает его идентификатор.
func (s *Service) AuthenticateUser(ctx context.Context, login, password string) (int64, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrInvalidCredentials
		}
		return 0, err
	}

	hashed := hashPassword(login, password)
	if subtle.ConstantTimeCompare(hashed, u.PasswordHash) != 1 {
		return 0, ErrInvalidCredentials
	}

	return u.ID, nil
}

func hashPassword(login, password string) []byte {
	sum := sha256.Sum256([]byte(login + ":" + password))
	return sum[:]
}

// Входные данные приходят как из JSON-тела, так и из query-параметров, где
// всё является строкой. Flex-типы принимают значение в обеих формах.

// FlexBool принимает булево значение как JSON bool, число 0/1 или строку
// "true"/"1"/"yes".
type FlexBool bool

// UnmarshalJSON реализует разбор FlexBool.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(strings.TrimSpace(strings.Trim(string(data), `"`)))
	switch s {
	case "true", "1", "yes":
		*b = true
	case "false", "0", "no", "", "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	return nil
}

// FlexFloat принимает число как JSON number или строку.
type FlexFloat float64

// UnmarshalJSON реализует разбор FlexFloat.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt принимает целое число как JSON number или строку.
type FlexInt int64

// UnmarshalJSON реализует разбор FlexInt.
func (i *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	if s == "" || s == "null" {
		*i = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*i = FlexInt(v)
	return nil
}

// toCents переводит сумму из денежных единиц в целые центы.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// newCode генерирует уникальный код записи с заданным префиксом.
func newCode(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *FlexInt) {
	if src != nil {
		*dst = int(*src)
	}
}

func applyBool(dst *bool, src *FlexBool) {
	if src != nil {
		*dst = bool(*src)
	}
}
