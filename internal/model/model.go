// Package model содержит доменные сущности системы учёта пожертвований.
package model

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64
	Login        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// RecipientKind определяет тип получателя пожертвования или доставки.
type RecipientKind string

const (
	RecipientPerson  RecipientKind = "Person"
	RecipientShelter RecipientKind = "Animal Shelter"
)

// PersonSnapshot — копия отображаемых полей человека, снятая в момент записи.
// Снимок не обновляется при последующих изменениях самой записи человека.
type PersonSnapshot struct {
	Email     string
	FirstName string
	LastName  string
}

// ShelterSnapshot — копия отображаемых полей приюта, снятая в момент записи.
type ShelterSnapshot struct {
	Name string
}

// OrganizationSnapshot — копия отображаемых полей организации, снятая в момент записи.
type OrganizationSnapshot struct {
	Name string
}

// Recipient — размеченное объединение "человек или приют": заполнено ровно
// одно из полей в соответствии с Kind, второе всегда nil.
type Recipient struct {
	Kind    RecipientKind
	Person  *PersonSnapshot
	Shelter *ShelterSnapshot
}

// Person описывает контактное лицо. Натуральный ключ — email.
type Person struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	FullName  string
	ContactNo string
	Country   string
	City      string
	Street    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrganizationStatus описывает статус организации.
type OrganizationStatus string

const (
	OrganizationActive   OrganizationStatus = "active"
	OrganizationInactive OrganizationStatus = "inactive"
)

// Organization описывает организацию-партнёра. Натуральный ключ — название.
// BankIBAN — обратная ссылка на привязанные банковские реквизиты.
type Organization struct {
	ID        int64
	Name      string
	Email     string
	ContactNo string
	Status    OrganizationStatus
	Country   string
	City      string
	LogoURL   string
	BankIBAN  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BankDetails описывает банковские реквизиты. Натуральный ключ — IBAN.
// Organization — обратная ссылка на организацию-владельца.
type BankDetails struct {
	ID            int64
	IBAN          string
	BankName      string
	AccountHolder string
	Organization  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Shelter описывает приют для животных. Натуральный ключ — название.
type Shelter struct {
	ID        int64
	Name      string
	Email     string
	ContactNo string
	Country   string
	City      string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductStatus описывает наличие товара.
type ProductStatus string

const (
	ProductInStock    ProductStatus = "in-stock"
	ProductOutOfStock ProductStatus = "out-of-stock"
)

// ProductCategory описывает целевую категорию товара.
type ProductCategory string

const (
	ProductCategoryCat ProductCategory = "cat"
	ProductCategoryDog ProductCategory = "dog"
)

// ProductType описывает вид товара.
type ProductType string

const (
	ProductTypeFood  ProductType = "food"
	ProductTypeMoney ProductType = "money"
)

// Product описывает позицию каталога. Натуральный ключ — название.
// Цена хранится в центах.
type Product struct {
	ID         int64
	Name       string
	PriceCents int64
	Status     ProductStatus
	Category   ProductCategory
	Type       ProductType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DonationItem — строка пожертвования. Принадлежит ровно одному пожертвованию
// и удаляется вместе с ним. ProductName и AmountCents — снимки из каталога
// на момент создания; цена задним числом не пересчитывается.
type DonationItem struct {
	Product     string
	ProductName string
	Quantity    int64
	AmountCents int64
	TotalCents  int64
}

// Donation описывает пожертвование. Внешние идентификаторы: Number
// (человекочитаемый номер) и Hash (токен идемпотентности, 32-33 символа).
// TotalCents — производное поле, всегда равно сумме строк.
type Donation struct {
	ID               int64
	Number           string
	Hash             string
	Email            string
	FirstName        string
	LastName         string
	IsAnonymous      bool
	IsSubscription   bool
	DonatedAt        *time.Time
	TotalCents       int64
	Currency         string
	Wishlist         string
	Source           string
	Company          string
	IPAddress        string
	UserAgent        string
	Recipient        Recipient
	Organization     string
	OrganizationName string
	Items            []DonationItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PaymentType описывает вид платёжной операции.
type PaymentType string

const (
	PaymentDeposit  PaymentType = "deposit"
	PaymentWithdraw PaymentType = "withdraw"
	PaymentRefund   PaymentType = "refund"
)

// PaymentProvider описывает платёжного провайдера.
type PaymentProvider string

const (
	ProviderPayPal PaymentProvider = "paypal"
	ProviderStripe PaymentProvider = "stripe"
	ProviderBank   PaymentProvider = "bank"
	ProviderCash   PaymentProvider = "cash"
)

// DonationPayment описывает платёж. Внешние идентификаторы: Number
// (идентификатор транзакции) и Hash. Donation — мягкая ссылка на номер
// пожертвования: подбирается поиском по hash/number и остаётся пустой,
// если пожертвование не найдено.
type DonationPayment struct {
	ID                 int64
	Number             string
	Hash               string
	Type               PaymentType
	Provider           PaymentProvider
	AmountCents        int64
	Info1              string
	Info2              string
	Info3              string
	PaymentAt          *time.Time
	Donation           string
	CreatedFromPayload bool
	CreatedAt          time.Time
}

// AnimalType описывает вид животных в записи учёта.
type AnimalType string

const (
	AnimalDog AnimalType = "dog"
	AnimalCat AnimalType = "cat"
)

// AnimalCounts — количество животных по возрастным группам.
// Young — щенки либо котята в зависимости от AnimalType записи.
type AnimalCounts struct {
	Adult  int
	Young  int
	Senior int
}

// AnimalRecord — запись учёта поступивших животных. Ключ — генерируемый код.
// Source указывает, от кого поступили животные (человек или приют).
type AnimalRecord struct {
	ID         int64
	Code       string
	AnimalType AnimalType
	Counts     AnimalCounts
	Source     Recipient
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DeliverySourceKind определяет источник доставки.
type DeliverySourceKind string

const (
	DeliveryOwnPurchase DeliverySourceKind = "Own Purchase"
	DeliveryOrgDonated  DeliverySourceKind = "Donated From Organization"
)

// DeliverySource — размеченное объединение "закупил человек или передала
// организация": заполнено ровно одно из полей в соответствии с Kind.
type DeliverySource struct {
	Kind         DeliverySourceKind
	Person       *PersonSnapshot
	Organization *OrganizationSnapshot
}

// DeliveryRecord — запись о доставке. Ключ — генерируемый код.
// DisplayTitle — производный заголовок вида "Purchased by ..." / "Donated by ...".
type DeliveryRecord struct {
	ID           int64
	Code         string
	Source       DeliverySource
	DeliverTo    Recipient
	DeliveryDate *time.Time
	DisplayTitle string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DemandStatus описывает состояние заявки на потребность.
type DemandStatus string

const (
	DemandOpen      DemandStatus = "open"
	DemandFulfilled DemandStatus = "fulfilled"
)

// FoodDemand — заявка приюта на корм. Ключ — генерируемый код.
type FoodDemand struct {
	ID          int64
	Code        string
	Shelter     string
	ShelterName string
	Category    ProductCategory
	Quantity    int
	NeededBy    *time.Time
	Status      DemandStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PersonDemand — заявка на помощь конкретному человеку. Ключ — генерируемый код.
type PersonDemand struct {
	ID          int64
	Code        string
	PersonEmail string
	PersonName  string
	Description string
	Quantity    int
	Status      DemandStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DashboardSummary — сводные показатели для главной панели.
type DashboardSummary struct {
	TotalProducts       int64
	TotalDonations      int64
	TotalAmount         float64
	OutOfStock          int64
	ActiveOrganizations int64
	LatestOrganizations []Organization
	LatestProducts      []Product
	LatestPersons       []Person
	LatestDonations     []Donation
}

// OrganizationKPIs — показатели панели организации.
type OrganizationKPIs struct {
	TotalDonated         float64
	DonationCount        int
	DonationToPersonCnt  int
	DonationToShelterCnt int
	DeliveryCount        int
}
