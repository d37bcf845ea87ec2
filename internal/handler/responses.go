package handler

import (
	"time"

	"github.com/nkuznetsov/homie-system/internal/model"
	"github.com/nkuznetsov/homie-system/internal/service"
)

// Ответные структуры. Денежные суммы отдаются в денежных единицах (float),
// метки времени — в RFC3339.

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// recipientKey возвращает ключ получателя: email человека либо название приюта.
func recipientKey(rec model.Recipient) string {
	switch rec.Kind {
	case model.RecipientPerson:
		if rec.Person != nil {
			return rec.Person.Email
		}
	case model.RecipientShelter:
		if rec.Shelter != nil {
			return rec.Shelter.Name
		}
	}
	return ""
}

type personResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	ContactNo string `json:"contact_no,omitempty"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
	Street    string `json:"street,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toPersonResponse(p *model.Person) personResponse {
	return personResponse{
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		FullName:  p.FullName,
		ContactNo: p.ContactNo,
		Country:   p.Country,
		City:      p.City,
		Street:    p.Street,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

func toPersonResponses(persons []model.Person) []personResponse {
	res := make([]personResponse, 0, len(persons))
	for i := range persons {
		res = append(res, toPersonResponse(&persons[i]))
	}
	return res
}

type organizationResponse struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	ContactNo string `json:"contact_no,omitempty"`
	Status    string `json:"status"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
	LogoURL   string `json:"logo_url,omitempty"`
	BankIBAN  string `json:"bank_iban,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toOrganizationResponse(o *model.Organization) organizationResponse {
	return organizationResponse{
		Name:      o.Name,
		Email:     o.Email,
		ContactNo: o.ContactNo,
		Status:    string(o.Status),
		Country:   o.Country,
		City:      o.City,
		LogoURL:   o.LogoURL,
		BankIBAN:  o.BankIBAN,
		CreatedAt: formatTime(o.CreatedAt),
		UpdatedAt: formatTime(o.UpdatedAt),
	}
}

func toOrganizationResponses(orgs []model.Organization) []organizationResponse {
	res := make([]organizationResponse, 0, len(orgs))
	for i := range orgs {
		res = append(res, toOrganizationResponse(&orgs[i]))
	}
	return res
}

type bankDetailsResponse struct {
	IBAN          string `json:"iban"`
	BankName      string `json:"bank_name,omitempty"`
	AccountHolder string `json:"account_holder,omitempty"`
	Organization  string `json:"organization,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toBankDetailsResponse(b *model.BankDetails) bankDetailsResponse {
	return bankDetailsResponse{
		IBAN:          b.IBAN,
		BankName:      b.BankName,
		AccountHolder: b.AccountHolder,
		Organization:  b.Organization,
		CreatedAt:     formatTime(b.CreatedAt),
		UpdatedAt:     formatTime(b.UpdatedAt),
	}
}

func toBankDetailsResponses(banks []model.BankDetails) []bankDetailsResponse {
	res := make([]bankDetailsResponse, 0, len(banks))
	for i := range banks {
		res = append(res, toBankDetailsResponse(&banks[i]))
	}
	return res
}

type shelterResponse struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	ContactNo string `json:"contact_no,omitempty"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
	Capacity  int    `json:"capacity"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toShelterResponse(s *model.Shelter) shelterResponse {
	return shelterResponse{
		Name:      s.Name,
		Email:     s.Email,
		ContactNo: s.ContactNo,
		Country:   s.Country,
		City:      s.City,
		Capacity:  s.Capacity,
		CreatedAt: formatTime(s.CreatedAt),
		UpdatedAt: formatTime(s.UpdatedAt),
	}
}

func toShelterResponses(shelters []model.Shelter) []shelterResponse {
	res := make([]shelterResponse, 0, len(shelters))
	for i := range shelters {
		res = append(res, toShelterResponse(&shelters[i]))
	}
	return res
}

type productResponse struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
	Category  string  `json:"category"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toProductResponse(p *model.Product) productResponse {
	return productResponse{
		Name:      p.Name,
		Price:     float64(p.PriceCents) / 100,
		Status:    string(p.Status),
		Category:  string(p.Category),
		Type:      string(p.Type),
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

func toProductResponses(products []model.Product) []productResponse {
	res := make([]productResponse, 0, len(products))
	for i := range products {
		res = append(res, toProductResponse(&products[i]))
	}
	return res
}

type donationItemResponse struct {
	Product     string  `json:"product"`
	ProductName string  `json:"product_name"`
	Quantity    int64   `json:"quantity"`
	Amount      float64 `json:"amount"`
	Total       float64 `json:"total"`
}

type donationResponse struct {
	DonationNumber   string                 `json:"donation_number"`
	Hash             string                 `json:"hash,omitempty"`
	Email            string                 `json:"email,omitempty"`
	FirstName        string                 `json:"first_name,omitempty"`
	LastName         string                 `json:"last_name,omitempty"`
	IsAnonymous      bool                   `json:"is_anonymous"`
	IsSubscription   bool                   `json:"is_subscription"`
	DonatedAt        string                 `json:"donated_at,omitempty"`
	Total            float64                `json:"total"`
	Currency         string                 `json:"currency,omitempty"`
	Wishlist         string                 `json:"wishlist,omitempty"`
	Source           string                 `json:"source,omitempty"`
	Company          string                 `json:"company,omitempty"`
	IPAddress        string                 `json:"ip_address,omitempty"`
	UserAgent        string                 `json:"user_agent,omitempty"`
	DonatedToType    string                 `json:"donated_to_type,omitempty"`
	DonatedTo        string                 `json:"donated_to,omitempty"`
	Organization     string                 `json:"organization,omitempty"`
	OrganizationName string                 `json:"organization_name,omitempty"`
	Items            []donationItemResponse `json:"items"`
	CreatedAt        string                 `json:"created_at"`
	UpdatedAt        string                 `json:"updated_at"`
}

func toDonationResponse(d *model.Donation) donationResponse {
	items := make([]donationItemResponse, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, donationItemResponse{
			Product:     it.Product,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Amount:      float64(it.AmountCents) / 100,
			Total:       float64(it.TotalCents) / 100,
		})
	}

	return donationResponse{
		DonationNumber:   d.Number,
		Hash:             d.Hash,
		Email:            d.Email,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		IsAnonymous:      d.IsAnonymous,
		IsSubscription:   d.IsSubscription,
		DonatedAt:        formatTimePtr(d.DonatedAt),
		Total:            float64(d.TotalCents) / 100,
		Currency:         d.Currency,
		Wishlist:         d.Wishlist,
		Source:           d.Source,
		Company:          d.Company,
		IPAddress:        d.IPAddress,
		UserAgent:        d.UserAgent,
		DonatedToType:    string(d.Recipient.Kind),
		DonatedTo:        recipientKey(d.Recipient),
		Organization:     d.Organization,
		OrganizationName: d.OrganizationName,
		Items:            items,
		CreatedAt:        formatTime(d.CreatedAt),
		UpdatedAt:        formatTime(d.UpdatedAt),
	}
}

func toDonationResponses(donations []model.Donation) []donationResponse {
	res := make([]donationResponse, 0, len(donations))
	for i := range donations {
		res = append(res, toDonationResponse(&donations[i]))
	}
	return res
}

type paymentResponse struct {
	Number             string  `json:"number"`
	Hash               string  `json:"hash"`
	Type               string  `json:"type"`
	Provider           string  `json:"provider"`
	Amount             float64 `json:"amount"`
	Info1              string  `json:"info_1,omitempty"`
	Info2              string  `json:"info_2,omitempty"`
	Info3              string  `json:"info_3,omitempty"`
	PaymentAt          string  `json:"payment_at,omitempty"`
	Donation           string  `json:"donation,omitempty"`
	CreatedFromPayload bool    `json:"created_from_payload"`
	CreatedAt          string  `json:"created_at"`
}

func toPaymentResponse(p *model.DonationPayment) paymentResponse {
	return paymentResponse{
		Number:             p.Number,
		Hash:               p.Hash,
		Type:               string(p.Type),
		Provider:           string(p.Provider),
		Amount:             float64(p.AmountCents) / 100,
		Info1:              p.Info1,
		Info2:              p.Info2,
		Info3:              p.Info3,
		PaymentAt:          formatTimePtr(p.PaymentAt),
		Donation:           p.Donation,
		CreatedFromPayload: p.CreatedFromPayload,
		CreatedAt:          formatTime(p.CreatedAt),
	}
}

func toPaymentResponses(payments []model.DonationPayment) []paymentResponse {
	res := make([]paymentResponse, 0, len(payments))
	for i := range payments {
		res = append(res, toPaymentResponse(&payments[i]))
	}
	return res
}

type animalRecordResponse struct {
	Code        string `json:"code"`
	AnimalType  string `json:"animal_type"`
	AdultCount  int    `json:"adult_count"`
	YoungCount  int    `json:"young_count"`
	SeniorCount int    `json:"senior_count"`
	Source      string `json:"source"`
	SourceKey   string `json:"source_key,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	ShelterName string `json:"shelter_name,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toAnimalRecordResponse(a *model.AnimalRecord) animalRecordResponse {
	resp := animalRecordResponse{
		Code:        a.Code,
		AnimalType:  string(a.AnimalType),
		AdultCount:  a.Counts.Adult,
		YoungCount:  a.Counts.Young,
		SeniorCount: a.Counts.Senior,
		Source:      string(a.Source.Kind),
		SourceKey:   recipientKey(a.Source),
		CreatedAt:   formatTime(a.CreatedAt),
		UpdatedAt:   formatTime(a.UpdatedAt),
	}
	if a.Source.Person != nil {
		resp.FirstName = a.Source.Person.FirstName
		resp.LastName = a.Source.Person.LastName
	}
	if a.Source.Shelter != nil {
		resp.ShelterName = a.Source.Shelter.Name
	}
	return resp
}

func toAnimalRecordResponses(records []model.AnimalRecord) []animalRecordResponse {
	res := make([]animalRecordResponse, 0, len(records))
	for i := range records {
		res = append(res, toAnimalRecordResponse(&records[i]))
	}
	return res
}

type deliveryRecordResponse struct {
	Code             string `json:"code"`
	DeliveryType     string `json:"delivery_type"`
	Purchaser        string `json:"purchaser,omitempty"`
	Organization     string `json:"organization,omitempty"`
	DeliverTo        string `json:"deliver_to"`
	RecipientKey     string `json:"recipient_key,omitempty"`
	RecipientShelter string `json:"recipient_shelter,omitempty"`
	DeliveryDate     string `json:"delivery_date,omitempty"`
	DisplayTitle     string `json:"display_title,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

func toDeliveryRecordResponse(d *model.DeliveryRecord) deliveryRecordResponse {
	resp := deliveryRecordResponse{
		Code:         d.Code,
		DeliveryType: string(d.Source.Kind),
		DeliverTo:    string(d.DeliverTo.Kind),
		RecipientKey: recipientKey(d.DeliverTo),
		DeliveryDate: formatTimePtr(d.DeliveryDate),
		DisplayTitle: d.DisplayTitle,
		CreatedAt:    formatTime(d.CreatedAt),
		UpdatedAt:    formatTime(d.UpdatedAt),
	}
	if d.Source.Person != nil {
		resp.Purchaser = d.Source.Person.Email
	}
	if d.Source.Organization != nil {
		resp.Organization = d.Source.Organization.Name
	}
	if d.DeliverTo.Shelter != nil {
		resp.RecipientShelter = d.DeliverTo.Shelter.Name
	}
	return resp
}

func toDeliveryRecordResponses(records []model.DeliveryRecord) []deliveryRecordResponse {
	res := make([]deliveryRecordResponse, 0, len(records))
	for i := range records {
		res = append(res, toDeliveryRecordResponse(&records[i]))
	}
	return res
}

type foodDemandResponse struct {
	Code        string `json:"code"`
	Shelter     string `json:"shelter"`
	ShelterName string `json:"shelter_name,omitempty"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
	NeededBy    string `json:"needed_by,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toFoodDemandResponse(f *model.FoodDemand) foodDemandResponse {
	return foodDemandResponse{
		Code:        f.Code,
		Shelter:     f.Shelter,
		ShelterName: f.ShelterName,
		Category:    string(f.Category),
		Quantity:    f.Quantity,
		NeededBy:    formatTimePtr(f.NeededBy),
		Status:      string(f.Status),
		CreatedAt:   formatTime(f.CreatedAt),
		UpdatedAt:   formatTime(f.UpdatedAt),
	}
}

func toFoodDemandResponses(demands []model.FoodDemand) []foodDemandResponse {
	res := make([]foodDemandResponse, 0, len(demands))
	for i := range demands {
		res = append(res, toFoodDemandResponse(&demands[i]))
	}
	return res
}

type personDemandResponse struct {
	Code        string `json:"code"`
	Person      string `json:"person"`
	PersonName  string `json:"person_name,omitempty"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toPersonDemandResponse(p *model.PersonDemand) personDemandResponse {
	return personDemandResponse{
		Code:        p.Code,
		Person:      p.PersonEmail,
		PersonName:  p.PersonName,
		Description: p.Description,
		Quantity:    p.Quantity,
		Status:      string(p.Status),
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func toPersonDemandResponses(demands []model.PersonDemand) []personDemandResponse {
	res := make([]personDemandResponse, 0, len(demands))
	for i := range demands {
		res = append(res, toPersonDemandResponse(&demands[i]))
	}
	return res
}

type dashboardSummaryResponse struct {
	TotalProducts       int64                  `json:"total_products"`
	TotalDonations      int64                  `json:"total_donations"`
	TotalAmount         float64                `json:"total_amount"`
	OutOfStock          int64                  `json:"out_of_stock"`
	ActiveOrganizations int64                  `json:"active_organizations"`
	LatestOrganizations []organizationResponse `json:"latest_organizations"`
	LatestProducts      []productResponse      `json:"latest_products"`
	LatestPersons       []personResponse       `json:"latest_persons"`
	LatestDonations     []donationResponse     `json:"latest_donations"`
}

func toDashboardSummaryResponse(s *model.DashboardSummary) dashboardSummaryResponse {
	return dashboardSummaryResponse{
		TotalProducts:       s.TotalProducts,
		TotalDonations:      s.TotalDonations,
		TotalAmount:         s.TotalAmount,
		OutOfStock:          s.OutOfStock,
		ActiveOrganizations: s.ActiveOrganizations,
		LatestOrganizations: toOrganizationResponses(s.LatestOrganizations),
		LatestProducts:      toProductResponses(s.LatestProducts),
		LatestPersons:       toPersonResponses(s.LatestPersons),
		LatestDonations:     toDonationResponses(s.LatestDonations),
	}
}

type organizationKPIsResponse struct {
	TotalDonated         float64 `json:"total_donated"`
	DonationCount        int     `json:"donation_count"`
	DonationToPersonCnt  int     `json:"donation_to_person_count"`
	DonationToShelterCnt int     `json:"donation_to_shelter_count"`
	DeliveryCount        int     `json:"delivery_count"`
}

type organizationDashboardResponse struct {
	Organization organizationResponse     `json:"organization"`
	Donations    []donationResponse       `json:"donations"`
	Deliveries   []deliveryRecordResponse `json:"deliveries"`
	KPIs         organizationKPIsResponse `json:"kpis"`
}

func toOrganizationDashboardResponse(d *service.OrganizationDashboard) organizationDashboardResponse {
	return organizationDashboardResponse{
		Organization: toOrganizationResponse(d.Organization),
		Donations:    toDonationResponses(d.Donations),
		Deliveries:   toDeliveryRecordResponses(d.Deliveries),
		KPIs: organizationKPIsResponse{
			TotalDonated:         d.KPIs.TotalDonated,
			DonationCount:        d.KPIs.DonationCount,
			DonationToPersonCnt:  d.KPIs.DonationToPersonCnt,
			DonationToShelterCnt: d.KPIs.DonationToShelterCnt,
			DeliveryCount:        d.KPIs.DeliveryCount,
		},
	}
}
