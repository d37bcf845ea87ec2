package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/nkuznetsov/homie-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/register", h.Register)
		r.Post("/user/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Route("/donations", func(r chi.Router) {
				r.Post("/", h.CreateDonation)
				r.Get("/", h.ListDonations)
				r.Get("/{key}", h.GetDonation)
				r.Put("/{key}", h.UpdateDonation)
				r.Delete("/{key}", h.DeleteDonation)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/", h.CreatePayment)
				r.Get("/", h.ListPayments)
				r.Get("/{number}", h.GetPayment)
			})

			r.Route("/persons", func(r chi.Router) {
				r.Post("/", h.CreatePerson)
				r.Get("/", h.ListPersons)
				r.Get("/{email}", h.GetPerson)
				r.Put("/{email}", h.UpdatePerson)
				r.Delete("/{email}", h.DeletePerson)
			})

			r.Route("/organizations", func(r chi.Router) {
				r.Post("/", h.CreateOrganization)
				r.Get("/", h.ListOrganizations)
				r.Get("/{name}", h.GetOrganization)
				r.Put("/{name}", h.UpdateOrganization)
				r.Delete("/{name}", h.DeleteOrganization)
			})

			r.Route("/bank-details", func(r chi.Router) {
				r.Post("/", h.CreateBankDetails)
				r.Get("/", h.ListBankDetails)
				r.Get("/{iban}", h.GetBankDetails)
				r.Put("/{iban}", h.UpdateBankDetails)
				r.Delete("/{iban}", h.DeleteBankDetails)
			})

			r.Route("/shelters", func(r chi.Router) {
				r.Post("/", h.CreateShelter)
				r.Get("/", h.ListShelters)
				r.Get("/{name}", h.GetShelter)
				r.Put("/{name}", h.UpdateShelter)
				r.Delete("/{name}", h.DeleteShelter)
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", h.CreateProduct)
				r.Get("/", h.ListProducts)
				r.Get("/{name}", h.GetProduct)
				r.Put("/{name}", h.UpdateProduct)
				r.Delete("/{name}", h.DeleteProduct)
			})

			r.Route("/animals", func(r chi.Router) {
				r.Post("/", h.CreateAnimalRecord)
				r.Get("/", h.ListAnimalRecords)
				r.Get("/{code}", h.GetAnimalRecord)
				r.Put("/{code}", h.UpdateAnimalRecord)
				r.Delete("/{code}", h.DeleteAnimalRecord)
			})

			r.Route("/deliveries", func(r chi.Router) {
				r.Post("/", h.CreateDeliveryRecord)
				r.Get("/", h.ListDeliveryRecords)
				r.Get("/{code}", h.GetDeliveryRecord)
				r.Put("/{code}", h.UpdateDeliveryRecord)
				r.Delete("/{code}", h.DeleteDeliveryRecord)
			})

			r.Route("/food-demands", func(r chi.Router) {
				r.Post("/", h.CreateFoodDemand)
				r.Get("/", h.ListFoodDemands)
				r.Get("/{code}", h.GetFoodDemand)
				r.Put("/{code}", h.UpdateFoodDemand)
				r.Delete("/{code}", h.DeleteFoodDemand)
			})

			r.Route("/person-demands", func(r chi.Router) {
				r.Post("/", h.CreatePersonDemand)
				r.Get("/", h.ListPersonDemands)
				r.Get("/{code}", h.GetPersonDemand)
				r.Put("/{code}", h.UpdatePersonDemand)
				r.Delete("/{code}", h.DeletePersonDemand)
			})

			r.Get("/dashboard/summary", h.GetDashboardSummary)
			r.Get("/dashboard/organizations/{name}", h.GetOrganizationDashboard)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
