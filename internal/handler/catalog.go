package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkuznetsov/homie-system/internal/service"
)

// CreatePerson создаёт запись контактного лица.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var in service.PersonInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	p, err := h.service.CreatePerson(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "create person error")
		return
	}
	writeEntity(w, "ok", "person", toPersonResponse(p))
}

// GetPerson возвращает контактное лицо по email.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPerson(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		h.writeError(w, err, "get person error")
		return
	}
	writeEntity(w, "ok", "person", toPersonResponse(p))
}

// ListPersons возвращает все записи контактных лиц.
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.service.ListPersons(r.Context())
	if err != nil {
		h.writeError(w, err, "list persons error")
		return
	}
	writeEntity(w, "ok", "persons", toPersonResponses(persons))
}

// UpdatePerson частично обновляет контактное лицо по email.
func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	var in service.PersonInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	p, err := h.service.UpdatePerson(r.Context(), chi.URLParam(r, "email"), in)
	if err != nil {
		h.writeError(w, err, "update person error")
		return
	}
	writeEntity(w, "ok", "person", toPersonResponse(p))
}

// DeletePerson удаляет контактное лицо по email.
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePerson(r.Context(), chi.URLParam(r, "email")); err != nil {
		h.writeError(w, err, "delete person error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// CreateOrganization создаёт организацию.
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var in service.OrganizationInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	o, err := h.service.CreateOrganization(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "create organization error")
		return
	}
	writeEntity(w, "ok", "organization", toOrganizationResponse(o))
}

// GetOrganization возвращает организацию по названию.
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrganization(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err, "get organization error")
		return
	}
	writeEntity(w, "ok", "organization", toOrganizationResponse(o))
}

// ListOrganizations возвращает все организации.
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.service.ListOrganizations(r.Context())
	if err != nil {
		h.writeError(w, err, "list organizations error")
		return
	}
	writeEntity(w, "ok", "organizations", toOrganizationResponses(orgs))
}

// UpdateOrganization частично обновляет организацию по названию.
func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var in service.OrganizationInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	o, err := h.service.UpdateOrganization(r.Context(), chi.URLParam(r, "name"), in)
	if err != nil {
		h.writeError(w, err, "update organization error")
		return
	}
	writeEntity(w, "ok", "organization", toOrganizationResponse(o))
}

// DeleteOrganization удаляет организацию по названию.
func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteOrganization(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, err, "delete organization error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// CreateBankDetails создаёт банковские реквизиты.
func (h *Handler) CreateBankDetails(w http.ResponseWriter, r *http.Request) {
	var in service.BankDetailsInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	b, err := h.service.CreateBankDetails(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "create bank details error")
		return
	}
	writeEntity(w, "ok", "bank_details", toBankDetailsResponse(b))
}

// GetBankDetails возвращает реквизиты по IBAN.
func (h *Handler) GetBankDetails(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBankDetails(r.Context(), chi.URLParam(r, "iban"))
	if err != nil {
		h.writeError(w, err, "get bank details error")
		return
	}
	writeEntity(w, "ok", "bank_details", toBankDetailsResponse(b))
}

// ListBankDetails возвращает все банковские реквизиты.
func (h *Handler) ListBankDetails(w http.ResponseWriter, r *http.Request) {
	banks, err := h.service.ListBankDetails(r.Context())
	if err != nil {
		h.writeError(w, err, "list bank details error")
		return
	}
	writeEntity(w, "ok", "bank_details", toBankDetailsResponses(banks))
}

// UpdateBankDetails частично обновляет реквизиты по IBAN.
func (h *Handler) UpdateBankDetails(w http.ResponseWriter, r *http.Request) {
	var in service.BankDetailsInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	b, err := h.service.UpdateBankDetails(r.Context(), chi.URLParam(r, "iban"), in)
	if err != nil {
		h.writeError(w, err, "update bank details error")
		return
	}
	writeEntity(w, "ok", "bank_details", toBankDetailsResponse(b))
}

// DeleteBankDetails удаляет реквизиты по IBAN.
func (h *Handler) DeleteBankDetails(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBankDetails(r.Context(), chi.URLParam(r, "iban")); err != nil {
		h.writeError(w, err, "delete bank details error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// CreateShelter создаёт приют.
func (h *Handler) CreateShelter(w http.ResponseWriter, r *http.Request) {
	var in service.ShelterInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	sh, err := h.service.CreateShelter(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "create shelter error")
		return
	}
	writeEntity(w, "ok", "shelter", toShelterResponse(sh))
}

// GetShelter возвращает приют по названию.
func (h *Handler) GetShelter(w http.ResponseWriter, r *http.Request) {
	sh, err := h.service.GetShelter(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err, "get shelter error")
		return
	}
	writeEntity(w, "ok", "shelter", toShelterResponse(sh))
}

// ListShelters возвращает все приюты.
func (h *Handler) ListShelters(w http.ResponseWriter, r *http.Request) {
	shelters, err := h.service.ListShelters(r.Context())
	if err != nil {
		h.writeError(w, err, "list shelters error")
		return
	}
	writeEntity(w, "ok", "shelters", toShelterResponses(shelters))
}

// UpdateShelter частично обновляет приют по названию.
func (h *Handler) UpdateShelter(w http.ResponseWriter, r *http.Request) {
	var in service.ShelterInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	sh, err := h.service.UpdateShelter(r.Context(), chi.URLParam(r, "name"), in)
	if err != nil {
		h.writeError(w, err, "update shelter error")
		return
	}
	writeEntity(w, "ok", "shelter", toShelterResponse(sh))
}

// DeleteShelter удаляет приют по названию.
func (h *Handler) DeleteShelter(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteShelter(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, err, "delete shelter error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// CreateProduct создаёт позицию каталога.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	p, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "create product error")
		return
	}
	writeEntity(w, "ok", "product", toProductResponse(p))
}

// GetProduct возвращает позицию каталога по названию.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err, "get product error")
		return
	}
	writeEntity(w, "ok", "product", toProductResponse(p))
}

// ListProducts возвращает весь каталог.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, err, "list products error")
		return
	}
	writeEntity(w, "ok", "products", toProductResponses(products))
}

// UpdateProduct частично обновляет позицию каталога по названию.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	p, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "name"), in)
	if err != nil {
		h.writeError(w, err, "update product error")
		return
	}
	writeEntity(w, "ok", "product", toProductResponse(p))
}

// DeleteProduct удаляет позицию каталога по названию.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, err, "delete product error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
