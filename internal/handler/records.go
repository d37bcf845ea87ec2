package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkuznetsov/homie-system/internal/service"
)

// CreateAnimalRecord создаёт запись учёта животных.
func (h *Handler) CreateAnimalRecord(w http.ResponseWriter, r *http.Request) {
	var in service.AnimalRecordInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	a, err := h.service.CreateAnimalRecord(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "create animal record error")
		return
	}
	writeEntity(w, "ok", "animal_record", toAnimalRecordResponse(a))
}

// GetAnimalRecord возвращает запись учёта животных по коду.
func (h *Handler) GetAnimalRecord(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.GetAnimalRecord(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err, "get animal record error")
		return
	}
	writeEntity(w, "ok", "animal_record", toAnimalRecordResponse(a))
}

// ListAnimalRecords возвращает все записи учёта животных.
func (h *Handler) ListAnimalRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListAnimalRecords(r.Context())
	if err != nil {
		h.writeError(w, err, "list animal records error")
		return
	}
	writeEntity(w, "ok", "animal_records", toAnimalRecordResponses(records))
}

// UpdateAnimalRecord частично обновляет запись учёта животных по коду.
func (h *Handler) UpdateAnimalRecord(w http.ResponseWriter, r *http.Request) {
	var in service.AnimalRecordInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	a, err := h.service.UpdateAnimalRecord(r.Context(), chi.URLParam(r, "code"), in)
	if err != nil {
		h.writeError(w, err, "update animal record error")
		return
	}
	writeEntity(w, "ok", "animal_record", toAnimalRecordResponse(a))
}

// DeleteAnimalRecord удаляет запись учёта животных по коду.
func (h *Handler) DeleteAnimalRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAnimalRecord(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.writeError(w, err, "delete animal record error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// CreateDeliveryRecord создаёт запись о доставке.
func (h *Handler) CreateDeliveryRecord(w http.ResponseWriter, r *http.Request) {
	var in service.DeliveryRecordInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	d, err := h.service.CreateDeliveryRecord(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "create delivery record error")
		return
	}
	writeEntity(w, "ok", "delivery_record", toDeliveryRecordResponse(d))
}

// GetDeliveryRecord возвращает запись о доставке по коду.
func (h *Handler) GetDeliveryRecord(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDeliveryRecord(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err, "get delivery record error")
		return
	}
	writeEntity(w, "ok", "delivery_record", toDeliveryRecordResponse(d))
}

// ListDeliveryRecords возвращает все записи о доставках.
func (h *Handler) ListDeliveryRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListDeliveryRecords(r.Context())
	if err != nil {
		h.writeError(w, err, "list delivery records error")
		return
	}
	writeEntity(w, "ok", "delivery_records", toDeliveryRecordResponses(records))
}

// UpdateDeliveryRecord частично обновляет запись о доставке по коду.
func (h *Handler) UpdateDeliveryRecord(w http.ResponseWriter, r *http.Request) {
	var in service.DeliveryRecordInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	d, err := h.service.UpdateDeliveryRecord(r.Context(), chi.URLParam(r, "code"), in)
	if err != nil {
		h.writeError(w, err, "update delivery record error")
		return
	}
	writeEntity(w, "ok", "delivery_record", toDeliveryRecordResponse(d))
}

// DeleteDeliveryRecord удаляет запись о доставке по коду.
func (h *Handler) DeleteDeliveryRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDeliveryRecord(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.writeError(w, err, "delete delivery record error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// CreateFoodDemand создаёт заявку приюта на корм.
func (h *Handler) CreateFoodDemand(w http.ResponseWriter, r *http.Request) {
	var in service.FoodDemandInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	f, err := h.service.CreateFoodDemand(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "create food demand error")
		return
	}
	writeEntity(w, "ok", "food_demand", toFoodDemandResponse(f))
}

// GetFoodDemand возвращает заявку на корм по коду.
func (h *Handler) GetFoodDemand(w http.ResponseWriter, r *http.Request) {
	f, err := h.service.GetFoodDemand(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err, "get food demand error")
		return
	}
	writeEntity(w, "ok", "food_demand", toFoodDemandResponse(f))
}

// ListFoodDemands возвращает все заявки на корм.
func (h *Handler) ListFoodDemands(w http.ResponseWriter, r *http.Request) {
	demands, err := h.service.ListFoodDemands(r.Context())
	if err != nil {
		h.writeError(w, err, "list food demands error")
		return
	}
	writeEntity(w, "ok", "food_demands", toFoodDemandResponses(demands))
}

// UpdateFoodDemand частично обновляет заявку на корм по коду.
func (h *Handler) UpdateFoodDemand(w http.ResponseWriter, r *http.Request) {
	var in service.FoodDemandInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	f, err := h.service.UpdateFoodDemand(r.Context(), chi.URLParam(r, "code"), in)
	if err != nil {
		h.writeError(w, err, "update food demand error")
		return
	}
	writeEntity(w, "ok", "food_demand", toFoodDemandResponse(f))
}

// DeleteFoodDemand удаляет заявку на корм по коду.
func (h *Handler) DeleteFoodDemand(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteFoodDemand(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.writeError(w, err, "delete food demand error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// CreatePersonDemand создаёт заявку на помощь человеку.
func (h *Handler) CreatePersonDemand(w http.ResponseWriter, r *http.Request) {
	var in service.PersonDemandInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	p, err := h.service.CreatePersonDemand(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "create person demand error")
		return
	}
	writeEntity(w, "ok", "person_demand", toPersonDemandResponse(p))
}

// GetPersonDemand возвращает заявку на помощь по коду.
func (h *Handler) GetPersonDemand(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPersonDemand(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err, "get person demand error")
		return
	}
	writeEntity(w, "ok", "person_demand", toPersonDemandResponse(p))
}

// ListPersonDemands возвращает все заявки на помощь.
func (h *Handler) ListPersonDemands(w http.ResponseWriter, r *http.Request) {
	demands, err := h.service.ListPersonDemands(r.Context())
	if err != nil {
		h.writeError(w, err, "list person demands error")
		return
	}
	writeEntity(w, "ok", "person_demands", toPersonDemandResponses(demands))
}

// UpdatePersonDemand частично обновляет заявку на помощь по коду.
func (h *Handler) UpdatePersonDemand(w http.ResponseWriter, r *http.Request) {
	var in service.PersonDemandInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	p, err := h.service.UpdatePersonDemand(r.Context(), chi.URLParam(r, "code"), in)
	if err != nil {
		h.writeError(w, err, "update person demand error")
		return
	}
	writeEntity(w, "ok", "person_demand", toPersonDemandResponse(p))
}

// DeletePersonDemand удаляет заявку на помощь по коду.
func (h *Handler) DeletePersonDemand(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePersonDemand(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.writeError(w, err, "delete person demand error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// GetDashboardSummary возвращает сводку главной панели.
func (h *Handler) GetDashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetDashboardSummary(r.Context())
	if err != nil {
		h.writeError(w, err, "dashboard summary error")
		return
	}
	writeEntity(w, "ok", "summary", toDashboardSummaryResponse(summary))
}

// GetOrganizationDashboard возвращает панель организации.
func (h *Handler) GetOrganizationDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.GetOrganizationDashboard(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err, "organization dashboard error")
		return
	}
	writeEntity(w, "ok", "dashboard", toOrganizationDashboardResponse(dash))
}
