package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkuznetsov/homie-system/internal/service"
)

// CreateDonation выполняет идемпотентный приём пожертвования. Повтор с тем же
// hash или номером отвечает статусом "exists" и сохранённой записью.
func (h *Handler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var in service.DonationInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	d, created, err := h.service.CreateDonation(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "create donation error")
		return
	}

	status := "ok"
	if !created {
		status = "exists"
	}
	writeEntity(w, status, "donation", toDonationResponse(d))
}

// GetDonation возвращает пожертвование по номеру либо hash.
func (h *Handler) GetDonation(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDonation(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.writeError(w, err, "get donation error")
		return
	}
	writeEntity(w, "ok", "donation", toDonationResponse(d))
}

// ListDonations возвращает все пожертвования.
func (h *Handler) ListDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.service.ListDonations(r.Context())
	if err != nil {
		h.writeError(w, err, "list donations error")
		return
	}
	writeEntity(w, "ok", "donations", toDonationResponses(donations))
}

// UpdateDonation частично обновляет пожертвование; переданные строки заменяют
// прежние, итог пересчитывается.
func (h *Handler) UpdateDonation(w http.ResponseWriter, r *http.Request) {
	var in service.DonationInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	d, err := h.service.UpdateDonation(r.Context(), chi.URLParam(r, "key"), in)
	if err != nil {
		h.writeError(w, err, "update donation error")
		return
	}
	writeEntity(w, "ok", "donation", toDonationResponse(d))
}

// DeleteDonation удаляет пожертвование по номеру либо hash.
func (h *Handler) DeleteDonation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDonation(r.Context(), chi.URLParam(r, "key")); err != nil {
		h.writeError(w, err, "delete donation error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// CreatePayment выполняет идемпотентный приём платежа.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var in service.PaymentInput
	if err := decodePayload(r, &in); err != nil {
		h.writePayloadError(w, err)
		return
	}

	p, created, err := h.service.CreatePayment(r.Context(), in)
	if err != nil {
		h.writeError(w, err, "create payment error")
		return
	}

	status := "ok"
	if !created {
		status = "exists"
	}
	writeEntity(w, status, "payment", toPaymentResponse(p))
}

// GetPayment возвращает платёж по идентификатору транзакции.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPayment(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.writeError(w, err, "get payment error")
		return
	}
	writeEntity(w, "ok", "payment", toPaymentResponse(p))
}

// ListPayments возвращает все платежи.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context())
	if err != nil {
		h.writeError(w, err, "list payments error")
		return
	}
	writeEntity(w, "ok", "payments", toPaymentResponses(payments))
}
