package httppresentation

import (
	"net/http"

	orderapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/order"
)

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := h.svc.Orders.List(r.Context(), orderapp.Filter{
		Email:  q.Get("email"),
		Status: q.Get("status"),
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrders(orders))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	o, err := h.svc.Orders.Get(r.Context(), id)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrder(o))
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	o, err := h.svc.Orders.Cancel(r.Context(), id)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrder(o))
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	var req changeStatusRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	o, err := h.svc.Orders.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrder(o))
}

func (h *Handler) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.SalesReport(r.Context())
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	payments, err := h.svc.Payments.Report(r.Context())
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSalesReport(orders, payments))
}
