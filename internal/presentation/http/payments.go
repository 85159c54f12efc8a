package httppresentation

import (
	"net/http"

	paymentapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/payment"
	"github.com/shopspring/decimal"
)

type payRequest struct {
	OrderID int             `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
}

// handlePay answers 201 for every recorded payment, declined ones included;
// the status field tells them apart.
func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	p, err := h.svc.Pay.Execute(r.Context(), paymentapp.PayInput{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Method:  req.Method,
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayment(p))
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	orderID, err := queryInt(r, "order_id", 0)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	q := r.URL.Query()
	payments, err := h.svc.Payments.List(r.Context(), paymentapp.Filter{
		OrderID: orderID,
		Status:  q.Get("status"),
		Method:  q.Get("method"),
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayments(payments))
}

func (h *Handler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	p, err := h.svc.Payments.Get(r.Context(), id)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayment(p))
}

func (h *Handler) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	p, err := h.svc.Payments.Cancel(r.Context(), id)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayment(p))
}

func (h *Handler) handleRetryPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	p, err := h.svc.Payments.Retry(r.Context(), id)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayment(p))
}
