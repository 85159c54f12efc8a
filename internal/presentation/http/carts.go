package httppresentation

import (
	"fmt"
	"net/http"

	cartapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/cart"
	orderapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/order"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
)

type openCartRequest struct {
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
}

func (h *Handler) handleOpenCart(w http.ResponseWriter, r *http.Request) {
	var req openCartRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r.Context(), r, &req); err != nil {
			writeDomainError(r.Context(), w, err)
			return
		}
	}
	v, err := h.svc.Carts.Open(r.Context(), cartapp.OpenInput{
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCart(v))
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Carts.View(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(v))
}

type addItemRequest struct {
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	v, err := h.svc.Carts.AddItem(r.Context(), cartapp.AddItemInput{
		CartID:    r.PathValue("id"),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(v))
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	pid, err := pathInt(r, "pid")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	var req updateItemRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	if req.Quantity == nil {
		writeDomainError(r.Context(), w, fmt.Errorf("quantity is required: %w", errkind.ErrValidation))
		return
	}
	v, err := h.svc.Carts.UpdateQuantity(r.Context(), r.PathValue("id"), pid, *req.Quantity)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCart(v))
}

type removeItemResponse struct {
	Removed bool `json:"removed"`
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	pid, err := pathInt(r, "pid")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	removed, err := h.svc.Carts.RemoveItem(r.Context(), r.PathValue("id"), pid)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, removeItemResponse{Removed: removed})
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Carts.Clear(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkoutRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	ShippingAddress string `json:"shipping_address"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	o, err := h.svc.Checkout.Execute(r.Context(), orderapp.CheckoutInput{
		CartID:          r.PathValue("id"),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrder(o))
}
