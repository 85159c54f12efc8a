package httppresentation

import (
	"fmt"
	"net/http"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/application/catalog"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	"github.com/shopspring/decimal"
)

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := catalog.Query{
		Text:          q.Get("q"),
		Category:      q.Get("category"),
		Size:          q.Get("size"),
		Color:         q.Get("color"),
		AvailableOnly: q.Get("available") == "true",
	}
	var err error
	if query.MinPrice, err = queryDecimal(r, "min"); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	if query.MaxPrice, err = queryDecimal(r, "max"); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	// The storefront filters only ever show what can be bought.
	if query.Category != "" || query.Size != "" || query.Color != "" || query.MinPrice != nil || query.MaxPrice != nil {
		query.AvailableOnly = true
	}

	products, err := h.svc.Catalog.Filter(r.Context(), query)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProducts(products))
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	p, err := h.svc.Catalog.Product(r.Context(), id)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProduct(p))
}

type addProductRequest struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category string          `json:"category"`
	Sizes    []string        `json:"sizes"`
	Colors   []string        `json:"colors"`
}

func (h *Handler) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	p, err := h.svc.Admin.AddProduct(r.Context(), catalog.AddProductInput{
		ID:       req.ID,
		Name:     req.Name,
		Price:    req.Price,
		Stock:    req.Stock,
		Category: req.Category,
		Sizes:    req.Sizes,
		Colors:   req.Colors,
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProduct(p))
}

type setStockRequest struct {
	Stock *int `json:"stock"`
}

func (h *Handler) handleSetStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	var req setStockRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	if req.Stock == nil {
		writeDomainError(r.Context(), w, fmt.Errorf("stock is required: %w", errkind.ErrValidation))
		return
	}
	p, err := h.svc.Admin.SetStock(r.Context(), id, *req.Stock)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProduct(p))
}

type setPriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

func (h *Handler) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	var req setPriceRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	p, err := h.svc.Admin.SetPrice(r.Context(), id, req.Price)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProduct(p))
}

func (h *Handler) handleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	if err := h.svc.Admin.RemoveProduct(r.Context(), id); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleInventoryReport(w http.ResponseWriter, r *http.Request) {
	threshold, err := queryInt(r, "threshold", h.svc.LowStockThreshold)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	report, err := h.svc.Catalog.InventoryReport(r.Context(), threshold)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryReport(report))
}

func queryDecimal(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number: %w", name, errkind.ErrValidation)
	}
	return &d, nil
}
