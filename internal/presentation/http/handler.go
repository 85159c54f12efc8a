package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/application"
	cartapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/cart"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/application/catalog"
	orderapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/order"
	paymentapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	domorder "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability/logctx"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
)

// Services are the application entry points the API exposes.
type Services struct {
	Catalog  *catalog.Catalog
	Admin    *catalog.Admin
	Carts    *cartapp.Service
	Checkout application.UseCase[orderapp.CheckoutInput, *domorder.Order]
	Orders   *orderapp.Service
	Pay      application.UseCase[paymentapp.PayInput, *dompayment.Payment]
	Payments *paymentapp.Service

	// LowStockThreshold is the default for GET /inventory/report.
	LowStockThreshold int
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

type Handler struct {
	svc Services
	log observability.Logger

	reqCounter   observability.Counter   // http_requests_total{method,route,status}
	durHistogram observability.Histogram // http_request_duration_seconds{method,route,status}
}

func NewHandler(svc Services, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	m := tel.Metrics()
	return &Handler{
		svc:          svc,
		log:          tel.Logger().With(observability.F("component", componentHTTPHandler)),
		reqCounter:   m.Counter(observability.MHTTPRequests),
		durHistogram: m.Histogram(observability.MHTTPRequestDuration),
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	h.muxHandle(mux, http.MethodGet, "/health", h.handleHealth)

	h.muxHandle(mux, http.MethodGet, "/products", h.handleListProducts)
	h.muxHandle(mux, http.MethodPost, "/products", h.handleAddProduct)
	h.muxHandle(mux, http.MethodGet, "/products/{id}", h.handleGetProduct)
	h.muxHandle(mux, http.MethodPut, "/products/{id}/stock", h.handleSetStock)
	h.muxHandle(mux, http.MethodPut, "/products/{id}/price", h.handleSetPrice)
	h.muxHandle(mux, http.MethodDelete, "/products/{id}", h.handleRemoveProduct)
	h.muxHandle(mux, http.MethodGet, "/inventory/report", h.handleInventoryReport)

	h.muxHandle(mux, http.MethodPost, "/carts", h.handleOpenCart)
	h.muxHandle(mux, http.MethodGet, "/carts/{id}", h.handleGetCart)
	h.muxHandle(mux, http.MethodPost, "/carts/{id}/items", h.handleAddItem)
	h.muxHandle(mux, http.MethodPut, "/carts/{id}/items/{pid}", h.handleUpdateItem)
	h.muxHandle(mux, http.MethodDelete, "/carts/{id}/items/{pid}", h.handleRemoveItem)
	h.muxHandle(mux, http.MethodDelete, "/carts/{id}", h.handleClearCart)
	h.muxHandle(mux, http.MethodPost, "/carts/{id}/checkout", h.handleCheckout)

	h.muxHandle(mux, http.MethodGet, "/orders", h.handleListOrders)
	h.muxHandle(mux, http.MethodGet, "/orders/{id}", h.handleGetOrder)
	h.muxHandle(mux, http.MethodPost, "/orders/{id}/cancel", h.handleCancelOrder)
	h.muxHandle(mux, http.MethodPut, "/orders/{id}/status", h.handleChangeOrderStatus)

	h.muxHandle(mux, http.MethodPost, "/payments", h.handlePay)
	h.muxHandle(mux, http.MethodGet, "/payments", h.handleListPayments)
	h.muxHandle(mux, http.MethodGet, "/payments/{id}", h.handleGetPayment)
	h.muxHandle(mux, http.MethodPost, "/payments/{id}/cancel", h.handleCancelPayment)
	h.muxHandle(mux, http.MethodPost, "/payments/{id}/retry", h.handleRetryPayment)

	h.muxHandle(mux, http.MethodGet, "/reports/sales", h.handleSalesReport)

	if h.svc.Metrics != nil {
		mux.Handle("GET /metrics", h.svc.Metrics)
	}
	return mux
}

func (h *Handler) muxHandle(mux *http.ServeMux, method, route string, handler http.HandlerFunc) {
	// Wrap: Trace → Request Logger → Metrics → Access Log → Handler
	wrapped := h.withTrace(
		ObservabilityMiddleware(
			h.log,
			func(r *http.Request) string {
				return r.Header.Get(headerRequestID)
			},
		)(
			h.withHTTPMetrics(
				h.withAccessLog(handler),
			),
		),
	)
	mux.HandleFunc(method+" "+route, func(w http.ResponseWriter, r *http.Request) {
		// Store stable route template for low-cardinality labels
		wrapped.ServeHTTP(w, r.WithContext(contextWithRoute(r.Context(), route)))
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func decodeJSON(ctx context.Context, r *http.Request, dst any) error {
	_ = ctx
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode request: %w: %w", errkind.ErrValidation, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeDomainError maps an error kind to a status code. Unclassified errors
// are logged, since nothing upstream will have explained them.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch errkind.Of(err) {
	case errkind.ErrNotFound:
		writeError(w, http.StatusNotFound, err)
	case errkind.ErrInvalidQuantity, errkind.ErrValidation:
		writeError(w, http.StatusBadRequest, err)
	case errkind.ErrInsufficientStock, errkind.ErrInvalidState:
		writeError(w, http.StatusConflict, err)
	default:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		if l := logctx.From(ctx); l != nil {
			l.Error("http_internal_error", observability.Err(err))
		}
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, errkind.ErrValidation)
	}
	return v, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, errkind.ErrValidation)
	}
	return v, nil
}
