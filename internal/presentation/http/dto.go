package httppresentation

import (
	"time"

	cartapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/cart"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/application/catalog"
	orderapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/order"
	paymentapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// Money travels as a JSON string so no precision is lost on the way.

type productResponse struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
	Category  string          `json:"category"`
	Sizes     []string        `json:"sizes,omitempty"`
	Colors    []string        `json:"colors,omitempty"`
}

func toProduct(p *inventory.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Available: p.Available(),
		Category:  p.Category,
		Sizes:     p.Sizes,
		Colors:    p.Colors,
	}
}

func toProducts(ps []*inventory.Product) []productResponse {
	out := make([]productResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProduct(p))
	}
	return out
}

type inventoryReportResponse struct {
	TotalValue   decimal.Decimal   `json:"total_value"`
	ProductCount int               `json:"product_count"`
	TotalUnits   int               `json:"total_units"`
	Threshold    int               `json:"threshold"`
	LowStock     []productResponse `json:"low_stock"`
	OutOfStock   []productResponse `json:"out_of_stock"`
}

func toInventoryReport(r *catalog.Report) inventoryReportResponse {
	return inventoryReportResponse{
		TotalValue:   r.TotalValue,
		ProductCount: r.ProductCount,
		TotalUnits:   r.TotalUnits,
		Threshold:    r.Threshold,
		LowStock:     toProducts(r.LowStock),
		OutOfStock:   toProducts(r.OutOfStock),
	}
}

type cartLineResponse struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	CartID        string             `json:"cart_id"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	Items         []cartLineResponse `json:"items"`
	Total         decimal.Decimal    `json:"total"`
	ItemCount     int                `json:"item_count"`
	UnitCount     int                `json:"unit_count"`
	Unpriced      bool               `json:"unpriced,omitempty"`
}

func toCart(v *cartapp.View) cartResponse {
	items := make([]cartLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		items = append(items, cartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Size:      l.Selection.Size,
			Color:     l.Selection.Color,
			Subtotal:  l.Subtotal(),
		})
	}
	return cartResponse{
		CartID:        v.ID,
		CustomerEmail: v.Owner,
		CustomerName:  v.CustomerName,
		Items:         items,
		Total:         v.Total,
		ItemCount:     v.ItemCount,
		UnitCount:     v.UnitCount,
		Unpriced:      v.Unpriced,
	}
}

type orderItemResponse struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type orderResponse struct {
	ID              int                 `json:"id"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email"`
	ShippingAddress string              `json:"shipping_address"`
	Status          domorder.Status     `json:"status"`
	Items           []orderItemResponse `json:"items"`
	Total           decimal.Decimal     `json:"total"`
	Units           int                 `json:"units"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toOrder(o *domorder.Order) orderResponse {
	src := o.Items()
	items := make([]orderItemResponse, 0, len(src))
	for _, it := range src {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			Subtotal:  it.Subtotal(),
		})
	}
	return orderResponse{
		ID:              o.ID,
		CustomerName:    o.Customer.Name,
		CustomerEmail:   o.Customer.Email,
		ShippingAddress: o.ShippingAddress,
		Status:          o.Status,
		Items:           items,
		Total:           o.Total(),
		Units:           o.Units(),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrders(orders []*domorder.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrder(o))
	}
	return out
}

type paymentResponse struct {
	ID            int               `json:"id"`
	OrderID       *int              `json:"order_id,omitempty"`
	Amount        decimal.Decimal   `json:"amount"`
	Method        dompayment.Method `json:"method"`
	Status        dompayment.Status `json:"status"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Attempts      int               `json:"attempts"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func toPayment(p *dompayment.Payment) paymentResponse {
	resp := paymentResponse{
		ID:            p.ID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        p.Status,
		FailureReason: p.FailureReason,
		Attempts:      p.Attempts,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.Order != nil {
		id := p.Order.ID
		resp.OrderID = &id
	}
	return resp
}

func toPayments(ps []*dompayment.Payment) []paymentResponse {
	out := make([]paymentResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPayment(p))
	}
	return out
}

type salesReportResponse struct {
	Orders struct {
		Count      int                     `json:"count"`
		ByStatus   map[domorder.Status]int `json:"by_status"`
		TotalSales decimal.Decimal         `json:"total_sales"`
	} `json:"orders"`
	Payments struct {
		Count          int                       `json:"count"`
		ByStatus       map[dompayment.Status]int `json:"by_status"`
		TotalCompleted decimal.Decimal           `json:"total_completed"`
		MostUsedMethod dompayment.Method         `json:"most_used_method,omitempty"`
		SuccessRate    float64                   `json:"success_rate"`
	} `json:"payments"`
}

func toSalesReport(o *orderapp.SalesReport, p *paymentapp.Report) salesReportResponse {
	var resp salesReportResponse
	resp.Orders.Count = o.Orders
	resp.Orders.ByStatus = o.ByStatus
	resp.Orders.TotalSales = o.TotalSales
	resp.Payments.Count = p.Payments
	resp.Payments.ByStatus = p.ByStatus
	resp.Payments.TotalCompleted = p.TotalCompleted
	resp.Payments.MostUsedMethod = p.MostUsedMethod
	resp.Payments.SuccessRate = p.SuccessRate
	return resp
}
