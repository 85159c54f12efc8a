package observability

const (
	MUsecaseRequests     MetricKey = "usecase_requests_total"
	MUsecaseDuration     MetricKey = "usecase_duration_seconds"
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"
	MEventPublish        MetricKey = "event_publish_total"
	MEventsHandled       MetricKey = "events_handled_total"

	MStockUnits        MetricKey = "inventory_stock_units"
	MStockReservations MetricKey = "inventory_reservations_total"
	MOrders            MetricKey = "orders_total"
	MPayments          MetricKey = "payments_total"
	MSalesAmount       MetricKey = "sales_amount_total"
)

// LabelKeys lists the label names each metric is registered with.
var LabelKeys = map[MetricKey][]string{
	MUsecaseRequests:     {"use_case", "outcome"},
	MUsecaseDuration:     {"use_case"},
	MHTTPRequests:        {"method", "route", "status"},
	MHTTPRequestDuration: {"method", "route", "status"},
	MEventPublish:        {"event", "outcome"},
	MEventsHandled:       {"event", "outcome"},
	MStockUnits:          {"product_id"},
	MStockReservations:   {"outcome"},
	MOrders:              {"event"},
	MPayments:            {"method", "status"},
	MSalesAmount:         {"method"},
}
