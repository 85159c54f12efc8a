package prometrics

import (
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

var help = map[observability.MetricKey]string{
	observability.MUsecaseRequests:     "Total number of use case invocations.",
	observability.MUsecaseDuration:     "Duration of use case execution in seconds.",
	observability.MHTTPRequests:        "Total number of HTTP requests.",
	observability.MHTTPRequestDuration: "Duration of HTTP requests in seconds.",
	observability.MEventPublish:        "Domain events handed to the event bus.",
	observability.MEventsHandled:       "Domain events processed by the reporting worker.",
	observability.MStockUnits:          "Units currently on hand per product.",
	observability.MStockReservations:   "Cart stock reservation attempts.",
	observability.MOrders:              "Order lifecycle events.",
	observability.MPayments:            "Processed payments by method and resulting status.",
	observability.MSalesAmount:         "Sum of completed payment amounts.",
}

var histograms = map[observability.MetricKey]bool{
	observability.MUsecaseDuration:     true,
	observability.MHTTPRequestDuration: true,
}

var gauges = map[observability.MetricKey]bool{
	observability.MStockUnits: true,
}

// Instruments registers every known metric key and returns the instruments
// grouped by kind, ready for the observability provider.
func Instruments(r Registry) (
	map[observability.MetricKey]observability.Counter,
	map[observability.MetricKey]observability.Histogram,
	map[observability.MetricKey]observability.Gauge,
) {
	counters := make(map[observability.MetricKey]observability.Counter)
	hists := make(map[observability.MetricKey]observability.Histogram)
	gs := make(map[observability.MetricKey]observability.Gauge)

	for key, labels := range observability.LabelKeys {
		name := string(key)
		switch {
		case histograms[key]:
			hists[key] = r.Histogram(name, help[key], prometheus.DefBuckets, labels...)
		case gauges[key]:
			gs[key] = r.Gauge(name, help[key], labels...)
		default:
			counters[key] = r.Counter(name, help[key], labels...)
		}
	}
	return counters, hists, gs
}
