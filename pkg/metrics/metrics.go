package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// QuotationMetrics records lifecycle counters for the quotation engine.
type QuotationMetrics struct {
	created         *prometheus.CounterVec
	responded       *prometheus.CounterVec
	converted       prometheus.Counter
	cancelled       prometheus.Counter
	conversionRaces prometheus.Counter
}

// NewQuotationMetrics registers the quotation metrics on the provided
// registerer. A nil registerer yields a no-op instance, which keeps tests
// and tooling binaries free of global registry state.
func NewQuotationMetrics(reg prometheus.Registerer) *QuotationMetrics {
	if reg == nil {
		return &QuotationMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotations_created_total",
		Help: "Quotations created from cart splits.",
	}, []string{"store"})
	responded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotations_responded_total",
		Help: "Store responses recorded, by delivery format.",
	}, []string{"format"})
	converted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotations_converted_total",
		Help: "Quotations converted into orders.",
	})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotations_cancelled_total",
		Help: "Quotations cancelled before conversion.",
	})
	races := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotation_conversion_races_total",
		Help: "Conversion attempts lost to an already-converted quotation.",
	})
	reg.MustRegister(created, responded, converted, cancelled, races)
	return &QuotationMetrics{
		created:         created,
		responded:       responded,
		converted:       converted,
		cancelled:       cancelled,
		conversionRaces: races,
	}
}

// IncCreated increments the created counter for the given store.
func (m *QuotationMetrics) IncCreated(store string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(store)).Inc()
}

// IncResponded increments the responded counter for the given format.
func (m *QuotationMetrics) IncResponded(format string) {
	if m == nil || m.responded == nil {
		return
	}
	m.responded.WithLabelValues(normalizeLabel(format)).Inc()
}

// IncConverted increments the converted counter.
func (m *QuotationMetrics) IncConverted() {
	if m == nil || m.converted == nil {
		return
	}
	m.converted.Inc()
}

// IncCancelled increments the cancelled counter.
func (m *QuotationMetrics) IncCancelled() {
	if m == nil || m.cancelled == nil {
		return
	}
	m.cancelled.Inc()
}

// IncConversionRace increments the lost-race counter.
func (m *QuotationMetrics) IncConversionRace() {
	if m == nil || m.conversionRaces == nil {
		return
	}
	m.conversionRaces.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
