package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess          = "success"
	OutcomeRatesUnavailable = "rates_unavailable"
	OutcomeRejected         = "rejected"
	OutcomeError            = "error"
)

// ConversionMetrics tracks conversion calls and the retry dialog.
type ConversionMetrics struct {
	ConversionsTotal   *prometheus.CounterVec
	ConversionDuration prometheus.Histogram
	RetriesTotal       *prometheus.CounterVec
}

func NewConversionMetrics(reg prometheus.Registerer) *ConversionMetrics {
	factory := promauto.With(reg)
	return &ConversionMetrics{
		ConversionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "converter_conversions_total",
			Help: "Conversions by outcome",
		}, []string{"outcome"}),
		ConversionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "converter_conversion_duration_seconds",
			Help:    "Time spent in the conversion call",
			Buckets: prometheus.DefBuckets,
		}),
		RetriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "converter_retry_choices_total",
			Help: "Answers to the rates unavailable dialog",
		}, []string{"choice"}),
	}
}

func (m *ConversionMetrics) ObserveConversion(outcome string, elapsed time.Duration) {
	m.ConversionsTotal.WithLabelValues(outcome).Inc()
	m.ConversionDuration.Observe(elapsed.Seconds())
}

func (m *ConversionMetrics) ObserveChoice(choice string) {
	m.RetriesTotal.WithLabelValues(choice).Inc()
}
