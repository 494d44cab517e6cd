package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the chat gateway.
type Metrics struct {
	RequestTotal      *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
	TokensTotal       *prometheus.CounterVec
	ConfigReloadTotal *prometheus.CounterVec
}

// NewMetrics creates the gateway metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatgw_request_total",
			Help: "Total number of chat requests processed by the gateway.",
		}, []string{"model", "status", "error_type"}),

		RequestDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chatgw_request_duration_ms",
			Help:    "Total request duration in milliseconds (including provider latency).",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"model"}),

		TokensTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatgw_tokens_total",
			Help: "Total tokens reported by providers.",
		}, []string{"model", "direction"}),

		ConfigReloadTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatgw_config_reload_total",
			Help: "Provider configuration reloads by result.",
		}, []string{"result"}),
	}
}

// RecordRequest records metrics for a completed request.
func (m *Metrics) RecordRequest(labels RequestLabels) {
	m.RequestTotal.WithLabelValues(labels.Model, labels.Status, labels.ErrorType).Inc()
	m.RequestDurationMs.WithLabelValues(labels.Model).Observe(labels.DurationMs)

	if labels.PromptTokens > 0 {
		m.TokensTotal.WithLabelValues(labels.Model, "prompt").Add(float64(labels.PromptTokens))
	}
	if labels.CompletionTokens > 0 {
		m.TokensTotal.WithLabelValues(labels.Model, "completion").Add(float64(labels.CompletionTokens))
	}
}

// RecordReload counts a configuration reload attempt.
func (m *Metrics) RecordReload(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.ConfigReloadTotal.WithLabelValues(result).Inc()
}

// RequestLabels holds the label values for recording a request.
type RequestLabels struct {
	Model            string
	Status           string
	ErrorType        string
	DurationMs       float64
	PromptTokens     int
	CompletionTokens int
}
