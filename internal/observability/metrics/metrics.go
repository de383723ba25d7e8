package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics exposes counters/histograms for the notification pipeline.
// A nil *BotMetrics is valid and records nothing.
type BotMetrics struct {
	notificationsTotal *prometheus.CounterVec
	repliesTotal       *prometheus.CounterVec
	llmLatency         *prometheus.HistogramVec
	leadsSavedTotal    prometheus.Counter
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wpbot",
			Subsystem: "processor",
			Name:      "notifications_total",
			Help:      "Total processed gateway notifications by outcome",
		}, []string{"outcome"}),
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wpbot",
			Subsystem: "processor",
			Name:      "replies_total",
			Help:      "Total outbound replies by kind and delivery status",
		}, []string{"kind", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wpbot",
			Subsystem: "llm",
			Name:      "completion_latency_seconds",
			Help:      "Latency of LLM completion calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		leadsSavedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wpbot",
			Subsystem: "leads",
			Name:      "saved_total",
			Help:      "Total lead records persisted",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.notificationsTotal, m.repliesTotal, m.llmLatency, m.leadsSavedTotal)
	return m
}

func (m *BotMetrics) ObserveNotification(outcome string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(outcome).Inc()
}

func (m *BotMetrics) ObserveReply(kind, status string) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(kind, status).Inc()
}

func (m *BotMetrics) ObserveLLMLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *BotMetrics) LeadSaved() {
	if m == nil {
		return
	}
	m.leadsSavedTotal.Inc()
}
