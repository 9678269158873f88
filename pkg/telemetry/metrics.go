package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what one run did. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	Fragments    prometheus.Counter
	Findings     *prometheus.CounterVec
	Translations *prometheus.CounterVec
	Submissions  *prometheus.CounterVec
	Cooldowns    prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.Fragments = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nessusrider_fragments_total",
		Help: "Plugin details fetched from Nessus and folded into findings",
	})
	m.Findings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nessusrider_findings_total",
		Help: "Aggregated findings by formatting result",
	}, []string{"result"})
	m.Translations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nessusrider_translations_total",
		Help: "Translation requests by status",
	}, []string{"status"})
	m.Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nessusrider_submissions_total",
		Help: "Ghostwriter insert mutations by result",
	}, []string{"result"})
	m.Cooldowns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nessusrider_quota_cooldowns_total",
		Help: "Pauses taken because the translation quota was exhausted",
	})

	m.Registry.MustRegister(m.Fragments, m.Findings, m.Translations, m.Submissions, m.Cooldowns)
	return m
}

func (m *Metrics) FragmentFolded() {
	if m == nil {
		return
	}
	m.Fragments.Inc()
}

func (m *Metrics) FindingResult(result string) {
	if m == nil {
		return
	}
	m.Findings.WithLabelValues(result).Inc()
}

func (m *Metrics) Translation(status string) {
	if m == nil {
		return
	}
	m.Translations.WithLabelValues(status).Inc()
}

func (m *Metrics) SubmissionResults(inserted, failed int) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues("inserted").Add(float64(inserted))
	m.Submissions.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) Cooldown() {
	if m == nil {
		return
	}
	m.Cooldowns.Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
