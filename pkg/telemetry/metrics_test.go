package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.FragmentFolded()
	m.FragmentFolded()
	m.FindingResult("formatted")
	m.Translation("cached")
	m.SubmissionResults(3, 1)
	m.Cooldown()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Fragments))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Findings.WithLabelValues("formatted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Translations.WithLabelValues("cached")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Submissions.WithLabelValues("inserted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cooldowns))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.FragmentFolded()
		m.FindingResult("skipped")
		m.Translation("failed")
		m.SubmissionResults(1, 1)
		m.Cooldown()
	})
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.FragmentFolded()

	path := filepath.Join(t.TempDir(), "nessusrider.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nessusrider_fragments_total 1")
}
