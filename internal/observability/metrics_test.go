package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveAndWrite(t *testing.T) {
	m := NewMetrics()
	m.ObserveConsultation("answered", 3, 1.5)
	m.ObserveConsultation("unreachable", 1, 0.2)
	m.ObserveRecord("台球", false)
	m.ObserveRecord("台球", true)

	assert.InDelta(t, 2, testutil.ToFloat64(m.OracleCalls), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.OracleRetries), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.OracleVerdicts.WithLabelValues("answered")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RecordsScored.WithLabelValues("台球")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RecordsSkipped), 0)

	n, err := testutil.GatherAndCount(m.Gatherer(), "fabeval_oracle_verdicts_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	path := filepath.Join(t.TempDir(), "fabeval.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fabeval_oracle_calls_total 2")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveConsultation("answered", 2, 1)
	m.ObserveRecord("x", false)
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "none.prom")))
}
