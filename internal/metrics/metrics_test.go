package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveParse(t *testing.T) {
	m := New()

	m.ObserveParse(OutcomeSuccess, 20*time.Millisecond)
	m.ObserveParse(OutcomeSuccess, 30*time.Millisecond)
	m.ObserveParse("auth", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.parses.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.parses.WithLabelValues("auth")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.parses.WithLabelValues("extraction")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveParse(OutcomeSuccess, time.Second)
		m.ObserveStage("decrypt", time.Second)
		m.ObserveTransactions(3)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveParse("input", time.Millisecond)
	m.ObserveStage("decrypt", 2*time.Millisecond)
	m.ObserveTransactions(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `statement_parser_parses_total{outcome="input"} 1`)
	assert.Contains(t, text, `statement_parser_stage_duration_seconds_count{stage="decrypt"} 1`)
	assert.Contains(t, text, "statement_parser_transactions_per_statement_count 1")
	assert.Contains(t, text, "go_goroutines")
}
