package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.RecordRequest("propagate_once", "ok", 2*time.Millisecond)
	collector.RecordRequest("propagate_once", "ok", 3*time.Millisecond)
	collector.RecordRequest("propagate_once", "propagation_error", time.Millisecond)

	if got := testutil.ToFloat64(collector.Propagations.WithLabelValues("propagate_once", "ok")); got != 2 {
		t.Fatalf("propagations_total{ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Propagations.WithLabelValues("propagate_once", "propagation_error")); got != 1 {
		t.Fatalf("propagations_total{propagation_error} = %v, want 1", got)
	}

	if count := histogramSampleCount(t, reg, "propagation_duration_seconds", map[string]string{
		"op": "propagate_once",
	}); count != 3 {
		t.Fatalf("propagation_duration_seconds sample_count = %d, want 3", count)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var collector *Collector
	collector.RecordRequest("propagate_once", "ok", time.Millisecond)
	collector.RecordBatchSize(10)
	collector.SetLiveHandles(3)
}

func TestRegistrationIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("first NewCollector: %v", err)
	}
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("second NewCollector against the same registry: %v", err)
	}
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	collector.RecordRequest("propagate_batch", "ok", time.Millisecond)
	collector.RecordBatchSize(16)
	collector.SetLiveHandles(2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"propagations_total",
		"propagation_duration_seconds",
		"propagation_batch_size",
		"live_satellite_handles",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
