package observability

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestSimCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}

	c.RecordRun("coffee_shop", 8, 28)
	c.RecordRun("coffee_shop", 10, 45)
	c.RecordRun("", 3, 3)
	c.RecordMessage(true)
	c.RecordMessage(true)
	c.RecordMessage(false)
	c.ObserveHopLatency(0.05)
	c.ObserveHopLatency(0.3)

	if got := testutil.ToFloat64(c.RunsTotal.WithLabelValues("coffee_shop")); got != 2 {
		t.Errorf("runs_total{coffee_shop} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.RunsTotal.WithLabelValues("unknown")); got != 1 {
		t.Errorf("runs_total{unknown} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.MessagesTotal.WithLabelValues("delivered")); got != 2 {
		t.Errorf("messages_total{delivered} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.MessagesTotal.WithLabelValues("dropped")); got != 1 {
		t.Errorf("messages_total{dropped} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Peers); got != 3 {
		t.Errorf("peers gauge = %v, want 3 (last run)", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var hist *dto.Histogram
	for _, mf := range families {
		if mf.GetName() == "meshsim_hop_latency_seconds" {
			hist = mf.GetMetric()[0].GetHistogram()
		}
	}
	if hist == nil {
		t.Fatal("hop latency histogram not gathered")
	}
	if got := hist.GetSampleCount(); got != 2 {
		t.Errorf("histogram sample count = %d, want 2", got)
	}
	if got := hist.GetSampleSum(); got != 0.35 {
		t.Errorf("histogram sample sum = %v, want 0.35", got)
	}
}

func TestSimCollectorDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("first NewSimCollector: %v", err)
	}
	b, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("second NewSimCollector: %v", err)
	}

	a.RecordMessage(true)
	b.RecordMessage(true)
	if got := testutil.ToFloat64(a.MessagesTotal.WithLabelValues("delivered")); got != 2 {
		t.Errorf("collectors did not share the registered counter: %v, want 2", got)
	}
}

func TestSimCollectorNilSafe(t *testing.T) {
	var c *SimCollector
	c.RecordRun("coffee_shop", 1, 0)
	c.RecordMessage(true)
	c.ObserveHopLatency(0.1)
}

func TestSimCollectorHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	c.RecordRun("conference", 40, 780)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "meshsim_runs_total") {
		t.Errorf("exposition missing meshsim_runs_total:\n%s", body)
	}
	if !strings.Contains(body, `scenario="conference"`) {
		t.Errorf("exposition missing scenario label:\n%s", body)
	}
}
