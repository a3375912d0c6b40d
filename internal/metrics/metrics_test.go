package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCompliance(t *testing.T) {
	m := NewManager()

	m.ObserveCompliance("green")
	m.ObserveCompliance("green")
	m.ObserveCompliance("red")

	if got := testutil.ToFloat64(m.complianceLights.WithLabelValues("green")); got != 2 {
		t.Errorf("green = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.complianceLights.WithLabelValues("red")); got != 1 {
		t.Errorf("red = %v, want 1", got)
	}
}

func TestObservePass(t *testing.T) {
	m := NewManager()

	m.ObservePass(PassStats{Candidates: 4, Suppressed: 2, Expired: 1, LocalHour: 19, Duration: time.Second, Finished: time.Unix(1700000000, 0)})

	if got := testutil.ToFloat64(m.candidatesTotal); got != 4 {
		t.Errorf("candidates = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.lastPassLocalHour); got != 19 {
		t.Errorf("hour = %v, want 19", got)
	}
	if got := testutil.ToFloat64(m.expiredTotal); got != 1 {
		t.Errorf("expired = %v, want 1", got)
	}
}

func TestNilManagerIsNoop(t *testing.T) {
	var m *Manager
	m.ObserveCompliance("gray")
	m.ObserveDelivery("delivered")
	m.ObservePass(PassStats{})
	m.ObserveHTTPRequest("GET", 200, time.Millisecond)
}

func TestDisabledManager(t *testing.T) {
	m := NewManager(WithMetricsEnabled(false))
	m.ObserveDelivery("delivered")

	if got := testutil.ToFloat64(m.deliveriesTotal.WithLabelValues("delivered")); got != 0 {
		t.Errorf("deliveries = %v, want 0 when disabled", got)
	}
}

func TestNamespace(t *testing.T) {
	m := NewManager(WithNamespace("academy"))
	m.ObserveHTTPRequest("GET", 200, time.Millisecond)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "academy_http_requests_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected academy_http_requests_total to be registered")
	}
}
