package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)
	metrics.Observe("succeeded", 250*time.Millisecond)
	metrics.Observe("succeeded", 100*time.Millisecond)
	metrics.Observe("validation_failed", 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_submit_total", "outcome", "succeeded"); err != nil {
		t.Fatalf("fetch succeeded: %v", err)
	} else if got != 2 {
		t.Fatalf("expected succeeded=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_submit_total", "outcome", "validation_failed"); err != nil {
		t.Fatalf("fetch validation: %v", err)
	} else if got != 1 {
		t.Fatalf("expected validation_failed=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "checkout_submit_duration_seconds", "outcome", "succeeded"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	if _, err := fetchHistogramSum(mfs, "checkout_submit_duration_seconds", "outcome", "validation_failed"); err == nil {
		t.Fatalf("validation failures should not record a duration")
	}
}

func TestCartMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetrics(reg)
	metrics.IncMutation("add")
	metrics.IncMutation("")
	metrics.IncDegradedLoad()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "cart_mutations_total", "op", "add"); err != nil || got != 1 {
		t.Fatalf("expected add=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "cart_mutations_total", "op", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unknown=1, got %f (%v)", got, err)
	}
	mf := findMetricFamily(mfs, "cart_load_degraded_total")
	if mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected one degraded load")
	}
}

func TestNilRecordersAreSafe(t *testing.T) {
	var checkout *CheckoutMetrics
	checkout.Observe("succeeded", time.Second)
	NewCheckoutMetrics(nil).Observe("succeeded", time.Second)

	var cart *CartMetrics
	cart.IncMutation("add")
	cart.IncDegradedLoad()
	NewCartMetrics(nil).IncDegradedLoad()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
