package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestQuotationMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewQuotationMetrics(reg)

	metrics.IncCreated("store-a")
	metrics.IncCreated("store-a")
	metrics.IncResponded("whatsapp")
	metrics.IncConverted()
	metrics.IncCancelled()
	metrics.IncConversionRace()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "quotations_created_total", "store", "store-a"); err != nil {
		t.Fatalf("fetch created: %v", err)
	} else if got != 2 {
		t.Fatalf("expected created=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "quotations_responded_total", "format", "whatsapp"); err != nil {
		t.Fatalf("fetch responded: %v", err)
	} else if got != 1 {
		t.Fatalf("expected responded=1, got %f", got)
	}

	for _, name := range []string{
		"quotations_converted_total",
		"quotations_cancelled_total",
		"quotation_conversion_races_total",
	} {
		if got, err := fetchPlainCounterValue(mfs, name); err != nil {
			t.Fatalf("fetch %s: %v", name, err)
		} else if got != 1 {
			t.Fatalf("expected %s=1, got %f", name, got)
		}
	}
}

func TestNilRegistererIsNoOp(t *testing.T) {
	metrics := NewQuotationMetrics(nil)
	metrics.IncCreated("store-a")
	metrics.IncResponded("pdf")
	metrics.IncConverted()
	metrics.IncCancelled()
	metrics.IncConversionRace()
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

func fetchPlainCounterValue(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	if len(mf.GetMetric()) != 1 {
		return 0, fmt.Errorf("metric %q has %d series", name, len(mf.GetMetric()))
	}
	return mf.GetMetric()[0].GetCounter().GetValue(), nil
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
