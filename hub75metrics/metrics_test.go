package hub75metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestRecorderCountersStartAtZero(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	if v := counterValue(t, r.frames); v != 0 {
		t.Errorf("frames = %v, want 0", v)
	}
	if v := counterValue(t, r.handoffs); v != 0 {
		t.Errorf("handoffs = %v, want 0", v)
	}
}

func TestRecorderFrameShownIncrements(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	r.FrameShown()
	r.FrameShown()
	if v := counterValue(t, r.frames); v != 2 {
		t.Errorf("frames = %v, want 2", v)
	}
}

func TestRecorderHandoffDoneIncrements(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	r.HandoffDone()
	if v := counterValue(t, r.handoffs); v != 1 {
		t.Errorf("handoffs = %v, want 1", v)
	}
}

func TestRecorderBrightnessSetReflectsLatestValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	r.BrightnessSet(10)
	r.BrightnessSet(30)
	if v := gaugeValue(t, r.brightness); v != 30 {
		t.Errorf("brightness = %v, want 30", v)
	}
}
