// Package hub75metrics provides a Prometheus-backed implementation of
// hub75.MetricsRecorder.
package hub75metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder implements hub75.MetricsRecorder with a small set of
// Prometheus collectors.
type Recorder struct {
	frames     prometheus.Counter
	handoffs   prometheus.Counter
	brightness prometheus.Gauge
}

// New creates a Recorder and registers its collectors with reg. Passing
// prometheus.DefaultRegisterer matches the common case of a process-wide
// /metrics endpoint.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hub75",
			Name:      "frames_shown_total",
			Help:      "Number of frames handed to Show.",
		}),
		handoffs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hub75",
			Name:      "buffer_handoffs_total",
			Help:      "Number of double-buffer tail-link hand-offs performed.",
		}),
		brightness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hub75",
			Name:      "brightness",
			Help:      "Current brightness value set via SetBrightness.",
		}),
	}
	reg.MustRegister(r.frames, r.handoffs, r.brightness)
	return r
}

func (r *Recorder) FrameShown()         { r.frames.Inc() }
func (r *Recorder) HandoffDone()        { r.handoffs.Inc() }
func (r *Recorder) BrightnessSet(v int) { r.brightness.Set(float64(v)) }
