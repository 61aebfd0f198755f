// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics are the per-fiber collectors. A nil *metrics records nothing.
type metrics struct {
	ticks         *prometheus.CounterVec
	tickDuration  prometheus.Histogram
	framesCreated prometheus.Counter
	framesDropped prometheus.Counter
}

// newMetrics registers the fiber's collectors with reg under the const label
// fiber=name. Fibers sharing a registry and a name share collectors.
func newMetrics(reg prometheus.Registerer, name string) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}
	reg = prometheus.WrapRegistererWith(prometheus.Labels{"fiber": name}, reg)
	m := &metrics{}
	var err error
	if m.ticks, err = register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiber_ticks_total",
			Help: "Total number of passes by result",
		},
		[]string{"result"},
	)); err != nil {
		return nil, err
	}
	if m.tickDuration, err = register(reg, prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fiber_tick_duration_seconds",
			Help:    "Duration of one pass over the generator tree",
			Buckets: prometheus.DefBuckets,
		},
	)); err != nil {
		return nil, err
	}
	if m.framesCreated, err = register(reg, prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fiber_frames_created_total",
			Help: "Total number of frames created",
		},
	)); err != nil {
		return nil, err
	}
	if m.framesDropped, err = register(reg, prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fiber_frames_disposed_total",
			Help: "Total number of frames disposed",
		},
	)); err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c, or returns the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, errors.Wrap(err, "fiber: register metrics")
}

func (m *metrics) observeTick(start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ticks.WithLabelValues(result).Inc()
	m.tickDuration.Observe(time.Since(start).Seconds())
}

func (m *metrics) frameCreated() {
	if m != nil {
		m.framesCreated.Inc()
	}
}

func (m *metrics) framesDisposed(n int) {
	if m != nil {
		m.framesDropped.Add(float64(n))
	}
}
