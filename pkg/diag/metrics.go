// Package diag provides on-device diagnostics: an error recorder, a
// metrics surface and the watchdog supervisor loop.
package diag

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/niscmed/wearcore/pkg/device"
	"github.com/niscmed/wearcore/pkg/thread"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	SamplesTotal   prometheus.Counter
	ProcessedTotal prometheus.Counter
	AlertsTotal    *prometheus.CounterVec
	DroppedTotal   prometheus.Counter

	QueueDepth    *prometheus.GaugeVec
	DeviceState   prometheus.Gauge
	WatchdogTrips prometheus.Counter
	HeartbeatAge  *prometheus.GaugeVec
	ThreadErrors  *prometheus.GaugeVec
}

// NewMetrics creates and registers all metrics on the registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		SamplesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "wearcore_samples_total",
			Help: "Total number of raw samples accepted",
		}),
		ProcessedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "wearcore_processed_total",
			Help: "Total number of samples processed",
		}),
		AlertsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wearcore_alerts_total",
				Help: "Total number of alerts raised",
			},
			[]string{"severity"},
		),
		DroppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "wearcore_samples_dropped_total",
			Help: "Total number of samples dropped on a full queue",
		}),
		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wearcore_queue_depth",
				Help: "Current depth of a pipeline queue",
			},
			[]string{"queue"},
		),
		DeviceState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wearcore_device_state",
			Help: "Current device lifecycle state (numeric)",
		}),
		WatchdogTrips: factory.NewCounter(prometheus.CounterOpts{
			Name: "wearcore_watchdog_trips_total",
			Help: "Total number of watchdog timeouts observed",
		}),
		HeartbeatAge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wearcore_thread_heartbeat_age_seconds",
				Help: "Age of the last heartbeat per thread",
			},
			[]string{"thread"},
		),
		ThreadErrors: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wearcore_thread_errors",
				Help: "Cumulative error count per thread",
			},
			[]string{"thread"},
		),
	}
}

// trackedCounter bumps a counter to an absolute value observed from
// the pipeline's own statistics.
type trackedCounter struct {
	last uint64
}

func (t *trackedCounter) update(c prometheus.Counter, v uint64) {
	if v > t.last {
		c.Add(float64(v - t.last))
		t.last = v
	}
}

// DeviceCollector publishes device pipeline stats into the metrics.
type DeviceCollector struct {
	Metrics *Metrics

	samples   trackedCounter
	processed trackedCounter
	dropped   trackedCounter
}

// Observe folds one stats snapshot into the metrics.
func (c *DeviceCollector) Observe(s device.Stats) {
	m := c.Metrics
	c.samples.update(m.SamplesTotal, s.TotalSamples)
	c.processed.update(m.ProcessedTotal, s.TotalProcessed)
	c.dropped.update(m.DroppedTotal, uint64(s.DroppedSamples))
	m.QueueDepth.WithLabelValues("samples").Set(float64(s.SampleDepth))
	m.QueueDepth.WithLabelValues("processed").Set(float64(s.ProcessedDepth))
	m.QueueDepth.WithLabelValues("alerts").Set(float64(s.AlertDepth))
	m.DeviceState.Set(float64(s.State))
}

// ObserveThreads folds a thread table snapshot into the metrics.
func (m *Metrics) ObserveThreads(infos []thread.Info, now time.Time) {
	for _, info := range infos {
		m.ThreadErrors.WithLabelValues(info.Name).Set(float64(info.ErrorCount))
		if info.State == thread.Running || info.State == thread.Suspended {
			m.HeartbeatAge.WithLabelValues(info.Name).Set(now.Sub(info.LastHeartbeat).Seconds())
		}
	}
}
