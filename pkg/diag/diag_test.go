package diag

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niscmed/wearcore/pkg/config"
	"github.com/niscmed/wearcore/pkg/device"
	"github.com/niscmed/wearcore/pkg/thread"
)

func TestRecorderRingAndTotals(t *testing.T) {
	r := NewRecorder(3)
	r.Record(CategorySensor, "fault %d", 1)
	r.Record(CategoryComm, "fault %d", 2)
	r.Record(CategorySensor, "fault %d", 3)
	r.Record(CategorySensor, "fault %d", 4) // evicts fault 1

	recent := r.Recent(10)
	require.Len(t, recent, 3)
	assert.Equal(t, "fault 4", recent[0].Message)
	assert.Equal(t, "fault 3", recent[1].Message)
	assert.Equal(t, "fault 2", recent[2].Message)

	assert.Equal(t, uint32(3), r.Count(CategorySensor))
	assert.Equal(t, uint32(1), r.Count(CategoryComm))
	assert.Equal(t, uint32(4), r.Total())

	r.Clear()
	assert.Empty(t, r.Recent(10))
	// Totals survive a clear.
	assert.Equal(t, uint32(4), r.Total())
}

func TestRecorderRecentLimit(t *testing.T) {
	r := NewRecorder(8)
	r.Record(CategorySystem, "a")
	r.Record(CategorySystem, "b")
	recent := r.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "b", recent[0].Message)
}

func testDevice(t *testing.T) *device.Device {
	t.Helper()
	d, err := device.New(config.MonitoringConfig{
		SampleQueueCap:    8,
		ProcessedQueueCap: 8,
		AlertQueueCap:     8,
		Thresholds: config.ThresholdsConfig{
			HeartRateLow: 40, HeartRateHigh: 150,
			SpO2Low:        90,
			TemperatureLow: 35, TemperatureHi: 39,
		},
	})
	require.NoError(t, err)
	return d
}

func TestDeviceCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	c := &DeviceCollector{Metrics: m}

	c.Observe(device.Stats{TotalSamples: 5, TotalProcessed: 3, SampleDepth: 2})
	c.Observe(device.Stats{TotalSamples: 9, TotalProcessed: 8, SampleDepth: 1})

	assert.Equal(t, float64(9), testutil.ToFloat64(m.SamplesTotal))
	assert.Equal(t, float64(8), testutil.ToFloat64(m.ProcessedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.QueueDepth.WithLabelValues("samples")))
}

func TestSupervisorRecordsWatchdogTrips(t *testing.T) {
	registry := prometheus.NewRegistry()
	mgr := thread.NewManager()
	d := testDevice(t)
	s := &Supervisor{
		Mgr:      mgr,
		Device:   d,
		Recorder: NewRecorder(8),
		Metrics:  NewMetrics(registry),
	}
	s.collector.Metrics = s.Metrics

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A thread that heartbeats once and then goes silent.
	require.NoError(t, mgr.Create(ctx, thread.DataAcquisition, func(ctx context.Context) {
		mgr.Heartbeat(thread.DataAcquisition)
		<-ctx.Done()
	}))
	require.NoError(t, mgr.SetWatchdogTimeout(thread.DataAcquisition, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	s.poll()
	assert.Equal(t, uint32(1), s.Recorder.Count(CategoryWatchdog))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.Metrics.WatchdogTrips))
}

func TestSupervisorErrorLimitShutsDown(t *testing.T) {
	mgr := thread.NewManager()
	d := testDevice(t)
	require.NoError(t, d.StartMonitoring())
	s := &Supervisor{
		Mgr:             mgr,
		Device:          d,
		Recorder:        NewRecorder(8),
		MaxThreadErrors: 3,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, mgr.Create(ctx, thread.Communication, func(ctx context.Context) {
		mgr.Heartbeat(thread.Communication)
		<-ctx.Done()
	}))
	require.NoError(t, mgr.SetWatchdogTimeout(thread.Communication, time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		s.poll()
	}
	assert.Equal(t, device.StateShutdown, d.State())
	assert.Equal(t, uint32(1), s.Recorder.Count(CategorySystem))

	// Further polls do not re-trigger.
	s.poll()
	assert.Equal(t, uint32(1), s.Recorder.Count(CategorySystem))
}
