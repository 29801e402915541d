package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niscmed/wearcore/pkg/config"
	"github.com/niscmed/wearcore/pkg/safe"
)

func testConfig() config.MonitoringConfig {
	return config.MonitoringConfig{
		SampleIntervalMs:  10,
		ProcessIntervalMs: 20,
		SampleQueueCap:    8,
		ProcessedQueueCap: 8,
		AlertQueueCap:     8,
		Thresholds: config.ThresholdsConfig{
			HeartRateLow:   40,
			HeartRateHigh:  150,
			SpO2Low:        90,
			TemperatureLow: 35,
			TemperatureHi:  39,
		},
	}
}

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	d, err := New(testConfig())
	require.NoError(t, err)
	return d
}

func TestLifecycleTransitions(t *testing.T) {
	d := newTestDevice(t)
	assert.Equal(t, StateReady, d.State())

	require.NoError(t, d.StartMonitoring())
	assert.Equal(t, StateMonitoring, d.State())
	assert.Error(t, d.StartMonitoring())

	require.NoError(t, d.StopMonitoring())
	assert.Equal(t, StateReady, d.State())
	assert.Error(t, d.StopMonitoring())

	require.NoError(t, d.EnterMaintenance())
	assert.Equal(t, StateMaintenance, d.State())
	assert.Error(t, d.EnterMaintenance())
	require.NoError(t, d.ExitMaintenance())
	assert.Equal(t, StateReady, d.State())
}

func TestAddSampleRequiresMonitoring(t *testing.T) {
	d := newTestDevice(t)
	err := d.AddSample(RawSample{Kind: VitalHeartRate, Value: 72})
	assert.Error(t, err)

	require.NoError(t, d.StartMonitoring())
	assert.NoError(t, d.AddSample(RawSample{Kind: VitalHeartRate, Value: 72}))
}

func TestAddSampleDropsWhenFull(t *testing.T) {
	d := newTestDevice(t)
	require.NoError(t, d.StartMonitoring())

	for i := 0; i < 8; i++ {
		require.NoError(t, d.AddSample(RawSample{Kind: VitalHeartRate, Value: 72}))
	}
	err := d.AddSample(RawSample{Kind: VitalHeartRate, Value: 72})
	assert.ErrorIs(t, err, safe.ErrFull)
	assert.Equal(t, uint32(1), d.Stats().DroppedSamples)
}

func TestProcessSamplesSmoothsAndPublishes(t *testing.T) {
	d := newTestDevice(t)
	require.NoError(t, d.StartMonitoring())

	for _, v := range []float64{70, 74} {
		require.NoError(t, d.AddSample(RawSample{Kind: VitalHeartRate, Value: v, Quality: 95}))
	}
	assert.Equal(t, 2, d.ProcessSamples())

	r, err := d.NextReading(safe.Forever)
	require.NoError(t, err)
	assert.Equal(t, VitalHeartRate, r.Kind)
	assert.InDelta(t, 70, r.Value, 0.001)

	r, err = d.NextReading(safe.Forever)
	require.NoError(t, err)
	assert.InDelta(t, 72, r.Value, 0.001)

	stats := d.Stats()
	assert.Equal(t, uint64(2), stats.TotalSamples)
	assert.Equal(t, uint64(2), stats.TotalProcessed)
}

func TestThresholdAlerts(t *testing.T) {
	d := newTestDevice(t)
	require.NoError(t, d.StartMonitoring())

	// Prime the smoothing window so the average itself violates.
	for i := 0; i < 4; i++ {
		require.NoError(t, d.AddSample(RawSample{Kind: VitalHeartRate, Value: 170}))
	}
	d.ProcessSamples()

	a, err := d.NextAlert(safe.Forever)
	require.NoError(t, err)
	assert.Equal(t, VitalHeartRate, a.Kind)
	assert.Equal(t, SeverityCritical, a.Severity)
	assert.Equal(t, float64(150), a.Threshold)

	// Every violating sample re-raises; drain the rest.
	for {
		if _, err := d.NextAlert(0); err != nil {
			break
		}
	}

	require.NoError(t, d.AddSample(RawSample{Kind: VitalSpO2, Value: 85}))
	d.ProcessSamples()
	a, err = d.NextAlert(safe.Forever)
	require.NoError(t, err)
	assert.Equal(t, VitalSpO2, a.Kind)
	assert.Equal(t, SeverityCritical, a.Severity)
}

func TestTemperatureAlertIsWarning(t *testing.T) {
	d := newTestDevice(t)
	require.NoError(t, d.StartMonitoring())

	require.NoError(t, d.AddSample(RawSample{Kind: VitalTemperature, Value: 40.5}))
	d.ProcessSamples()

	a, err := d.NextAlert(safe.Forever)
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, a.Severity)
}

func TestNormalValuesRaiseNoAlert(t *testing.T) {
	d := newTestDevice(t)
	require.NoError(t, d.StartMonitoring())

	require.NoError(t, d.AddSample(RawSample{Kind: VitalHeartRate, Value: 72}))
	require.NoError(t, d.AddSample(RawSample{Kind: VitalSpO2, Value: 97}))
	require.NoError(t, d.AddSample(RawSample{Kind: VitalTemperature, Value: 36.8}))
	d.ProcessSamples()

	_, err := d.NextAlert(0)
	assert.ErrorIs(t, err, safe.ErrTimeout)
}

func TestSafetyCheckFlagsBacklog(t *testing.T) {
	d := newTestDevice(t)
	require.NoError(t, d.StartMonitoring())

	assert.Empty(t, d.SafetyCheck())

	for i := 0; i < 7; i++ {
		require.NoError(t, d.AddSample(RawSample{Kind: VitalMotion, Value: 1}))
	}
	raised := d.SafetyCheck()
	require.Len(t, raised, 1)
	assert.Equal(t, SeverityWarning, raised[0].Severity)
	assert.Contains(t, raised[0].Message, "sample queue backlog")
}

func TestEmergencyShutdown(t *testing.T) {
	d := newTestDevice(t)
	require.NoError(t, d.StartMonitoring())
	require.NoError(t, d.AddSample(RawSample{Kind: VitalHeartRate, Value: 72}))

	d.EmergencyShutdown("watchdog trip")
	assert.Equal(t, StateShutdown, d.State())

	stats := d.Stats()
	assert.Equal(t, 0, stats.SampleDepth)

	a, err := d.NextAlert(0)
	require.NoError(t, err)
	assert.Equal(t, SeverityCritical, a.Severity)
	assert.Contains(t, a.Message, "watchdog trip")

	// No transitions out of shutdown.
	assert.Error(t, d.StartMonitoring())
}

func TestSimulatorStaysInHealthyRange(t *testing.T) {
	sim := NewSimulator(42)
	counts := map[VitalKind]int{}
	for i := 0; i < 400; i++ {
		s := sim.Next()
		counts[s.Kind]++
		switch s.Kind {
		case VitalHeartRate:
			assert.GreaterOrEqual(t, s.Value, 45.0)
			assert.LessOrEqual(t, s.Value, 180.0)
		case VitalSpO2:
			assert.GreaterOrEqual(t, s.Value, 85.0)
			assert.LessOrEqual(t, s.Value, 100.0)
		case VitalTemperature:
			assert.GreaterOrEqual(t, s.Value, 34.0)
			assert.LessOrEqual(t, s.Value, 41.0)
		}
		assert.False(t, s.At.IsZero())
	}
	assert.Equal(t, 100, counts[VitalHeartRate])
	assert.Equal(t, 100, counts[VitalSpO2])
	assert.Equal(t, 100, counts[VitalTemperature])
	assert.Equal(t, 100, counts[VitalMotion])
}
