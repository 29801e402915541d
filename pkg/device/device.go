// Package device implements the monitoring core: raw sample intake,
// processing with threshold alerts, and the device state machine.
package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/niscmed/wearcore/pkg/config"
	"github.com/niscmed/wearcore/pkg/safe"
)

// VitalKind identifies a vital sign channel.
type VitalKind int

const (
	VitalUnknown VitalKind = iota
	VitalHeartRate
	VitalSpO2
	VitalTemperature
	VitalMotion
)

var vitalNames = [...]string{"unknown", "heart_rate", "spo2", "temperature", "motion"}

func (k VitalKind) String() string {
	if k < 0 || int(k) >= len(vitalNames) {
		return fmt.Sprintf("vital(%d)", int(k))
	}
	return vitalNames[k]
}

// Severity grades an alert.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

var severityNames = [...]string{"info", "warning", "critical"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// RawSample is one sensor reading before processing.
type RawSample struct {
	Kind    VitalKind
	Value   float64
	Quality uint8
	Flags   uint8
	At      time.Time
}

// Reading is a processed sample ready for uplink.
type Reading struct {
	Kind    VitalKind
	Value   float64
	Quality uint8
	At      time.Time
}

// Alert is raised when a processed value crosses a configured
// threshold, or by the device itself (safety checks, shutdown).
type Alert struct {
	Kind      VitalKind
	Severity  Severity
	Value     float64
	Threshold float64
	At        time.Time
	Message   string
}

// State is the device lifecycle state.
type State int

const (
	StateInit State = iota
	StateReady
	StateMonitoring
	StateMaintenance
	StateError
	StateShutdown
)

var stateNames = [...]string{"init", "ready", "monitoring", "maintenance", "error", "shutdown"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Approximate wire sizes used for queue accounting.
const (
	rawSampleBytes = 24
	readingBytes   = 24
	alertBytes     = 48
)

// Stats summarizes device activity since creation.
type Stats struct {
	State          State
	TotalSamples   uint64
	TotalProcessed uint64
	TotalAlerts    uint64
	DroppedSamples uint32
	SampleDepth    int
	ProcessedDepth int
	AlertDepth     int
}

// smoother keeps a small moving window per vital channel.
type smoother struct {
	window [4]float64
	count  int
	next   int
}

func (s *smoother) push(v float64) float64 {
	s.window[s.next] = v
	s.next = (s.next + 1) % len(s.window)
	if s.count < len(s.window) {
		s.count++
	}
	sum := 0.0
	for i := 0; i < s.count; i++ {
		sum += s.window[i]
	}
	return sum / float64(s.count)
}

// Device owns the monitoring pipeline queues and the lifecycle state.
type Device struct {
	cfg config.MonitoringConfig

	samples   *safe.Queue[RawSample]
	processed *safe.Queue[Reading]
	alerts    *safe.Queue[Alert]

	lock      sync.Mutex
	state     State
	smoothers map[VitalKind]*smoother

	totalSamples   uint64
	totalProcessed uint64
	totalAlerts    uint64
}

// New builds a device from the monitoring configuration and leaves it
// in StateReady.
func New(cfg config.MonitoringConfig) (*Device, error) {
	samples, err := safe.NewQueue[RawSample](cfg.SampleQueueCap)
	if err != nil {
		return nil, fmt.Errorf("sample queue: %w", err)
	}
	processed, err := safe.NewQueue[Reading](cfg.ProcessedQueueCap)
	if err != nil {
		return nil, fmt.Errorf("processed queue: %w", err)
	}
	alerts, err := safe.NewQueue[Alert](cfg.AlertQueueCap)
	if err != nil {
		return nil, fmt.Errorf("alert queue: %w", err)
	}
	return &Device{
		cfg:       cfg,
		samples:   samples,
		processed: processed,
		alerts:    alerts,
		state:     StateReady,
		smoothers: make(map[VitalKind]*smoother),
	}, nil
}

// State returns the current lifecycle state.
func (d *Device) State() State {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.state
}

// StartMonitoring moves the device into StateMonitoring.
func (d *Device) StartMonitoring() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.state != StateReady && d.state != StateMaintenance {
		return fmt.Errorf("cannot start monitoring from %s", d.state)
	}
	d.state = StateMonitoring
	glog.Info("monitoring started")
	return nil
}

// StopMonitoring returns the device to StateReady.
func (d *Device) StopMonitoring() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.state != StateMonitoring {
		return fmt.Errorf("cannot stop monitoring from %s", d.state)
	}
	d.state = StateReady
	glog.Info("monitoring stopped")
	return nil
}

// EnterMaintenance suspends monitoring for maintenance.
func (d *Device) EnterMaintenance() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.state != StateReady && d.state != StateMonitoring {
		return fmt.Errorf("cannot enter maintenance from %s", d.state)
	}
	d.state = StateMaintenance
	glog.Info("maintenance mode entered")
	return nil
}

// ExitMaintenance returns the device to StateReady.
func (d *Device) ExitMaintenance() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.state != StateMaintenance {
		return fmt.Errorf("cannot exit maintenance from %s", d.state)
	}
	d.state = StateReady
	glog.Info("maintenance mode exited")
	return nil
}

// EmergencyShutdown stops everything, drops pending data and raises a
// final critical alert. Unlike the normal transitions it is accepted
// from any state.
func (d *Device) EmergencyShutdown(reason string) {
	d.lock.Lock()
	d.state = StateShutdown
	d.lock.Unlock()

	d.samples.Clear()
	d.processed.Clear()
	// A full alert queue must not block shutdown.
	if d.alerts.IsFull() {
		d.alerts.TryDequeue()
	}
	d.raiseAlert(Alert{
		Severity: SeverityCritical,
		At:       time.Now(),
		Message:  "emergency shutdown: " + reason,
	})
	glog.Errorf("emergency shutdown: %s", reason)
}

// AddSample accepts a raw sensor reading. Samples are only accepted
// while monitoring; drops on a full queue are counted, never blocked
// on, since the acquisition loop must keep its cadence.
func (d *Device) AddSample(s RawSample) error {
	d.lock.Lock()
	state := d.state
	d.lock.Unlock()
	if state != StateMonitoring {
		return fmt.Errorf("not monitoring (state %s)", state)
	}
	if s.At.IsZero() {
		s.At = time.Now()
	}
	if err := d.samples.TryEnqueue(s, rawSampleBytes); err != nil {
		glog.V(2).Infof("sample dropped: %v", err)
		return err
	}
	d.lock.Lock()
	d.totalSamples++
	d.lock.Unlock()
	return nil
}

// ProcessSamples drains the raw queue, smooths each channel and
// publishes readings, raising alerts for threshold violations.
// It returns the number of samples processed.
func (d *Device) ProcessSamples() int {
	n := 0
	for {
		item, err := d.samples.TryDequeue()
		if err != nil {
			break
		}
		d.processOne(item.Value)
		n++
	}
	return n
}

func (d *Device) processOne(s RawSample) {
	d.lock.Lock()
	sm := d.smoothers[s.Kind]
	if sm == nil {
		sm = &smoother{}
		d.smoothers[s.Kind] = sm
	}
	value := sm.push(s.Value)
	d.totalProcessed++
	d.lock.Unlock()

	reading := Reading{Kind: s.Kind, Value: value, Quality: s.Quality, At: s.At}
	if err := d.processed.TryEnqueue(reading, readingBytes); err != nil {
		glog.V(2).Infof("reading dropped: %v", err)
	}
	if alert, ok := d.checkThresholds(reading); ok {
		d.raiseAlert(alert)
	}
}

func (d *Device) checkThresholds(r Reading) (Alert, bool) {
	t := d.cfg.Thresholds
	alert := Alert{Kind: r.Kind, Value: r.Value, At: r.At}
	switch r.Kind {
	case VitalHeartRate:
		switch {
		case r.Value < t.HeartRateLow:
			alert.Severity, alert.Threshold = SeverityCritical, t.HeartRateLow
			alert.Message = "heart rate below threshold"
		case r.Value > t.HeartRateHigh:
			alert.Severity, alert.Threshold = SeverityCritical, t.HeartRateHigh
			alert.Message = "heart rate above threshold"
		default:
			return Alert{}, false
		}
	case VitalSpO2:
		if r.Value >= t.SpO2Low {
			return Alert{}, false
		}
		alert.Severity, alert.Threshold = SeverityCritical, t.SpO2Low
		alert.Message = "SpO2 below threshold"
	case VitalTemperature:
		switch {
		case r.Value < t.TemperatureLow:
			alert.Severity, alert.Threshold = SeverityWarning, t.TemperatureLow
			alert.Message = "temperature below threshold"
		case r.Value > t.TemperatureHi:
			alert.Severity, alert.Threshold = SeverityWarning, t.TemperatureHi
			alert.Message = "temperature above threshold"
		default:
			return Alert{}, false
		}
	default:
		return Alert{}, false
	}
	return alert, true
}

func (d *Device) raiseAlert(a Alert) {
	if err := d.alerts.TryEnqueue(a, alertBytes); err != nil {
		glog.Warningf("alert dropped (%s): %v", a.Message, err)
		return
	}
	d.lock.Lock()
	d.totalAlerts++
	d.lock.Unlock()
	glog.Warningf("alert [%s/%s]: %s value=%.1f", a.Kind, a.Severity, a.Message, a.Value)
}

// NextReading waits for the next processed reading.
func (d *Device) NextReading(timeout time.Duration) (Reading, error) {
	item, err := d.processed.Dequeue(timeout)
	if err != nil {
		return Reading{}, err
	}
	return item.Value, nil
}

// NextAlert waits for the next pending alert.
func (d *Device) NextAlert(timeout time.Duration) (Alert, error) {
	item, err := d.alerts.Dequeue(timeout)
	if err != nil {
		return Alert{}, err
	}
	return item.Value, nil
}

// SafetyCheck inspects the pipeline for backlog. A queue above 80% of
// capacity raises a warning alert; repeated overruns indicate the
// processing thread is stalled.
func (d *Device) SafetyCheck() []Alert {
	var raised []Alert
	check := func(name string, depth, capacity int) {
		if depth*5 > capacity*4 {
			a := Alert{
				Severity: SeverityWarning,
				At:       time.Now(),
				Message:  fmt.Sprintf("%s queue backlog: %d/%d", name, depth, capacity),
			}
			d.raiseAlert(a)
			raised = append(raised, a)
		}
	}
	check("sample", d.samples.Len(), d.samples.Cap())
	check("processed", d.processed.Len(), d.processed.Cap())
	return raised
}

// Stats returns a snapshot of device activity.
func (d *Device) Stats() Stats {
	d.lock.Lock()
	state := d.state
	totalSamples := d.totalSamples
	totalProcessed := d.totalProcessed
	totalAlerts := d.totalAlerts
	d.lock.Unlock()

	qs := d.samples.Stats()
	return Stats{
		State:          state,
		TotalSamples:   totalSamples,
		TotalProcessed: totalProcessed,
		TotalAlerts:    totalAlerts,
		DroppedSamples: qs.OverrunCount,
		SampleDepth:    d.samples.Len(),
		ProcessedDepth: d.processed.Len(),
		AlertDepth:     d.alerts.Len(),
	}
}
