package diag

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/niscmed/wearcore/pkg/device"
	"github.com/niscmed/wearcore/pkg/thread"
)

// DefaultCheckInterval is the watchdog poll cadence when none is set.
const DefaultCheckInterval = time.Second

// Supervisor drives the watchdog checks and safety checks and mirrors
// pipeline health into the recorder and metrics. It runs as the
// supervisor thread and heartbeats itself.
type Supervisor struct {
	Mgr      *thread.Manager
	Device   *device.Device
	Recorder *Recorder
	// Metrics is optional; when nil only the recorder is fed.
	Metrics *Metrics
	// Interval overrides DefaultCheckInterval when positive.
	Interval time.Duration
	// MaxThreadErrors triggers an emergency shutdown when any single
	// thread accumulates this many errors. Zero disables the limit.
	MaxThreadErrors uint32

	collector DeviceCollector
	shutdown  bool
}

// Name implements framework.Named.
func (s *Supervisor) Name() string {
	return "supervisor"
}

// Run implements framework.Runnable.
func (s *Supervisor) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if s.Metrics != nil {
		s.collector.Metrics = s.Metrics
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Mgr.Heartbeat(thread.Supervisor)
			s.Mgr.Checkpoint(ctx, thread.Supervisor)
			s.poll()
		}
	}
}

func (s *Supervisor) poll() {
	if tripped := s.Mgr.CheckWatchdogs(); tripped > 0 {
		s.Recorder.Record(CategoryWatchdog, "%d thread(s) missed their heartbeat", tripped)
		if s.Metrics != nil {
			s.Metrics.WatchdogTrips.Add(float64(tripped))
		}
	}

	for _, a := range s.Device.SafetyCheck() {
		s.Recorder.Record(CategoryProcessing, "safety check: %s", a.Message)
	}

	infos := s.Mgr.Snapshot()
	if s.Metrics != nil {
		s.collector.Observe(s.Device.Stats())
		s.Metrics.ObserveThreads(infos, time.Now())
	}

	if s.MaxThreadErrors == 0 || s.shutdown {
		return
	}
	for _, info := range infos {
		if info.ErrorCount >= s.MaxThreadErrors {
			s.shutdown = true
			s.Recorder.Record(CategorySystem,
				"thread %s exceeded error limit (%d)", info.Name, info.ErrorCount)
			glog.Errorf("thread %s error count %d reached limit, shutting down",
				info.Name, info.ErrorCount)
			s.Device.EmergencyShutdown("thread error limit exceeded")
			return
		}
	}
}
