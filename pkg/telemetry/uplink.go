package telemetry

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/niscmed/wearcore/pkg/device"
	"github.com/niscmed/wearcore/pkg/thread"
)

// DefaultStatusInterval is how often a status summary is published.
const DefaultStatusInterval = 10 * time.Second

// readingPoll bounds how long the uplink waits on the processed queue
// before re-checking for cancellation.
const readingPoll = 100 * time.Millisecond

// Uplink drains the device pipeline onto MQTT topics and applies
// remote commands. Topics are relative to the queue prefix:
//
//	<deviceID>/vitals  readings (VitalSample)
//	<deviceID>/alerts  alerts (DeviceAlert)
//	<deviceID>/status  periodic summary (DeviceStatus)
//	<deviceID>/cmd/+   inbound commands
type Uplink struct {
	Queue     *Queue
	Device    *device.Device
	Mgr       *thread.Manager
	DeviceID  string
	SessionID string

	// StatusInterval overrides DefaultStatusInterval when positive.
	StatusInterval time.Duration
	// Heartbeat, when set, is called once per loop iteration.
	Heartbeat func()
	// Shutdown, when set, is called on a remote shutdown command
	// after the device is stopped.
	Shutdown func()

	seq     uint32
	started time.Time
}

// Name implements framework.Named.
func (u *Uplink) Name() string {
	return "uplink"
}

// Run implements framework.Runnable.
func (u *Uplink) Run(ctx context.Context) error {
	u.started = time.Now()
	u.Queue.Sub(u.DeviceID+"/cmd/+", u.handleCommand)

	interval := u.StatusInterval
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			u.publishStatus()
		default:
		}
		if u.Heartbeat != nil {
			u.Heartbeat()
		}
		u.pumpReadings()
		u.pumpAlerts()
	}
}

func (u *Uplink) pumpReadings() {
	r, err := u.Device.NextReading(readingPoll)
	if err != nil {
		return
	}
	seq := atomic.AddUint32(&u.seq, 1)
	payload, err := EncodeReading(u.DeviceID, u.SessionID, r, seq)
	if err != nil {
		glog.Errorf("encode reading: %v", err)
		return
	}
	u.Queue.Pub(u.DeviceID+"/vitals", payload)
}

func (u *Uplink) pumpAlerts() {
	for {
		a, err := u.Device.NextAlert(0)
		if err != nil {
			return
		}
		payload, err := EncodeAlert(u.DeviceID, a)
		if err != nil {
			glog.Errorf("encode alert: %v", err)
			continue
		}
		u.Queue.Pub(u.DeviceID+"/alerts", payload)
	}
}

func (u *Uplink) publishStatus() {
	var errorCount uint32
	if u.Mgr != nil {
		for _, info := range u.Mgr.Snapshot() {
			errorCount += info.ErrorCount
		}
	}
	payload, err := EncodeStatus(u.DeviceID, u.Device.Stats(), time.Since(u.started), errorCount)
	if err != nil {
		glog.Errorf("encode status: %v", err)
		return
	}
	u.Queue.Pub(u.DeviceID+"/status", payload)
}

func (u *Uplink) handleCommand(topic string, payload []byte) {
	cmd := topic[strings.LastIndexByte(topic, '/')+1:]
	glog.Infof("command received: %s", cmd)
	var err error
	switch cmd {
	case "suspend":
		if err = u.Mgr.Suspend(thread.DataAcquisition); err == nil {
			err = u.Mgr.Suspend(thread.DataProcessing)
		}
	case "resume":
		if err = u.Mgr.Resume(thread.DataAcquisition); err == nil {
			err = u.Mgr.Resume(thread.DataProcessing)
		}
	case "maintenance":
		err = u.Device.EnterMaintenance()
	case "exit-maintenance":
		err = u.Device.ExitMaintenance()
	case "status":
		u.publishStatus()
	case "shutdown":
		u.Device.EmergencyShutdown("remote command")
		u.pumpAlerts()
		if u.Shutdown != nil {
			u.Shutdown()
		}
	default:
		glog.Warningf("unknown command %q (payload %d bytes)", cmd, len(payload))
		return
	}
	if err != nil {
		glog.Errorf("command %s: %v", cmd, err)
	}
}
