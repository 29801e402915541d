package telemetry

import (
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/google/uuid"

	"github.com/niscmed/wearcore/pkg/device"
	wearpb "github.com/niscmed/wearcore/pkg/proto/wear/v1"
)

func vitalType(k device.VitalKind) wearpb.VitalType {
	switch k {
	case device.VitalHeartRate:
		return wearpb.VitalType_VITAL_HEART_RATE
	case device.VitalSpO2:
		return wearpb.VitalType_VITAL_SPO2
	case device.VitalTemperature:
		return wearpb.VitalType_VITAL_TEMPERATURE
	case device.VitalMotion:
		return wearpb.VitalType_VITAL_MOTION
	}
	return wearpb.VitalType_VITAL_UNKNOWN
}

func alertSeverity(s device.Severity) wearpb.AlertSeverity {
	switch s {
	case device.SeverityWarning:
		return wearpb.AlertSeverity_SEVERITY_WARNING
	case device.SeverityCritical:
		return wearpb.AlertSeverity_SEVERITY_CRITICAL
	}
	return wearpb.AlertSeverity_SEVERITY_INFO
}

// EncodeReading converts a processed reading to wire bytes.
func EncodeReading(deviceID, sessionID string, r device.Reading, seq uint32) ([]byte, error) {
	return proto.Marshal(&wearpb.VitalSample{
		DeviceId:    deviceID,
		SessionId:   sessionID,
		Type:        vitalType(r.Kind),
		Value:       r.Value,
		Quality:     uint32(r.Quality),
		TimestampMs: r.At.UnixNano() / int64(time.Millisecond),
		Seq:         seq,
	})
}

// EncodeAlert converts an alert to wire bytes, assigning it an id.
func EncodeAlert(deviceID string, a device.Alert) ([]byte, error) {
	return proto.Marshal(&wearpb.DeviceAlert{
		DeviceId:    deviceID,
		AlertId:     uuid.NewString(),
		Type:        vitalType(a.Kind),
		Severity:    alertSeverity(a.Severity),
		Value:       a.Value,
		Threshold:   a.Threshold,
		TimestampMs: a.At.UnixNano() / int64(time.Millisecond),
		Message:     a.Message,
	})
}

// EncodeStatus converts a device stats snapshot to wire bytes.
func EncodeStatus(deviceID string, s device.Stats, uptime time.Duration, errorCount uint32) ([]byte, error) {
	return proto.Marshal(&wearpb.DeviceStatus{
		DeviceId:      deviceID,
		State:         s.State.String(),
		UptimeSeconds: uint64(uptime / time.Second),
		TotalSamples:  s.TotalSamples,
		AlertCount:    uint32(s.TotalAlerts),
		ErrorCount:    errorCount,
		TimestampMs:   time.Now().UnixNano() / int64(time.Millisecond),
	})
}
