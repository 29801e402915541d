// Package env resolves the device's runtime identity.
package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"github.com/google/uuid"
)

// DeviceID returns a stable identifier for this device. It prefers the
// host machine id; when that is unavailable (containers, stripped-down
// images) a random id is generated for the lifetime of the process.
func DeviceID() string {
	id, err := machineid.ProtectedID("wearcore")
	if err != nil {
		glog.Warningf("machine id unavailable, using ephemeral id: %v", err)
		return "ephemeral-" + uuid.NewString()
	}
	return id
}

// SessionID returns a fresh identifier for one monitoring session.
func SessionID() string {
	return uuid.NewString()
}
