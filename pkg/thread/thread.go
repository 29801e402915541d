// Package thread manages the fixed set of application threads: creation,
// heartbeat tracking and watchdog supervision. The manager only detects
// and reports a stalled thread; recovery policy belongs to the caller.
package thread

import (
	"errors"
	"time"
)

// ID identifies a managed thread. The set is closed at compile time.
type ID int

// Managed thread identifiers.
const (
	Supervisor ID = iota
	DataAcquisition
	DataProcessing
	Communication
	Diagnostics
	idCount
)

// Count is the number of managed threads.
const Count = int(idCount)

// Valid reports whether id names a managed thread.
func (id ID) Valid() bool { return id >= 0 && id < idCount }

// String returns the thread name, or "unknown" for a bad id.
func (id ID) String() string {
	if !id.Valid() {
		return "unknown"
	}
	return profiles[id].Name
}

// State is the lifecycle state of a managed thread.
type State int

// Thread lifecycle states.
const (
	Stopped State = iota
	Starting
	Running
	Suspended
	Error
)

var stateNames = [...]string{"stopped", "starting", "running", "suspended", "error"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "invalid"
	}
	return stateNames[s]
}

// Profile is the static per-thread configuration. Priority and stack
// budget mirror the device build; the Go runtime schedules for itself,
// so they are carried as recorded attributes for diagnostics.
type Profile struct {
	Name       string
	Priority   int
	StackBytes int
}

var profiles = [idCount]Profile{
	Supervisor:      {Name: "supervisor", Priority: 1, StackBytes: 1024},
	DataAcquisition: {Name: "data_acquisition", Priority: 1, StackBytes: 1536},
	DataProcessing:  {Name: "data_processing", Priority: 4, StackBytes: 1536},
	Communication:   {Name: "communication", Priority: 3, StackBytes: 1024},
	Diagnostics:     {Name: "diagnostics", Priority: 5, StackBytes: 512},
}

// ProfileOf returns the static configuration for id.
func ProfileOf(id ID) (Profile, error) {
	if !id.Valid() {
		return Profile{}, ErrInvalidID
	}
	return profiles[id], nil
}

// DefaultWatchdogTimeout is applied to every record at init.
const DefaultWatchdogTimeout = 30 * time.Second

// Info is a snapshot of one thread record.
type Info struct {
	ID              ID
	Name            string
	State           State
	RunCount        uint32
	ErrorCount      uint32
	WatchdogTimeout time.Duration
	LastHeartbeat   time.Time
}

var (
	// ErrInvalidID indicates an id outside the managed set.
	ErrInvalidID = errors.New("invalid thread id")
	// ErrNilEntry indicates a missing entry function.
	ErrNilEntry = errors.New("nil thread entry")
	// ErrExists indicates the id already has an associated thread.
	ErrExists = errors.New("thread already created")
	// ErrNotCreated indicates no thread was ever created for the id.
	ErrNotCreated = errors.New("thread not created")
	// ErrNotRunning indicates the thread's goroutine has terminated.
	ErrNotRunning = errors.New("thread not running")
	// ErrInvalidTimeout indicates a non-positive watchdog timeout.
	ErrInvalidTimeout = errors.New("invalid watchdog timeout")
)
