package thread

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Entry is the body of a managed thread. It should call
// Manager.Heartbeat periodically and Manager.Checkpoint at a safe
// point of each loop iteration, and return when ctx is done.
type Entry func(ctx context.Context)

type record struct {
	info      Info
	created   bool
	suspended bool
	resume    chan struct{}
}

// Manager owns the fixed thread table. One mutex guards the whole
// table; the thread count is small and critical sections are short.
type Manager struct {
	lock    sync.Mutex
	records [idCount]record
	now     func() time.Time
}

// NewManager creates a manager with every record in Stopped state and
// the default watchdog timeout.
func NewManager() *Manager {
	m := &Manager{now: time.Now}
	for i := range m.records {
		id := ID(i)
		m.records[i].info = Info{
			ID:              id,
			Name:            profiles[id].Name,
			State:           Stopped,
			WatchdogTimeout: DefaultWatchdogTimeout,
		}
	}
	return m
}

// Create starts a goroutine for id running entry. The record moves to
// Starting and its heartbeat is stamped so the watchdog does not trip
// before the first real heartbeat. An id with an associated thread is
// rejected; Error-state ids stay burned.
func (m *Manager) Create(ctx context.Context, id ID, entry Entry) error {
	if !id.Valid() {
		return ErrInvalidID
	}
	if entry == nil {
		return ErrNilEntry
	}
	m.lock.Lock()
	rec := &m.records[id]
	if rec.created {
		m.lock.Unlock()
		return ErrExists
	}
	rec.created = true
	rec.info.State = Starting
	rec.info.LastHeartbeat = m.now()
	m.lock.Unlock()

	glog.V(1).Infof("created thread %s (prio %d)", id, profiles[id].Priority)
	go m.run(ctx, id, entry)
	return nil
}

func (m *Manager) run(ctx context.Context, id ID, entry Entry) {
	defer func() {
		m.lock.Lock()
		rec := &m.records[id]
		if r := recover(); r != nil {
			rec.info.State = Error
			rec.info.ErrorCount++
			m.lock.Unlock()
			glog.Errorf("thread %s terminated by panic: %v", id, r)
			return
		}
		rec.info.State = Stopped
		m.lock.Unlock()
		glog.V(1).Infof("thread %s stopped", id)
	}()
	entry(ctx)
}

// Heartbeat stamps liveness for id, bumps its run count and promotes
// Starting to Running on the first call. Invalid ids are ignored.
func (m *Manager) Heartbeat(id ID) {
	if !id.Valid() {
		return
	}
	m.lock.Lock()
	rec := &m.records[id]
	rec.info.LastHeartbeat = m.now()
	rec.info.RunCount++
	if rec.info.State == Starting {
		rec.info.State = Running
		glog.V(1).Infof("thread %s is now running", id)
	}
	m.lock.Unlock()
}

// CheckWatchdogs counts Running threads whose heartbeat is older than
// their timeout and bumps each offender's error count. The check is
// level-triggered: a silent thread is reported again on every call
// until it heartbeats. No state is changed and nothing is killed.
func (m *Manager) CheckWatchdogs() int {
	tripped := 0
	now := m.now()
	m.lock.Lock()
	for i := range m.records {
		rec := &m.records[i]
		if rec.info.State != Running {
			continue
		}
		if now.Sub(rec.info.LastHeartbeat) > rec.info.WatchdogTimeout {
			rec.info.ErrorCount++
			tripped++
			glog.Warningf("watchdog timeout for thread %s", ID(i))
		}
	}
	m.lock.Unlock()
	return tripped
}

// Suspend marks id suspended. The thread parks cooperatively at its
// next Checkpoint call. A terminated thread (Stopped or Error) cannot
// be suspended.
func (m *Manager) Suspend(id ID) error {
	if !id.Valid() {
		return ErrInvalidID
	}
	m.lock.Lock()
	rec := &m.records[id]
	if !rec.created {
		m.lock.Unlock()
		return ErrNotCreated
	}
	if rec.info.State == Stopped || rec.info.State == Error {
		m.lock.Unlock()
		return ErrNotRunning
	}
	if !rec.suspended {
		rec.suspended = true
		rec.resume = make(chan struct{})
		rec.info.State = Suspended
	}
	m.lock.Unlock()
	glog.V(1).Infof("thread %s suspended", id)
	return nil
}

// Resume wakes a suspended thread and resets its heartbeat so the
// watchdog does not trip for the time spent parked.
func (m *Manager) Resume(id ID) error {
	if !id.Valid() {
		return ErrInvalidID
	}
	m.lock.Lock()
	rec := &m.records[id]
	if !rec.created {
		m.lock.Unlock()
		return ErrNotCreated
	}
	if rec.suspended {
		rec.suspended = false
		close(rec.resume)
		rec.resume = nil
		// The goroutine may have terminated while parked; only a
		// record still marked Suspended goes back to Running.
		if rec.info.State == Suspended {
			rec.info.State = Running
			rec.info.LastHeartbeat = m.now()
		}
	}
	m.lock.Unlock()
	glog.V(1).Infof("thread %s resumed", id)
	return nil
}

// Checkpoint is the cooperative yield point. A suspended thread blocks
// here until Resume or until ctx is done.
func (m *Manager) Checkpoint(ctx context.Context, id ID) {
	if !id.Valid() {
		return
	}
	m.lock.Lock()
	for m.records[id].suspended {
		resume := m.records[id].resume
		m.lock.Unlock()
		select {
		case <-resume:
		case <-ctx.Done():
			return
		}
		m.lock.Lock()
	}
	m.lock.Unlock()
}

// Info returns a snapshot of the record for id.
func (m *Manager) Info(id ID) (Info, error) {
	if !id.Valid() {
		return Info{}, ErrInvalidID
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.records[id].info, nil
}

// Snapshot returns a copy of every record, in id order.
func (m *Manager) Snapshot() []Info {
	m.lock.Lock()
	defer m.lock.Unlock()
	out := make([]Info, idCount)
	for i := range m.records {
		out[i] = m.records[i].info
	}
	return out
}

// SetWatchdogTimeout overrides the watchdog timeout for id.
func (m *Manager) SetWatchdogTimeout(id ID, d time.Duration) error {
	if !id.Valid() {
		return ErrInvalidID
	}
	if d <= 0 {
		return ErrInvalidTimeout
	}
	m.lock.Lock()
	m.records[id].info.WatchdogTimeout = d
	m.lock.Unlock()
	return nil
}
