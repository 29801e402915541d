package diag

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Category classifies a recorded fault.
type Category int

const (
	CategorySensor Category = iota
	CategoryProcessing
	CategoryComm
	CategoryWatchdog
	CategorySystem
	categoryCount
)

var categoryNames = [...]string{"sensor", "processing", "comm", "watchdog", "system"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Record is one fault entry.
type Record struct {
	Category Category
	Message  string
	At       time.Time
}

// DefaultRecorderCapacity bounds the fault ring when none is given.
const DefaultRecorderCapacity = 64

// Recorder keeps the most recent faults in a fixed ring with per
// category totals. The totals survive ring wraparound.
type Recorder struct {
	lock    sync.Mutex
	records []Record
	next    int
	count   int
	totals  [categoryCount]uint32
}

// NewRecorder creates a recorder holding up to capacity entries.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultRecorderCapacity
	}
	return &Recorder{records: make([]Record, capacity)}
}

// Record stores a fault and logs it.
func (r *Recorder) Record(cat Category, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	glog.Errorf("[%s] %s", cat, msg)

	r.lock.Lock()
	r.records[r.next] = Record{Category: cat, Message: msg, At: time.Now()}
	r.next = (r.next + 1) % len(r.records)
	if r.count < len(r.records) {
		r.count++
	}
	if cat >= 0 && cat < categoryCount {
		r.totals[cat]++
	}
	r.lock.Unlock()
}

// Recent returns up to n entries, newest first.
func (r *Recorder) Recent(n int) []Record {
	r.lock.Lock()
	defer r.lock.Unlock()
	if n > r.count {
		n = r.count
	}
	out := make([]Record, 0, n)
	idx := r.next
	for i := 0; i < n; i++ {
		idx--
		if idx < 0 {
			idx = len(r.records) - 1
		}
		out = append(out, r.records[idx])
	}
	return out
}

// Count returns the total recorded for one category.
func (r *Recorder) Count(cat Category) uint32 {
	if cat < 0 || cat >= categoryCount {
		return 0
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.totals[cat]
}

// Total returns the number of faults recorded since creation.
func (r *Recorder) Total() uint32 {
	r.lock.Lock()
	defer r.lock.Unlock()
	var total uint32
	for _, v := range r.totals {
		total += v
	}
	return total
}

// Clear drops ring contents but keeps the totals.
func (r *Recorder) Clear() {
	r.lock.Lock()
	r.next = 0
	r.count = 0
	r.lock.Unlock()
}
