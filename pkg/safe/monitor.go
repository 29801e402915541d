package safe

import "time"

// Forever makes a blocking operation wait with no deadline.
const Forever time.Duration = -1

// signal wakes at most one waiter parked on cond. The token is retained
// if nobody is waiting, so a wakeup between unlock and wait is not lost.
func signal(cond chan struct{}) {
	select {
	case cond <- struct{}{}:
	default:
	}
}

// newCond returns a wait condition for signal and await.
func newCond() chan struct{} {
	return make(chan struct{}, 1)
}

// await parks on cond until signaled, broadcast (channel closed), or the
// deadline passes. It returns false only on deadline expiry. Must be
// called with the instance mutex released.
func await(cond <-chan struct{}, deadline time.Time, forever bool) bool {
	if forever {
		<-cond
		return true
	}
	d := time.Until(deadline)
	if d <= 0 {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-cond:
		return true
	case <-t.C:
		return false
	}
}
