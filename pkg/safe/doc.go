// Package safe provides the bounded, thread-safe data exchange
// primitives shared by the application threads: a fixed-capacity FIFO
// queue of typed items and a fixed-capacity circular byte buffer.
//
// Both follow the monitor pattern: one mutex per instance plus two wait
// conditions ("not empty", "not full"). Blocking operations release the
// mutex while waiting and re-check their predicate in a loop after
// every wakeup, so spurious wakeups are harmless. A wait condition is a
// one-token channel, and a token can stand for several coalesced
// signals; every state change therefore re-signals its condition while
// the predicate still holds, cascading the wakeup from waiter to waiter
// until it is consumed. Locks are never held across another component's
// blocking operation.
package safe
