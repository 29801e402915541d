// Package framework provides the small runtime glue the device daemon
// is assembled from: background runnables, a collecting runner with
// signal handling, and a fixed-interval cycle for periodic work.
package framework

import "context"

// Runnable is a long-running background task.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error { return f(ctx) }

// Named is anything with a name.
type Named interface {
	Name() string
}

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string { return r.name }

// NamedRun attaches a name to a Runnable for logging.
func NamedRun(name string, r Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: r}
}
