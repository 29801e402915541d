package framework

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// Cycle runs Fn at a fixed interval until the context is done. A
// failing iteration is logged and the cycle keeps going; the device
// loops degrade rather than die.
type Cycle struct {
	Name     string
	Interval time.Duration
	Fn       func(context.Context) error
}

// Run implements Runnable.
func (c *Cycle) Run(ctx context.Context) error {
	interval := c.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Fn(ctx); err != nil {
				glog.Errorf("cycle %s: %v", c.Name, err)
			}
		}
	}
}
