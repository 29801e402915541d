package serial

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/niscmed/wearcore/pkg/config"
	"github.com/niscmed/wearcore/pkg/safe"
)

// pollInterval bounds how long the tx pump waits before re-checking
// for cancellation.
const pollInterval = 50 * time.Millisecond

// CommStats summarizes link activity.
type CommStats struct {
	FramesIn  uint32
	FramesOut uint32
	BadFrames uint32
	RxDropped uint32
}

// Comm runs the framed protocol over a serial port. Received bytes
// land in an overwrite-mode ring so a stalled consumer loses the
// oldest data instead of stalling the wire; outgoing frames queue in
// a blocking ring drained by the tx pump.
type Comm struct {
	port io.ReadWriter
	rx   *safe.Buffer
	tx   *safe.Buffer

	parser    Parser
	framesIn  uint32
	framesOut uint32
}

// NewComm builds a transport over port with buffer sizes from cfg.
func NewComm(port io.ReadWriter, cfg config.SerialConfig) (*Comm, error) {
	rx, err := safe.NewBuffer(cfg.RxBufBytes, true)
	if err != nil {
		return nil, err
	}
	tx, err := safe.NewBuffer(cfg.TxBufBytes, false)
	if err != nil {
		return nil, err
	}
	return &Comm{port: port, rx: rx, tx: tx}, nil
}

// Send encodes the frame and queues it for transmission, waiting up
// to timeout for buffer space.
func (c *Comm) Send(f *Frame, timeout time.Duration) error {
	b, err := f.Bytes()
	if err != nil {
		return err
	}
	if _, err := c.tx.Write(b, timeout); err != nil {
		return err
	}
	atomic.AddUint32(&c.framesOut, 1)
	return nil
}

// Receive returns the next complete frame, waiting up to timeout for
// bytes to arrive.
func (c *Comm) Receive(timeout time.Duration) (*Frame, error) {
	forever := timeout < 0
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 1)
	for {
		wait := safe.Forever
		if !forever {
			if wait = time.Until(deadline); wait < 0 {
				wait = 0
			}
		}
		if _, err := c.rx.Read(buf, wait); err != nil {
			return nil, err
		}
		if frame := c.parser.Parse(buf[0]); frame != nil {
			atomic.AddUint32(&c.framesIn, 1)
			return frame, nil
		}
	}
}

// Run pumps bytes between the port and the rings until the context is
// done. If the port is an io.Closer it is closed on cancellation to
// unblock the reader.
func (c *Comm) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	if closer, ok := c.port.(io.Closer); ok {
		go func() {
			select {
			case <-ctx.Done():
				closer.Close()
			case <-done:
			}
		}()
	}

	go c.txPump(ctx)

	buf := make([]byte, 64)
	for {
		n, err := c.port.Read(buf)
		if n > 0 {
			// Overwrite mode never blocks or fails here.
			c.rx.TryWrite(buf[:n])
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				glog.V(1).Info("serial port closed")
				return nil
			}
			return err
		}
	}
}

func (c *Comm) txPump(ctx context.Context) {
	buf := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := c.tx.Read(buf, pollInterval)
		if err != nil {
			continue
		}
		if _, err := c.port.Write(buf[:n]); err != nil {
			if ctx.Err() == nil {
				glog.Errorf("serial write: %v", err)
			}
			return
		}
	}
}

// Flush drops all pending rx and tx bytes and any partial frame.
func (c *Comm) Flush() {
	c.rx.Clear()
	c.tx.Clear()
	c.parser.Reset()
}

// Stats returns a snapshot of link activity.
func (c *Comm) Stats() CommStats {
	return CommStats{
		FramesIn:  atomic.LoadUint32(&c.framesIn),
		FramesOut: atomic.LoadUint32(&c.framesOut),
		BadFrames: c.parser.BadFrames(),
		RxDropped: c.rx.Stats().OverflowCount,
	}
}
