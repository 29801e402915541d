// Package serial implements the byte-stuffed frame protocol used on
// the device's UART link and a buffered transport over it.
package serial

import (
	"fmt"
	"sync/atomic"
)

const (
	// SOF marks the start of every frame on the wire.
	SOF byte = 0x7e
	// ESC escapes SOF and ESC occurrences inside the payload.
	ESC byte = 0x7d
	// escXOR is applied to the byte following ESC.
	escXOR byte = 0x20

	// MaxPayload bounds the frame payload length.
	MaxPayload = 64
)

// Frame types carried on the link.
const (
	TypeData    byte = 0x01
	TypeCommand byte = 0x02
	TypeAck     byte = 0x03
	TypeStatus  byte = 0x04
)

// Frame is one unit of transfer on the serial link.
type Frame struct {
	Type byte
	Data []byte
}

// checksum is XOR over type, length and payload bytes.
func checksum(typ byte, data []byte) byte {
	sum := typ ^ byte(len(data))
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// appendEscaped appends b, stuffing an escape when needed.
func appendEscaped(dst []byte, b byte) []byte {
	if b == SOF || b == ESC {
		return append(dst, ESC, b^escXOR)
	}
	return append(dst, b)
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() ([]byte, error) {
	if len(f.Data) > MaxPayload {
		return nil, fmt.Errorf("payload too large: %d > %d", len(f.Data), MaxPayload)
	}
	b := make([]byte, 1, len(f.Data)+4)
	b[0] = SOF
	b = appendEscaped(b, f.Type)
	b = appendEscaped(b, byte(len(f.Data)))
	for _, d := range f.Data {
		b = appendEscaped(b, d)
	}
	b = appendEscaped(b, checksum(f.Type, f.Data))
	return b, nil
}

type parseState int

const (
	stateIdle parseState = iota // waiting for SOF
	stateType                   // waiting for frame type
	stateLen                    // waiting for payload length
	stateData                   // waiting for payload bytes
	stateSum                    // waiting for checksum
)

// Parser parses bytes received. One byte at a time; a completed frame
// is returned from Parse and the parser is ready for the next SOF.
type Parser struct {
	state   parseState
	escaped bool
	frame   Frame
	recvLen byte

	badFrames uint32
}

// BadFrames counts frames dropped for checksum or framing errors.
func (p *Parser) BadFrames() uint32 {
	return atomic.LoadUint32(&p.badFrames)
}

// Reset discards any partial frame.
func (p *Parser) Reset() {
	p.state = stateIdle
	p.escaped = false
	p.frame = Frame{}
}

// Parse consumes one byte and returns a frame when one completes.
func (p *Parser) Parse(b byte) *Frame {
	if b == SOF {
		// A SOF mid-frame means the previous frame was truncated.
		if p.state != stateIdle {
			atomic.AddUint32(&p.badFrames, 1)
		}
		p.state = stateType
		p.escaped = false
		p.frame = Frame{}
		return nil
	}
	if p.state == stateIdle {
		return nil
	}
	if p.escaped {
		b ^= escXOR
		p.escaped = false
	} else if b == ESC {
		p.escaped = true
		return nil
	}
	return p.parseByte(b)
}

func (p *Parser) parseByte(b byte) *Frame {
	switch p.state {
	case stateType:
		p.frame.Type = b
		p.state = stateLen
	case stateLen:
		if b > MaxPayload {
			return p.drop()
		}
		if b == 0 {
			p.state = stateSum
			return nil
		}
		p.frame.Data, p.recvLen = make([]byte, b), 0
		p.state = stateData
	case stateData:
		p.frame.Data[p.recvLen] = b
		p.recvLen++
		if p.recvLen >= byte(len(p.frame.Data)) {
			p.state = stateSum
		}
	case stateSum:
		if b != checksum(p.frame.Type, p.frame.Data) {
			return p.drop()
		}
		frame := p.frame
		p.state = stateIdle
		p.frame = Frame{}
		return &frame
	}
	return nil
}

func (p *Parser) drop() *Frame {
	atomic.AddUint32(&p.badFrames, 1)
	p.state = stateIdle
	p.frame = Frame{}
	return nil
}
