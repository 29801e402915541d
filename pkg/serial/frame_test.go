package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAll(t *testing.T, p *Parser, b []byte) []*Frame {
	t.Helper()
	var frames []*Frame
	for _, c := range b {
		if f := p.Parse(c); f != nil {
			frames = append(frames, f)
		}
	}
	return frames
}

func TestFrameRoundTrip(t *testing.T) {
	f := &Frame{Type: TypeData, Data: []byte{1, 2, 3}}
	b, err := f.Bytes()
	require.NoError(t, err)
	assert.Equal(t, SOF, b[0])

	var p Parser
	frames := parseAll(t, &p, b)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeData, frames[0].Type)
	assert.Equal(t, []byte{1, 2, 3}, frames[0].Data)
	assert.Zero(t, p.BadFrames())
}

func TestFrameEscaping(t *testing.T) {
	f := &Frame{Type: TypeCommand, Data: []byte{SOF, ESC, 0x42, SOF}}
	b, err := f.Bytes()
	require.NoError(t, err)
	// Only the leading SOF appears unescaped.
	sofs := 0
	for _, c := range b {
		if c == SOF {
			sofs++
		}
	}
	assert.Equal(t, 1, sofs)

	var p Parser
	frames := parseAll(t, &p, b)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{SOF, ESC, 0x42, SOF}, frames[0].Data)
}

func TestFrameEmptyPayload(t *testing.T) {
	f := &Frame{Type: TypeAck}
	b, err := f.Bytes()
	require.NoError(t, err)

	var p Parser
	frames := parseAll(t, &p, b)
	require.Len(t, frames, 1)
	assert.Equal(t, TypeAck, frames[0].Type)
	assert.Empty(t, frames[0].Data)
}

func TestFramePayloadTooLarge(t *testing.T) {
	f := &Frame{Type: TypeData, Data: make([]byte, MaxPayload+1)}
	_, err := f.Bytes()
	assert.Error(t, err)
}

func TestParserDropsBadChecksum(t *testing.T) {
	f := &Frame{Type: TypeData, Data: []byte{1, 2, 3}}
	b, err := f.Bytes()
	require.NoError(t, err)
	b[len(b)-1] ^= 0xff

	var p Parser
	frames := parseAll(t, &p, b)
	assert.Empty(t, frames)
	assert.Equal(t, uint32(1), p.BadFrames())

	// Parser recovers on the next frame.
	good, err := (&Frame{Type: TypeAck}).Bytes()
	require.NoError(t, err)
	frames = parseAll(t, &p, good)
	assert.Len(t, frames, 1)
}

func TestParserResyncOnMidFrameSOF(t *testing.T) {
	truncated := []byte{SOF, TypeData, 3, 1}
	good, err := (&Frame{Type: TypeStatus, Data: []byte{9}}).Bytes()
	require.NoError(t, err)

	var p Parser
	frames := parseAll(t, &p, append(truncated, good...))
	require.Len(t, frames, 1)
	assert.Equal(t, TypeStatus, frames[0].Type)
	assert.Equal(t, uint32(1), p.BadFrames())
}

func TestParserIgnoresNoiseBeforeSOF(t *testing.T) {
	good, err := (&Frame{Type: TypeData, Data: []byte{7}}).Bytes()
	require.NoError(t, err)
	noisy := append([]byte{0x00, 0x55, 0xaa}, good...)

	var p Parser
	frames := parseAll(t, &p, noisy)
	require.Len(t, frames, 1)
	assert.Zero(t, p.BadFrames())
}

func TestParserRejectsOversizeLength(t *testing.T) {
	var p Parser
	frames := parseAll(t, &p, []byte{SOF, TypeData, MaxPayload + 1})
	assert.Empty(t, frames)
	assert.Equal(t, uint32(1), p.BadFrames())
}
