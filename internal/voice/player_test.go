package voice

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn collects frames written through the Conn interface
type fakeConn struct {
	frames chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 64)}
}

func (c *fakeConn) Speaking(on bool) error  { return nil }
func (c *fakeConn) OpusSend() chan<- []byte { return c.frames }
func (c *fakeConn) Disconnect() error       { return nil }

// encodeFrames builds a DCA stream of the given opus payloads
func encodeFrames(t *testing.T, payloads ...[]byte) io.ReadCloser {
	t.Helper()

	var buf bytes.Buffer
	for _, p := range payloads {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, int16(len(p))))
		buf.Write(p)
	}
	return io.NopCloser(&buf)
}

func waitDone(t *testing.T, p *Player) {
	t.Helper()

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("player did not finish in time")
	}
}

func TestPlayerStreamsAllFrames(t *testing.T) {
	conn := newFakeConn()
	p := NewPlayer()

	require.NoError(t, p.Play(encodeFrames(t, []byte{1, 2}, []byte{3}), conn))
	waitDone(t, p)

	close(conn.frames)
	var got [][]byte
	for frame := range conn.frames {
		got = append(got, frame)
	}
	assert.Equal(t, [][]byte{{1, 2}, {3}}, got)
}

func TestPlayerStopEndsStream(t *testing.T) {
	conn := &fakeConn{frames: make(chan []byte)} // unbuffered: pump blocks on send
	p := NewPlayer()

	payloads := make([][]byte, 100)
	for i := range payloads {
		payloads[i] = []byte{byte(i)}
	}
	require.NoError(t, p.Play(encodeFrames(t, payloads...), conn))

	// Drain one frame so the pump is mid-stream, then stop
	<-conn.frames
	p.Stop()
	waitDone(t, p)

	// Stop is idempotent
	p.Stop()
}

func TestPlayerPauseSuspendsEmission(t *testing.T) {
	conn := newFakeConn()
	p := NewPlayer()

	p.Pause()
	assert.True(t, p.Paused())

	// Pause is a no-op when already paused
	p.Pause()
	assert.True(t, p.Paused())

	require.NoError(t, p.Play(encodeFrames(t, []byte{1}), conn))

	// Paused player emits nothing
	select {
	case frame := <-conn.frames:
		t.Fatalf("unexpected frame while paused: %v", frame)
	case <-time.After(50 * time.Millisecond):
	}

	p.Resume()
	waitDone(t, p)

	assert.Equal(t, []byte{1}, <-conn.frames)
}

func TestPlayerStopWhilePaused(t *testing.T) {
	conn := newFakeConn()
	p := NewPlayer()

	require.NoError(t, p.Play(encodeFrames(t, []byte{1}, []byte{2}), conn))
	p.Pause()
	p.Stop()
	waitDone(t, p)
}

func TestPlayerStopBeforePlay(t *testing.T) {
	p := NewPlayer()
	p.Stop()
	waitDone(t, p)
}

func TestPlayRejectsSecondCall(t *testing.T) {
	conn := newFakeConn()
	p := NewPlayer()

	require.NoError(t, p.Play(encodeFrames(t, []byte{1}), conn))
	assert.Error(t, p.Play(encodeFrames(t, []byte{2}), conn))
	waitDone(t, p)
}
