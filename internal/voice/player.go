package voice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// sendTimeout bounds how long a frame send may block on a dead
// connection before the pump gives up
const sendTimeout = time.Second

// Player pumps DCA-framed opus from a source to a voice connection.
// One Player plays one source; a new track means a new Player.
type Player struct {
	mu      sync.Mutex
	cond    *sync.Cond
	paused  bool
	stopped bool
	started bool
	done    chan struct{}
}

// NewPlayer creates an idle player
func NewPlayer() *Player {
	p := &Player{done: make(chan struct{})}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Play starts streaming the source to the connection. It may be
// called once; the source is closed when the stream ends.
func (p *Player) Play(src io.ReadCloser, conn Conn) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("player already started")
	}
	p.started = true

	go p.stream(src, conn)
	return nil
}

// Pause suspends emission. No-op if already paused or stopped.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.paused = true
}

// Resume restarts emission after a pause
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.paused = false
	p.cond.Broadcast()
}

// Stop ends the stream. Idempotent.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	p.cond.Broadcast()

	if !p.started {
		p.started = true
		close(p.done)
	}
}

// Paused reports whether the player is currently paused
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Done is closed when the stream has fully ended
func (p *Player) Done() <-chan struct{} {
	return p.done
}

func (p *Player) stream(src io.ReadCloser, conn Conn) {
	defer close(p.done)
	defer src.Close()

	if err := conn.Speaking(true); err != nil {
		log.Printf("Failed to set speaking state: %v", err)
	}
	defer func() {
		if err := conn.Speaking(false); err != nil {
			log.Printf("Failed to clear speaking state: %v", err)
		}
	}()

	for {
		frame, err := readFrame(src)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("Audio stream error: %v", err)
			} else {
				log.Println("Playback finished")
			}
			return
		}

		p.mu.Lock()
		for p.paused && !p.stopped {
			p.cond.Wait()
		}
		stopped := p.stopped
		p.mu.Unlock()

		if stopped {
			return
		}

		select {
		case conn.OpusSend() <- frame:
		case <-time.After(sendTimeout):
			log.Println("Voice send timed out, ending stream")
			return
		}
	}
}

// readFrame reads one DCA frame: int16 little-endian length, then
// that many bytes of opus data
func readFrame(r io.Reader) ([]byte, error) {
	var length int16
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	if length <= 0 {
		return nil, fmt.Errorf("invalid frame length %d", length)
	}

	frame := make([]byte, length)
	if _, err := io.ReadFull(r, frame); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	return frame, nil
}
