// Package input turns raw terminal bytes into viewer key presses.
package input

import (
	"bufio"
	"sync"
)

// Input is the set of keys pressed since the previous frame. Keys are edge
// triggered: holding a key produces one press per repeated byte.
type Input struct {
	Quit   bool
	Pause  bool
	Step   bool
	Reset  bool
	Grid   bool
	Spawn  int  // Number of spawn presses this frame
	Any    bool // Any byte was received
	Closed bool // The reader has returned an error
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch       chan byte
	done     chan struct{}
	finished chan struct{} // Closed when the reader goroutine returns
	stopOnce sync.Once
	closed   bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// The goroutine ends when r returns an error, or after Stop once its pending
// read returns.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch:       make(chan byte, 128),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go func() {
		defer close(s.finished)
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			select {
			case s.ch <- b:
			case <-s.done:
				return
			}
		}
	}()
	return s
}

// Stop tells the reader goroutine to exit instead of waiting for the
// stream to be drained. It is safe to call more than once.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Finished is closed once the reader goroutine has returned.
func (s *Stream) Finished() <-chan struct{} {
	return s.finished
}

// ReadInput drains all available bytes from the stream without blocking.
func ReadInput(s *Stream) Input {
	var buf []byte

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := Parse(buf)
	in.Closed = s.closed
	return in
}

// Parse decodes a batch of bytes. Escape sequences (arrow keys and the like)
// are skipped; a lone ESC or Ctrl-C quits.
func Parse(buf []byte) Input {
	in := Input{Any: len(buf) > 0}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+1 < len(buf) && buf[i+1] == '[' {
			// CSI: skip parameters up to the final byte.
			i += 2
			for i < len(buf) && (buf[i] < 0x40 || buf[i] > 0x7e) {
				i++
			}
			continue
		}

		switch b {
		case 'q', 'Q', '\x1b', '\x03':
			in.Quit = true
		case ' ', 'p', 'P':
			in.Pause = !in.Pause
		case 'n', 'N':
			in.Step = true
		case 'r', 'R':
			in.Reset = true
		case 'g', 'G':
			in.Grid = !in.Grid
		case '+', '=':
			in.Spawn++
		}
	}

	return in
}
