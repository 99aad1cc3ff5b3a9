// Package netio implements the W3GS connection/transport layer: a
// goroutine-per-connection accept loop, a buffered frame reader, and an
// outbound queue per connection so a slow peer's socket backpressure never
// blocks the session's single-threaded tick loop. Session logic
// itself lives entirely in internal/game and only ever reaches a
// connection through the narrow game.Sink interface that Hub implements.
package netio

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/wc3aura/aura/internal/wire"
)

const (
	defaultSendBufSize = 2048
	outboundQueueSize  = 64
)

// Conn wraps one accepted TCP connection: a buffered frame reader and an
// outbound channel drained by its own write goroutine.
type Conn struct {
	raw net.Conn
	r   *bufio.Reader
	out chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(raw net.Conn) *Conn {
	return &Conn{
		raw:    raw,
		r:      bufio.NewReaderSize(raw, defaultSendBufSize),
		out:    make(chan []byte, outboundQueueSize),
		closed: make(chan struct{}),
	}
}

// RemoteAddr returns the peer's address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// Close shuts down the connection; safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.raw.Close()
	})
}

// enqueue buffers frame for the write goroutine. A full queue means the
// peer isn't draining fast enough to keep up with the game; the connection
// is dropped rather than letting the backlog grow without bound.
func (c *Conn) enqueue(frame []byte) {
	select {
	case c.out <- frame:
	case <-c.closed:
	default:
		slog.Warn("netio: outbound queue full, dropping connection", "remote", c.raw.RemoteAddr())
		c.Close()
	}
}

func (c *Conn) writeLoop() {
	for {
		select {
		case frame, ok := <-c.out:
			if !ok {
				return
			}
			if _, err := c.raw.Write(frame); err != nil {
				slog.Warn("netio: write failed", "remote", c.raw.RemoteAddr(), "err", err)
				c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

// ReadLoop decodes frames from conn until the peer disconnects, ctx is
// canceled, or a malformed frame is read, invoking onFrame for each one
// read. It returns only when the connection should be torn down.
func (c *Conn) ReadLoop(ctx context.Context, onFrame func(wire.Frame)) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		frame, err := wire.ReadFrame(c.r)
		if err != nil {
			return
		}
		onFrame(frame)
	}
}

// WriteFrame encodes and enqueues one frame for delivery.
func (c *Conn) WriteFrame(msgType byte, payload []byte) error {
	frame, err := wire.EncodeFrame(msgType, payload)
	if err != nil {
		return err
	}
	c.enqueue(frame)
	return nil
}

// WriteRaw enqueues an already-framed byte slice (the admission handshake
// and action-relay batches are pre-encoded by internal/game).
func (c *Conn) WriteRaw(frame []byte) {
	c.enqueue(frame)
}
