package netio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// Handler owns one accepted connection's lifetime: it should block until
// the peer disconnects, ctx is canceled, or the session evicts it.
type Handler func(ctx context.Context, conn *Conn)

// Listener accepts W3GS TCP connections on one bound port — a session
// occupies exactly one port out of the host's configured range.
type Listener struct {
	ln net.Listener

	mu     sync.Mutex
	closed bool
}

// Listen binds addr (host:port) and returns a Listener ready to Serve.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("netio: listening on %s: %w", addr, err)
	}
	return &Listener{ln: ln}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Close stops accepting new connections.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.ln.Close()
}

// Serve runs the accept loop until ctx is canceled or the listener closes,
// spawning one reader/writer goroutine pair per accepted connection and
// waiting for every in-flight handler to return before it returns itself.
func (l *Listener) Serve(ctx context.Context, handle Handler) error {
	go func() {
		<-ctx.Done()
		l.Close()
	}()

	var wg sync.WaitGroup
	for {
		raw, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			slog.Error("netio: accept failed", "err", err)
			continue
		}
		conn := newConn(raw)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			go conn.writeLoop()
			handle(ctx, conn)
		}()
	}
	wg.Wait()
	return nil
}
