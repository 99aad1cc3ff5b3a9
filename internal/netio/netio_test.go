package netio

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wc3aura/aura/internal/wire"
)

func TestConnReadLoopDecodesFrames(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	conn := newConn(server)
	defer conn.Close()

	received := make(chan wire.Frame, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go conn.ReadLoop(ctx, func(f wire.Frame) { received <- f })

	frame, err := wire.EncodeFrame(0x2A, []byte("hello"))
	require.NoError(t, err)
	go client.Write(frame)

	select {
	case f := <-received:
		assert.Equal(t, byte(0x2A), f.Type)
		assert.Equal(t, []byte("hello"), f.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for decoded frame")
	}
}

func TestConnWriteFrameDeliversToPeer(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	conn := newConn(server)
	defer conn.Close()
	go conn.writeLoop()

	require.NoError(t, conn.WriteFrame(0x2A, []byte("world")))

	readBuf := make([]byte, 64)
	client.SetReadDeadline(time.Now().Add(time.Second))
	n, err := client.Read(readBuf)
	require.NoError(t, err)

	f, err := wire.ReadFrame(bytes.NewReader(readBuf[:n]))
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), f.Payload)
}

func TestHubSendToAndBroadcast(t *testing.T) {
	h := NewHub()
	_, s1 := net.Pipe()
	_, s2 := net.Pipe()
	c1 := newConn(s1)
	c2 := newConn(s2)
	defer c1.Close()
	defer c2.Close()
	go c1.writeLoop()
	go c2.writeLoop()

	h.Bind(1, c1)
	h.Bind(2, c2)

	err := h.SendTo(3, []byte("frame"))
	assert.Error(t, err)

	require.NoError(t, h.SendTo(1, []byte("frame")))
	h.Broadcast([]byte("all"), 1)

	h.Unbind(1)
	assert.Error(t, h.SendTo(1, []byte("frame")))
}
