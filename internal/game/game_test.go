package game

import (
	"testing"

	"github.com/wc3aura/aura/internal/slot"
)

// fakeSink records every frame sent for assertions.
type fakeSink struct {
	sent      map[byte][][]byte
	broadcast [][]byte
}

func newFakeSink() *fakeSink {
	return &fakeSink{sent: make(map[byte][][]byte)}
}

func (f *fakeSink) SendTo(uid byte, frame []byte) error {
	f.sent[uid] = append(f.sent[uid], frame)
	return nil
}

func (f *fakeSink) Broadcast(frame []byte, exceptUID byte) {
	f.broadcast = append(f.broadcast, frame)
}

func newTestTable(t *testing.T, n int) *slot.Table {
	t.Helper()
	settings := slot.MapSettings{Version: 29, MapCommSlot: -1, ObserversAllowed: true}
	tbl := slot.NewTable(n, settings)
	return tbl
}

func newTestSession(t *testing.T, n int) (*Session, *fakeSink) {
	t.Helper()
	sink := newFakeSink()
	tbl := newTestTable(t, n)
	s := NewSession("g1", tbl, DefaultConfig(), sink)
	return s, sink
}
