package wire

import (
	"bytes"
	"encoding/binary"
	"net"
	"sync"
)

// Writer accumulates little-endian primitives into a growable, pooled
// buffer.
type Writer struct {
	buf *bytes.Buffer
}

var writerPool = sync.Pool{
	New: func() any {
		return &Writer{buf: bytes.NewBuffer(make([]byte, 0, 512))}
	},
}

// Get returns a reset Writer from the pool.
func Get() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// Put returns w to the pool. Do not use w after calling Put.
func (w *Writer) Put() {
	writerPool.Put(w)
}

// NewWriter creates a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: bytes.NewBuffer(make([]byte, 0, capacity))}
}

func (w *Writer) WriteByte(b byte) {
	w.buf.WriteByte(b)
}

func (w *Writer) WriteUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.buf.Write(tmp[:])
}

func (w *Writer) WriteUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf.Write(tmp[:])
}

// WriteCString writes s followed by a NUL terminator.
func (w *Writer) WriteCString(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// WriteIPv4 writes the 4-byte form of ip (zero bytes if ip is nil or not IPv4).
func (w *Writer) WriteIPv4(ip net.IP) {
	v4 := ip.To4()
	if v4 == nil {
		w.buf.Write(make([]byte, 4))
		return
	}
	w.buf.Write(v4)
}

func (w *Writer) WriteBytes(b []byte) {
	w.buf.Write(b)
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) Len() int {
	return w.buf.Len()
}

func (w *Writer) Reset() {
	w.buf.Reset()
}
