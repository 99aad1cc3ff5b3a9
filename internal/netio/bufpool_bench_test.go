package netio

import "testing"

func BenchmarkBytePoolGetPut(b *testing.B) {
	p := NewBytePool(defaultSendBufSize)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := p.Get(512)
		p.Put(buf)
	}
}

func BenchmarkBytePoolGetPutGrowing(b *testing.B) {
	p := NewBytePool(defaultSendBufSize)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf := p.Get(defaultSendBufSize * 2)
		p.Put(buf)
	}
}
