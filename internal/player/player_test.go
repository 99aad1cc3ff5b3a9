package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordPingAveragesWindow(t *testing.T) {
	p := New("alice", 1, 0, nil, time.Now())
	p.RecordPing(100 * time.Millisecond)
	p.RecordPing(200 * time.Millisecond)

	assert.Equal(t, 2, p.PingSampleCount())
	assert.Equal(t, 150*time.Millisecond, p.AveragePing())
}

func TestRecordPingWrapsWindow(t *testing.T) {
	p := New("alice", 1, 0, nil, time.Now())
	for i := 0; i < pingWindow+3; i++ {
		p.RecordPing(time.Duration(i) * time.Millisecond)
	}
	assert.Equal(t, pingWindow, p.PingSampleCount())
}

func TestAckOutboundDropsAcknowledged(t *testing.T) {
	p := New("alice", 1, 0, nil, time.Now())
	p.QueueOutbound(1, []byte("a"))
	p.QueueOutbound(2, []byte("b"))
	p.QueueOutbound(3, []byte("c"))

	p.AckOutbound(2)
	assert.Len(t, p.Outbound, 1)
	assert.Equal(t, uint32(3), p.Outbound[0].Seq)
}

func TestReplayFromReturnsUnseen(t *testing.T) {
	p := New("alice", 1, 0, nil, time.Now())
	p.QueueOutbound(1, []byte("a"))
	p.QueueOutbound(2, []byte("b"))
	p.QueueOutbound(3, []byte("c"))

	replay := p.ReplayFrom(1)
	assert.Len(t, replay, 2)
	assert.Equal(t, uint32(2), replay[0].Seq)
	assert.Equal(t, uint32(3), replay[1].Seq)
}
