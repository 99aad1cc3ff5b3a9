package game

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wc3aura/aura/internal/wire"
)

func testMapCheck() wire.MapCheck {
	return wire.MapCheck{Path: "Maps\\test.w3x", Size: 1024, CRC32: 0xdeadbeef}
}

func TestAdmitSeatsJoinerAndEmitsExpectedFrames(t *testing.T) {
	s, sink := newTestSession(t, 4)
	req := JoinRequest{Name: "alice", InternalIP: net.IPv4(10, 0, 0, 1), ExternalIP: net.IPv4(1, 2, 3, 4)}

	_, rejects, err := s.Admit(req, testMapCheck(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, rejects)
	require.Len(t, s.Players, 1)

	var joinerUID byte
	for uid := range s.Players {
		joinerUID = uid
	}
	assert.NotZero(t, joinerUID)

	require.NotEmpty(t, sink.sent[joinerUID])
	assert.Equal(t, byte(wire.MsgSlotInfoJoin), readFrameType(t, sink.sent[joinerUID][0]))
}

func TestAdmitRejectsDuplicateName(t *testing.T) {
	s, _ := newTestSession(t, 4)
	req := JoinRequest{Name: "alice", InternalIP: net.IPv4(10, 0, 0, 1), ExternalIP: net.IPv4(1, 2, 3, 4)}

	_, _, err := s.Admit(req, testMapCheck(), time.Now())
	require.NoError(t, err)

	_, rejects, err := s.Admit(req, testMapCheck(), time.Now())
	require.NoError(t, err)
	require.Len(t, rejects, 1)
	assert.Equal(t, wire.RejectFull, rejects[0])
}

func TestAdmitRejectsBanned(t *testing.T) {
	s, _ := newTestSession(t, 4)
	req := JoinRequest{Name: "mallory", Banned: true}

	_, rejects, err := s.Admit(req, testMapCheck(), time.Now())
	require.NoError(t, err)
	require.Len(t, rejects, 1)
	assert.Equal(t, wire.RejectFull, rejects[0])
}

func TestAdmitFillsLobbyThenRejects(t *testing.T) {
	s, _ := newTestSession(t, 1)
	req1 := JoinRequest{Name: "alice", InternalIP: net.IPv4(10, 0, 0, 1), ExternalIP: net.IPv4(1, 2, 3, 4)}
	_, _, err := s.Admit(req1, testMapCheck(), time.Now())
	require.NoError(t, err)

	req2 := JoinRequest{Name: "bob", InternalIP: net.IPv4(10, 0, 0, 2), ExternalIP: net.IPv4(1, 2, 3, 5)}
	_, rejects, err := s.Admit(req2, testMapCheck(), time.Now())
	require.NoError(t, err)
	require.Len(t, rejects, 1)
}

func readFrameType(t *testing.T, frame []byte) byte {
	t.Helper()
	require.GreaterOrEqual(t, len(frame), 2)
	return frame[1]
}

func TestAdmitRejectsLANWrongEntryKey(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.SetEntryKey(0xCAFEBABE)
	req := JoinRequest{Name: "alice", LAN: true, EntryKey: 0x12345678}

	_, rejects, err := s.Admit(req, testMapCheck(), time.Now())
	require.NoError(t, err)
	require.Len(t, rejects, 1)
	assert.Equal(t, wire.RejectWrongPassword, rejects[0])
	assert.Empty(t, s.Players)
}

func TestAdmitAcceptsLANMatchingEntryKey(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.SetEntryKey(0xCAFEBABE)
	req := JoinRequest{Name: "alice", LAN: true, EntryKey: 0xCAFEBABE}

	_, rejects, err := s.Admit(req, testMapCheck(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, rejects)
	assert.Len(t, s.Players, 1)
}

func TestAdmitRejectsInvalidNames(t *testing.T) {
	cases := []struct {
		name   string
		joinAs string
	}{
		{"empty", ""},
		{"too long", "this-name-is-sixteen"},
		{"virtual host name", "Aura Host"},
		{"fake user pattern", "User[1]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, _ := newTestSession(t, 4)
			req := JoinRequest{Name: c.joinAs}

			_, rejects, err := s.Admit(req, testMapCheck(), time.Now())
			require.NoError(t, err)
			require.Len(t, rejects, 1)
			assert.Equal(t, wire.RejectFull, rejects[0])
			assert.Empty(t, s.Players)
		})
	}
}

func TestAdmitRejectsHMCPseudonym(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.SetHMCName("MapComm")
	req := JoinRequest{Name: "MapComm"}

	_, rejects, err := s.Admit(req, testMapCheck(), time.Now())
	require.NoError(t, err)
	require.Len(t, rejects, 1)
	assert.Equal(t, wire.RejectFull, rejects[0])
}
