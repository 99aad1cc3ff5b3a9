package game

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wc3aura/aura/internal/command"
)

func admitNamed(t *testing.T, s *Session, name string) byte {
	t.Helper()
	req := JoinRequest{Name: name, InternalIP: net.IPv4(10, 0, 0, 1), ExternalIP: net.IPv4(1, 2, 3, 4)}
	_, rejects, err := s.Admit(req, testMapCheck(), time.Now())
	require.NoError(t, err)
	require.Empty(t, rejects)
	uid, ok := findUIDByName(s, name)
	require.True(t, ok)
	return uid
}

func TestRegisterBuiltinsMuteKick(t *testing.T) {
	s, _ := newTestSession(t, 4)
	d := command.NewDispatcher("!")
	RegisterBuiltins(d, s, nil)

	admitNamed(t, s, "alice")

	cmdCtx := command.Context{Level: command.LevelAdmin}
	reply, err := d.Dispatch(context.Background(), cmdCtx, "!mute alice")
	require.NoError(t, err)
	assert.Contains(t, reply, "muted")

	uid, _ := findUIDByName(s, "alice")
	assert.True(t, s.IsMuted(uid))

	reply, err = d.Dispatch(context.Background(), cmdCtx, "!kick alice")
	require.NoError(t, err)
	assert.Contains(t, reply, "kicked")
	assert.Empty(t, s.Players)
}

func TestRegisterBuiltinsRequiresPermissionLevel(t *testing.T) {
	s, _ := newTestSession(t, 4)
	d := command.NewDispatcher("!")
	RegisterBuiltins(d, s, nil)
	admitNamed(t, s, "bob")

	cmdCtx := command.Context{Level: command.LevelUnverified}
	_, err := d.Dispatch(context.Background(), cmdCtx, "!kick bob")
	assert.Error(t, err)
}

func TestCmdStartRespectsPreconditions(t *testing.T) {
	s, _ := newTestSession(t, 4)
	d := command.NewDispatcher("!")
	RegisterBuiltins(d, s, nil)

	cmdCtx := command.Context{Level: command.LevelAdmin}
	_, err := d.Dispatch(context.Background(), cmdCtx, "!start")
	assert.Error(t, err) // single-team precondition blocks it with one occupied slot at most
}

func TestCmdEndDestroysSession(t *testing.T) {
	s, _ := newTestSession(t, 4)
	d := command.NewDispatcher("!")
	RegisterBuiltins(d, s, nil)

	cmdCtx := command.Context{Level: command.LevelAdmin}
	_, err := d.Dispatch(context.Background(), cmdCtx, "!end")
	require.NoError(t, err)
	assert.Equal(t, StateDestroyed, s.State)
}
