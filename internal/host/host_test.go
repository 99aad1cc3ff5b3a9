package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	id      string
	done    bool
	started bool
	jip     bool
}

func (f *fakeSession) Update(ctx context.Context) bool { return f.done }
func (f *fakeSession) ID() string                       { return f.id }
func (f *fakeSession) InLobby() bool                    { return !f.started }
func (f *fakeSession) Started() bool                    { return f.started }
func (f *fakeSession) JoinInProgress() bool             { return f.jip }

func newController(q Quotas) *Controller {
	if q.MaxLobbies == 0 {
		q.MaxLobbies = 10
	}
	if q.MaxStartedGames == 0 {
		q.MaxStartedGames = 10
	}
	if q.MaxTotalGames == 0 {
		q.MaxTotalGames = 10
	}
	return NewController(q, nil)
}

func TestCreateLobbyThenTickPromotesToLive(t *testing.T) {
	c := newController(Quotas{})
	require.NoError(t, c.CreateLobby(&fakeSession{id: "g1"}))
	assert.Len(t, c.Lobbies(), 0) // still pending before a tick

	c.Tick(context.Background(), nil)
	assert.Len(t, c.Lobbies(), 1)
}

func TestCreateLobbyRejectsOverMaxLobbies(t *testing.T) {
	c := newController(Quotas{MaxLobbies: 1, MaxStartedGames: 10, MaxTotalGames: 10})
	require.NoError(t, c.CreateLobby(&fakeSession{id: "g1"}))
	err := c.CreateLobby(&fakeSession{id: "g2"})
	assert.Error(t, err)
}

func TestTickRemovesDoneSessions(t *testing.T) {
	c := newController(Quotas{})
	require.NoError(t, c.CreateLobby(&fakeSession{id: "g1"}))
	c.Tick(context.Background(), nil)
	require.Len(t, c.Lobbies(), 1)

	// Mark it done and tick again.
	c.lobbies["g1"].(*fakeSession).done = true
	c.Tick(context.Background(), nil)
	assert.Len(t, c.Lobbies(), 0)
}

func TestHostPromotesLobbyToStarted(t *testing.T) {
	c := newController(Quotas{})
	require.NoError(t, c.CreateLobby(&fakeSession{id: "g1"}))
	c.Tick(context.Background(), nil)

	require.NoError(t, c.Host("g1"))
	assert.Len(t, c.Lobbies(), 0)
	assert.Len(t, c.Started(), 1)
}

func TestHostRejectsUnknownLobby(t *testing.T) {
	c := newController(Quotas{})
	err := c.Host("nosuch")
	assert.Error(t, err)
}

func TestEnqueueActionExecProcessedOnTick(t *testing.T) {
	c := newController(Quotas{})
	c.EnqueueAction(PendingAction{Kind: ActionExec, Command: "say hi", Identity: "alice"})

	var ran bool
	replies := c.Tick(context.Background(), func(ctx context.Context, a PendingAction) (string, error) {
		ran = true
		return "hi", nil
	})

	assert.True(t, ran)
	require.Len(t, replies, 1)
	assert.Equal(t, "hi", replies[0])
}

func TestAutoRehostRecreatesLobbyOnDone(t *testing.T) {
	var rehostCalled bool
	q := Quotas{MaxLobbies: 10, MaxStartedGames: 10, MaxTotalGames: 10, AutoRehostCooldownTicks: 0}
	c := NewController(q, func(ctx context.Context, prevGameID string) (Session, error) {
		rehostCalled = true
		return &fakeSession{id: "g1-rehost"}, nil
	})

	require.NoError(t, c.CreateLobby(&fakeSession{id: "g1"}))
	c.Tick(context.Background(), nil)
	c.lobbies["g1"].(*fakeSession).done = true
	c.Tick(context.Background(), nil)

	assert.True(t, rehostCalled)
	c.Tick(context.Background(), nil) // drain the rehosted pending lobby
	assert.Len(t, c.Lobbies(), 1)
}
