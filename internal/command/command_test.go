package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchRunsRegisteredHandler(t *testing.T) {
	d := NewDispatcher("!")
	d.Register("ping", LevelUnverified, func(ctx context.Context, c Context, args []string) (string, error) {
		return "pong", nil
	})

	reply, err := d.Dispatch(context.Background(), Context{Level: LevelUnverified}, "!ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", reply)
}

func TestDispatchRejectsInsufficientLevel(t *testing.T) {
	d := NewDispatcher("!")
	d.Register("kick", LevelAdmin, func(ctx context.Context, c Context, args []string) (string, error) {
		return "kicked", nil
	})

	_, err := d.Dispatch(context.Background(), Context{Level: LevelUnverified}, "!kick bob")
	assert.Error(t, err)
}

func TestDispatchRejectsUnknownCommand(t *testing.T) {
	d := NewDispatcher("!")
	_, err := d.Dispatch(context.Background(), Context{Level: LevelRootAdmin}, "!nosuch")
	assert.Error(t, err)
}

func TestDispatchIgnoresLinesWithoutToken(t *testing.T) {
	d := NewDispatcher("!")
	_, err := d.Dispatch(context.Background(), Context{}, "hello there")
	assert.Error(t, err)
}

func TestExecAuthChallengeElevatesOneInvocation(t *testing.T) {
	d := NewDispatcher("!")
	d.Register("shutdown", LevelSudo, func(ctx context.Context, c Context, args []string) (string, error) {
		return "shutting down", nil
	})

	token := d.IssueChallenge("alice")

	// Without the token, an unverified caller is refused.
	_, err := d.Dispatch(context.Background(), Context{SenderName: "alice", Level: LevelUnverified}, "!shutdown")
	assert.Error(t, err)

	// With the valid token, the same caller is elevated for this call.
	reply, err := d.Dispatch(context.Background(), Context{
		SenderName:    "alice",
		Level:         LevelUnverified,
		ExecAuthToken: token,
	}, "!shutdown")
	require.NoError(t, err)
	assert.Equal(t, "shutting down", reply)
}

func TestExecAuthTokenIsSingleUse(t *testing.T) {
	d := NewDispatcher("!")
	d.Register("shutdown", LevelSudo, func(ctx context.Context, c Context, args []string) (string, error) {
		return "ok", nil
	})
	token := d.IssueChallenge("alice")

	_, err := d.Dispatch(context.Background(), Context{SenderName: "alice", ExecAuthToken: token}, "!shutdown")
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), Context{SenderName: "alice", ExecAuthToken: token}, "!shutdown")
	assert.Error(t, err)
}

func TestExecAuthTokenRejectsWrongOperator(t *testing.T) {
	d := NewDispatcher("!")
	d.Register("shutdown", LevelSudo, func(ctx context.Context, c Context, args []string) (string, error) {
		return "ok", nil
	})
	token := d.IssueChallenge("alice")

	_, err := d.Dispatch(context.Background(), Context{SenderName: "mallory", ExecAuthToken: token}, "!shutdown")
	assert.Error(t, err)
}
