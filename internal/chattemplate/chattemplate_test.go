package chattemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderLineSubstitutesKnownPlaceholder(t *testing.T) {
	out, ok := RenderLine("Welcome, {NAME}!", Vars{"NAME": "alice"})
	assert.True(t, ok)
	assert.Equal(t, "Welcome, alice!", out)
}

func TestRenderLineLeavesUnknownPlaceholderIntact(t *testing.T) {
	out, ok := RenderLine("Welcome, {NAME}! Map: {MAP}", Vars{"NAME": "alice"})
	assert.True(t, ok)
	assert.Equal(t, "Welcome, alice! Map: {MAP}", out)
}

func TestRenderLineTruthyConditionIncludesWhenSet(t *testing.T) {
	out, ok := RenderLine("{OWNER?}You are the owner.", Vars{"OWNER": "alice"})
	assert.True(t, ok)
	assert.Equal(t, "You are the owner.", out)
}

func TestRenderLineTruthyConditionExcludesWhenUnset(t *testing.T) {
	_, ok := RenderLine("{OWNER?}You are the owner.", Vars{})
	assert.False(t, ok)
}

func TestRenderLineFalsyConditionExcludesWhenSet(t *testing.T) {
	_, ok := RenderLine("{OWNER!}No owner yet.", Vars{"OWNER": "alice"})
	assert.False(t, ok)
}

func TestRenderLineMultipleConditionsAllMustPass(t *testing.T) {
	out, ok := RenderLine("{OWNER?}{VERIFIED?}Hi {NAME}.", Vars{"OWNER": "alice", "VERIFIED": "1", "NAME": "alice"})
	assert.True(t, ok)
	assert.Equal(t, "Hi alice.", out)

	_, ok = RenderLine("{OWNER?}{VERIFIED?}Hi {NAME}.", Vars{"OWNER": "alice"})
	assert.False(t, ok)
}

func TestRenderDropsFailedLinesAndKeepsOrder(t *testing.T) {
	tmpl := "Welcome {NAME}.\n{OWNER?}You own this lobby.\n{OWNER!}Lobby has no owner."
	out := Render(tmpl, Vars{"NAME": "bob"})
	assert.Equal(t, "Welcome bob.\nLobby has no owner.", out)
}
