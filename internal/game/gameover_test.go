package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickGameOverArmsWhenEmptyAndDestroysAfterTolerance(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.State = StatePlaying
	s.cfg.GameOverToleranceSeconds = 10
	now := time.Now()

	s.tickGameOver(now)
	assert.True(t, s.gameOverArmed)
	assert.NotEqual(t, StateDestroyed, s.State)

	s.tickGameOver(now.Add(11 * time.Second))
	assert.Equal(t, StateDestroyed, s.State)
}

func TestAuthoritativeArmingExtendsTolerance(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.cfg.GameOverToleranceSeconds = 10
	now := time.Now()
	s.ArmGameOver(now, true)

	s.tickGameOver(now.Add(11 * time.Second))
	assert.NotEqual(t, StateDestroyed, s.State)

	s.tickGameOver(now.Add(51 * time.Second))
	assert.Equal(t, StateDestroyed, s.State)
}

func TestDisarmGameOverCancelsShutdown(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.Players[1] = nil // a remaining player keeps tickGameOver from auto-rearming
	now := time.Now()
	s.ArmGameOver(now, false)
	s.DisarmGameOver()

	s.tickGameOver(now.Add(time.Hour))
	assert.False(t, s.gameOverArmed)
}
