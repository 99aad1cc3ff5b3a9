package game

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wc3aura/aura/internal/command"
	"github.com/wc3aura/aura/internal/store"
)

// RegisterBuiltins wires the fixed command taxonomy's slot-table operations,
// session mutations, and moderation-store calls onto d for lobby s. modStore
// may be nil; reserve/ban handlers then report unavailable rather than
// panicking.
func RegisterBuiltins(d *command.Dispatcher, s *Session, modStore store.ModerationStore) {
	d.Register("mute", command.LevelAdmin, s.cmdMute)
	d.Register("unmute", command.LevelAdmin, s.cmdUnmute)
	d.Register("kick", command.LevelAdmin, s.cmdKick)
	d.Register("swap", command.LevelAdmin, s.cmdSwap)
	d.Register("hcl", command.LevelAdmin, s.cmdHCL)
	d.Register("start", command.LevelAdmin, s.cmdStart)
	d.Register("end", command.LevelAdmin, s.cmdEnd)
	d.Register("abort", command.LevelAdmin, s.cmdEnd)
	d.Register("owner", command.LevelUnverified, s.cmdOwner)
	d.Register("sudo", command.LevelSudo, s.cmdSudoPing)

	d.Register("reserve", command.LevelAdmin, func(ctx context.Context, cmdCtx command.Context, args []string) (string, error) {
		return cmdReserve(ctx, cmdCtx, args, s, modStore)
	})
	d.Register("ban", command.LevelRootAdmin, func(ctx context.Context, cmdCtx command.Context, args []string) (string, error) {
		return cmdBan(ctx, cmdCtx, args, s, modStore)
	})
}

func findUIDByName(s *Session, name string) (byte, bool) {
	for uid, p := range s.Players {
		if p != nil && strings.EqualFold(p.Name, name) {
			return uid, true
		}
	}
	return 0, false
}

func (s *Session) cmdMute(_ context.Context, _ command.Context, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("command: mute requires a player name")
	}
	uid, ok := findUIDByName(s, args[0])
	if !ok {
		return "", fmt.Errorf("command: no such player %q", args[0])
	}
	s.SetMuted(uid, true)
	return fmt.Sprintf("%s has been muted", args[0]), nil
}

func (s *Session) cmdUnmute(_ context.Context, _ command.Context, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("command: unmute requires a player name")
	}
	uid, ok := findUIDByName(s, args[0])
	if !ok {
		return "", fmt.Errorf("command: no such player %q", args[0])
	}
	s.SetMuted(uid, false)
	return fmt.Sprintf("%s has been unmuted", args[0]), nil
}

func (s *Session) cmdKick(_ context.Context, _ command.Context, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("command: kick requires a player name")
	}
	uid, ok := findUIDByName(s, args[0])
	if !ok {
		return "", fmt.Errorf("command: no such player %q", args[0])
	}
	s.removePlayer(uid, "kicked by an operator command")
	return fmt.Sprintf("%s was kicked", args[0]), nil
}

func (s *Session) cmdSwap(_ context.Context, _ command.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("command: swap requires two slot numbers")
	}
	a, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("command: invalid slot %q", args[0])
	}
	b, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("command: invalid slot %q", args[1])
	}
	if err := s.Table.Swap(a, b); err != nil {
		return "", fmt.Errorf("command: swap failed: %w", err)
	}
	return "slots swapped", nil
}

func (s *Session) cmdHCL(_ context.Context, _ command.Context, args []string) (string, error) {
	s.SetHCL(strings.Join(args, " "))
	return "HCL string set", nil
}

func (s *Session) cmdStart(_ context.Context, cmdCtx command.Context, args []string) (string, error) {
	force := len(args) > 0 && strings.EqualFold(args[0], "force")
	if ok, blocker := s.StartCountdown(force); !ok {
		return "", fmt.Errorf("command: cannot start countdown (%s)", blocker)
	}
	return "countdown started", nil
}

func (s *Session) cmdEnd(_ context.Context, _ command.Context, _ []string) (string, error) {
	s.State = StateDestroyed
	return "game ended", nil
}

func (s *Session) cmdOwner(_ context.Context, cmdCtx command.Context, _ []string) (string, error) {
	if s.HasOwner() {
		return "", fmt.Errorf("command: lobby already has an owner (%s)", s.OwnerName())
	}
	if !s.TakeOwnership(cmdCtx.SenderName, cmdCtx.SenderRealm, time.Now()) {
		return "", fmt.Errorf("command: could not take ownership")
	}
	return fmt.Sprintf("%s is now the owner", cmdCtx.SenderName), nil
}

func (s *Session) cmdSudoPing(_ context.Context, _ command.Context, _ []string) (string, error) {
	return "sudo elevation confirmed", nil
}

func cmdReserve(ctx context.Context, cmdCtx command.Context, args []string, s *Session, modStore store.ModerationStore) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("command: reserve requires a player name")
	}
	adder, ok := modStore.(interface {
		AddReservation(ctx context.Context, sessionID, name string) error
	})
	if !ok {
		return "", fmt.Errorf("command: reservations unavailable")
	}
	if err := adder.AddReservation(ctx, s.ID(), args[0]); err != nil {
		return "", fmt.Errorf("command: reserving %q: %w", args[0], err)
	}
	return fmt.Sprintf("%s is now reserved a slot", args[0]), nil
}

func cmdBan(ctx context.Context, cmdCtx command.Context, args []string, s *Session, modStore store.ModerationStore) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("command: ban requires a player name")
	}
	adder, ok := modStore.(interface {
		AddBan(ctx context.Context, realmID int, name, ip, reason string, scope store.BanScope) error
	})
	if !ok {
		return "", fmt.Errorf("command: bans unavailable")
	}
	reason := "banned by an operator command"
	if len(args) > 1 {
		reason = strings.Join(args[1:], " ")
	}
	if err := adder.AddBan(ctx, cmdCtx.SenderRealm, args[0], "", reason, store.ScopeSession); err != nil {
		return "", fmt.Errorf("command: banning %q: %w", args[0], err)
	}
	return fmt.Sprintf("%s has been banned", args[0]), nil
}
