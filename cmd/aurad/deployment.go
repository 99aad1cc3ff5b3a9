package main

import (
	"context"
	"crypto/sha1"
	"fmt"
	"hash/crc32"
	"log/slog"
	"math/rand/v2"
	"net"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/wc3aura/aura/internal/command"
	"github.com/wc3aura/aura/internal/config"
	"github.com/wc3aura/aura/internal/discovery"
	"github.com/wc3aura/aura/internal/game"
	"github.com/wc3aura/aura/internal/host"
	"github.com/wc3aura/aura/internal/netio"
	"github.com/wc3aura/aura/internal/sessionio"
	"github.com/wc3aura/aura/internal/slot"
	"github.com/wc3aura/aura/internal/store"
	"github.com/wc3aura/aura/internal/wire"
)

// gameTickInterval is the host controller's tick cadence: one Session.Update
// sweep per interval, the single-threaded loop internal/host.Controller.Run
// documents.
const gameTickInterval = 50 * time.Millisecond

// commandToken is the chat-command prefix RegisterBuiltins listens for.
const commandToken = "!"

// deployment owns everything needed to stand up one more lobby: the shared
// moderation store, map data, port allocator, and discovery advertisement
// service. The host controller holds the lobbies themselves.
type deployment struct {
	hostCfg  config.Host
	gameCfg  config.Game
	discCfg  config.Discovery
	modStore store.ModerationStore
	mapData  []byte
	mapCheck wire.MapCheck

	disc       *discovery.Service
	controller *host.Controller

	// spawn runs a long-lived goroutine under the top-level errgroup; set
	// once in run() before any lobby (including the first) is created, so
	// rehosted lobbies' Serve loops join the same group as the original.
	spawn func(func() error)

	nextPort   int32
	lobbyCount int64
}

func newDeployment(hostCfg config.Host, gameCfg config.Game, discCfg config.Discovery, modStore store.ModerationStore, mapData []byte, mapCheck wire.MapCheck, discConn net.PacketConn) *deployment {
	broadcastAddr, loopbackAddr := discoveryAddrs(discCfg)
	extras := make([]net.Addr, 0, len(discCfg.ExtraUnicastAddrs))
	for _, raw := range discCfg.ExtraUnicastAddrs {
		if addr, err := net.ResolveUDPAddr("udp4", raw); err == nil {
			extras = append(extras, addr)
		} else {
			slog.Warn("discovery: skipping unparseable extra peer", "addr", raw, "err", err)
		}
	}

	return &deployment{
		hostCfg:  hostCfg,
		gameCfg:  gameCfg,
		discCfg:  discCfg,
		modStore: modStore,
		mapData:  mapData,
		mapCheck: mapCheck,
		disc:     discovery.NewService(discConn, discCfg.LANEnabled, broadcastAddr, loopbackAddr, extras),
		nextPort: int32(hostCfg.GamePortMin),
	}
}

func discoveryAddrs(cfg config.Discovery) (broadcast, loopback net.Addr) {
	broadcast = &net.UDPAddr{IP: net.ParseIP(cfg.LANSubnet), Port: cfg.BindPort}
	loopback = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: cfg.BindPort}
	return broadcast, loopback
}

// allocPort hands out the next game port in the configured range, wrapping
// back to the start once exhausted (a started game holding an old port for
// a long time is expected; the controller's MaxTotalGames quota bounds how
// many are live at once).
func (d *deployment) allocPort() int {
	port := int(atomic.AddInt32(&d.nextPort, 1)) - 1
	if port > d.hostCfg.GamePortMax {
		port = d.hostCfg.GamePortMin
		atomic.StoreInt32(&d.nextPort, int32(port+1))
	}
	return port
}

// createLobby builds one fresh lobby: a slot table, session, dispatcher,
// TCP listener, and the sessionio.Bridge gluing them together, then starts
// its accept loop and advertises it over discovery.
func (d *deployment) createLobby(ctx context.Context, gameID string) (*sessionio.Bridge, error) {
	port := d.allocPort()

	tbl := slot.NewTable(d.gameCfg.MaxLobbyMembers, slot.MapSettings{
		Version:          29,
		MapCommSlot:      -1,
		ObserversAllowed: d.gameCfg.ObserversAllowed,
	})

	cfg := game.Config{
		LatencyMS:                d.gameCfg.LatencyMS,
		CountdownStepMS:          d.gameCfg.CountdownStepMS,
		CountdownStart:           d.gameCfg.CountdownStart,
		SyncLimit:                d.gameCfg.SyncLimit,
		SyncLimitSafe:            d.gameCfg.SyncLimitSafe,
		ReleaseOwnerSeconds:      d.gameCfg.ReleaseOwnerSeconds,
		DeleteOrphanLobbySeconds: d.gameCfg.DeleteOrphanLobbySeconds,
		ReconnectWaitSeconds:     d.gameCfg.ReconnectWaitSeconds,
		GameOverToleranceSeconds: d.gameCfg.GameOverToleranceSeconds,
		MaxLobbyMembers:          d.gameCfg.MaxLobbyMembers,
	}

	hub := netio.NewHub()
	session := game.NewSession(gameID, tbl, cfg, hub)
	session.SetEntryKey(rand.Uint32())

	dispatcher := command.NewDispatcher(commandToken)
	game.RegisterBuiltins(dispatcher, session, d.modStore)

	listener, err := netio.Listen(fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return nil, fmt.Errorf("aurad: listening for %s on port %d: %w", gameID, port, err)
	}

	var download *sessionio.DownloadPump
	if len(d.mapData) > 0 {
		download = sessionio.NewDownloadPump(d.gameCfg.DownloadBytesPerSecond, d.gameCfg.MaxConcurrentDownloads, d.mapData)
	}

	bridge := sessionio.NewBridge(session, listener, hub, d.mapCheck, dispatcher, d.modStore, 0, download)

	d.disc.SetTemplate(wire.GameInfo{
		Version:     29,
		HostCounter: uint32(atomic.AddInt64(&d.lobbyCount, 1)),
		EntryKey:    session.EntryKey(),
		GameName:    gameID,
		SlotsTotal:  byte(d.gameCfg.MaxLobbyMembers),
		SlotsOpen:   byte(d.gameCfg.MaxLobbyMembers),
		Port:        uint16(port),
	})
	d.disc.CreateGame(ctx)

	d.spawn(func() error {
		slog.Info("serving lobby", "game_id", gameID, "port", port)
		err := bridge.Serve(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	return bridge, nil
}

// rehost recreates prevGameID's lobby under a fresh ID once its predecessor
// finishes, the host.RehostFunc signature the controller's auto-rehost path
// expects.
func (d *deployment) rehost(ctx context.Context, prevGameID string) (host.Session, error) {
	nextID := fmt.Sprintf("%s-rehost-%d", prevGameID, atomic.AddInt64(&d.lobbyCount, 1))
	slog.Info("auto-rehosting", "previous", prevGameID, "next", nextID)
	return d.createLobby(ctx, nextID)
}

// execAction is the ActionExecutor host.Controller.Tick calls for each
// ActionExec request. In this deployment it runs no command: it always
// returns an error saying exec routing is not wired to a front-end.
func (d *deployment) execAction(ctx context.Context, a host.PendingAction) (string, error) {
	return "", fmt.Errorf("aurad: exec action routing for %q not wired to a CLI front-end in this deployment", a.Command)
}

// onReplies logs exec-action replies the controller collected this tick;
// a real deployment forwards these to whatever chat/CLI service issued
// them, which lives outside this process's scope.
func (d *deployment) onReplies(replies []string) {
	for _, r := range replies {
		slog.Info("exec reply", "reply", r)
	}
}

// runDiscoveryLoop sends a periodic GAMEINFO refresh from the discovery
// service's per-version templates until ctx is canceled. Each createLobby
// call overwrites those templates, so only the most recently created lobby
// is advertised.
func (d *deployment) runDiscoveryLoop(ctx context.Context) error {
	interval := time.Duration(d.discCfg.BroadcastIntervalMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			total := byte(d.gameCfg.MaxLobbyMembers)
			open := total - byte(len(d.controller.Lobbies())+len(d.controller.Started()))
			d.disc.BroadcastRefresh(ctx, open, total, uint16(d.hostCfg.GamePortMin))
		}
	}
}

// buildMapCheck hashes a map file into the wire.MapCheck clients verify
// their local copy against before joining.
func buildMapCheck(path string, data []byte) (wire.MapCheck, error) {
	sum := sha1.Sum(data)
	return wire.MapCheck{
		Path:  `Maps\` + filepath.Base(path),
		Size:  uint32(len(data)),
		CRC32: crc32.ChecksumIEEE(data),
		SHA1:  sum,
	}, nil
}
