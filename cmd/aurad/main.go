package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/wc3aura/aura/internal/config"
	"github.com/wc3aura/aura/internal/host"
	"github.com/wc3aura/aura/internal/store"
	"github.com/wc3aura/aura/internal/wire"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(os.Getenv("AURA_LOG_LEVEL")),
	})))

	hostCfg, err := config.LoadHost(config.HostConfigPath())
	if err != nil {
		return fmt.Errorf("loading host config: %w", err)
	}
	gameCfg, err := config.LoadGame(config.GameConfigPath())
	if err != nil {
		return fmt.Errorf("loading game config: %w", err)
	}
	discCfg, err := config.LoadDiscovery(config.DiscoveryConfigPath())
	if err != nil {
		return fmt.Errorf("loading discovery config: %w", err)
	}
	dbCfg, err := config.LoadDatabase(config.DatabaseConfigPath())
	if err != nil {
		return fmt.Errorf("loading database config: %w", err)
	}

	slog.Info("aura starting",
		"game_ports", fmt.Sprintf("%d-%d", hostCfg.GamePortMin, hostCfg.GamePortMax),
		"lan_enabled", discCfg.LANEnabled)

	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	slog.Info("database connected")

	if err := store.RunMigrations(ctx, dbCfg.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	modStore := store.NewPGModerationStore(pool)

	mapPath := os.Getenv("AURA_MAP_PATH")
	var mapData []byte
	var mapCheck wire.MapCheck
	if mapPath != "" {
		mapData, err = os.ReadFile(mapPath)
		if err != nil {
			return fmt.Errorf("reading map file %q: %w", mapPath, err)
		}
		mapCheck, err = buildMapCheck(mapPath, mapData)
		if err != nil {
			return fmt.Errorf("hashing map file %q: %w", mapPath, err)
		}
	}

	discConn, err := net.ListenPacket("udp4", fmt.Sprintf("%s:%d", discCfg.BindAddress, discCfg.BindPort))
	if err != nil {
		return fmt.Errorf("binding discovery socket: %w", err)
	}
	defer discConn.Close()

	d := newDeployment(hostCfg, gameCfg, discCfg, modStore, mapData, mapCheck, discConn.(net.PacketConn))

	quotas := host.Quotas{
		MaxLobbies:              hostCfg.MaxLobbies,
		MaxStartedGames:         hostCfg.MaxStartedGames,
		MaxJoinInProgressGames:  hostCfg.MaxJoinInProgressGames,
		MaxTotalGames:           hostCfg.MaxTotalGames,
		AutoRehostCooldownTicks: hostCfg.AutoRehostCooldownTicks,
	}
	var rehost host.RehostFunc
	if hostCfg.AutoRehostEnabled {
		rehost = d.rehost
	}
	controller := host.NewController(quotas, rehost)
	d.controller = controller

	g, gctx := errgroup.WithContext(ctx)
	d.spawn = g.Go

	initial, err := d.createLobby(gctx, "lobby-1")
	if err != nil {
		return fmt.Errorf("creating initial lobby: %w", err)
	}
	if err := controller.CreateLobby(initial); err != nil {
		return fmt.Errorf("registering initial lobby: %w", err)
	}

	g.Go(func() error {
		slog.Info("starting host controller tick loop")
		err := controller.Run(gctx, gameTickInterval, d.execAction, d.onReplies)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return d.runDiscoveryLoop(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("aura: %w", err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
