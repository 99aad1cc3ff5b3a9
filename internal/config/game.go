package config

import "os"

const gameConfigPath = "config/game.yaml"

// Game holds the per-lobby defaults a new session is built with: slot
// layout, timers, and the lag/desync/reconnect thresholds.
type Game struct {
	LatencyMS       int `yaml:"latency_ms"`
	CountdownStepMS int `yaml:"countdown_step_ms"`
	CountdownStart  int `yaml:"countdown_start"`

	SyncLimit     int `yaml:"sync_limit"`
	SyncLimitSafe int `yaml:"sync_limit_safe"`

	ReleaseOwnerSeconds      int `yaml:"release_owner_seconds"`
	DeleteOrphanLobbySeconds int `yaml:"delete_orphan_lobby_seconds"`
	ReconnectWaitSeconds     int `yaml:"reconnect_wait_seconds"`
	GameOverToleranceSeconds int `yaml:"game_over_tolerance_seconds"`

	MaxLobbyMembers int `yaml:"max_lobby_members"`

	DownloadBytesPerSecond int `yaml:"download_bytes_per_second"`
	MaxConcurrentDownloads int `yaml:"max_concurrent_downloads"`

	ObserversAllowed bool `yaml:"observers_allowed"`
}

// DefaultGame returns the per-lobby defaults.
func DefaultGame() Game {
	return Game{
		LatencyMS:                100,
		CountdownStepMS:          500,
		CountdownStart:           5,
		SyncLimit:                32,
		SyncLimitSafe:            8,
		ReleaseOwnerSeconds:      120,
		DeleteOrphanLobbySeconds: 300,
		ReconnectWaitSeconds:     60,
		GameOverToleranceSeconds: 60,
		MaxLobbyMembers:          24,
		DownloadBytesPerSecond:   1 << 20,
		MaxConcurrentDownloads:   4,
		ObserversAllowed:         true,
	}
}

// LoadGame loads Game config from path, falling back to DefaultGame for
// whatever the file leaves unset.
func LoadGame(path string) (Game, error) {
	cfg := DefaultGame()
	if err := loadYAML(path, &cfg); err != nil {
		return Game{}, err
	}
	return cfg, nil
}

// GameConfigPath resolves the per-lobby config path: AURA_GAME_CONFIG if
// set, otherwise the package default.
func GameConfigPath() string {
	if p := os.Getenv("AURA_GAME_CONFIG"); p != "" {
		return p
	}
	return gameConfigPath
}
