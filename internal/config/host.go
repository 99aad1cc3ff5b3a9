package config

import "os"

const hostConfigPath = "config/host.yaml"

// Host holds the global controller's tunables: how many lobbies/games it
// will run at once, the auto-rehost cooldown, and the port range it hands
// out to new sessions.
type Host struct {
	MaxLobbies             int `yaml:"max_lobbies"`
	MaxStartedGames        int `yaml:"max_started_games"`
	MaxJoinInProgressGames int `yaml:"max_join_in_progress_games"`
	MaxTotalGames          int `yaml:"max_total_games"`

	AutoRehostCooldownTicks int  `yaml:"auto_rehost_cooldown_ticks"`
	AutoRehostEnabled       bool `yaml:"auto_rehost_enabled"`

	GamePortMin int `yaml:"game_port_min"`
	GamePortMax int `yaml:"game_port_max"`

	ExecAuthChallengeTTLSeconds int `yaml:"exec_auth_challenge_ttl_seconds"`
}

// DefaultHost returns the host controller defaults.
func DefaultHost() Host {
	return Host{
		MaxLobbies:                  4,
		MaxStartedGames:             8,
		MaxJoinInProgressGames:      4,
		MaxTotalGames:               8,
		AutoRehostCooldownTicks:     30,
		AutoRehostEnabled:           true,
		GamePortMin:                 6112,
		GamePortMax:                 6119,
		ExecAuthChallengeTTLSeconds: 60,
	}
}

// LoadHost loads Host config from path, falling back to DefaultHost for any
// field the file doesn't set and to DefaultHost entirely if path is absent.
func LoadHost(path string) (Host, error) {
	cfg := DefaultHost()
	if err := loadYAML(path, &cfg); err != nil {
		return Host{}, err
	}
	return cfg, nil
}

// HostConfigPath resolves the host config path: AURA_HOST_CONFIG if set,
// otherwise the package default.
func HostConfigPath() string {
	if p := os.Getenv("AURA_HOST_CONFIG"); p != "" {
		return p
	}
	return hostConfigPath
}
