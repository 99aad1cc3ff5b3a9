package config

import "os"

const discoveryConfigPath = "config/discovery.yaml"

// Discovery holds LAN/unicast advertisement settings for the discovery
// service.
type Discovery struct {
	LANEnabled bool   `yaml:"lan_enabled"`
	LANSubnet  string `yaml:"lan_subnet"`

	ExtraUnicastAddrs []string `yaml:"extra_unicast_addrs"`

	BroadcastIntervalMS int `yaml:"broadcast_interval_ms"`
	BindAddress         string `yaml:"bind_address"`
	BindPort            int    `yaml:"bind_port"`
}

// DefaultDiscovery returns LAN-only broadcast defaults.
func DefaultDiscovery() Discovery {
	return Discovery{
		LANEnabled:          true,
		LANSubnet:           "255.255.255.255",
		BroadcastIntervalMS: 5000,
		BindAddress:         "0.0.0.0",
		BindPort:            6112,
	}
}

// LoadDiscovery loads Discovery config from path, falling back to
// DefaultDiscovery for whatever the file leaves unset.
func LoadDiscovery(path string) (Discovery, error) {
	cfg := DefaultDiscovery()
	if err := loadYAML(path, &cfg); err != nil {
		return Discovery{}, err
	}
	return cfg, nil
}

// DiscoveryConfigPath resolves the discovery config path: AURA_DISCOVERY_CONFIG
// if set, otherwise the package default.
func DiscoveryConfigPath() string {
	if p := os.Getenv("AURA_DISCOVERY_CONFIG"); p != "" {
		return p
	}
	return discoveryConfigPath
}
