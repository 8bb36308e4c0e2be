package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ServerConfig is the environment configuration of the game server.
type ServerConfig struct {
	ServerID      string   `env:"SERVER_ID" envDefault:"default"`
	BackendURL    string   `env:"BACKEND_URL" envDefault:"http://localhost:8000"`
	ServerSecret  string   `env:"SERVER_SECRET,required"`
	TCPPort       int      `env:"TCP_PORT" envDefault:"8888"`
	WSPort        int      `env:"WS_PORT" envDefault:"8889"`
	WSCertFile    string   `env:"WS_CERT_FILE"`
	WSKeyFile     string   `env:"WS_KEY_FILE"`
	CreativeUsers []string `env:"CREATIVE_USERS" envSeparator:","`
}

// BackendConfig is the environment configuration of the persistence backend.
type BackendConfig struct {
	Port         int    `env:"PORT" envDefault:"8000"`
	ServerSecret string `env:"SERVER_SECRET,required"`
	DatabaseURL  string `env:"DATABASE_URL"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"piratesquest.db"`
}

// LoadServerConfig parses the game server config from the environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %v", err)
	}
	return cfg, nil
}

// LoadBackendConfig parses the backend config from the environment.
func LoadBackendConfig() (*BackendConfig, error) {
	cfg := &BackendConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse backend config: %v", err)
	}
	return cfg, nil
}
