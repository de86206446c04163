package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete tavern configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Games  *GameSettings  `hcl:"games,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address           string `hcl:"address,optional"`
	Port              int    `hcl:"port,optional"`
	LogLevel          string `hcl:"log_level,optional"`
	RosterPollSeconds int    `hcl:"roster_poll_seconds,optional"`
}

// GameSettings contains the per-game tunables
type GameSettings struct {
	DartsStartScore   int    `hcl:"darts_start_score,optional"`
	DeathrollStartMax int    `hcl:"deathroll_start_max,optional"`
	BlackjackDealer   string `hcl:"blackjack_dealer,optional"`
	Seed              *int64 `hcl:"seed,optional"`
}

// DefaultConfig returns the default tavern configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:           "localhost",
			Port:              8420,
			LogLevel:          "info",
			RosterPollSeconds: 15,
		},
		Games: &GameSettings{
			DartsStartScore:   501,
			DeathrollStartMax: 1000,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to defaults
// when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8420
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.RosterPollSeconds == 0 {
		config.Server.RosterPollSeconds = 15
	}

	if config.Games == nil {
		config.Games = &GameSettings{}
	}
	if config.Games.DartsStartScore == 0 {
		config.Games.DartsStartScore = 501
	}
	if config.Games.DeathrollStartMax == 0 {
		config.Games.DeathrollStartMax = 1000
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.Server.RosterPollSeconds < 1 {
		return fmt.Errorf("roster poll interval must be at least 1 second")
	}

	if c.Games.DartsStartScore < 2 {
		return fmt.Errorf("darts start score must be at least 2")
	}
	if c.Games.DeathrollStartMax < 2 {
		return fmt.Errorf("deathroll start max must be at least 2")
	}

	return nil
}

// ListenAddress returns the full listen address
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
