package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sipeed/cmdsync/pkg/utils"
)

type Config struct {
	Discord DiscordConfig `json:"discord" label:"Discord"`
	Sync    SyncConfig    `json:"sync" label:"Synchronization"`
	Log     LogConfig     `json:"log" label:"Logging"`
}

type DiscordConfig struct {
	Token         string `json:"token" label:"Bot Token" env:"CMDSYNC_DISCORD_TOKEN"`
	ApplicationID string `json:"application_id" label:"Application ID" env:"CMDSYNC_DISCORD_APPLICATION_ID"`
	Proxy         string `json:"proxy" label:"Proxy" env:"CMDSYNC_DISCORD_PROXY"`
	ReadyTimeout  int    `json:"ready_timeout" label:"Ready Timeout" env:"CMDSYNC_DISCORD_READY_TIMEOUT"` // seconds, 0 = wait indefinitely
}

type SyncConfig struct {
	GuildID      string `json:"guild_id" label:"Guild ID" env:"CMDSYNC_SYNC_GUILD_ID"` // empty = global commands
	CommandsFile string `json:"commands_file" label:"Commands File" env:"CMDSYNC_SYNC_COMMANDS_FILE"`
	Verbose      bool   `json:"verbose" label:"Verbose" env:"CMDSYNC_SYNC_VERBOSE"`
}

type LogConfig struct {
	Level  string `json:"level" label:"Level" env:"CMDSYNC_LOG_LEVEL"`
	File   string `json:"file" label:"File" env:"CMDSYNC_LOG_FILE"`
	Redact bool   `json:"redact" label:"Redact Secrets" env:"CMDSYNC_LOG_REDACT"`
}

var ErrMissingToken = errors.New("discord token is not configured")

func DefaultConfig() *Config {
	return &Config{
		Discord: DiscordConfig{
			ReadyTimeout: 30,
		},
		Sync: SyncConfig{
			CommandsFile: ResolveRuntimePaths().CommandsPath,
		},
		Log: LogConfig{
			Level:  "info",
			Redact: true,
		},
	}
}

// LoadConfig reads path over the defaults and then applies CMDSYNC_*
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadDefaultConfig loads the config file located by ResolveRuntimePaths.
func LoadDefaultConfig() (*Config, error) {
	return LoadConfig(ResolveRuntimePaths().ConfigPath)
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// The file holds the bot token.
	return utils.WriteFileAtomic(path, data, 0o600, 0o755)
}

func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return ErrMissingToken
	}
	if c.Discord.ReadyTimeout < 0 {
		return fmt.Errorf("discord.ready_timeout must not be negative, got %d", c.Discord.ReadyTimeout)
	}
	return nil
}

func (c *Config) CommandsPath() string {
	return expandHome(c.Sync.CommandsFile)
}

// ReadyTimeoutDuration returns 0 when the wait is unbounded.
func (d DiscordConfig) ReadyTimeoutDuration() time.Duration {
	if d.ReadyTimeout <= 0 {
		return 0
	}
	return time.Duration(d.ReadyTimeout) * time.Second
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
