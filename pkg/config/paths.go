package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	EnvCmdsyncConfig = "CMDSYNC_CONFIG"
	EnvCmdsyncHome   = "CMDSYNC_HOME"

	configFileName   = "config.json"
	commandsFileName = "commands.json"
)

// RuntimePaths locates the files read when the caller names none.
type RuntimePaths struct {
	HomeDir      string
	ConfigPath   string
	CommandsPath string
}

// ResolveRuntimePaths picks the home directory from CMDSYNC_CONFIG (its
// parent directory), then CMDSYNC_HOME, then ~/.cmdsync. The command
// manifest defaults to commands.json next to the config file.
func ResolveRuntimePaths() RuntimePaths {
	var p RuntimePaths

	if configPath := envPath(EnvCmdsyncConfig); configPath != "" {
		p.ConfigPath = configPath
		p.HomeDir = filepath.Dir(configPath)
	} else {
		p.HomeDir = envPath(EnvCmdsyncHome)
		if p.HomeDir == "" {
			p.HomeDir = defaultHomeDir()
		}
		p.ConfigPath = filepath.Join(p.HomeDir, configFileName)
	}
	p.CommandsPath = filepath.Join(p.HomeDir, commandsFileName)

	return p
}

func envPath(key string) string {
	return expandHome(strings.TrimSpace(os.Getenv(key)))
}

func defaultHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".cmdsync")
	}
	return ".cmdsync"
}
