package discord

import (
	"context"
	"fmt"

	"github.com/sipeed/cmdsync/pkg/commandsync"
	"github.com/sipeed/cmdsync/pkg/config"
	"github.com/sipeed/cmdsync/pkg/logger"
	"github.com/sipeed/cmdsync/pkg/manifest"
)

// RunOnce performs one full sync from configuration: it loads the
// manifest, connects, synchronizes the configured scope and disconnects.
// The manifest is read before any connection is made.
func RunOnce(ctx context.Context, cfg *config.Config) (*commandsync.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Log.Apply(); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	desired, err := manifest.Load(cfg.CommandsPath())
	if err != nil {
		return nil, err
	}
	logger.DebugCF("discord", "Loaded command manifest", map[string]any{
		"path":     cfg.CommandsPath(),
		"commands": len(desired),
	})
	if len(desired) == 0 {
		logger.WarnCF("discord", "Manifest declares no commands, every registered command will be deleted", map[string]any{
			"path":     cfg.CommandsPath(),
			"guild_id": cfg.Sync.GuildID,
		})
	}

	client, err := New(cfg.Discord)
	if err != nil {
		return nil, err
	}
	if err := client.Open(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.WarnCF("discord", "Failed to close session", map[string]any{"error": err.Error()})
		}
	}()

	res, err := client.Sync(ctx, desired, cfg.Sync.GuildID, commandsync.Options{Verbose: cfg.Sync.Verbose})
	if err != nil {
		return nil, fmt.Errorf("sync failed: %w", err)
	}
	return res, nil
}

// RunDefault is RunOnce with the config file found through CMDSYNC_CONFIG,
// CMDSYNC_HOME or ~/.cmdsync.
func RunDefault(ctx context.Context) (*commandsync.Result, error) {
	cfg, err := config.LoadDefaultConfig()
	if err != nil {
		return nil, err
	}
	return RunOnce(ctx, cfg)
}
