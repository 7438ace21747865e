package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sipeed/cmdsync/pkg/commandsync"
	"github.com/sipeed/cmdsync/pkg/config"
	"github.com/sipeed/cmdsync/pkg/logger"
)

// Client owns a Discord gateway session and exposes it as the registry and
// session collaborators of a command sync.
type Client struct {
	session      *discordgo.Session
	gate         *commandsync.ReadyGate
	registry     *Registry
	readyTimeout time.Duration

	mu    sync.RWMutex
	appID string
}

func New(cfg config.DiscordConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, config.ErrMissingToken
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if err := applyDiscordProxy(session, cfg.Proxy); err != nil {
		return nil, err
	}
	// The guild cache is filled from GUILD_CREATE events.
	session.Identify.Intents = discordgo.IntentsGuilds

	c := &Client{
		session:      session,
		gate:         commandsync.NewReadyGate(),
		readyTimeout: cfg.ReadyTimeoutDuration(),
		appID:        cfg.ApplicationID,
	}
	c.registry = NewRegistry(session, session.State, c.ApplicationID)
	session.AddHandler(c.handleReady)

	return c, nil
}

func (c *Client) Open(ctx context.Context) error {
	logger.InfoC("discord", "Opening Discord session")

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	logger.InfoC("discord", "Closing Discord session")

	if err := c.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

// ApplicationID returns the configured application ID, or the one learned
// from the READY event.
func (c *Client) ApplicationID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.appID
}

func (c *Client) Registry() *Registry {
	return c.registry
}

func (c *Client) Session() commandsync.Session {
	return c.gate
}

func (c *Client) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r == nil {
		return
	}

	c.mu.Lock()
	if c.appID == "" {
		switch {
		case r.Application != nil && r.Application.ID != "":
			c.appID = r.Application.ID
		case r.User != nil:
			c.appID = r.User.ID
		}
	}
	appID := c.appID
	c.mu.Unlock()

	fields := map[string]any{
		"application_id": appID,
		"guilds":         len(r.Guilds),
	}
	if r.User != nil {
		fields["username"] = r.User.Username
	}
	logger.InfoCF("discord", "Discord session ready", fields)

	c.gate.Signal()
}

// WaitReady blocks until the READY event arrives, bounded by the
// configured ready timeout when one is set.
func (c *Client) WaitReady(ctx context.Context) error {
	if c.readyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.readyTimeout)
		defer cancel()
	}
	return commandsync.WaitReady(ctx, c.gate)
}

// Sync reconciles the application's commands with desired. An empty
// guildID targets the global commands.
func (c *Client) Sync(
	ctx context.Context,
	desired []*discordgo.ApplicationCommand,
	guildID string,
	opts commandsync.Options,
) (*commandsync.Result, error) {
	if err := commandsync.ValidateCommands(desired); err != nil {
		return nil, err
	}
	if err := c.WaitReady(ctx); err != nil {
		return nil, err
	}

	res, err := commandsync.New(c.registry, c.gate).Synchronize(ctx, desired, commandsync.GuildScope(guildID), opts)
	if err != nil {
		return nil, err
	}

	logger.InfoCF("discord", "Application commands synchronized", map[string]any{
		"guild_id": guildID,
		"current":  res.CurrentCommandCount,
		"created":  res.NewCommandCount,
		"deleted":  res.DeletedCommandCount,
		"updated":  res.UpdatedCommandCount,
	})
	return res, nil
}
