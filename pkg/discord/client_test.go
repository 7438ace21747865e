package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipeed/cmdsync/pkg/commandsync"
	"github.com/sipeed/cmdsync/pkg/config"
)

func newTestClient(t *testing.T, cfg config.DiscordConfig) *Client {
	t.Helper()
	clearProxyEnv(t)
	if cfg.Token == "" {
		cfg.Token = "test-token"
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New(config.DiscordConfig{})
	assert.True(t, errors.Is(err, config.ErrMissingToken))
}

func TestNew_RejectsBadProxy(t *testing.T) {
	clearProxyEnv(t)
	_, err := New(config.DiscordConfig{Token: "t", Proxy: "://bad"})
	assert.Error(t, err)
}

func TestNew_RequestsGuildIntent(t *testing.T) {
	c := newTestClient(t, config.DiscordConfig{})
	assert.Equal(t, discordgo.IntentsGuilds, c.session.Identify.Intents&discordgo.IntentsGuilds)
}

func TestHandleReady_LearnsApplicationID(t *testing.T) {
	c := newTestClient(t, config.DiscordConfig{})
	assert.False(t, c.Session().Ready())
	assert.Empty(t, c.ApplicationID())

	c.handleReady(c.session, &discordgo.Ready{
		User:        &discordgo.User{ID: "bot-user", Username: "syncbot"},
		Application: &discordgo.Application{ID: "app-1"},
	})

	assert.True(t, c.Session().Ready())
	assert.Equal(t, "app-1", c.ApplicationID())
}

func TestHandleReady_FallsBackToBotUser(t *testing.T) {
	c := newTestClient(t, config.DiscordConfig{})

	c.handleReady(c.session, &discordgo.Ready{User: &discordgo.User{ID: "bot-user"}})

	assert.Equal(t, "bot-user", c.ApplicationID())
}

func TestHandleReady_ConfiguredIDWins(t *testing.T) {
	c := newTestClient(t, config.DiscordConfig{ApplicationID: "configured"})

	c.handleReady(c.session, &discordgo.Ready{Application: &discordgo.Application{ID: "from-ready"}})
	// A reconnect delivers READY again; the gate stays signalled.
	c.handleReady(c.session, &discordgo.Ready{Application: &discordgo.Application{ID: "from-ready"}})

	assert.Equal(t, "configured", c.ApplicationID())
	assert.True(t, c.Session().Ready())
}

func TestWaitReady_Timeout(t *testing.T) {
	c := newTestClient(t, config.DiscordConfig{})
	c.readyTimeout = 20 * time.Millisecond

	err := c.WaitReady(context.Background())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSync_InvalidCommandsFailBeforeWaiting(t *testing.T) {
	c := newTestClient(t, config.DiscordConfig{})
	c.readyTimeout = time.Hour

	_, err := c.Sync(context.Background(),
		[]*discordgo.ApplicationCommand{{Name: "dup"}, {Name: "dup"}},
		"", commandsync.Options{})
	assert.True(t, errors.Is(err, commandsync.ErrInvalidCommand))
}

func TestSync_UsesRegistry(t *testing.T) {
	c := newTestClient(t, config.DiscordConfig{ApplicationID: "app"})
	api := newFakeAPI()
	c.registry = NewRegistry(api, nil, c.ApplicationID)
	c.gate.Signal()

	res, err := c.Sync(context.Background(),
		[]*discordgo.ApplicationCommand{{Name: "ping", Description: "pong"}},
		"42", commandsync.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewCommandCount)

	require.Len(t, api.commands["42"], 1)
	assert.Equal(t, "ping", api.commands["42"][0].Name)
}
