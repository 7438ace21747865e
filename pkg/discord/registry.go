package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/sipeed/cmdsync/pkg/commandsync"
	"github.com/sipeed/cmdsync/pkg/logger"
)

// CommandSession is the part of *discordgo.Session the registry uses.
type CommandSession interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandEdit(appID, guildID, cmdID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
}

var errNoApplicationID = errors.New("application id is not known yet")

// Registry implements commandsync.Registry over the Discord REST API.
type Registry struct {
	api   CommandSession
	state *discordgo.State
	appID func() string
}

// NewRegistry returns a registry for the application whose ID appID
// reports. state may be nil, in which case guilds are always looked up
// over REST.
func NewRegistry(api CommandSession, state *discordgo.State, appID func() string) *Registry {
	return &Registry{api: api, state: state, appID: appID}
}

func (r *Registry) application() (string, error) {
	id := r.appID()
	if id == "" {
		return "", commandsync.Unavailable(errNoApplicationID)
	}
	return id, nil
}

func (r *Registry) ResolveScope(ctx context.Context, guildID string) (commandsync.Scope, error) {
	if guildID == "" {
		return commandsync.Scope{}, fmt.Errorf("empty guild id: %w", commandsync.ErrScopeNotFound)
	}

	if g, err := r.state.Guild(guildID); err == nil && g != nil {
		return commandsync.GuildScope(g.ID), nil
	}

	g, err := r.api.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		if guildNotFound(err) {
			return commandsync.Scope{}, fmt.Errorf("guild %s: %w", guildID, commandsync.ErrScopeNotFound)
		}
		return commandsync.Scope{}, classify(err)
	}
	if g == nil || g.ID == "" {
		return commandsync.Scope{}, fmt.Errorf("guild %s: %w", guildID, commandsync.ErrScopeNotFound)
	}
	return commandsync.GuildScope(g.ID), nil
}

func (r *Registry) Fetch(ctx context.Context, scope commandsync.Scope) ([]*discordgo.ApplicationCommand, error) {
	appID, err := r.application()
	if err != nil {
		return nil, err
	}
	cmds, err := r.api.ApplicationCommands(appID, scope.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}
	logger.DebugCF("discord", "Fetched application commands", map[string]any{
		"scope": scope.String(),
		"count": len(cmds),
	})
	return cmds, nil
}

func (r *Registry) Create(ctx context.Context, scope commandsync.Scope, cmd *discordgo.ApplicationCommand) (*discordgo.ApplicationCommand, error) {
	appID, err := r.application()
	if err != nil {
		return nil, err
	}
	created, err := r.api.ApplicationCommandCreate(appID, scope.GuildID, payload(cmd), discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}
	return created, nil
}

func (r *Registry) Delete(ctx context.Context, scope commandsync.Scope, id string) error {
	appID, err := r.application()
	if err != nil {
		return err
	}
	if err := r.api.ApplicationCommandDelete(appID, scope.GuildID, id, discordgo.WithContext(ctx)); err != nil {
		return classify(err)
	}
	return nil
}

func (r *Registry) Edit(ctx context.Context, scope commandsync.Scope, id string, cmd *discordgo.ApplicationCommand) (*discordgo.ApplicationCommand, error) {
	appID, err := r.application()
	if err != nil {
		return nil, err
	}
	updated, err := r.api.ApplicationCommandEdit(appID, scope.GuildID, id, payload(cmd), discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}
	return updated, nil
}

// payload strips registry-owned fields from a desired command so a stale
// ID or version copied from elsewhere never reaches the API body.
func payload(cmd *discordgo.ApplicationCommand) *discordgo.ApplicationCommand {
	cp := *cmd
	cp.ID = ""
	cp.ApplicationID = ""
	cp.GuildID = ""
	cp.Version = ""
	return &cp
}

// classify maps a discordgo failure onto the commandsync taxonomy. Auth,
// rate limit and server errors mean the registry cannot be used right now;
// any other 4xx is a refusal of this particular request.
func classify(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		code := rest.Response.StatusCode
		switch {
		case code == http.StatusUnauthorized,
			code == http.StatusForbidden,
			code == http.StatusTooManyRequests,
			code >= http.StatusInternalServerError:
			return commandsync.Unavailable(err)
		case code >= http.StatusBadRequest:
			return commandsync.Rejected(err)
		}
	}
	return commandsync.Unavailable(err)
}

// guildNotFound reports whether a guild lookup failed because the guild
// does not exist or the bot is not a member of it.
func guildNotFound(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return false
	}
	if rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeUnknownGuild, discordgo.ErrCodeMissingAccess:
			return true
		}
	}
	if rest.Response == nil {
		return false
	}
	switch rest.Response.StatusCode {
	case http.StatusNotFound, http.StatusBadRequest:
		return true
	}
	return false
}
