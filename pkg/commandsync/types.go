package commandsync

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Scope selects which command registry a sync targets. The zero value is
// the application's global registry; a non-empty GuildID names a single
// guild's registry.
type Scope struct {
	GuildID string
}

func GlobalScope() Scope {
	return Scope{}
}

func GuildScope(guildID string) Scope {
	return Scope{GuildID: guildID}
}

func (s Scope) IsGlobal() bool {
	return s.GuildID == ""
}

func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return "guild:" + s.GuildID
}

type Options struct {
	// Verbose emits a log line at every phase boundary.
	Verbose bool
}

// Result reports what one Synchronize call did. UpdatedCommandCount counts
// edit calls actually issued, not commands that were compared.
type Result struct {
	CurrentCommandCount int `json:"currentCommandCount"`
	NewCommandCount     int `json:"newCommandCount"`
	DeletedCommandCount int `json:"deletedCommandCount"`
	UpdatedCommandCount int `json:"updatedCommandCount"`
}

// Registry is the remote command store for one application.
type Registry interface {
	// ResolveScope returns an error wrapping ErrScopeNotFound when the guild
	// is unknown to the application.
	ResolveScope(ctx context.Context, guildID string) (Scope, error)
	Fetch(ctx context.Context, scope Scope) ([]*discordgo.ApplicationCommand, error)
	Create(ctx context.Context, scope Scope, cmd *discordgo.ApplicationCommand) (*discordgo.ApplicationCommand, error)
	Delete(ctx context.Context, scope Scope, id string) error
	Edit(ctx context.Context, scope Scope, id string, cmd *discordgo.ApplicationCommand) (*discordgo.ApplicationCommand, error)
}

// Session reports whether the remote connection is established. ReadyC is
// closed exactly once, when the session becomes ready.
type Session interface {
	Ready() bool
	ReadyC() <-chan struct{}
}
