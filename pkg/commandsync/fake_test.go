package commandsync

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

type call struct {
	Op   string
	Name string
	ID   string
}

// fakeRegistry is an in-memory registry that records every call.
type fakeRegistry struct {
	commands []*discordgo.ApplicationCommand
	guilds   map[string]bool
	nextID   int
	calls    []call

	failOn   string // "fetch", "create:<name>", "delete:<name>", "edit:<name>"
	failWith error
}

func newFakeRegistry(existing ...*discordgo.ApplicationCommand) *fakeRegistry {
	f := &fakeRegistry{guilds: map[string]bool{"guild-1": true}, nextID: 100}
	for _, c := range existing {
		cp := *c
		if cp.ID == "" {
			cp.ID = f.newID()
		}
		f.commands = append(f.commands, &cp)
	}
	return f
}

func (f *fakeRegistry) newID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *fakeRegistry) failure(key string) error {
	if f.failOn != key {
		return nil
	}
	if f.failWith != nil {
		return f.failWith
	}
	return Rejected(fmt.Errorf("fake failure on %s", key))
}

func (f *fakeRegistry) ResolveScope(_ context.Context, guildID string) (Scope, error) {
	f.calls = append(f.calls, call{Op: "resolve", ID: guildID})
	if !f.guilds[guildID] {
		return Scope{}, fmt.Errorf("guild %s: %w", guildID, ErrScopeNotFound)
	}
	return GuildScope(guildID), nil
}

func (f *fakeRegistry) Fetch(_ context.Context, _ Scope) ([]*discordgo.ApplicationCommand, error) {
	f.calls = append(f.calls, call{Op: "fetch"})
	if err := f.failure("fetch"); err != nil {
		return nil, err
	}
	out := make([]*discordgo.ApplicationCommand, len(f.commands))
	for i, c := range f.commands {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

func (f *fakeRegistry) Create(_ context.Context, _ Scope, cmd *discordgo.ApplicationCommand) (*discordgo.ApplicationCommand, error) {
	f.calls = append(f.calls, call{Op: "create", Name: cmd.Name})
	if err := f.failure("create:" + cmd.Name); err != nil {
		return nil, err
	}
	cp := *cmd
	cp.ID = f.newID()
	f.commands = append(f.commands, &cp)
	return &cp, nil
}

func (f *fakeRegistry) Delete(_ context.Context, _ Scope, id string) error {
	name := f.nameOf(id)
	f.calls = append(f.calls, call{Op: "delete", Name: name, ID: id})
	if err := f.failure("delete:" + name); err != nil {
		return err
	}
	for i, c := range f.commands {
		if c.ID == id {
			f.commands = append(f.commands[:i], f.commands[i+1:]...)
			return nil
		}
	}
	return Rejected(fmt.Errorf("unknown command %s", id))
}

func (f *fakeRegistry) Edit(_ context.Context, _ Scope, id string, cmd *discordgo.ApplicationCommand) (*discordgo.ApplicationCommand, error) {
	f.calls = append(f.calls, call{Op: "edit", Name: cmd.Name, ID: id})
	if err := f.failure("edit:" + cmd.Name); err != nil {
		return nil, err
	}
	for i, c := range f.commands {
		if c.ID == id {
			cp := *cmd
			cp.ID = id
			f.commands[i] = &cp
			return &cp, nil
		}
	}
	return nil, Rejected(fmt.Errorf("unknown command %s", id))
}

func (f *fakeRegistry) nameOf(id string) string {
	for _, c := range f.commands {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (f *fakeRegistry) ops(op string) []call {
	var out []call
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRegistry) mutations() []call {
	var out []call
	for _, c := range f.calls {
		switch c.Op {
		case "create", "delete", "edit":
			out = append(out, c)
		}
	}
	return out
}

func cmd(name, description string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: name, Description: description, Options: opts}
}

func stringOpt(name string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: name + " value",
		Required:    required,
	}
}
