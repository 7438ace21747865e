package commandsync

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Candidate pairs a desired command with the registered command of the
// same name.
type Candidate struct {
	Desired *discordgo.ApplicationCommand
	Current *discordgo.ApplicationCommand
}

// Modified reports whether applying Desired would change the registry.
func (c Candidate) Modified() bool {
	return !CommandEqual(c.Desired, c.Current)
}

// Diff partitions desired and registered commands by name.
// Added and Candidates follow desired order; Removed follows registry order.
type Diff struct {
	Added      []*discordgo.ApplicationCommand
	Removed    []*discordgo.ApplicationCommand
	Candidates []Candidate
}

// Modified returns the candidates that need an edit.
func (d Diff) Modified() []Candidate {
	var out []Candidate
	for _, c := range d.Candidates {
		if c.Modified() {
			out = append(out, c)
		}
	}
	return out
}

// ComputeDiff matches desired against current by Name. Registry IDs are
// never used for matching. If current holds the same name twice, the first
// entry is the one paired and the later ones are removed. desired is
// expected to pass ValidateCommands.
func ComputeDiff(desired, current []*discordgo.ApplicationCommand) Diff {
	want := make(map[string]struct{}, len(desired))
	for _, c := range desired {
		if c != nil {
			want[c.Name] = struct{}{}
		}
	}

	var d Diff
	have := make(map[string]*discordgo.ApplicationCommand, len(current))
	for _, r := range current {
		if r == nil {
			continue
		}
		_, wanted := want[r.Name]
		_, dup := have[r.Name]
		switch {
		case !wanted || dup:
			d.Removed = append(d.Removed, r)
		default:
			have[r.Name] = r
		}
	}

	for _, c := range desired {
		if c == nil {
			continue
		}
		if r, ok := have[c.Name]; ok {
			d.Candidates = append(d.Candidates, Candidate{Desired: c, Current: r})
		} else {
			d.Added = append(d.Added, c)
		}
	}
	return d
}

// ValidateCommands rejects lists that cannot be matched by name: nil
// entries, empty names and duplicate names.
func ValidateCommands(cmds []*discordgo.ApplicationCommand) error {
	seen := make(map[string]int, len(cmds))
	for i, c := range cmds {
		if c == nil {
			return fmt.Errorf("%w: command #%d is nil", ErrInvalidCommand, i)
		}
		if c.Name == "" {
			return fmt.Errorf("%w: command #%d has no name", ErrInvalidCommand, i)
		}
		if first, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate name %q at #%d and #%d", ErrInvalidCommand, c.Name, first, i)
		}
		seen[c.Name] = i
	}
	return nil
}
