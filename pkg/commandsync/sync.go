// Package commandsync reconciles a declared list of application commands
// with what a command registry currently holds. A sync fetches the
// registry once, then creates missing commands, deletes unknown ones and
// edits the ones whose description or options changed. Calls are issued
// one at a time and the first failure stops the run.
package commandsync

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/sipeed/cmdsync/pkg/logger"
	"github.com/sipeed/cmdsync/pkg/utils"
)

const logComponent = "commandsync"

type Synchronizer struct {
	registry Registry
	session  Session
}

// New returns a Synchronizer. A nil session is treated as already ready.
func New(registry Registry, session Session) *Synchronizer {
	return &Synchronizer{registry: registry, session: session}
}

// Synchronize makes the registry for scope match desired.
//
// On failure it returns no Result. Errors from registry calls come back as
// *PhaseError, whose Applied field lists what was committed before the
// failure.
func (s *Synchronizer) Synchronize(
	ctx context.Context,
	desired []*discordgo.ApplicationCommand,
	scope Scope,
	opts Options,
) (*Result, error) {
	if err := ValidateCommands(desired); err != nil {
		return nil, err
	}

	if err := WaitReady(ctx, s.session); err != nil {
		return nil, err
	}

	if !scope.IsGlobal() {
		resolved, err := s.registry.ResolveScope(ctx, scope.GuildID)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", scope, err)
		}
		scope = resolved
	}

	r := &run{
		id:      uuid.NewString(),
		scope:   scope,
		verbose: opts.Verbose,
	}
	return r.execute(ctx, s.registry, desired)
}

// run holds the accumulators of one Synchronize call.
type run struct {
	id      string
	scope   Scope
	verbose bool
	result  Result
}

func (r *run) execute(ctx context.Context, reg Registry, desired []*discordgo.ApplicationCommand) (*Result, error) {
	r.log("Synchronizing commands...", nil)

	current, err := reg.Fetch(ctx, r.scope)
	if err != nil {
		return nil, r.fail(PhaseFetch, "", err)
	}
	r.result.CurrentCommandCount = len(current)
	r.log(fmt.Sprintf("Currently %d commands.", len(current)), map[string]any{"current": len(current)})

	diff := ComputeDiff(desired, current)

	for _, cmd := range diff.Added {
		r.trace("Creating command", cmd)
		if _, err := reg.Create(ctx, r.scope, cmd); err != nil {
			return nil, r.fail(PhaseCreate, cmd.Name, err)
		}
		r.result.NewCommandCount++
	}
	r.log(fmt.Sprintf("Created %d commands!", r.result.NewCommandCount), map[string]any{"created": r.result.NewCommandCount})

	for _, cmd := range diff.Removed {
		r.trace("Deleting command", cmd)
		if err := reg.Delete(ctx, r.scope, cmd.ID); err != nil {
			return nil, r.fail(PhaseDelete, cmd.Name, err)
		}
		r.result.DeletedCommandCount++
	}
	r.log(fmt.Sprintf("Deleted %d commands!", r.result.DeletedCommandCount), map[string]any{"deleted": r.result.DeletedCommandCount})

	for _, c := range diff.Candidates {
		if !c.Modified() {
			continue
		}
		r.trace("Updating command", c.Current)
		if _, err := reg.Edit(ctx, r.scope, c.Current.ID, c.Desired); err != nil {
			return nil, r.fail(PhaseUpdate, c.Desired.Name, err)
		}
		r.result.UpdatedCommandCount++
	}
	r.log(fmt.Sprintf("Updated %d commands!", r.result.UpdatedCommandCount), map[string]any{"updated": r.result.UpdatedCommandCount})

	r.log("Commands synchronized!", nil)

	result := r.result
	return &result, nil
}

func (r *run) fail(phase Phase, command string, err error) error {
	logger.ErrorCF(logComponent, "Synchronization aborted", r.fields(map[string]any{
		"phase":   string(phase),
		"command": command,
		"created": r.result.NewCommandCount,
		"deleted": r.result.DeletedCommandCount,
		"updated": r.result.UpdatedCommandCount,
		"error":   err.Error(),
	}))
	return &PhaseError{
		Phase:   phase,
		Scope:   r.scope,
		Command: command,
		Applied: r.result,
		Err:     err,
	}
}

func (r *run) log(message string, extra map[string]any) {
	if !r.verbose {
		return
	}
	logger.InfoCF(logComponent, message, r.fields(extra))
}

func (r *run) trace(message string, cmd *discordgo.ApplicationCommand) {
	logger.DebugCF(logComponent, message, r.fields(map[string]any{
		"command":     cmd.Name,
		"id":          cmd.ID,
		"description": utils.Truncate(cmd.Description, 50),
	}))
}

func (r *run) fields(extra map[string]any) map[string]any {
	f := map[string]any{
		"run_id": r.id,
		"scope":  r.scope.String(),
	}
	for k, v := range extra {
		f[k] = v
	}
	return f
}
