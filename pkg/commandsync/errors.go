package commandsync

import (
	"errors"
	"fmt"
)

var (
	// ErrScopeNotFound means the named guild cannot be resolved. Nothing was
	// fetched or written.
	ErrScopeNotFound = errors.New("scope not found")

	// ErrRegistryUnavailable marks transport and authentication failures.
	ErrRegistryUnavailable = errors.New("command registry unavailable")

	// ErrRegistryRejected marks a create, delete or edit the registry refused.
	ErrRegistryRejected = errors.New("command registry rejected request")

	// ErrInvalidCommand marks a desired list that cannot be matched by name.
	ErrInvalidCommand = errors.New("invalid command definition")
)

// Unavailable tags err as ErrRegistryUnavailable, keeping err in the chain.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrRegistryUnavailable, err)
}

// Rejected tags err as ErrRegistryRejected, keeping err in the chain.
func Rejected(err error) error {
	return fmt.Errorf("%w: %w", ErrRegistryRejected, err)
}

type Phase string

const (
	PhaseFetch  Phase = "fetch"
	PhaseCreate Phase = "create"
	PhaseDelete Phase = "delete"
	PhaseUpdate Phase = "update"
)

// PhaseError is returned when a registry call fails mid-sync. Applied holds
// the mutations that were already committed before the failure; they are
// not rolled back.
type PhaseError struct {
	Phase   Phase
	Scope   Scope
	Command string
	Applied Result
	Err     error
}

func (e *PhaseError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("commandsync: %s %s: %v", e.Phase, e.Scope, e.Err)
	}
	return fmt.Sprintf("commandsync: %s %q in %s: %v", e.Phase, e.Command, e.Scope, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
