package engine

import "errors"

// Sentinel errors returned by mutation operations. Every rejected operation
// leaves the sheet exactly as it was before the call.
var (
	// ErrNotFound indicates a stale or unknown node identifier.
	ErrNotFound = errors.New("engine: node not found")

	// ErrInvalidTopology indicates the operation is illegal for the node's
	// current connectivity (snip on a node whose degree is not 2, insert on
	// a non-adjacent pair, splitting a root).
	ErrInvalidTopology = errors.New("engine: invalid topology")

	// ErrInvariantViolation indicates the operation would break a sheet
	// invariant, such as removing a component's last anchored node.
	ErrInvariantViolation = errors.New("engine: invariant violation")

	// ErrEmptyRegister indicates a paste was attempted with nothing yanked.
	ErrEmptyRegister = errors.New("engine: register is empty")
)
