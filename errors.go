package becs

import (
	"github.com/rotisserie/eris"
)

// Errors returned by the core. These are programming-contract violations,
// not transient failures: they surface synchronously at the point of the
// invalid operation and there is no retry concept. Callers classify them
// with eris.Is.
var (
	// ErrInvalidEntity is returned when a per-entity operation is given a
	// handle that is stale (destroyed, possibly recycled) or was never
	// allocated by this manager. Proceeding would corrupt component data
	// for a reused index, so it is always surfaced, never swallowed.
	ErrInvalidEntity = eris.New("entity handle is stale or was never allocated")

	// ErrNilComponent is returned when attaching a nil component record.
	ErrNilComponent = eris.New("component must not be nil")

	// ErrComponentLimit is returned when registering a component type would
	// exceed the Bitmask capacity. It fails fast at first use of the type,
	// never later.
	ErrComponentLimit = eris.New("component type limit exceeded")

	// ErrDuplicateSubscription is returned when the same wrapper instance
	// is registered with the event bus a second time. Explicit Subscribe
	// calls are never deduplicated; only wrapper auto-registration rejects
	// duplicates.
	ErrDuplicateSubscription = eris.New("wrapper instance is already registered")

	// ErrBadWrapper is returned when adopting with a wrapper of a
	// non-comparable type. Wrappers are tracked by instance identity, so
	// the type must support equality; pointer wrappers always qualify.
	ErrBadWrapper = eris.New("wrapper type is not comparable")

	// ErrUnknownBinding is returned when resolving a binding name the
	// archetype does not declare.
	ErrUnknownBinding = eris.New("archetype does not declare binding")

	// ErrBindingType is returned when a typed resolution does not match the
	// component type the binding declares.
	ErrBindingType = eris.New("binding resolved to a different component type")

	// ErrActorReleased is returned when operating on an actor whose backing
	// entity has been destroyed.
	ErrActorReleased = eris.New("actor has been released")

	// ErrEmptyView is returned when building a view with no With terms.
	ErrEmptyView = eris.New("view requires at least one With term")
)
