// Package becs provides a Bindable Entity Component System core for
// simulation hosts and script-embedding layers.
//
// BECS is the in-process state model a host builds its simulation on:
//   - Versioned entity handles with safe index reuse
//   - Component storage with typed, per-entity access
//   - Declarative archetypes with get-or-create component bindings
//   - A typed event bus with snapshot dispatch and auto-registered
//     wrapper handlers
//   - Views for iterating entities by component signature
//
// # Quick Start
//
// Initialize BECS in your simulation setup:
//
//	mngr := becs.NewBuilder().
//	    Logger(logger).
//	    System(&MovementSystem{}, becs.Default).
//	    Init()
//
//	id := mngr.Create()
//	becs.Attach(mngr, id, &Position{})
//
// # Components
//
// Components are plain Go structs attached to entities:
//
//	type Health struct {
//	    Current int
//	    Max     int
//	}
//
//	becs.Attach(mngr, id, &Health{100, 100})
//	health, err := becs.Get[Health](mngr, id)
//	becs.Detach[Health](mngr, id)
//
// # Archetypes
//
// Archetypes declare named component bindings once per entity subtype.
// Spawning an actor from an archetype get-or-creates every bound
// component and auto-subscribes the wrapper's On<Event> methods:
//
//	player := becs.NewArchetype("Player").
//	    Binding("position", becs.Bind(Position{})).
//	    Binding("sprite", becs.Bind(Sprite{Path: "player.png"})).
//	    Build()
//
//	actor, err := player.Spawn(mngr, &PlayerWrapper{})
//
// # Concurrency
//
// BECS is single-threaded by contract. All Manager, Actor and EventBus
// operations must run on the simulation tick goroutine; none block or
// suspend. Hosts that tick from multiple goroutines must serialize
// access externally.
package becs

// Version is the BECS version.
const Version = "1.0.0"
