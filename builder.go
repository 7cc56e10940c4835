package becs

import (
	"github.com/rs/zerolog"
)

// Builder configures BECS before initialization.
// Use NewBuilder() to create a builder and chain configuration methods.
type Builder struct {
	bus        *EventBus
	logger     zerolog.Logger
	capacity   int
	archetypes []*Archetype
	systems    []systemRegistration
}

// systemRegistration holds a system registration.
type systemRegistration struct {
	system System
	stage  Stage
}

// NewBuilder creates a new BECS builder.
func NewBuilder() *Builder {
	return &Builder{
		logger: zerolog.Nop(),
	}
}

// Bus sets the event bus the manager announces lifecycle events on.
// If not set, Init creates a fresh bus.
func (b *Builder) Bus(bus *EventBus) *Builder {
	b.bus = bus
	return b
}

// Logger sets the manager's logger. The default is a no-op logger.
func (b *Builder) Logger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// Capacity preallocates entity bookkeeping for the given number of indices.
func (b *Builder) Capacity(n int) *Builder {
	b.capacity = n
	return b
}

// Archetype registers an archetype for name-based lookup via
// Manager.ArchetypeByName. Archetypes work without registration; this is
// for hosts that resolve entity subtypes dynamically.
func (b *Builder) Archetype(a *Archetype) *Builder {
	b.archetypes = append(b.archetypes, a)
	return b
}

// System registers a system in the given stage.
func (b *Builder) System(system System, stage Stage) *Builder {
	b.systems = append(b.systems, systemRegistration{system: system, stage: stage})
	return b
}

// Init initializes BECS with the configured settings and returns the
// Manager instance. Multiple managers can coexist for running multiple
// isolated simulations in one process.
func (b *Builder) Init() *Manager {
	bus := b.bus
	if bus == nil {
		bus = NewEventBus()
	}
	m := newManager(bus, b.logger, b.capacity)

	for _, a := range b.archetypes {
		m.archetypes[a.Name()] = a
	}
	for _, reg := range b.systems {
		m.systems.Add(reg.system, reg.stage)
	}

	m.log.Debug().
		Int("archetypes", len(b.archetypes)).
		Int("systems", len(b.systems)).
		Msg("becs initialized")
	return m
}
