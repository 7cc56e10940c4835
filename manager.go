package becs

import (
	"container/heap"
	"reflect"
	"unsafe"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Manager is the central BECS coordinator. It owns entity lifecycle (the
// version table, the free-index pool and the liveness set), every component
// store, and the registry of adopted actors. All component access goes
// through the manager so that destroying an entity can synchronously clear
// every component type's record for its index.
//
// Multiple Manager instances can coexist in the same process for running
// multiple isolated simulations.
//
// Concurrency:
// A Manager is single-threaded by contract. Every operation must run on the
// simulation tick goroutine; none of them block. This mirrors the tick-based
// host loop the core is designed for and is not retrofitted with locking.
type Manager struct {
	// bus receives lifecycle events and carries all subscriptions made by
	// adopted actors.
	bus *EventBus

	// registry holds component type registrations for this manager
	registry *componentRegistry

	// stores holds one sparse table per registered component type,
	// indexed by ComponentID.
	stores []*componentStore

	// versions maps entity index to its current version.
	versions []uint32

	// alive marks which indices currently denote a live entity.
	alive []bool

	// masks tracks component presence per entity index.
	masks []Bitmask

	// free holds recycled indices; a min-heap so the lowest available
	// index is always allocated first.
	free indexHeap

	// adopted groups live actors by the entity index they wrap, so
	// destroying an entity can release every wrapper synchronously.
	adopted map[uint32][]*Actor

	// wrappers tracks registered wrapper instances for duplicate rejection.
	wrappers map[any]*Actor

	// archetypes holds archetypes registered through the builder, by name.
	archetypes map[string]*Archetype

	// systems holds the system registry driven by Update.
	systems *Systems

	// live is the number of currently live entities.
	live int

	log zerolog.Logger
}

// newManager creates a manager with the given bus, logger and initial
// index capacity. Construction goes through the Builder.
func newManager(bus *EventBus, logger zerolog.Logger, capacity int) *Manager {
	m := &Manager{
		bus:        bus,
		registry:   newComponentRegistry(),
		versions:   make([]uint32, 0, capacity),
		alive:      make([]bool, 0, capacity),
		masks:      make([]Bitmask, 0, capacity),
		adopted:    make(map[uint32][]*Actor),
		wrappers:   make(map[any]*Actor),
		archetypes: make(map[string]*Archetype),
		log:        logger,
	}
	m.systems = newSystems(m)
	return m
}

// Bus returns the event bus this manager announces lifecycle events on.
func (m *Manager) Bus() *EventBus {
	return m.bus
}

// Systems returns the system registry for this manager.
func (m *Manager) Systems() *Systems {
	return m.systems
}

// Logger returns the manager's logger.
func (m *Manager) Logger() *zerolog.Logger {
	return &m.log
}

// Create allocates a new entity and returns its handle. The lowest
// available recycled index is reused first; otherwise the next never-used
// index is claimed with version 0. Create attaches no components.
func (m *Manager) Create() EntityID {
	var index uint32
	if m.free.Len() > 0 {
		index = heap.Pop(&m.free).(uint32)
	} else {
		index = uint32(len(m.versions))
		m.versions = append(m.versions, 0)
		m.alive = append(m.alive, false)
		m.masks = append(m.masks, Bitmask{})
	}
	m.alive[index] = true
	m.live++

	id := EntityID{Index: index, Version: m.versions[index]}
	m.logEntity("entity created", id)
	Emit(m.bus, EntityCreated{ID: id})
	return id
}

// Destroy destroys a live entity: every component record for its index is
// cleared, every actor wrapping it is released (unsubscribing its event
// handlers), the version is bumped and the index is returned to the free
// pool. A second Destroy with the same handle fails with ErrInvalidEntity,
// as the handle is stale by then.
//
// ComponentRemoved events fire per cleared type in registration order,
// followed by a single EntityDestroyed. All of them are emitted after the
// bookkeeping completes, so receivers observe the handle as already stale.
func (m *Manager) Destroy(id EntityID) error {
	if err := m.check(id); err != nil {
		return err
	}
	index := id.Index

	// Release wrappers first so their handlers no longer fire.
	for _, act := range m.adopted[index] {
		act.release()
	}
	delete(m.adopted, index)

	mask := m.masks[index]
	var removed []reflect.Type
	for i := 0; i < m.registry.count(); i++ {
		cid := ComponentID(i)
		if mask.Has(cid) {
			m.stores[cid].clear(index)
			removed = append(removed, m.registry.typeOf(cid))
		}
	}
	m.masks[index] = Bitmask{}
	m.alive[index] = false
	m.versions[index]++
	heap.Push(&m.free, index)
	m.live--

	m.logEntity("entity destroyed", id)
	for _, t := range removed {
		Emit(m.bus, ComponentRemoved{ID: id, Type: t})
	}
	Emit(m.bus, EntityDestroyed{ID: id})
	return nil
}

// Valid reports whether the handle denotes a currently live entity: its
// index must be live and its version must match the version table. A handle
// cached across a Destroy must always be revalidated before use; Valid is
// the cheap way to do that.
func (m *Manager) Valid(id EntityID) bool {
	return int(id.Index) < len(m.versions) &&
		m.alive[id.Index] &&
		m.versions[id.Index] == id.Version
}

// Alive returns the number of currently live entities.
func (m *Manager) Alive() int {
	return m.live
}

// Capacity returns the high-water mark of allocated indices.
func (m *Manager) Capacity() int {
	return len(m.versions)
}

// Mask returns a copy of the entity's component bitmask.
// This is primarily for debugging and testing.
func (m *Manager) Mask(id EntityID) (Bitmask, error) {
	if err := m.check(id); err != nil {
		return Bitmask{}, err
	}
	return m.masks[id.Index], nil
}

// Reset destroys every live entity (lifecycle events fire as usual) and
// clears the version table, the free pool and every component store.
// Component type registrations survive a reset.
func (m *Manager) Reset() {
	for index := range m.alive {
		if m.alive[index] {
			_ = m.Destroy(EntityID{Index: uint32(index), Version: m.versions[index]})
		}
	}
	m.versions = m.versions[:0]
	m.alive = m.alive[:0]
	m.masks = m.masks[:0]
	m.free = m.free[:0]
	for _, st := range m.stores {
		st.reset()
	}
	m.live = 0
}

// ArchetypeByName returns an archetype registered through the builder.
// Returns nil if no archetype with the name was registered.
func (m *Manager) ArchetypeByName(name string) *Archetype {
	return m.archetypes[name]
}

// check validates a handle against the live (index, version) pair.
func (m *Manager) check(id EntityID) error {
	if !m.Valid(id) {
		return eris.Wrapf(ErrInvalidEntity, "entity %s", id)
	}
	return nil
}

// store returns the table for a component ID, growing the store list to
// cover IDs assigned since the last access.
func (m *Manager) store(cid ComponentID) *componentStore {
	for len(m.stores) <= int(cid) {
		m.stores = append(m.stores, &componentStore{})
	}
	return m.stores[cid]
}

// resolveComponent is the get-or-create primitive behind bindings: if the
// entity already owns a record of the given type it is fetched, otherwise
// build constructs one and it is attached. The bool reports whether a new
// record was constructed.
func (m *Manager) resolveComponent(id EntityID, t reflect.Type, build func() unsafe.Pointer) (unsafe.Pointer, bool, error) {
	if err := m.check(id); err != nil {
		return nil, false, err
	}
	cid, err := m.registry.register(t)
	if err != nil {
		return nil, false, err
	}

	st := m.store(cid)
	if m.masks[id.Index].Has(cid) {
		return st.at(id.Index), false, nil
	}

	ptr := build()
	st.ensure(id.Index)
	st.put(id.Index, ptr)
	m.masks[id.Index].Set(cid)

	m.logComponent("component attached", id, cid)
	Emit(m.bus, ComponentAdded{ID: id, Type: t})
	return ptr, true, nil
}

// indexHeap is a min-heap of recycled entity indices, so allocation always
// hands out the lowest available index.
type indexHeap []uint32

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(uint32)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Lifecycle events emitted by the manager on its bus.

// EntityCreated is emitted after a new entity is allocated.
type EntityCreated struct {
	ID EntityID
}

// EntityDestroyed is emitted after an entity is destroyed. The handle is
// already stale when receivers run.
type EntityDestroyed struct {
	ID EntityID
}

// ComponentAdded is emitted when a component type becomes present on an
// entity. Re-attaching a type that is already present replaces the record
// silently and does not re-emit.
type ComponentAdded struct {
	ID   EntityID
	Type reflect.Type
}

// ComponentRemoved is emitted when a component type is detached from an
// entity, including during entity destruction.
type ComponentRemoved struct {
	ID   EntityID
	Type reflect.Type
}
