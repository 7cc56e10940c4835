package becs

import (
	"reflect"
	"unsafe"

	"github.com/rotisserie/eris"
)

// ComponentID is a unique identifier for a component type within one
// Manager. Valid IDs range from 0 to MaxComponents-1.
type ComponentID uint8

// MaxComponents is the maximum number of component types supported.
const MaxComponents = 256

// componentRegistry assigns sequential IDs to component types on first use.
// Each Manager owns its own registry, so two managers in one process never
// share component identity and tests can run against a fresh table.
type componentRegistry struct {
	ids   map[reflect.Type]ComponentID
	types []reflect.Type
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		ids: make(map[reflect.Type]ComponentID),
	}
}

// register returns the ID for a component type, assigning one if the type
// is seen for the first time. Exceeding the Bitmask capacity fails here,
// at registration, not at a later use site.
func (r *componentRegistry) register(t reflect.Type) (ComponentID, error) {
	if id, ok := r.ids[t]; ok {
		return id, nil
	}
	if len(r.types) >= MaxComponents {
		return 0, eris.Wrapf(ErrComponentLimit, "registering %s (max %d types)", t.Name(), MaxComponents)
	}
	id := ComponentID(len(r.types))
	r.ids[t] = id
	r.types = append(r.types, t)
	return id, nil
}

// lookup returns the ID for a registered component type.
// Returns false if the type has never been used with this manager.
func (r *componentRegistry) lookup(t reflect.Type) (ComponentID, bool) {
	id, ok := r.ids[t]
	return id, ok
}

// typeOf returns the reflect.Type registered under the given ID.
func (r *componentRegistry) typeOf(id ComponentID) reflect.Type {
	return r.types[id]
}

// name returns the type name registered under the given ID.
func (r *componentRegistry) name(id ComponentID) string {
	return r.types[id].Name()
}

func (r *componentRegistry) count() int {
	return len(r.types)
}

// typeFor returns the reflect.Type for component type T.
func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// ComponentTypeOf returns the component type registered under the given ID
// with this manager, or nil if the ID has not been assigned yet.
func (m *Manager) ComponentTypeOf(cid ComponentID) reflect.Type {
	if int(cid) >= m.registry.count() {
		return nil
	}
	return m.registry.typeOf(cid)
}

// ComponentName returns the name of the component type registered under
// the given ID, or the empty string if the ID has not been assigned yet.
func (m *Manager) ComponentName(cid ComponentID) string {
	if int(cid) >= m.registry.count() {
		return ""
	}
	return m.registry.name(cid)
}

// Attach attaches a component record to the entity.
// If a record of this type already exists it is replaced; last write wins
// and no error is raised on re-attach. Attaches of different types are
// independent of each other.
//
// The record is stored by pointer: the returned *T is the attached record
// itself, and mutations through it are visible to every later Get.
func Attach[T any](m *Manager, id EntityID, component *T) (*T, error) {
	if component == nil {
		return nil, eris.Wrapf(ErrNilComponent, "attaching %s", typeFor[T]().Name())
	}
	if err := m.check(id); err != nil {
		return nil, err
	}

	cid, err := m.registry.register(typeFor[T]())
	if err != nil {
		return nil, err
	}

	st := m.store(cid)
	st.ensure(id.Index)
	replaced := m.masks[id.Index].Has(cid)
	st.put(id.Index, unsafe.Pointer(component))
	m.masks[id.Index].Set(cid)

	m.logComponent("component attached", id, cid)
	if !replaced {
		Emit(m.bus, ComponentAdded{ID: id, Type: typeFor[T]()})
	}
	return component, nil
}

// Get retrieves a component record from the entity.
// Returns (nil, nil) if the entity is live but has no record of this type.
func Get[T any](m *Manager, id EntityID) (*T, error) {
	if err := m.check(id); err != nil {
		return nil, err
	}

	cid, ok := m.registry.lookup(typeFor[T]())
	if !ok || !m.masks[id.Index].Has(cid) {
		return nil, nil
	}
	return (*T)(m.stores[cid].at(id.Index)), nil
}

// Has checks if a component type is present on the entity.
func Has[T any](m *Manager, id EntityID) (bool, error) {
	if err := m.check(id); err != nil {
		return false, err
	}

	cid, ok := m.registry.lookup(typeFor[T]())
	if !ok {
		return false, nil
	}
	return m.masks[id.Index].Has(cid), nil
}

// Detach removes a component record from the entity.
// Detaching a type that is not present is a no-op, not an error.
func Detach[T any](m *Manager, id EntityID) error {
	if err := m.check(id); err != nil {
		return err
	}

	cid, ok := m.registry.lookup(typeFor[T]())
	if !ok || !m.masks[id.Index].Has(cid) {
		return nil
	}

	m.stores[cid].clear(id.Index)
	m.masks[id.Index].Clear(cid)

	m.logComponent("component detached", id, cid)
	Emit(m.bus, ComponentRemoved{ID: id, Type: typeFor[T]()})
	return nil
}
