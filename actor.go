package becs

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Binding is a declarative descriptor that get-or-creates a component for
// an entity on resolution: if the entity already owns a record of the bound
// type, that record is fetched; otherwise a fresh record is constructed
// from the binding's stored defaults and attached.
type Binding struct {
	componentType reflect.Type
	build         func() unsafe.Pointer
}

// Bind declares a binding for component type T with the given default
// record. Every construction attaches an independent copy of defaults, so a
// single Binding can back any number of entities.
//
// Use like so:
//
//	player := becs.NewArchetype("Player").
//	    Binding("position", becs.Bind(Position{})).
//	    Binding("sprite", becs.Bind(Sprite{Path: "player.png"})).
//	    Build()
func Bind[T any](defaults T) Binding {
	return Binding{
		componentType: reflect.TypeOf((*T)(nil)).Elem(),
		build: func() unsafe.Pointer {
			record := defaults
			return unsafe.Pointer(&record)
		},
	}
}

// ComponentType returns the component type the binding constructs.
func (b Binding) ComponentType() reflect.Type {
	return b.componentType
}

// Archetype is the immutable merged binding table of one entity subtype.
// It is built once, at definition time, by an ArchetypeBuilder; instance
// construction (Spawn/Adopt) only consults the merged table and never
// recomputes the merge.
type Archetype struct {
	name     string
	order    []string
	bindings map[string]Binding
}

// ArchetypeBuilder collects binding declarations for one entity subtype.
type ArchetypeBuilder struct {
	name    string
	parents []*Archetype
	order   []string
	decls   map[string]Binding
}

// NewArchetype starts the definition of a named entity subtype.
func NewArchetype(name string) *ArchetypeBuilder {
	return &ArchetypeBuilder{
		name:  name,
		decls: make(map[string]Binding),
	}
}

// Extend declares an ancestor whose bindings are inherited. Ancestors merge
// most-base first: with multiple Extend calls, later parents overlay
// earlier ones, and this subtype's own declarations overlay them all.
func (b *ArchetypeBuilder) Extend(parent *Archetype) *ArchetypeBuilder {
	b.parents = append(b.parents, parent)
	return b
}

// Binding declares a named binding on this subtype. Redeclaring a name an
// ancestor already declares overrides the ancestor's binding, under the
// same or a different component type.
func (b *ArchetypeBuilder) Binding(name string, binding Binding) *ArchetypeBuilder {
	if _, ok := b.decls[name]; !ok {
		b.order = append(b.order, name)
	}
	b.decls[name] = binding
	return b
}

// Build merges ancestor bindings with this subtype's declarations and
// returns the immutable archetype. A name keeps the position of its first
// declaration in the hierarchy, so resolution order is deterministic per
// type: ancestor names in their declaration order, then names this subtype
// introduces.
func (b *ArchetypeBuilder) Build() *Archetype {
	a := &Archetype{
		name:     b.name,
		bindings: make(map[string]Binding),
	}
	add := func(name string, binding Binding) {
		if _, ok := a.bindings[name]; !ok {
			a.order = append(a.order, name)
		}
		a.bindings[name] = binding
	}
	for _, parent := range b.parents {
		for _, name := range parent.order {
			add(name, parent.bindings[name])
		}
	}
	for _, name := range b.order {
		add(name, b.decls[name])
	}
	return a
}

// Name returns the archetype name.
func (a *Archetype) Name() string {
	return a.name
}

// Bindings returns the resolution order of the merged binding names.
func (a *Archetype) Bindings() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Spawn allocates a fresh entity, resolves every binding against it (all of
// them construct, since the entity owns nothing yet) and adopts it. See
// Adopt for wrapper semantics.
func (a *Archetype) Spawn(m *Manager, wrapper any) (*Actor, error) {
	id := m.Create()
	actor, err := a.adopt(m, id, wrapper)
	if err != nil {
		_ = m.Destroy(id)
		return nil, err
	}
	return actor, nil
}

// Adopt wraps a pre-existing entity. Bindings whose component type the
// entity already owns fetch the existing record untouched; only absent
// types construct from the binding defaults. Several actors may adopt the
// same entity.
//
// If wrapper is non-nil, every method on it named On<Name> taking exactly
// one parameter and returning nothing is subscribed to that parameter's
// event type on the manager's bus, in method order. The subscriptions are
// removed when the backing entity is destroyed, never on garbage
// collection. The wrapper must be of a comparable type (pointers always
// are); registering the same wrapper instance twice fails with
// ErrDuplicateSubscription.
func (a *Archetype) Adopt(m *Manager, id EntityID, wrapper any) (*Actor, error) {
	if err := m.check(id); err != nil {
		return nil, err
	}
	return a.adopt(m, id, wrapper)
}

func (a *Archetype) adopt(m *Manager, id EntityID, wrapper any) (*Actor, error) {
	if wrapper != nil {
		if !reflect.TypeOf(wrapper).Comparable() {
			return nil, eris.Wrapf(ErrBadWrapper, "adopting %s as %s with wrapper %T", id, a.name, wrapper)
		}
		if _, ok := m.wrappers[wrapper]; ok {
			return nil, eris.Wrapf(ErrDuplicateSubscription, "adopting %s as %s", id, a.name)
		}
	}

	actor := &Actor{
		id:        id,
		uid:       uuid.New(),
		archetype: a,
		manager:   m,
		wrapper:   wrapper,
	}
	for _, name := range a.order {
		if _, err := actor.Resolve(name); err != nil {
			return nil, err
		}
	}

	if wrapper != nil {
		actor.bindHandlers(wrapper)
		m.wrappers[wrapper] = actor
	}
	m.adopted[id.Index] = append(m.adopted[id.Index], actor)

	m.log.Debug().
		Str("entity_id", id.String()).
		Str("archetype", a.name).
		Int("bindings", len(a.order)).
		Int("handlers", len(actor.subs)).
		Msg("actor adopted")
	return actor, nil
}

// handlerPrefix is the naming convention for auto-registered event handler
// methods: On<Name>(Event).
const handlerPrefix = "On"

// bindHandlers scans the wrapper's method set and subscribes every handler
// method to its event type.
func (act *Actor) bindHandlers(wrapper any) {
	v := reflect.ValueOf(wrapper)
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		if !strings.HasPrefix(method.Name, handlerPrefix) {
			continue
		}
		// One event argument (plus receiver), no results.
		if method.Type.NumIn() != 2 || method.Type.NumOut() != 0 {
			continue
		}
		bound := v.Method(i)
		sub := act.manager.bus.subscribe(method.Type.In(1), func(event any) {
			bound.Call([]reflect.Value{reflect.ValueOf(event)})
		})
		act.subs = append(act.subs, sub)
	}
}

// Actor is a higher-level wrapper over one entity, produced by an
// archetype. It holds the entity handle, the archetype's binding table and
// the event subscriptions made on the wrapper's behalf.
type Actor struct {
	id        EntityID
	uid       uuid.UUID
	archetype *Archetype
	manager   *Manager
	wrapper   any
	subs      []Subscription
	released  bool
}

// ID returns the handle of the backing entity.
func (act *Actor) ID() EntityID {
	return act.id
}

// UID returns the unique identity of this wrapper instance. Two actors
// adopting the same entity have distinct UIDs.
func (act *Actor) UID() uuid.UUID {
	return act.uid
}

// Archetype returns the archetype this actor was produced from.
func (act *Actor) Archetype() *Archetype {
	return act.archetype
}

// Manager returns the manager owning the backing entity.
func (act *Actor) Manager() *Manager {
	return act.manager
}

// Released reports whether the backing entity has been destroyed.
func (act *Actor) Released() bool {
	return act.released
}

// Resolve evaluates the named binding against the backing entity with
// get-or-create semantics and returns the component record as a typed
// pointer. Resolving the same name twice without an intervening detach
// returns the identical record.
func (act *Actor) Resolve(name string) (any, error) {
	if act.released {
		return nil, eris.Wrapf(ErrActorReleased, "resolving %q on %s", name, act.archetype.name)
	}
	binding, ok := act.archetype.bindings[name]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownBinding, "%s.%s", act.archetype.name, name)
	}
	ptr, _, err := act.manager.resolveComponent(act.id, binding.componentType, binding.build)
	if err != nil {
		return nil, err
	}
	return reflect.NewAt(binding.componentType, ptr).Interface(), nil
}

// Resolved evaluates the named binding and returns the record as *T.
// Fails with ErrBindingType if the binding declares a different component
// type.
func Resolved[T any](act *Actor, name string) (*T, error) {
	record, err := act.Resolve(name)
	if err != nil {
		return nil, err
	}
	typed, ok := record.(*T)
	if !ok {
		return nil, eris.Wrapf(ErrBindingType, "%s.%s is %s, not %s",
			act.archetype.name, name, reflect.TypeOf(record).Elem().Name(), typeFor[T]().Name())
	}
	return typed, nil
}

// Destroy destroys the backing entity. The manager releases this actor
// (and any other actor adopting the same entity) in the process, removing
// all auto-registered event subscriptions.
func (act *Actor) Destroy() error {
	return act.manager.Destroy(act.id)
}

// release removes the actor's event subscriptions and wrapper registration.
// Called by the manager while destroying the backing entity.
func (act *Actor) release() {
	if act.released {
		return
	}
	act.released = true
	for _, sub := range act.subs {
		act.manager.bus.Unsubscribe(sub)
	}
	act.subs = nil
	if act.wrapper != nil {
		delete(act.manager.wrappers, act.wrapper)
	}
}
