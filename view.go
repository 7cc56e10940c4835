package becs

import (
	"reflect"
)

// Term is a component filter term for building views.
// Use With[T] to require a component and Without[T] to exclude one.
type Term interface {
	term() (reflect.Type, bool)
}

// With is a term requiring that entities own component type T.
//
// Usage:
//
//	view, err := becs.NewView(mngr, becs.With[Position]{}, becs.With[Velocity]{})
type With[T any] struct{}

func (With[T]) term() (reflect.Type, bool) {
	return reflect.TypeOf((*T)(nil)).Elem(), false
}

// Without is a term excluding entities that own component type T.
//
// Usage:
//
//	view, err := becs.NewView(mngr, becs.With[Position]{}, becs.Without[Frozen]{})
type Without[T any] struct{}

func (Without[T]) term() (reflect.Type, bool) {
	return reflect.TypeOf((*T)(nil)).Elem(), true
}

// View iterates all live entities possessing a component signature. Systems
// build their views once and walk them every tick; iteration order is
// ascending entity index, stable across ticks for deterministic replay.
type View struct {
	manager *Manager
	include Bitmask
	exclude Bitmask
}

// NewView builds a view from filter terms. At least one With term is
// required; matching every entity is never what a system wants.
func NewView(m *Manager, terms ...Term) (*View, error) {
	v := &View{manager: m}
	for _, t := range terms {
		componentType, excluded := t.term()
		cid, err := m.registry.register(componentType)
		if err != nil {
			return nil, err
		}
		if excluded {
			v.exclude.Set(cid)
		} else {
			v.include.Set(cid)
		}
	}
	if v.include.IsZero() {
		return nil, ErrEmptyView
	}
	return v, nil
}

// Each invokes fn for every live entity matching the view, in ascending
// index order. The handles passed to fn carry the entity's current version,
// so they remain usable until the entity is destroyed.
func (v *View) Each(fn func(EntityID)) {
	m := v.manager
	for index := range m.alive {
		if !m.alive[index] {
			continue
		}
		mask := &m.masks[index]
		if !mask.ContainsAll(v.include) || mask.ContainsAny(v.exclude) {
			continue
		}
		fn(EntityID{Index: uint32(index), Version: m.versions[index]})
	}
}

// Entities returns the matching entities as a slice, in iteration order.
func (v *View) Entities() []EntityID {
	var out []EntityID
	v.Each(func(id EntityID) {
		out = append(out, id)
	})
	return out
}

// Count returns the number of matching entities.
func (v *View) Count() int {
	n := 0
	v.Each(func(EntityID) {
		n++
	})
	return n
}
