package becs

import (
	"reflect"

	"github.com/google/uuid"
)

// EventBus is a typed publish/subscribe dispatcher routing emitted event
// instances to registered receivers. It is an explicit object with the
// simulation's lifetime — construct one before the first entity is created
// and pass it to everything that emits or subscribes; there is no hidden
// process-global bus, so tests run against a fresh one.
//
// Dispatch is keyed on the exact event type: emitting E invokes receivers
// for E and only E, with no supertype or subtype fan-out.
//
// Concurrency:
// Like the Manager, the bus is single-threaded by contract.
type EventBus struct {
	receivers map[reflect.Type][]receiver
}

// receiver is one registered callable with its unsubscribe token.
type receiver struct {
	token uuid.UUID
	call  func(event any)
}

// Subscription is the token returned by Subscribe, usable to unsubscribe.
// The zero Subscription is inert: unsubscribing it is a no-op.
type Subscription struct {
	eventType reflect.Type
	token     uuid.UUID
}

// EventType returns the event type this subscription listens for.
func (s Subscription) EventType() reflect.Type {
	return s.eventType
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		receivers: make(map[reflect.Type][]receiver),
	}
}

// Subscribe registers a receiver for events of type E and returns a token
// for unsubscribing. Receivers fire in registration order. Subscribing the
// same function twice registers it twice; explicit subscriptions are never
// deduplicated (wrapper auto-registration is, see Archetype.Spawn).
func Subscribe[E any](bus *EventBus, fn func(E)) Subscription {
	return bus.subscribe(reflect.TypeOf((*E)(nil)).Elem(), func(event any) {
		fn(event.(E))
	})
}

// subscribe registers an untyped receiver for the given event type. Used
// directly by actor handler auto-registration, where the event type is only
// known by reflection.
func (b *EventBus) subscribe(t reflect.Type, call func(event any)) Subscription {
	r := receiver{token: uuid.New(), call: call}
	b.receivers[t] = append(b.receivers[t], r)
	return Subscription{eventType: t, token: r.token}
}

// Unsubscribe removes the receiver identified by the token. Unsubscribing a
// token that was already removed (or the zero token) is a no-op, not an
// error.
func (b *EventBus) Unsubscribe(sub Subscription) {
	list := b.receivers[sub.eventType]
	for i, r := range list {
		if r.token == sub.token {
			b.receivers[sub.eventType] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Emit dispatches the event synchronously to every receiver registered for
// its type at the moment Emit is called, each exactly once, in registration
// order. Dispatch iterates a stable snapshot of the receiver list, so a
// receiver may unsubscribe itself or others, destroy entities, or emit
// further events mid-dispatch; a nested Emit completes fully before the
// outer Emit resumes its remaining receivers.
func Emit[E any](bus *EventBus, event E) {
	bus.emit(reflect.TypeOf((*E)(nil)).Elem(), event)
}

func (b *EventBus) emit(t reflect.Type, event any) {
	list := b.receivers[t]
	if len(list) == 0 {
		return
	}
	snapshot := make([]receiver, len(list))
	copy(snapshot, list)
	for _, r := range snapshot {
		r.call(event)
	}
}

// SubscriberCount returns the number of receivers currently registered for
// event type E. Primarily for tests and diagnostics.
func SubscriberCount[E any](bus *EventBus) int {
	return len(bus.receivers[reflect.TypeOf((*E)(nil)).Elem()])
}
